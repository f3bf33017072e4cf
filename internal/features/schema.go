package features

import (
	"fmt"
	"strings"
)

// Kind classifies how a raw field value is parsed and validated.
type Kind int

const (
	// KindInteger is a whole-number measurement within [Min, Max].
	KindInteger Kind = iota
	// KindFloat is a continuous measurement within [Min, Max].
	KindFloat
	// KindOrdinal is a whole number drawn from Allowed.
	KindOrdinal
	// KindDiscrete is a decimal value drawn from Allowed.
	KindDiscrete
	// KindBinary is one of two literals, encoded through a TruthTable.
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindOrdinal:
		return "ordinal"
	case KindDiscrete:
		return "discrete"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Cast is the numeric type the model was fit on for a field.
type Cast int

const (
	CastFloat Cast = iota
	CastInt
)

func (c Cast) String() string {
	if c == CastInt {
		return "int"
	}
	return "float"
}

// Section groups fields on the input form.
type Section string

const (
	SectionBasic      Section = "Basic Information"
	SectionLaboratory Section = "Laboratory Results"
	SectionHistory    Section = "Medical History"
)

// Sections lists form sections in display order.
var Sections = []Section{SectionBasic, SectionLaboratory, SectionHistory}

// TruthTable maps the two literals of a binary field to 1 and 0.
type TruthTable struct {
	Positive string // encodes to 1
	Negative string // encodes to 0
}

// Encode returns the numeric code of a literal. Matching ignores case and
// surrounding whitespace; anything else is rejected.
func (t TruthTable) Encode(literal string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(literal)) {
	case t.Positive:
		return 1, true
	case t.Negative:
		return 0, true
	}
	return 0, false
}

// Rounding is how a scaled value becomes a whole number under CastInt.
type Rounding int

const (
	// RoundNearest rounds half away from zero.
	RoundNearest Rounding = iota
	// RoundTruncate drops the fraction, as a plain int() conversion does.
	// 1.005*1000 is 1004.999... in binary floating point and becomes 1004.
	RoundTruncate
)

// Field describes one position of the model's input vector.
type Field struct {
	Name    string
	Aliases []string
	Label   string
	Unit    string
	Section Section
	Kind    Kind

	// Min and Max bound KindInteger and KindFloat values (inclusive).
	Min, Max float64

	// Allowed lists the accepted values of KindOrdinal and KindDiscrete fields.
	Allowed []float64

	// Truth and Choices configure KindBinary fields. Choices is the display
	// order of the two literals.
	Truth   *TruthTable
	Choices []string

	// Scale multiplies the parsed value before casting. Zero means 1.
	Scale float64
	Cast  Cast
	Round Rounding

	// Default is the value pre-filled on the form.
	Default string
}

// Encoding describes the field's encoding rule in one line.
func (f Field) Encoding() string {
	switch f.Kind {
	case KindBinary:
		return fmt.Sprintf("%s=1 %s=0", f.Truth.Positive, f.Truth.Negative)
	default:
		if f.Scale != 0 && f.Scale != 1 {
			op := f.Cast.String()
			if f.Cast == CastInt && f.Round == RoundNearest {
				op = "round"
			}
			return fmt.Sprintf("%s(x*%g)", op, f.Scale)
		}
		return f.Cast.String()
	}
}

// Bounds describes the accepted input in one line.
func (f Field) Bounds() string {
	switch f.Kind {
	case KindInteger, KindFloat:
		return fmt.Sprintf("%g-%g", f.Min, f.Max)
	case KindOrdinal, KindDiscrete:
		parts := make([]string, len(f.Allowed))
		for i, v := range f.Allowed {
			if f.Kind == KindDiscrete {
				parts[i] = fmt.Sprintf("%.3f", v)
			} else {
				parts[i] = fmt.Sprintf("%g", v)
			}
		}
		return strings.Join(parts, ", ")
	case KindBinary:
		return strings.Join(f.Choices, " | ")
	}
	return ""
}

// Schema is the ordered list of fields a specific model version was fit on.
// Field order is the vector order.
type Schema struct {
	Version     string
	Description string

	fields []Field
	index  map[string]int
}

// NewSchema validates the field list and builds the name index.
func NewSchema(version, description string, fields []Field) (*Schema, error) {
	if version == "" {
		return nil, fmt.Errorf("schema version is required")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("schema %s: no fields", version)
	}

	s := &Schema{
		Version:     version,
		Description: description,
		fields:      make([]Field, len(fields)),
		index:       make(map[string]int, len(fields)*2),
	}
	copy(s.fields, fields)

	for i, f := range s.fields {
		if err := checkField(f); err != nil {
			return nil, fmt.Errorf("schema %s: field %d: %w", version, i, err)
		}
		for _, key := range append([]string{f.Name}, f.Aliases...) {
			key = normalizeKey(key)
			if prev, dup := s.index[key]; dup {
				return nil, fmt.Errorf("schema %s: name %q used by fields %d and %d", version, key, prev, i)
			}
			s.index[key] = i
		}
	}
	return s, nil
}

func checkField(f Field) error {
	if f.Name == "" {
		return fmt.Errorf("missing name")
	}
	switch f.Kind {
	case KindInteger, KindFloat:
		if f.Min > f.Max {
			return fmt.Errorf("%s: min %g > max %g", f.Name, f.Min, f.Max)
		}
	case KindOrdinal, KindDiscrete:
		if len(f.Allowed) == 0 {
			return fmt.Errorf("%s: no allowed values", f.Name)
		}
	case KindBinary:
		if f.Truth == nil {
			return fmt.Errorf("%s: binary field without truth table", f.Name)
		}
		if f.Truth.Positive == "" || f.Truth.Negative == "" || f.Truth.Positive == f.Truth.Negative {
			return fmt.Errorf("%s: truth table needs two distinct literals", f.Name)
		}
		if len(f.Choices) != 2 {
			return fmt.Errorf("%s: binary field needs exactly two choices", f.Name)
		}
		for _, c := range f.Choices {
			if _, ok := f.Truth.Encode(c); !ok {
				return fmt.Errorf("%s: choice %q not in truth table", f.Name, c)
			}
		}
	default:
		return fmt.Errorf("%s: unknown kind %d", f.Name, f.Kind)
	}
	return nil
}

// Len returns the number of fields, which is the vector length.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns a copy of the ordered field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field resolves a canonical name or alias.
func (s *Schema) Field(name string) (Field, int, bool) {
	i, ok := s.index[normalizeKey(name)]
	if !ok {
		return Field{}, -1, false
	}
	return s.fields[i], i, true
}

// Names returns canonical field names in vector order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// BinaryPositions returns the vector positions of binary fields.
func (s *Schema) BinaryPositions() []int {
	var pos []int
	for i, f := range s.fields {
		if f.Kind == KindBinary {
			pos = append(pos, i)
		}
	}
	return pos
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
