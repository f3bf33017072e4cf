package features

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// discreteTolerance absorbs decimal representation noise when matching
// KindDiscrete values such as specific gravity.
const discreteTolerance = 1e-9

// Vector is the ordered numeric model input.
type Vector []float64

// Encoder turns Observations into Vectors for one schema version.
// It holds no per-request state and is safe for concurrent use.
type Encoder struct {
	schema   *Schema
	validate *validator.Validate
}

// NewEncoder creates an Encoder for s.
func NewEncoder(s *Schema) *Encoder {
	return &Encoder{schema: s, validate: validator.New()}
}

// Schema returns the schema the encoder follows.
func (e *Encoder) Schema() *Schema { return e.schema }

// Encode validates every field of obs and returns the vector in schema
// order. The first invalid field stops encoding.
func (e *Encoder) Encode(obs Observation) (Vector, error) {
	vec := make(Vector, e.schema.Len())
	for i, f := range e.schema.fields {
		raw, ok := obs.Lookup(f)
		if !ok {
			return nil, &ValidationError{Field: f.Name, Reason: "value is required"}
		}
		v, err := e.encodeField(f, raw)
		if err != nil {
			return nil, err
		}
		vec[i] = v
	}
	return vec, nil
}

// EncodeField validates and encodes a single value. Forms use it to flag
// bad input as soon as a field loses focus.
func (e *Encoder) EncodeField(name, raw string) (float64, error) {
	f, _, ok := e.schema.Field(name)
	if !ok {
		return 0, &ValidationError{Field: name, Reason: "unknown field"}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &ValidationError{Field: f.Name, Reason: "value is required"}
	}
	return e.encodeField(f, raw)
}

func (e *Encoder) encodeField(f Field, raw string) (float64, error) {
	if f.Kind == KindBinary {
		lit := strings.ToLower(strings.TrimSpace(raw))
		if err := e.validate.Var(lit, "oneof="+f.Truth.Positive+" "+f.Truth.Negative); err != nil {
			return 0, fieldError(f, raw, err)
		}
		v, _ := f.Truth.Encode(lit)
		return v, nil
	}

	x, err := parseNumber(f, raw)
	if err != nil {
		return 0, err
	}

	switch f.Kind {
	case KindInteger:
		tag := fmt.Sprintf("gte=%s,lte=%s", formatBound(f.Min), formatBound(f.Max))
		if err := e.validate.Var(x, tag); err != nil {
			return 0, fieldError(f, raw, err)
		}
	case KindFloat:
		tag := fmt.Sprintf("gte=%s,lte=%s", formatBound(f.Min), formatBound(f.Max))
		if err := e.validate.Var(x, tag); err != nil {
			return 0, fieldError(f, raw, err)
		}
	case KindOrdinal:
		allowed := make([]string, len(f.Allowed))
		for i, a := range f.Allowed {
			allowed[i] = strconv.FormatInt(int64(a), 10)
		}
		if err := e.validate.Var(int64(x), "oneof="+strings.Join(allowed, " ")); err != nil {
			return 0, fieldError(f, raw, err)
		}
	case KindDiscrete:
		if !containsApprox(f.Allowed, x) {
			return 0, &ValidationError{Field: f.Name, Value: raw, Reason: "must be one of " + f.Bounds()}
		}
	}

	return cast(f, x), nil
}

// decimalPattern is plain decimal notation. Hex floats, exponents, Inf and
// NaN are not form input.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// parseNumber reads raw as a decimal. Integer and ordinal fields take whole
// numbers only.
func parseNumber(f Field, raw string) (float64, error) {
	if !decimalPattern.MatchString(raw) {
		return 0, &ValidationError{Field: f.Name, Value: raw, Reason: "not a number"}
	}
	if f.Kind == KindInteger || f.Kind == KindOrdinal {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if strings.Contains(raw, ".") {
				return 0, &ValidationError{Field: f.Name, Value: raw, Reason: "must be a whole number"}
			}
			return 0, &ValidationError{Field: f.Name, Value: raw, Reason: "not a number", Err: err}
		}
		return float64(n), nil
	}
	x, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValidationError{Field: f.Name, Value: raw, Reason: "not a number", Err: err}
	}
	return x, nil
}

// cast applies the field's scale, numeric type and rounding rule.
func cast(f Field, x float64) float64 {
	if f.Scale != 0 {
		x *= f.Scale
	}
	if f.Cast != CastInt {
		return x
	}
	if f.Round == RoundTruncate {
		return math.Trunc(x)
	}
	return math.Round(x)
}

func containsApprox(allowed []float64, x float64) bool {
	for _, a := range allowed {
		if math.Abs(a-x) <= discreteTolerance {
			return true
		}
	}
	return false
}

func formatBound(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}

// fieldError converts a validator failure into a ValidationError with a
// readable reason.
func fieldError(f Field, raw string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: f.Name, Value: raw, Reason: err.Error(), Err: err}
	}
	fe := verrs[0]
	var reason string
	switch fe.Tag() {
	case "gte":
		reason = "must be at least " + fe.Param()
	case "lte":
		reason = "must be at most " + fe.Param()
	case "oneof":
		reason = "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		reason = fmt.Sprintf("failed %s check", fe.Tag())
	}
	return &ValidationError{Field: f.Name, Value: raw, Reason: reason, Err: err}
}
