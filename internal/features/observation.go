package features

import "strings"

// Observation is one patient's raw field values for a single prediction
// request. Keys are field names or aliases; values are the literal form
// input. An Observation is never mutated after construction.
type Observation struct {
	values map[string]string
}

// NewObservation copies raw into a new Observation. Empty values are kept
// so that the encoder reports them as missing.
func NewObservation(raw map[string]string) Observation {
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		values[normalizeKey(k)] = strings.TrimSpace(v)
	}
	return Observation{values: values}
}

// DefaultObservation returns an Observation pre-filled with every field's
// form default.
func DefaultObservation(s *Schema) Observation {
	raw := make(map[string]string, s.Len())
	for _, f := range s.fields {
		raw[f.Name] = f.Default
	}
	return NewObservation(raw)
}

// Len returns the number of keys present.
func (o Observation) Len() int { return len(o.values) }

// Keys returns the normalised keys present.
func (o Observation) Keys() []string {
	keys := make([]string, 0, len(o.values))
	for k := range o.values {
		keys = append(keys, k)
	}
	return keys
}

// Lookup returns the value of f under its canonical name or any alias.
// Blank values count as absent.
func (o Observation) Lookup(f Field) (string, bool) {
	if v, ok := o.values[normalizeKey(f.Name)]; ok && v != "" {
		return v, true
	}
	for _, a := range f.Aliases {
		if v, ok := o.values[normalizeKey(a)]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// With returns a copy of o with key set to value.
func (o Observation) With(key, value string) Observation {
	values := make(map[string]string, len(o.values)+1)
	for k, v := range o.values {
		values[k] = v
	}
	values[normalizeKey(key)] = strings.TrimSpace(value)
	return Observation{values: values}
}
