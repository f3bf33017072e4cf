package features

import "fmt"

// ValidationError reports a missing, unparsable or out-of-range field.
type ValidationError struct {
	Field  string // canonical field name; empty for document-level errors
	Value  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid observation: %s", e.Reason)
	}
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// SchemaMismatchError reports an encoded vector whose shape disagrees with
// what the model declares it accepts.
type SchemaMismatchError struct {
	Schema      string // encoder schema version
	ModelSchema string // schema version declared by the model, if any
	Expected    int    // features the model accepts
	Actual      int    // features the encoder produced
}

func (e *SchemaMismatchError) Error() string {
	if e.ModelSchema != "" && e.ModelSchema != e.Schema {
		return fmt.Sprintf("schema mismatch: model was fit on %q, encoder uses %q", e.ModelSchema, e.Schema)
	}
	return fmt.Sprintf("schema mismatch: model expects %d features, schema %q produces %d",
		e.Expected, e.Schema, e.Actual)
}

// UnknownSchemaError reports a schema version that is not registered.
type UnknownSchemaError struct {
	Version string
}

func (e *UnknownSchemaError) Error() string {
	return fmt.Sprintf("unknown schema version %q", e.Version)
}
