package features

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// DocumentFormat selects the observation document encoding.
type DocumentFormat string

const (
	FormatJSON DocumentFormat = "json"
	FormatYAML DocumentFormat = "yaml"
)

// compiledDocSchemas caches compiled document schemas by schema version.
var compiledDocSchemas sync.Map // map[string]*jsonschema.Schema

// DocumentSchema returns the JSON Schema an observation document for s must
// satisfy. Every field may be given by its canonical name or any alias;
// unknown keys are rejected. Bounds are left to the encoder.
func DocumentSchema(s *Schema) map[string]any {
	props := make(map[string]any, s.Len()*2)
	for _, f := range s.fields {
		var prop map[string]any
		if f.Kind == KindBinary {
			prop = map[string]any{
				"type":        []any{"string", "null"},
				"description": fmt.Sprintf("%s (%s)", f.Label, f.Bounds()),
			}
		} else {
			prop = map[string]any{
				"type":        []any{"number", "string", "null"},
				"description": fmt.Sprintf("%s, %s", f.Label, f.Bounds()),
			}
		}
		props[f.Name] = prop
		for _, a := range f.Aliases {
			props[a] = prop
		}
	}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"title":                "observation-" + s.Version,
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

// DecodeDocument parses an observation document and converts it to an
// Observation. Null values are treated as unset.
func DecodeDocument(s *Schema, data []byte, format DocumentFormat) (Observation, error) {
	var doc any
	switch format {
	case FormatYAML:
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Observation{}, &ValidationError{Reason: "malformed YAML document", Err: err}
		}
		doc = normalizeYAML(m)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return Observation{}, &ValidationError{Reason: "malformed JSON document", Err: err}
		}
	}

	compiled, err := documentValidator(s)
	if err != nil {
		return Observation{}, fmt.Errorf("compile document schema: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return Observation{}, &ValidationError{Reason: "document does not match schema " + s.Version, Err: err}
	}

	m, _ := doc.(map[string]any)
	raw := make(map[string]string, len(m))
	for k, v := range m {
		str, err := scalarString(v)
		if err != nil {
			return Observation{}, &ValidationError{Field: k, Reason: err.Error()}
		}
		raw[k] = str
	}
	return NewObservation(raw), nil
}

func documentValidator(s *Schema) (*jsonschema.Schema, error) {
	if cached, ok := compiledDocSchemas.Load(s.Version); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a generic JSON value, not Go-typed maps.
	defBytes, err := json.Marshal(DocumentSchema(s))
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://observation-%s.json", s.Version)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	compiledDocSchemas.Store(s.Version, compiled)
	return compiled, nil
}

// normalizeYAML converts YAML scalars into the shapes the JSON Schema
// validator accepts.
func normalizeYAML(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case int:
			out[k] = json.Number(strconv.Itoa(x))
		case int64:
			out[k] = json.Number(strconv.FormatInt(x, 10))
		case float64:
			out[k] = json.Number(strconv.FormatFloat(x, 'f', -1, 64))
		default:
			out[k] = v
		}
	}
	return out
}

func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return "", fmt.Errorf("boolean values are not accepted")
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}
