package model

// artifactSchema is the JSON Schema every model artifact document must
// satisfy before it is decoded.
var artifactSchema = map[string]any{
	"$schema":  "https://json-schema.org/draft/2020-12/schema",
	"type":     "object",
	"required": []any{"format", "version", "schema", "n_features"},
	"properties": map[string]any{
		"format": map[string]any{
			"type": "string",
			"enum": []any{FormatRandomForest, FormatLogistic, FormatRemote},
		},
		"version": map[string]any{
			"type":        "string",
			"pattern":     `^v[0-9]+\.[0-9]+\.[0-9]+`,
			"description": "Semantic version of the trained artifact",
		},
		"schema": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "Feature schema version the model was fit on",
		},
		"n_features": map[string]any{
			"type":    "integer",
			"minimum": 1,
		},
		"classes": map[string]any{
			"const":       []any{0, 1},
			"description": "Class labels in probability order: 0 healthy, 1 at risk",
		},
		"description": map[string]any{"type": "string"},
		"forest": map[string]any{
			"type":     "object",
			"required": []any{"trees"},
			"properties": map[string]any{
				"trees": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type":     "object",
						"required": []any{"nodes"},
						"properties": map[string]any{
							"nodes": map[string]any{
								"type":     "array",
								"minItems": 1,
								"items": map[string]any{
									"type":     "object",
									"required": []any{"left", "right"},
									"properties": map[string]any{
										"feature":   map[string]any{"type": "integer", "minimum": 0},
										"threshold": map[string]any{"type": "number"},
										"left":      map[string]any{"type": "integer", "minimum": -1},
										"right":     map[string]any{"type": "integer", "minimum": -1},
										"value": map[string]any{
											"type":  "array",
											"items": map[string]any{"type": "number", "minimum": 0},
										},
									},
								},
							},
						},
					},
				},
			},
		},
		"logistic": map[string]any{
			"type":     "object",
			"required": []any{"coefficients", "intercept"},
			"properties": map[string]any{
				"coefficients": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "number"},
				},
				"intercept": map[string]any{"type": "number"},
			},
		},
		"remote": map[string]any{
			"type":     "object",
			"required": []any{"url"},
			"properties": map[string]any{
				"url":     map[string]any{"type": "string", "pattern": "^https?://"},
				"timeout": map[string]any{"type": "string"},
			},
		},
	},
	"allOf": []any{
		map[string]any{
			"if":   map[string]any{"properties": map[string]any{"format": map[string]any{"const": FormatRandomForest}}},
			"then": map[string]any{"required": []any{"forest"}},
		},
		map[string]any{
			"if":   map[string]any{"properties": map[string]any{"format": map[string]any{"const": FormatLogistic}}},
			"then": map[string]any{"required": []any{"logistic"}},
		},
		map[string]any{
			"if":   map[string]any{"properties": map[string]any{"format": map[string]any{"const": FormatRemote}}},
			"then": map[string]any{"required": []any{"remote"}},
		},
	},
}
