package llm

// BuildExtractionJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We send it to the recognition service as an output constraint
// and also use it locally to validate what came back.
func BuildExtractionJSONSchema() map[string]any {
	question := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"number": map[string]any{"type": "string", "minLength": 1},
			"text":   map[string]any{"type": "string", "minLength": 1},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 2,
				"maxItems": 6,
			},
			"unclear": map[string]any{"type": "boolean"},
		},
		"required": []string{"number", "text", "options"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": question,
			},
		},
		"required": []string{"questions"},
	}
}
