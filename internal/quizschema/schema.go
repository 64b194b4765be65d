// Package quizschema holds the JSON Schema of the quiz object the model is
// asked to produce, and validates replies against it.
package quizschema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://quiz-reply.json"

// Definition returns the quiz reply schema as a generic map. The summary
// and questions fields are optional so partially sound replies still pass.
func Definition() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "1-2 sentence summary of the studied content, empty for topic-only quizzes",
			},
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":   map[string]any{"type": "integer"},
						"type": map[string]any{"type": "string", "enum": []any{"multipleChoice", "shortAnswer"}},
						"question": map[string]any{
							"type": "string",
						},
						"options": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"answer":      map[string]any{"type": "string"},
						"explanation": map[string]any{"type": "string"},
					},
					"required": []any{"type", "question", "answer"},
				},
			},
		},
	}
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a parsed JSON value, so round trip the map.
		defBytes, err := json.Marshal(Definition())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Validate checks raw JSON against the quiz reply schema.
func Validate(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile quiz schema: %w", err)
	}
	if err := s.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
