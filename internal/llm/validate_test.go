package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema(name string) *Schema {
	return &Schema{
		Name: name,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
				"count": map[string]any{"type": "integer", "minimum": 0},
			},
			"required":             []string{"title", "count"},
			"additionalProperties": false,
		},
	}
}

func TestValidate_NilSchemaAcceptsAnything(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("nil schema should skip validation, got %v", err)
	}
}

func TestValidate_EmptyPayload(t *testing.T) {
	cases := []json.RawMessage{nil, []byte(""), []byte("   \n\t")}
	for _, raw := range cases {
		err := validateResponse(testSchema("empty"), raw)
		var inv *ErrInvalidResponse
		if !errors.As(err, &inv) {
			t.Fatalf("payload %q: expected ErrInvalidResponse, got %v", raw, err)
		}
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	err := validateResponse(testSchema("malformed"), json.RawMessage(`{"title": "x",`))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestValidate_SchemaViolation(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing required", `{"title": "x"}`},
		{"wrong type", `{"title": "x", "count": "three"}`},
		{"below minimum", `{"title": "x", "count": -1}`},
		{"extra property", `{"title": "x", "count": 1, "bogus": true}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateResponse(testSchema("violation"), json.RawMessage(tc.raw))
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got %v", err)
			}
			if string(inv.Content) != tc.raw {
				t.Fatalf("error should carry the offending payload, got %s", inv.Content)
			}
		})
	}
}

func TestValidate_ConformingPayload(t *testing.T) {
	raw := json.RawMessage(`{"title": "photosynthesis", "count": 10}`)
	if err := validateResponse(testSchema("conforming"), raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CompiledSchemaCached(t *testing.T) {
	schema := testSchema("cached")
	first, err := compiledSchema(schema)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := compiledSchema(schema)
	if err != nil {
		t.Fatalf("recompile: %v", err)
	}
	if first != second {
		t.Fatal("expected the cached compiled schema on the second lookup")
	}
}
