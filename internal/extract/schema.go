package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildRecordJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing a complete, successful feature record.
func BuildRecordJSONSchema() map[string]any {
	colorProp := map[string]any{
		"type":    "string",
		"pattern": `^RGB\(\d{1,3}, \d{1,3}, \d{1,3}\)$`,
	}
	props := map[string]any{
		KeyImagePath:     map[string]any{"type": "string", "minLength": 1},
		KeyExtractedText: map[string]any{"type": "string"},
		KeyWidth:         map[string]any{"type": "integer", "minimum": 1},
		KeyHeight:        map[string]any{"type": "integer", "minimum": 1},
		KeyChannels:      map[string]any{"enum": []any{1, 3}},
		KeyFileSizeKB:    map[string]any{"type": "number", "minimum": 0.0},
		KeyAspectRatio:   map[string]any{"type": "number", "exclusiveMinimum": 0.0},
		KeyTotalPixels:   map[string]any{"type": "integer", "minimum": 1},
		KeyAvgBrightness: map[string]any{"type": "number", "minimum": 0.0, "maximum": 255.0},
		KeyEdgeCount:     map[string]any{"type": "integer", "minimum": 0},
	}
	required := []string{
		KeyImagePath, KeyExtractedText, KeyWidth, KeyHeight, KeyChannels,
		KeyFileSizeKB, KeyAspectRatio, KeyTotalPixels, KeyAvgBrightness,
		KeyEdgeCount,
	}
	for i := 1; i <= DominantColorCount; i++ {
		key := fmt.Sprintf("dominant_color_%d", i)
		props[key] = colorProp
		required = append(required, key)
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// ValidateRecord checks rec against the record schema.
func ValidateRecord(rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return validateJSONAgainstSchema(BuildRecordJSONSchema(), data)
}

func validateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
