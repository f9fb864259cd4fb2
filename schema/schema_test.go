package schema

import (
	"encoding/json"
	"io/fs"
	"strings"
	"testing"
)

// TestEmbeddedSchemasAreValidJSON verifies that all embedded schema files are valid JSON objects.
func TestEmbeddedSchemasAreValidJSON(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		t.Fatalf("failed to read embedded FS: %v", err)
	}

	schemaCount := 0
	for _, entry := range entries {
		entry := entry
		if !strings.HasSuffix(entry.Name(), ".schema.json") {
			continue
		}
		schemaCount++

		t.Run(entry.Name(), func(t *testing.T) {
			t.Parallel()

			data, err := FS.ReadFile(entry.Name())
			if err != nil {
				t.Fatalf("failed to read %s: %v", entry.Name(), err)
			}

			var v interface{}
			if err := json.Unmarshal(data, &v); err != nil {
				t.Errorf("%s is not valid JSON: %v", entry.Name(), err)
			}
			if _, ok := v.(map[string]interface{}); !ok {
				t.Errorf("%s root is not an object", entry.Name())
			}
		})
	}

	if schemaCount == 0 {
		t.Error("no schema files found in embedded FS")
	}
}

func TestSettingsSchemaStructure(t *testing.T) {
	t.Parallel()

	data, err := FS.ReadFile("settings.schema.json")
	if err != nil {
		t.Fatalf("settings schema not embedded: %v", err)
	}

	var schema map[string]interface{}
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"$schema", "type", "properties"} {
		if _, ok := schema[field]; !ok {
			t.Errorf("settings schema missing %q", field)
		}
	}
}
