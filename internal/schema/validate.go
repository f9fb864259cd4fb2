// Package schema provides JSON schema validation for storyline settings files.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	schemafs "github.com/storyline/storyline/schema"
)

var (
	settingsSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

// compileSchemas compiles the embedded schema once.
func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		data, err := schemafs.FS.ReadFile("settings.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("read settings schema: %w", err)
			return
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal settings schema: %w", err)
			return
		}

		if err := compiler.AddResource("settings.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add settings schema resource: %w", err)
			return
		}

		settingsSchema, err = compiler.Compile("settings.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile settings schema: %w", err)
			return
		}
	})

	return compileErr
}

// ValidateSettings validates YAML (or JSON) settings data against the settings schema.
// The document is normalized to JSON first so numbers and maps have the shapes
// the validator expects.
func ValidateSettings(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("settings are not representable as JSON: %w", err)
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(normalized))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := settingsSchema.Validate(v); err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}

	return nil
}
