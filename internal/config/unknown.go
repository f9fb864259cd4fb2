package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// detectUnknownFields compares raw YAML keys with known struct fields.
func detectUnknownFields(data []byte) []string {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// Should not happen since the data was already parsed successfully.
		return []string{"internal: failed to re-parse settings for unknown field detection"}
	}

	var warnings []string
	known := getYAMLFields(reflect.TypeOf(Settings{}))
	for _, key := range sortedKeys(raw) {
		if key == "$schema" {
			continue
		}
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
		}
	}

	nested := map[string]reflect.Type{
		"tests":    reflect.TypeOf(TestsConfig{}),
		"browser":  reflect.TypeOf(BrowserConfig{}),
		"parallel": reflect.TypeOf(ParallelConfig{}),
	}
	for _, section := range []string{"tests", "browser", "parallel"} {
		node, ok := raw[section]
		if !ok {
			continue
		}
		warnings = append(warnings, checkSectionUnknownFields(section, node, nested[section])...)
	}

	return warnings
}

func checkSectionUnknownFields(section string, node yaml.Node, t reflect.Type) []string {
	var fields map[string]yaml.Node
	if err := node.Decode(&fields); err != nil {
		return nil
	}

	var warnings []string
	known := getYAMLFields(t)
	for _, key := range sortedKeys(fields) {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in %s (ignored)", key, section))
		}
	}
	return warnings
}

// getYAMLFields returns the set of YAML field names for a struct type.
func getYAMLFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			fields[name] = true
		}
	}
	return fields
}

func sortedKeys(m map[string]yaml.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
