// Package source decodes external payloads (JSON, YAML) into the raw mapping
// form consumed by the schema engine. JSON numbers are preserved as
// json.Number so strict integer fields are not corrupted by float64
// round-tripping.
package source

import (
	"bytes"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// JSONBytes decodes a JSON object into a raw mapping.
func JSONBytes(b []byte) (map[string]any, error) {
	return JSONReader(bytes.NewReader(b))
}

// JSONReader decodes a JSON object from r into a raw mapping.
func JSONReader(r io.Reader) (map[string]any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("source: decode json: %w", err)
	}
	return out, nil
}

// YAMLBytes decodes a YAML mapping into a raw mapping. Nested mappings are
// normalized to map[string]any so the engine sees a uniform shape.
func YAMLBytes(b []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("source: decode yaml: %w", err)
	}
	normalizeMap(raw)
	return raw, nil
}

// YAMLReader decodes a YAML mapping from r.
func YAMLReader(r io.Reader) (map[string]any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("source: read yaml: %w", err)
	}
	return YAMLBytes(b)
}

func normalizeMap(m map[string]any) {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		normalizeMap(t)
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeValue(val)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalizeValue(e)
		}
		return t
	default:
		return v
	}
}
