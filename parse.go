package fieldset

import (
	"io"

	"github.com/reoring/fieldset/source"
)

// LoadJSON decodes a JSON object and loads it against the schema type.
// Numbers arrive as json.Number, so strict integer fields keep working.
func LoadJSON(st *SchemaType, data []byte, opts ...LoadOption) (*Instance, error) {
	raw, err := source.JSONBytes(data)
	if err != nil {
		return nil, err
	}
	return st.Load(raw, opts...)
}

// LoadJSONReader is LoadJSON over an io.Reader.
func LoadJSONReader(st *SchemaType, r io.Reader, opts ...LoadOption) (*Instance, error) {
	raw, err := source.JSONReader(r)
	if err != nil {
		return nil, err
	}
	return st.Load(raw, opts...)
}

// LoadYAML decodes a YAML mapping and loads it against the schema type.
func LoadYAML(st *SchemaType, data []byte, opts ...LoadOption) (*Instance, error) {
	raw, err := source.YAMLBytes(data)
	if err != nil {
		return nil, err
	}
	return st.Load(raw, opts...)
}
