package fieldset

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Bind decodes a validated instance's value store into a caller-owned
// struct. Field names map to struct fields via the `fieldset` tag, falling
// back to case-insensitive name matching. Nested instances decode into
// nested structs.
func Bind(in *Instance, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "fieldset",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("fieldset: bind: %w", err)
	}
	if err := dec.Decode(in.valueMap()); err != nil {
		return fmt.Errorf("fieldset: bind %s: %w", in.st.name, err)
	}
	return nil
}
