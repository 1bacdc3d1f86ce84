package fieldset

// UnknownPolicy controls how raw-data keys that match no declared load-key
// are handled.
type UnknownPolicy int

const (
	UnknownError UnknownPolicy = iota // Reject unknown keys with an error.
	UnknownIgnore                     // Drop unknown keys silently.
)

// LoadOption configures one load or update call.
type LoadOption func(*loadConfig)

type loadConfig struct {
	ignoreExtra bool
	state       map[any]any
}

// WithIgnoreExtra drops unknown raw-data keys for this call instead of
// reporting them, regardless of the schema type's policy.
func WithIgnoreExtra() LoadOption {
	return func(c *loadConfig) { c.ignoreExtra = true }
}

// WithState seeds the schema context's state map before coercion and
// validators run.
func WithState(state map[any]any) LoadOption {
	return func(c *loadConfig) { c.state = state }
}

// DumpOption configures one dump call. Include and Exclude are mutually
// exclusive.
type DumpOption func(*dumpConfig)

type dumpConfig struct {
	include []string
	exclude []string
}

// WithInclude restricts the dump to the named fields.
func WithInclude(fields ...string) DumpOption {
	return func(c *dumpConfig) { c.include = fields }
}

// WithExclude omits the named fields from the dump.
func WithExclude(fields ...string) DumpOption {
	return func(c *dumpConfig) { c.exclude = fields }
}
