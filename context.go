package fieldset

// SchemaContext is the per-instance side channel used to pass information
// between coercion steps and validators. Each Instance owns exactly one
// context for its whole lifetime. It is not safe for concurrent mutation.
type SchemaContext struct {
	state    map[any]any
	partial  bool
	instance *Instance
}

func newSchemaContext(seed map[any]any) *SchemaContext {
	state := make(map[any]any, len(seed))
	for k, v := range seed {
		state[k] = v
	}
	return &SchemaContext{state: state}
}

// Get reads a state entry.
func (c *SchemaContext) Get(key any) (any, bool) {
	v, ok := c.state[key]
	return v, ok
}

// Set writes a state entry.
func (c *SchemaContext) Set(key, value any) { c.state[key] = value }

// IsPartial reports whether the owning instance is a restricted partial view.
func (c *SchemaContext) IsPartial() bool { return c.partial }

// Instance returns the owning schema instance. It is nil while the instance
// is still under construction.
func (c *SchemaContext) Instance() *Instance { return c.instance }

// LoadContext is handed to coercion transforms and validators during a load,
// update or single-field assignment.
type LoadContext struct {
	Field   *FieldDescriptor
	Context *SchemaContext
	Raw     any // the raw value before coercion
}

// DumpContext is handed to field dump transforms.
type DumpContext struct {
	Field   *FieldDescriptor
	Context *SchemaContext
}
