package fieldset

import "fmt"

// Instance is one validated schema value. Every entry in its store has
// passed coercion and the field's full validator chain. Instances are not
// safe for concurrent mutation; callers needing that must serialize
// externally.
type Instance struct {
	st          *SchemaType
	values      map[string]any
	defaulted   map[string]struct{}
	ctx         *SchemaContext
	allowed     map[string]struct{} // non-nil marks a restricted partial view
	initialized bool
}

// Schema returns the instance's schema type.
func (in *Instance) Schema() *SchemaType { return in.st }

// Context returns the instance's schema context.
func (in *Instance) Context() *SchemaContext { return in.ctx }

// IsPartial reports whether the instance is a restricted partial view.
func (in *Instance) IsPartial() bool { return in.allowed != nil }

// Initialized reports whether construction fully succeeded.
func (in *Instance) Initialized() bool { return in.initialized }

// restrict converts the instance into a partial view over the allowed set.
func (in *Instance) restrict(allowed map[string]struct{}) {
	in.allowed = allowed
	in.ctx.partial = true
}

func (in *Instance) fieldFor(name string) (*FieldDescriptor, error) {
	d, ok := in.st.byName[name]
	if !ok {
		return nil, fmt.Errorf("fieldset: schema %s has no field %q", in.st.name, name)
	}
	return d, nil
}

func (in *Instance) reachable(name string) bool {
	if in.allowed == nil {
		return true
	}
	_, ok := in.allowed[name]
	return ok
}

// Get reads a stored value. Reading an optional, defaultless field that was
// never assigned returns a NotSetError; reading outside a partial view's
// allow-list returns a disallowed-field error.
func (in *Instance) Get(name string) (any, error) {
	d, err := in.fieldFor(name)
	if err != nil {
		return nil, err
	}
	if !in.reachable(name) {
		return nil, NewFieldError(CodeDisallowedField, nil, nil)
	}
	v, ok := in.values[d.name]
	if !ok {
		return nil, &NotSetError{Schema: in.st.name, Field: name}
	}
	return v, nil
}

// GetOr reads a stored value, falling back when the field is unset or
// unreachable. An undeclared field name still panics: that is programmer
// error, not data.
func (in *Instance) GetOr(name string, fallback any) any {
	if _, err := in.fieldFor(name); err != nil {
		panic(err)
	}
	if !in.reachable(name) {
		return fallback
	}
	if v, ok := in.values[name]; ok {
		return v
	}
	return fallback
}

// MustGet is Get that panics on any error.
func (in *Instance) MustGet(name string) any {
	v, err := in.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Set assigns a single field, running the full load pipeline for it. On
// failure the previous value is untouched. Assigning to a frozen field or a
// frozen schema returns a FrozenError immediately.
func (in *Instance) Set(name string, value any) error {
	d, err := in.fieldFor(name)
	if err != nil {
		return err
	}
	if in.st.frozen {
		return &FrozenError{Schema: in.st.name}
	}
	if d.frozen && in.initialized {
		return &FrozenError{Schema: in.st.name, Field: name}
	}

	tree := NewErrorTree(in.st.name)
	if !in.reachable(name) {
		tree.Add(name, NewFieldError(CodeDisallowedField, value, nil))
		return failValidation(tree)
	}

	v, errs, nested := d.resolve(value, in.ctx, true)
	switch {
	case nested != nil:
		tree.AddNested(name, nested)
	case len(errs) > 0:
		tree.Add(name, errs...)
	}
	if !tree.Empty() {
		return failValidation(tree)
	}
	in.values[name] = v
	delete(in.defaulted, name)
	return nil
}

// Update applies a multi-field raw-data update transactionally: on any
// error the touched fields are restored to their pre-call values and the
// aggregated ErrorTree is returned; on success all touched fields commit
// together.
func (in *Instance) Update(data map[string]any, opts ...LoadOption) error {
	var cfg loadConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if in.st.frozen {
		return &FrozenError{Schema: in.st.name}
	}
	// frozen fields reject updates before anything is applied
	for _, d := range in.st.fields {
		if _, touched := data[d.loadKey]; touched && d.frozen {
			return &FrozenError{Schema: in.st.name, Field: d.name}
		}
	}

	type snap struct {
		value     any
		wasSet    bool
		defaulted bool
	}
	snapshot := map[string]snap{}

	tree := NewErrorTree(in.st.name)
	for _, d := range in.st.fields {
		rawVal, touched := data[d.loadKey]
		if !touched {
			continue
		}
		if !in.reachable(d.name) {
			tree.Add(d.name, NewFieldError(CodeDisallowedField, rawVal, nil))
			continue
		}
		old, wasSet := in.values[d.name]
		_, wasDefault := in.defaulted[d.name]
		snapshot[d.name] = snap{value: old, wasSet: wasSet, defaulted: wasDefault}

		v, errs, nested := d.resolve(rawVal, in.ctx, false)
		switch {
		case nested != nil:
			tree.AddNested(d.name, nested)
		case len(errs) > 0:
			tree.Add(d.name, errs...)
		default:
			in.values[d.name] = v
			delete(in.defaulted, d.name)
		}
	}

	in.st.collectStray(data, cfg, in.allowed, tree, false)

	if !tree.Empty() {
		for name, s := range snapshot {
			if s.wasSet {
				in.values[name] = s.value
			} else {
				delete(in.values, name)
			}
			if s.defaulted {
				in.defaulted[name] = struct{}{}
			} else {
				delete(in.defaulted, name)
			}
		}
		return failValidation(tree)
	}
	return nil
}

// Dump serializes the instance to a raw mapping keyed by dump-keys. Unset
// optional fields are omitted. Include and exclude are mutually exclusive.
func (in *Instance) Dump(opts ...DumpOption) (map[string]any, error) {
	var cfg dumpConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.include) > 0 && len(cfg.exclude) > 0 {
		return nil, fmt.Errorf("fieldset: include and exclude are mutually exclusive")
	}
	include := map[string]struct{}{}
	for _, f := range cfg.include {
		include[f] = struct{}{}
	}
	exclude := map[string]struct{}{}
	for _, f := range cfg.exclude {
		exclude[f] = struct{}{}
	}

	out := make(map[string]any, len(in.values))
	for _, d := range in.st.fields {
		if !in.reachable(d.name) {
			continue
		}
		if len(include) > 0 {
			if _, ok := include[d.name]; !ok {
				continue
			}
		}
		if _, ok := exclude[d.name]; ok {
			continue
		}
		v, set := in.values[d.name]
		if !set {
			continue
		}
		dumped, err := d.dump(v, &DumpContext{Field: d, Context: in.ctx})
		if err != nil {
			return nil, fmt.Errorf("fieldset: dump %s.%s: %w", in.st.name, d.name, err)
		}
		out[d.dumpKey] = dumped
	}
	return out, nil
}

// valueMap exposes the store keyed by field names, with nested instances
// flattened recursively. Used by Bind.
func (in *Instance) valueMap() map[string]any {
	out := make(map[string]any, len(in.values))
	for _, d := range in.st.fields {
		if !in.reachable(d.name) {
			continue
		}
		v, set := in.values[d.name]
		if !set {
			continue
		}
		if nested, ok := v.(*Instance); ok {
			out[d.name] = nested.valueMap()
			continue
		}
		out[d.name] = v
	}
	return out
}
