package fieldset

import (
	"fmt"
	"sort"
)

// PreprocessFunc runs before per-field validation with the unvalidated raw
// mapping and may return a modified mapping. A failure propagates as a
// generic error, not a validation tree.
type PreprocessFunc func(raw map[string]any, ctx *SchemaContext) (map[string]any, error)

// PostLoadFunc runs after a fully successful construction.
type PostLoadFunc func(*Instance) error

// SchemaType is the immutable, shared declaration of a schema: its field
// descriptors in declaration order plus type-level policy. Build once, share
// across any number of instances and goroutines.
type SchemaType struct {
	name       string
	fields     []*FieldDescriptor
	byName     map[string]*FieldDescriptor
	byLoadKey  map[string]*FieldDescriptor
	unknown    UnknownPolicy
	frozen     bool
	preprocess PreprocessFunc
	postLoad   PostLoadFunc
}

// Name returns the schema type's name.
func (st *SchemaType) Name() string { return st.name }

// Fields returns the descriptors in declaration order.
func (st *SchemaType) Fields() []*FieldDescriptor {
	out := make([]*FieldDescriptor, len(st.fields))
	copy(out, st.fields)
	return out
}

// Field looks a descriptor up by field name.
func (st *SchemaType) Field(name string) (*FieldDescriptor, bool) {
	d, ok := st.byName[name]
	return d, ok
}

// Builder assembles a SchemaType from explicit field declarations. Fields
// keep declaration order; Extend prepends a parent type's fields for
// explicit inheritance.
type Builder struct {
	name       string
	order      []string
	specs      map[string]*FieldSpec
	inherited  []*FieldDescriptor
	unknown    UnknownPolicy
	frozen     bool
	preprocess PreprocessFunc
	postLoad   PostLoadFunc
	err        error
}

// New starts a schema type declaration.
func New(name string) *Builder {
	return &Builder{name: name, specs: map[string]*FieldSpec{}}
}

// Extend copies the parent's descriptors (in the parent's order) into this
// type before its own fields. A field redeclared by this type replaces the
// inherited descriptor and moves to the child's declaration position.
func (b *Builder) Extend(parent *SchemaType) *Builder {
	if parent == nil {
		b.fail(fmt.Errorf("fieldset: Extend requires a schema type"))
		return b
	}
	for _, d := range parent.fields {
		b.inherited = append(b.inherited, d.Copy())
	}
	return b
}

// Field declares a field under the given name.
func (b *Builder) Field(name string, spec *FieldSpec) *Builder {
	if name == "" || spec == nil {
		b.fail(fmt.Errorf("fieldset: Field requires a name and a spec"))
		return b
	}
	if _, dup := b.specs[name]; dup {
		b.fail(fmt.Errorf("fieldset: field %q declared twice on %s", name, b.name))
		return b
	}
	b.specs[name] = spec
	b.order = append(b.order, name)
	return b
}

// Unknown sets the policy for raw-data keys matching no declared load-key.
func (b *Builder) Unknown(policy UnknownPolicy) *Builder {
	b.unknown = policy
	return b
}

// Frozen makes every instance of the type reject updates and assignments
// after construction.
func (b *Builder) Frozen() *Builder {
	b.frozen = true
	return b
}

// Preprocess installs the raw-input hook.
func (b *Builder) Preprocess(fn PreprocessFunc) *Builder {
	b.preprocess = fn
	return b
}

// PostLoad installs the successful-construction hook.
func (b *Builder) PostLoad(fn PostLoadFunc) *Builder {
	b.postLoad = fn
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build freezes the declaration into an immutable SchemaType.
func (b *Builder) Build() (*SchemaType, error) {
	if b.err != nil {
		return nil, b.err
	}
	st := &SchemaType{
		name:       b.name,
		byName:     map[string]*FieldDescriptor{},
		byLoadKey:  map[string]*FieldDescriptor{},
		unknown:    b.unknown,
		frozen:     b.frozen,
		preprocess: b.preprocess,
		postLoad:   b.postLoad,
	}

	redeclared := map[string]struct{}{}
	for _, name := range b.order {
		redeclared[name] = struct{}{}
	}
	for _, d := range b.inherited {
		if _, shadowed := redeclared[d.name]; shadowed {
			continue
		}
		if err := st.attach(d); err != nil {
			return nil, err
		}
	}
	for _, name := range b.order {
		d, err := b.specs[name].build(name)
		if err != nil {
			return nil, err
		}
		if err := st.attach(d); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// MustBuild is Build that panics on declaration errors.
func (b *Builder) MustBuild() *SchemaType {
	st, err := b.Build()
	if err != nil {
		panic(err)
	}
	return st
}

func (st *SchemaType) attach(d *FieldDescriptor) error {
	if _, dup := st.byName[d.name]; dup {
		return fmt.Errorf("fieldset: field %q declared twice on %s", d.name, st.name)
	}
	if prev, dup := st.byLoadKey[d.loadKey]; dup {
		return fmt.Errorf("fieldset: load key %q of %s.%s collides with %s.%s", d.loadKey, st.name, d.name, st.name, prev.name)
	}
	st.fields = append(st.fields, d)
	st.byName[d.name] = d
	st.byLoadKey[d.loadKey] = d
	return nil
}

// Load constructs a validated instance from raw data. On failure no instance
// is produced and the returned error carries the full ErrorTree.
func (st *SchemaType) Load(raw map[string]any, opts ...LoadOption) (*Instance, error) {
	var cfg loadConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return st.load(raw, cfg, nil)
}

// load is the engine shared by Load and nested/partial composition. A
// non-nil allowed set restricts validation and the resulting instance to a
// subset of fields.
func (st *SchemaType) load(raw map[string]any, cfg loadConfig, allowed map[string]struct{}) (*Instance, error) {
	sctx := newSchemaContext(cfg.state)
	if allowed != nil {
		sctx.partial = true
	}

	if st.preprocess != nil {
		processed, err := st.preprocess(raw, sctx)
		if err != nil {
			return nil, fmt.Errorf("fieldset: preprocess %s: %w", st.name, err)
		}
		raw = processed
	}

	inst := &Instance{
		st:        st,
		values:    make(map[string]any, len(st.fields)),
		defaulted: map[string]struct{}{},
		ctx:       sctx,
		allowed:   allowed,
	}
	sctx.instance = inst

	tree := NewErrorTree(st.name)
	for _, d := range st.fields {
		if allowed != nil {
			if _, ok := allowed[d.name]; !ok {
				continue
			}
		}
		rawVal, present := raw[d.loadKey]
		if !present {
			if d.hasDefault {
				inst.values[d.name] = d.resolveDefault(sctx)
				inst.defaulted[d.name] = struct{}{}
			} else if d.required {
				tree.Add(d.name, NewFieldError(CodeRequired, nil, nil))
			}
			// optional and defaultless: the field stays unset
			continue
		}
		v, errs, nested := d.resolve(rawVal, sctx, false)
		switch {
		case nested != nil:
			tree.AddNested(d.name, nested)
		case len(errs) > 0:
			tree.Add(d.name, errs...)
		default:
			inst.values[d.name] = v
		}
	}

	st.collectStray(raw, cfg, allowed, tree, true)

	if !tree.Empty() {
		return nil, failValidation(tree)
	}
	inst.initialized = true
	if st.postLoad != nil {
		if err := st.postLoad(inst); err != nil {
			return nil, fmt.Errorf("fieldset: post-load %s: %w", st.name, err)
		}
	}
	return inst, nil
}

// collectStray reports raw keys matching no declared load-key (unknown-field
// policy) and, when reportDisallowed is set, declared keys outside a partial
// view's allow-list. Keys are visited in sorted order for deterministic
// reports.
func (st *SchemaType) collectStray(raw map[string]any, cfg loadConfig, allowed map[string]struct{}, tree *ErrorTree, reportDisallowed bool) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d, known := st.byLoadKey[k]
		if !known {
			if !cfg.ignoreExtra && st.unknown == UnknownError {
				tree.Add(k, NewFieldError(CodeUnknownField, raw[k], nil))
			}
			continue
		}
		if reportDisallowed && allowed != nil {
			if _, ok := allowed[d.name]; !ok {
				tree.Add(d.name, NewFieldError(CodeDisallowedField, raw[k], nil))
			}
		}
	}
}
