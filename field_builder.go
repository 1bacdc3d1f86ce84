package fieldset

import (
	"fmt"

	"github.com/reoring/fieldset/typeexpr"
)

// FieldSpec accumulates the declaration of one field. Specs are consumed by
// Builder.Field and frozen into immutable FieldDescriptors at Build time.
type FieldSpec struct {
	d   FieldDescriptor
	err error
}

func newSpec(kind FieldKind) *FieldSpec {
	return &FieldSpec{d: FieldDescriptor{
		kind:       kind,
		required:   true,
		strictLoad: true,
		strictSet:  true,
		chain:      &ValidatorChain{},
	}}
}

// String declares a string field. Lenient mode stringifies any value.
func String() *FieldSpec { return newSpec(KindString) }

// Int declares an integer field.
func Int() *FieldSpec { return newSpec(KindInt) }

// Float declares a float field.
func Float() *FieldSpec { return newSpec(KindFloat) }

// Bool declares a boolean field. Lenient mode converts via truthy/falsy
// token sets.
func Bool() *FieldSpec { return newSpec(KindBool) }

// Any declares a field that stores its raw value unchecked.
func Any() *FieldSpec { return newSpec(KindAny) }

// Typed declares a field whose shape is checked by a type expression and
// stored as-is.
func Typed(expr *typeexpr.Expr) *FieldSpec {
	s := newSpec(KindTyped)
	if expr == nil {
		s.err = fmt.Errorf("fieldset: Typed requires a type expression")
		return s
	}
	s.d.expr = expr
	return s
}

// Object declares a nested-schema field.
func Object(st *SchemaType) *FieldSpec {
	s := newSpec(KindObject)
	if st == nil {
		s.err = fmt.Errorf("fieldset: Object requires a schema type")
		return s
	}
	s.d.nested = st
	return s
}

// PartialInclude declares a nested-schema field restricted to the named
// fields of the nested schema.
func PartialInclude(st *SchemaType, fields ...string) *FieldSpec {
	s := newSpec(KindPartial)
	if st == nil || len(fields) == 0 {
		s.err = fmt.Errorf("fieldset: PartialInclude requires a schema type and at least one field")
		return s
	}
	s.d.nested = st
	s.d.allowList = fields
	return s
}

// PartialExclude declares a nested-schema field restricted to everything but
// the named fields of the nested schema.
func PartialExclude(st *SchemaType, fields ...string) *FieldSpec {
	s := newSpec(KindPartial)
	if st == nil || len(fields) == 0 {
		s.err = fmt.Errorf("fieldset: PartialExclude requires a schema type and at least one field")
		return s
	}
	s.d.nested = st
	s.d.denyList = fields
	return s
}

// Custom declares a field with user-supplied load and dump transforms. dump
// may be nil for identity.
func Custom(load LoadFunc, dump DumpFunc) *FieldSpec {
	s := newSpec(KindCustom)
	if load == nil {
		s.err = fmt.Errorf("fieldset: Custom requires a load transform")
		return s
	}
	s.d.loadFunc = load
	s.d.dumpFunc = dump
	return s
}

// Optional marks the field as allowed to be absent from raw data.
func (s *FieldSpec) Optional() *FieldSpec {
	s.d.required = false
	return s
}

// Required marks the field as mandatory (the default).
func (s *FieldSpec) Required() *FieldSpec {
	s.d.required = true
	return s
}

// Nullable allows nil as a stored value; coercion and validators are skipped
// for nil.
func (s *FieldSpec) Nullable() *FieldSpec {
	s.d.nullable = true
	return s
}

// Strict sets strictness for both raw-data loads and assignments.
func (s *FieldSpec) Strict(strict bool) *FieldSpec {
	s.d.strictLoad = strict
	s.d.strictSet = strict
	return s
}

// StrictLoad sets strictness for raw-data loads only.
func (s *FieldSpec) StrictLoad(strict bool) *FieldSpec {
	s.d.strictLoad = strict
	return s
}

// StrictSet sets strictness for direct assignments only.
func (s *FieldSpec) StrictSet(strict bool) *FieldSpec {
	s.d.strictSet = strict
	return s
}

// Default sets a static default; the field becomes optional.
func (s *FieldSpec) Default(v any) *FieldSpec {
	s.d.hasDefault = true
	s.d.defaultValue = v
	s.d.defaultFunc = nil
	return s
}

// DefaultFunc sets a producer default invoked with the descriptor and the
// schema context; the field becomes optional.
func (s *FieldSpec) DefaultFunc(fn DefaultFunc) *FieldSpec {
	s.d.hasDefault = true
	s.d.defaultFunc = fn
	return s
}

// LoadKey maps the field to a different raw-data key.
func (s *FieldSpec) LoadKey(key string) *FieldSpec {
	s.d.loadKey = key
	return s
}

// DumpKey maps the field to a different dump key.
func (s *FieldSpec) DumpKey(key string) *FieldSpec {
	s.d.dumpKey = key
	return s
}

// Frozen rejects any assignment after initial construction.
func (s *FieldSpec) Frozen() *FieldSpec {
	s.d.frozen = true
	return s
}

// Extras attaches opaque user metadata to the descriptor.
func (s *FieldSpec) Extras(extras map[string]any) *FieldSpec {
	s.d.extras = extras
	return s
}

// Validate registers a serialized-mode validator run against the coerced
// value.
func (s *FieldSpec) Validate(fn func(value any, ctx *LoadContext) error) *FieldSpec {
	s.d.chain.Add(ValidatorFunc(fn), false)
	return s
}

// ValidateRaw registers a raw-mode validator run against the value before
// coercion.
func (s *FieldSpec) ValidateRaw(fn func(value any, ctx *LoadContext) error) *FieldSpec {
	s.d.chain.Add(ValidatorFunc(fn), true)
	return s
}

// ValidateBool registers a boolean-style validator; a false return fails
// with the default message.
func (s *FieldSpec) ValidateBool(fn func(value any, ctx *LoadContext) bool) *FieldSpec {
	s.d.chain.Add(BoolFunc(fn), false)
	return s
}

// ValidateWith registers a Validator implementation, raw or serialized.
func (s *FieldSpec) ValidateWith(v Validator, raw bool) *FieldSpec {
	s.d.chain.Add(v, raw)
	return s
}

// TrueTokens overrides the truthy token set of a lenient Bool field.
func (s *FieldSpec) TrueTokens(tokens ...string) *FieldSpec {
	s.d.trueTokens = tokens
	return s
}

// FalseTokens overrides the falsy token set of a lenient Bool field.
func (s *FieldSpec) FalseTokens(tokens ...string) *FieldSpec {
	s.d.falseTokens = tokens
	return s
}

// build freezes the spec into a descriptor bound to a field name.
func (s *FieldSpec) build(name string) (*FieldDescriptor, error) {
	if s.err != nil {
		return nil, s.err
	}
	d := s.d
	d.name = name
	if d.loadKey == "" {
		d.loadKey = name
	}
	if d.dumpKey == "" {
		d.dumpKey = name
	}
	if d.hasDefault {
		d.required = false
	}
	d.chain = s.d.chain.clone()
	return &d, nil
}
