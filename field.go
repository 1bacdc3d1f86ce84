package fieldset

import (
	"fmt"

	"github.com/reoring/fieldset/internal/coerce"
	"github.com/reoring/fieldset/typeexpr"
)

// FieldKind enumerates the built-in coercion behaviors.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindFloat
	KindBool
	KindAny
	KindTyped   // shape-checked by a type expression, stored as-is
	KindObject  // nested schema
	KindPartial // nested schema restricted to a subset of fields
	KindCustom  // user-supplied load/dump transforms
)

// LoadFunc is the field-specific deserialization transform of a custom field.
type LoadFunc func(value any, ctx *LoadContext) (any, error)

// DumpFunc is the field-specific serialization transform of a custom field.
type DumpFunc func(value any, ctx *DumpContext) (any, error)

// DefaultFunc produces a default value for an absent field.
type DefaultFunc func(d *FieldDescriptor, c *SchemaContext) any

// FieldDescriptor declares one schema attribute. Descriptors are shared by
// every instance of a schema type and are immutable once the owning type is
// built; Copy produces an independent descriptor with overrides applied.
type FieldDescriptor struct {
	name         string
	loadKey      string
	dumpKey      string
	required     bool
	hasDefault   bool
	defaultValue any
	defaultFunc  DefaultFunc
	nullable     bool
	strictLoad   bool
	strictSet    bool
	frozen       bool
	extras       map[string]any
	chain        *ValidatorChain

	kind        FieldKind
	expr        *typeexpr.Expr
	nested      *SchemaType
	allowList   []string // KindPartial include
	denyList    []string // KindPartial exclude
	trueTokens  []string // KindBool lenient conversion
	falseTokens []string
	loadFunc    LoadFunc
	dumpFunc    DumpFunc
}

// Name returns the field name within its schema.
func (d *FieldDescriptor) Name() string { return d.name }

// LoadKey returns the raw-data key this field is read from.
func (d *FieldDescriptor) LoadKey() string { return d.loadKey }

// DumpKey returns the key this field is written under on dump.
func (d *FieldDescriptor) DumpKey() string { return d.dumpKey }

// Required reports whether the field must be present in raw data.
func (d *FieldDescriptor) Required() bool { return d.required }

// Nullable reports whether nil is an acceptable stored value.
func (d *FieldDescriptor) Nullable() bool { return d.nullable }

// Strict reports whether both load and set use strict coercion.
func (d *FieldDescriptor) Strict() bool { return d.strictLoad && d.strictSet }

// Frozen reports whether assignment after construction is rejected.
func (d *FieldDescriptor) Frozen() bool { return d.frozen }

// HasDefault reports whether an absent value resolves to a default.
func (d *FieldDescriptor) HasDefault() bool { return d.hasDefault }

// Kind returns the field's coercion kind.
func (d *FieldDescriptor) Kind() FieldKind { return d.kind }

// Extras returns the opaque user metadata attached at declaration time.
func (d *FieldDescriptor) Extras() map[string]any { return d.extras }

// Validators returns the field's validator chain. Mutating the chain after
// the schema type is built is a misuse of the shared-descriptor contract.
func (d *FieldDescriptor) Validators() *ValidatorChain { return d.chain }

// TypeExpression returns the structural type expression of a Typed field.
func (d *FieldDescriptor) TypeExpression() *typeexpr.Expr { return d.expr }

// resolveDefault produces the configured default for an absent field.
func (d *FieldDescriptor) resolveDefault(sctx *SchemaContext) any {
	if d.defaultFunc != nil {
		return d.defaultFunc(d, sctx)
	}
	return d.defaultValue
}

// CopyOption overrides one descriptor attribute during Copy.
type CopyOption func(*FieldDescriptor)

// CopyRequired overrides the required flag.
func CopyRequired(required bool) CopyOption {
	return func(d *FieldDescriptor) { d.required = required }
}

// CopyNullable overrides the nullable flag.
func CopyNullable(nullable bool) CopyOption {
	return func(d *FieldDescriptor) { d.nullable = nullable }
}

// CopyDefault overrides the static default value.
func CopyDefault(v any) CopyOption {
	return func(d *FieldDescriptor) {
		d.hasDefault = true
		d.defaultValue = v
		d.defaultFunc = nil
	}
}

// CopyLoadKey overrides the raw-data key.
func CopyLoadKey(key string) CopyOption {
	return func(d *FieldDescriptor) { d.loadKey = key }
}

// CopyDumpKey overrides the dump key.
func CopyDumpKey(key string) CopyOption {
	return func(d *FieldDescriptor) { d.dumpKey = key }
}

// CopyWithoutValidators drops the validator chain from the copy.
func CopyWithoutValidators() CopyOption {
	return func(d *FieldDescriptor) { d.chain = &ValidatorChain{} }
}

// Copy returns an independent descriptor with overrides applied. The
// original is never mutated.
func (d *FieldDescriptor) Copy(opts ...CopyOption) *FieldDescriptor {
	out := *d
	out.chain = d.chain.clone()
	if d.extras != nil {
		out.extras = make(map[string]any, len(d.extras))
		for k, v := range d.extras {
			out.extras[k] = v
		}
	}
	for _, opt := range opts {
		opt(&out)
	}
	// a default always implies optional
	if out.hasDefault {
		out.required = false
	}
	return &out
}

// resolve turns a present raw value into a stored value, or reports every
// failure found. asSet selects the assignment-time strictness. A non-nil
// nested tree is returned instead of leaf errors when a composed schema
// rejected the value.
func (d *FieldDescriptor) resolve(raw any, sctx *SchemaContext, asSet bool) (any, []*FieldError, *ErrorTree) {
	if raw == nil {
		if d.nullable {
			return nil, nil, nil
		}
		return nil, []*FieldError{NewFieldError(CodeNilDisallowed, nil, nil)}, nil
	}

	lctx := &LoadContext{Field: d, Context: sctx, Raw: raw}
	strict := d.strictLoad
	if asSet {
		strict = d.strictSet
	}

	coerced, typeErrs, nested := d.typeResolve(raw, lctx, strict)
	if len(typeErrs) > 0 || nested != nil {
		// a type-resolution failure skips the validator chain entirely
		return nil, typeErrs, nested
	}

	errs := d.chain.run(raw, lctx, true)
	errs = append(errs, d.chain.run(coerced, lctx, false)...)
	if len(errs) > 0 {
		return nil, errs, nil
	}
	return coerced, nil, nil
}

// typeResolve performs the shape check and coercion for the field's kind.
func (d *FieldDescriptor) typeResolve(raw any, lctx *LoadContext, strict bool) (any, []*FieldError, *ErrorTree) {
	switch d.kind {
	case KindString:
		v, fail := coerce.String(raw, strict)
		if fail != coerce.OK {
			return nil, []*FieldError{coerceError(fail, raw, "string")}, nil
		}
		return v, nil, nil
	case KindInt:
		v, fail := coerce.Int(raw, strict)
		if fail != coerce.OK {
			return nil, []*FieldError{coerceError(fail, raw, "integer")}, nil
		}
		return v, nil, nil
	case KindFloat:
		v, fail := coerce.Float(raw, strict)
		if fail != coerce.OK {
			return nil, []*FieldError{coerceError(fail, raw, "float")}, nil
		}
		return v, nil, nil
	case KindBool:
		v, fail := coerce.Bool(raw, strict, d.trueTokens, d.falseTokens)
		if fail != coerce.OK {
			return nil, []*FieldError{coerceError(fail, raw, "boolean")}, nil
		}
		return v, nil, nil
	case KindAny:
		return raw, nil, nil
	case KindTyped:
		if errs := typedErrors(raw, d.expr); len(errs) > 0 {
			return nil, errs, nil
		}
		return raw, nil, nil
	case KindObject:
		return d.resolveNested(raw, nil)
	case KindPartial:
		return d.resolveNested(raw, d.partialFields())
	case KindCustom:
		v, err := d.loadFunc(raw, lctx)
		if err != nil {
			return nil, []*FieldError{asFieldError(err, raw)}, nil
		}
		return v, nil, nil
	}
	return nil, []*FieldError{NewFieldError(CodeInvalidType, raw, nil)}, nil
}

// resolveNested loads a composed schema from a raw mapping or accepts an
// already-validated instance of the right type. A non-nil allowed set makes
// the result a restricted partial view.
func (d *FieldDescriptor) resolveNested(raw any, allowed map[string]struct{}) (any, []*FieldError, *ErrorTree) {
	switch v := raw.(type) {
	case map[string]any:
		inst, err := d.nested.load(v, loadConfig{}, allowed)
		if err != nil {
			if tree, ok := AsErrorTree(err); ok {
				return nil, nil, tree
			}
			return nil, []*FieldError{asFieldError(err, raw)}, nil
		}
		return inst, nil, nil
	case *Instance:
		if v.st != d.nested {
			return nil, []*FieldError{NewFieldError(CodeInvalidType, raw, map[string]string{"type": d.nested.name})}, nil
		}
		if allowed != nil {
			v.restrict(allowed)
		}
		return v, nil, nil
	}
	return nil, []*FieldError{NewFieldError(CodeInvalidType, raw, map[string]string{"type": d.nested.name})}, nil
}

// partialFields resolves the allow-list of a Partial field from its
// include/exclude declaration against the nested schema's fields.
func (d *FieldDescriptor) partialFields() map[string]struct{} {
	out := map[string]struct{}{}
	if len(d.denyList) > 0 {
		deny := map[string]struct{}{}
		for _, f := range d.denyList {
			deny[f] = struct{}{}
		}
		for _, fd := range d.nested.fields {
			if _, banned := deny[fd.name]; !banned {
				out[fd.name] = struct{}{}
			}
		}
		return out
	}
	for _, f := range d.allowList {
		out[f] = struct{}{}
	}
	return out
}

// dump runs the field-specific serialization transform. It never validates.
func (d *FieldDescriptor) dump(value any, dctx *DumpContext) (any, error) {
	switch d.kind {
	case KindObject, KindPartial:
		if value == nil {
			return nil, nil
		}
		inst, ok := value.(*Instance)
		if !ok {
			return nil, fmt.Errorf("fieldset: field %s holds %T, expected a schema instance", d.name, value)
		}
		return inst.Dump()
	case KindCustom:
		if d.dumpFunc != nil {
			return d.dumpFunc(value, dctx)
		}
	}
	return value, nil
}

func coerceError(fail coerce.Failure, value any, typeName string) *FieldError {
	data := map[string]string{"type": typeName}
	if fail == coerce.WrongType {
		return NewFieldError(CodeInvalidType, value, data)
	}
	return NewFieldError(CodeNonconvertible, value, data)
}

// typedErrors converts type-expression mismatches into field errors, keeping
// the sub-path in the message when the failure is below the field root.
func typedErrors(raw any, expr *typeexpr.Expr) []*FieldError {
	mismatches := typeexpr.Validate(raw, expr)
	if len(mismatches) == 0 {
		return nil
	}
	out := make([]*FieldError, 0, len(mismatches))
	for _, m := range mismatches {
		msg := m.Message
		if p := m.PathString(); p != "/" {
			msg = p + ": " + msg
		}
		out = append(out, &FieldError{Code: CodeInvalidType, Message: msg, Value: raw})
	}
	return out
}
