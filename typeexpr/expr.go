// Package typeexpr provides a declarative, serializable description of a
// structural type (unions, literal sets, sequences, sets, tuples, mappings
// and records with required/optional keys) together with a validator that
// checks arbitrary decoded values against it.
//
// Expressions are built once by the builder functions below and are never
// mutated afterwards, so a single expression may be shared by any number of
// concurrent validations.
package typeexpr

import "strings"

// Kind tags the variant of an expression node.
type Kind int

const (
	KindAtom Kind = iota
	KindAny
	KindUnion
	KindLiteral
	KindSequence
	KindSet
	KindTuple
	KindMapping
	KindRecord
	KindUnsupported
)

// Atom enumerates the primitive shapes.
type Atom int

const (
	AtomString Atom = iota
	AtomInt
	AtomFloat
	AtomBool
)

// Expr is one node of a type expression tree. Exactly the fields relevant to
// Kind are populated; the rest stay zero.
type Expr struct {
	Kind     Kind
	Atom     Atom
	Variants []*Expr       // KindUnion
	Literals []any         // KindLiteral
	Elem     *Expr         // KindSequence, KindSet
	Items    []*Expr       // KindTuple
	Key      *Expr         // KindMapping
	Value    *Expr         // KindMapping
	Fields   []RecordField // KindRecord
	Name     string        // KindUnsupported: opaque label for the advisory
}

// RecordField declares one key of a record expression.
type RecordField struct {
	Key      string
	Type     *Expr
	Required bool
}

// String returns the string atom.
func String() *Expr { return &Expr{Kind: KindAtom, Atom: AtomString} }

// Int returns the integer atom.
func Int() *Expr { return &Expr{Kind: KindAtom, Atom: AtomInt} }

// Float returns the float atom.
func Float() *Expr { return &Expr{Kind: KindAtom, Atom: AtomFloat} }

// Bool returns the boolean atom.
func Bool() *Expr { return &Expr{Kind: KindAtom, Atom: AtomBool} }

// Any matches every value.
func Any() *Expr { return &Expr{Kind: KindAny} }

// Union matches a value satisfying any variant, tried in declared order.
func Union(variants ...*Expr) *Expr {
	return &Expr{Kind: KindUnion, Variants: variants}
}

// Optional is shorthand for Union(e, Literal(nil)).
func Optional(e *Expr) *Expr { return Union(e, Literal(nil)) }

// Literal matches a value equal to one of the given literals.
func Literal(values ...any) *Expr {
	return &Expr{Kind: KindLiteral, Literals: values}
}

// Sequence matches an ordered collection whose elements all satisfy elem.
func Sequence(elem *Expr) *Expr { return &Expr{Kind: KindSequence, Elem: elem} }

// Set matches an unordered collection whose elements all satisfy elem.
func Set(elem *Expr) *Expr { return &Expr{Kind: KindSet, Elem: elem} }

// Tuple matches a fixed-length ordered collection checked positionally.
func Tuple(items ...*Expr) *Expr { return &Expr{Kind: KindTuple, Items: items} }

// Mapping matches a key/value mapping with every key and value validated.
func Mapping(key, value *Expr) *Expr {
	return &Expr{Kind: KindMapping, Key: key, Value: value}
}

// Record matches a mapping with a declared set of keys. Undeclared keys are
// ignored; this deliberately differs from the schema engine's unknown-field
// policy, which applies only to declared schema fields.
func Record(fields ...RecordField) *Expr {
	return &Expr{Kind: KindRecord, Fields: fields}
}

// Key declares a required record field.
func Key(name string, tp *Expr) RecordField {
	return RecordField{Key: name, Type: tp, Required: true}
}

// OptKey declares an optional record field.
func OptKey(name string, tp *Expr) RecordField {
	return RecordField{Key: name, Type: tp, Required: false}
}

// Unsupported marks a part of a declared type that cannot be checked. Values
// pass through unvalidated; a suppressible advisory is emitted once per name.
func Unsupported(name string) *Expr {
	return &Expr{Kind: KindUnsupported, Name: name}
}

// Label renders a short human-readable name for the expression, used in
// mismatch messages.
func (e *Expr) Label() string {
	switch e.Kind {
	case KindAtom:
		switch e.Atom {
		case AtomString:
			return "string"
		case AtomInt:
			return "integer"
		case AtomFloat:
			return "float"
		case AtomBool:
			return "boolean"
		}
	case KindAny:
		return "any"
	case KindUnion:
		parts := make([]string, 0, len(e.Variants))
		for _, v := range e.Variants {
			parts = append(parts, v.Label())
		}
		return strings.Join(parts, " | ")
	case KindLiteral:
		return "literal"
	case KindSequence:
		return "list[" + e.Elem.Label() + "]"
	case KindSet:
		return "set[" + e.Elem.Label() + "]"
	case KindTuple:
		parts := make([]string, 0, len(e.Items))
		for _, it := range e.Items {
			parts = append(parts, it.Label())
		}
		return "tuple[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		return "map[" + e.Key.Label() + ", " + e.Value.Label() + "]"
	case KindRecord:
		return "record"
	case KindUnsupported:
		if e.Name != "" {
			return e.Name
		}
		return "unsupported"
	}
	return "unknown"
}
