package fieldset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/fieldset/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRequired         = "required"
	CodeNilDisallowed    = "nil_disallowed"
	CodeInvalidType      = "invalid_type"
	CodeNonconvertible   = "nonconvertible"
	CodeValidationFailed = "validation_failed"
	CodeUnknownField     = "unknown_field"
	CodeDisallowedField  = "disallowed_field"
)

// FieldError is a single validation failure bound to one field. It is
// immutable once constructed.
type FieldError struct {
	Code    string
	Message string
	Field   string // path segment of the originating field; set by the engine
	Value   any    // offending value when known
	State   any    // opaque blob carried from a user validator
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewFieldError builds a FieldError for a built-in code, resolving the
// message through the current translator.
func NewFieldError(code string, value any, data map[string]string) *FieldError {
	return &FieldError{Code: code, Message: i18n.T(code, data), Value: value}
}

// Fail builds a user-validator failure with a custom message.
func Fail(message string) *FieldError {
	return &FieldError{Code: CodeValidationFailed, Message: message}
}

// FailWithState builds a user-validator failure carrying an opaque state
// blob, retrievable from the reported error.
func FailWithState(message string, state any) *FieldError {
	return &FieldError{Code: CodeValidationFailed, Message: message, State: state}
}

// treeNode is either a leaf error list or a nested sub-tree, never both.
type treeNode struct {
	errs   []*FieldError
	nested *ErrorTree
}

// ErrorTree aggregates every validation failure of one load/update call.
// Field entries keep insertion order; nested schema failures hang off their
// parent field name so the path from root to any leaf is unique.
type ErrorTree struct {
	schema string
	order  []string
	fields map[string]*treeNode
}

// NewErrorTree returns an empty tree for a schema name.
func NewErrorTree(schema string) *ErrorTree {
	return &ErrorTree{schema: schema, fields: map[string]*treeNode{}}
}

// Schema returns the name of the schema type this tree reports on.
func (t *ErrorTree) Schema() string { return t.schema }

// Add appends an error under a field name, stamping the field into the error.
func (t *ErrorTree) Add(field string, errs ...*FieldError) {
	node := t.node(field)
	for _, e := range errs {
		if e == nil {
			continue
		}
		if e.Field == "" {
			e = &FieldError{Code: e.Code, Message: e.Message, Field: field, Value: e.Value, State: e.State}
		}
		node.errs = append(node.errs, e)
	}
}

// AddNested attaches a sub-tree under a field name, preserving the path of a
// composed schema's failures.
func (t *ErrorTree) AddNested(field string, nested *ErrorTree) {
	if nested == nil || nested.Empty() {
		return
	}
	t.node(field).nested = nested
}

func (t *ErrorTree) node(field string) *treeNode {
	n, ok := t.fields[field]
	if !ok {
		n = &treeNode{}
		t.fields[field] = n
		t.order = append(t.order, field)
	}
	return n
}

// Empty reports whether the tree holds no errors at any depth.
func (t *ErrorTree) Empty() bool { return t == nil || len(t.order) == 0 }

// Len counts every leaf error across the whole tree.
func (t *ErrorTree) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, f := range t.order {
		node := t.fields[f]
		n += len(node.errs)
		if node.nested != nil {
			n += node.nested.Len()
		}
	}
	return n
}

// FieldNames returns the field names with errors, in insertion order.
func (t *ErrorTree) FieldNames() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Field returns the leaf errors recorded directly under a field name.
func (t *ErrorTree) Field(name string) []*FieldError {
	if n, ok := t.fields[name]; ok {
		out := make([]*FieldError, len(n.errs))
		copy(out, n.errs)
		return out
	}
	return nil
}

// Nested returns the sub-tree attached under a field name, if any.
func (t *ErrorTree) Nested(name string) *ErrorTree {
	if n, ok := t.fields[name]; ok {
		return n.nested
	}
	return nil
}

// Raw flattens the tree into its reportable form: field name mapped to a
// list of message strings, or to a nested raw mapping for composed schemas.
func (t *ErrorTree) Raw() map[string]any {
	out := make(map[string]any, len(t.order))
	for _, f := range t.order {
		node := t.fields[f]
		if node.nested != nil {
			out[f] = node.nested.Raw()
			continue
		}
		msgs := make([]string, 0, len(node.errs))
		for _, e := range node.errs {
			msgs = append(msgs, e.Message)
		}
		out[f] = msgs
	}
	return out
}

// Error summarizes the first few failures, e.g. "required at /name".
func (t *ErrorTree) Error() string {
	flat := t.flatten(nil)
	if len(flat) == 0 {
		return ""
	}
	const maxShown = 3
	lim := len(flat)
	if lim > maxShown {
		lim = maxShown
	}
	b := &strings.Builder{}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(flat[i])
	}
	if len(flat) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(flat))
	}
	return b.String()
}

func (t *ErrorTree) flatten(prefix []string) []string {
	var out []string
	for _, f := range t.order {
		node := t.fields[f]
		segs := make([]string, 0, len(prefix)+1)
		segs = append(segs, prefix...)
		segs = append(segs, f)
		path := "/" + strings.Join(segs, "/")
		for _, e := range node.errs {
			out = append(out, e.Code+" at "+path)
		}
		if node.nested != nil {
			out = append(out, node.nested.flatten(segs)...)
		}
	}
	return out
}

// AsErrorTree extracts an ErrorTree from an error using errors.As internally.
func AsErrorTree(err error) (*ErrorTree, bool) {
	if err == nil {
		return nil, false
	}
	var t *ErrorTree
	if errors.As(err, &t) {
		return t, true
	}
	return nil, false
}

// AsFieldError extracts a single FieldError from an error chain.
func AsFieldError(err error) (*FieldError, bool) {
	if err == nil {
		return nil, false
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// FrozenError signals misuse of a read-only contract: an assignment to a
// frozen field or a frozen schema instance. It is raised immediately and
// never aggregated into an ErrorTree.
type FrozenError struct {
	Schema string
	Field  string // empty when the whole schema is frozen
}

func (e *FrozenError) Error() string {
	if e.Field == "" {
		return "fieldset: schema " + e.Schema + " is frozen"
	}
	return "fieldset: field " + e.Schema + "." + e.Field + " is frozen"
}

// NotSetError is returned when reading an optional, defaultless field that
// was never assigned. It signals programmer error, not invalid input data.
type NotSetError struct {
	Schema string
	Field  string
}

func (e *NotSetError) Error() string {
	return "fieldset: no value available for field " + e.Schema + "." + e.Field
}
