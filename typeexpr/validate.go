package typeexpr

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Mismatch describes one point where a value diverges from the expression.
type Mismatch struct {
	Path    []any // string keys and int indexes from the root
	Message string
}

// PathString renders the mismatch path as a JSON Pointer.
func (m Mismatch) PathString() string {
	if len(m.Path) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range m.Path {
		b.WriteByte('/')
		switch s := seg.(type) {
		case string:
			esc := strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
			b.WriteString(esc)
		case int:
			b.WriteString(strconv.Itoa(s))
		default:
			fmt.Fprintf(b, "%v", s)
		}
	}
	return b.String()
}

// Validate checks v against e and returns every mismatch found. A nil or
// empty result means the value conforms. Validation never stops at the first
// failure; the whole tree is walked.
func Validate(v any, e *Expr) []Mismatch {
	var out []Mismatch
	walk(v, e, nil, &out)
	return out
}

func walk(v any, e *Expr, path []any, out *[]Mismatch) {
	switch e.Kind {
	case KindAny:
		// always passes
	case KindUnsupported:
		warnUnsupported(e.Name)
	case KindAtom:
		if !atomMatches(v, e.Atom) {
			add(out, path, "Must be of type "+e.Label()+".")
		}
	case KindUnion:
		walkUnion(v, e, path, out)
	case KindLiteral:
		for _, lit := range e.Literals {
			if literalEqual(v, lit) {
				return
			}
		}
		add(out, path, "Value must be one of: "+renderLiterals(e.Literals)+".")
	case KindSequence:
		walkSequence(v, e, path, out)
	case KindSet:
		walkSet(v, e, path, out)
	case KindTuple:
		walkTuple(v, e, path, out)
	case KindMapping:
		walkMapping(v, e, path, out)
	case KindRecord:
		walkRecord(v, e, path, out)
	}
}

func add(out *[]Mismatch, path []any, msg string) {
	p := make([]any, len(path))
	copy(p, path)
	*out = append(*out, Mismatch{Path: p, Message: msg})
}

// walkUnion succeeds when any variant matches in declared order; otherwise it
// reports a single mismatch naming every variant label.
func walkUnion(v any, e *Expr, path []any, out *[]Mismatch) {
	for _, variant := range e.Variants {
		var scratch []Mismatch
		walk(v, variant, nil, &scratch)
		if len(scratch) == 0 {
			return
		}
	}
	labels := make([]string, 0, len(e.Variants))
	for _, variant := range e.Variants {
		labels = append(labels, variant.Label())
	}
	add(out, path, fmt.Sprintf("Type of %v (%T) is not compatible with types (%s).", v, v, strings.Join(labels, ", ")))
}

func walkSequence(v any, e *Expr, path []any, out *[]Mismatch) {
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		add(out, path, "Must be a valid list.")
		return
	}
	for i := 0; i < rv.Len(); i++ {
		walk(rv.Index(i).Interface(), e.Elem, append(path, i), out)
	}
}

// walkSet accepts either a slice (element position = index) or a map with
// empty-struct values (the conventional Go set). Map elements are the keys;
// their reported position is the key's rendering, order-independent.
func walkSet(v any, e *Expr, path []any, out *[]Mismatch) {
	rv := reflect.ValueOf(v)
	switch {
	case v != nil && rv.Kind() == reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			walk(rv.Index(i).Interface(), e.Elem, append(path, i), out)
		}
	case v != nil && rv.Kind() == reflect.Map && rv.Type().Elem() == reflect.TypeOf(struct{}{}):
		for _, k := range rv.MapKeys() {
			walk(k.Interface(), e.Elem, append(path, fmt.Sprintf("%v", k.Interface())), out)
		}
	default:
		add(out, path, "Must be a valid set.")
	}
}

func walkTuple(v any, e *Expr, path []any, out *[]Mismatch) {
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		add(out, path, "Must be a valid tuple.")
		return
	}
	if rv.Len() != len(e.Items) {
		add(out, path, fmt.Sprintf("Tuple length must be %d (current length: %d).", len(e.Items), rv.Len()))
		return
	}
	for i, item := range e.Items {
		walk(rv.Index(i).Interface(), item, append(path, i), out)
	}
}

func walkMapping(v any, e *Expr, path []any, out *[]Mismatch) {
	rv := reflect.ValueOf(v)
	if v == nil || rv.Kind() != reflect.Map {
		add(out, path, "Must be a valid mapping.")
		return
	}
	for _, k := range rv.MapKeys() {
		key := k.Interface()
		seg := fmt.Sprintf("%v", key)
		walk(key, e.Key, append(path, seg), out)
		walk(rv.MapIndex(k).Interface(), e.Value, append(path, seg), out)
	}
}

// walkRecord validates declared keys only. Required keys must be present;
// keys present in the value but undeclared in the record are ignored.
func walkRecord(v any, e *Expr, path []any, out *[]Mismatch) {
	m, ok := v.(map[string]any)
	if !ok {
		add(out, path, "Must be a valid mapping.")
		return
	}
	for _, f := range e.Fields {
		fv, present := m[f.Key]
		if !present {
			if f.Required {
				add(out, append(path, f.Key), "Key is required.")
			}
			continue
		}
		walk(fv, f.Type, append(path, f.Key), out)
	}
}

func atomMatches(v any, a Atom) bool {
	switch a {
	case AtomString:
		_, ok := v.(string)
		return ok
	case AtomBool:
		_, ok := v.(bool)
		return ok
	case AtomInt:
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case json.Number:
			_, err := n.Int64()
			return err == nil
		case float64:
			return n == math.Trunc(n) && !math.IsInf(n, 0)
		}
		return false
	case AtomFloat:
		switch n := v.(type) {
		case float32, float64:
			return true
		case json.Number:
			_, err := n.Float64()
			return err == nil
		}
		return false
	}
	return false
}

// literalEqual compares by value, not merely by type: numeric literals match
// across int/float/json.Number representations.
func literalEqual(v, lit any) bool {
	if v == nil || lit == nil {
		return v == nil && lit == nil
	}
	if vf, ok := asFloat(v); ok {
		if lf, ok := asFloat(lit); ok {
			return vf == lf
		}
		return false
	}
	return reflect.DeepEqual(v, lit)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func renderLiterals(lits []any) string {
	parts := make([]string, 0, len(lits))
	for _, l := range lits {
		parts = append(parts, fmt.Sprintf("%#v", l))
	}
	return strings.Join(parts, ", ")
}

// ---- unsupported-type advisory ----

var (
	warnMu      sync.Mutex
	warnEnabled = true
	warned      = map[string]struct{}{}
	warnLogger  = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// SetWarnUnsupported toggles the advisory emitted when an Unsupported
// expression is evaluated.
func SetWarnUnsupported(enabled bool) {
	warnMu.Lock()
	warnEnabled = enabled
	warnMu.Unlock()
}

// SetLogger replaces the logger used for the unsupported-type advisory.
func SetLogger(l zerolog.Logger) {
	warnMu.Lock()
	warnLogger = l
	warnMu.Unlock()
}

// warnUnsupported logs once per distinct name.
func warnUnsupported(name string) {
	warnMu.Lock()
	defer warnMu.Unlock()
	if !warnEnabled {
		return
	}
	if _, seen := warned[name]; seen {
		return
	}
	warned[name] = struct{}{}
	warnLogger.Warn().
		Str("type", name).
		Msg("validation of this type is not supported; no type validation will be performed")
}
