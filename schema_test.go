package fieldset_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/fieldset"
)

func userSchema(t *testing.T) *fieldset.SchemaType {
	t.Helper()
	return fieldset.New("User").
		Field("id", fieldset.Int().Strict(false)).
		Field("username", fieldset.String()).
		Field("active", fieldset.Bool().Default(true)).
		Field("bio", fieldset.String().Optional()).
		MustBuild()
}

func TestLoad_SuccessAndDumpRoundTrip(t *testing.T) {
	st := userSchema(t)
	inst, err := st.Load(map[string]any{"id": "42", "username": "alice"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := inst.MustGet("id"); got != int64(42) {
		t.Fatalf("id coerced: %v (%T)", got, got)
	}
	if got := inst.MustGet("active"); got != true {
		t.Fatalf("default not applied: %v", got)
	}

	dumped, err := inst.Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := map[string]any{"id": int64(42), "username": "alice", "active": true}
	if diff := cmp.Diff(want, dumped); diff != "" {
		t.Fatalf("dump mismatch (-want +got):\n%s", diff)
	}

	// unset optional, defaultless fields are omitted, and re-dumping is
	// idempotent
	again, err := inst.Dump()
	if err != nil {
		t.Fatalf("dump again: %v", err)
	}
	if diff := cmp.Diff(dumped, again); diff != "" {
		t.Fatalf("dump not idempotent (-first +second):\n%s", diff)
	}
}

func TestLoad_RequiredMissing(t *testing.T) {
	st := userSchema(t)
	inst, err := st.Load(map[string]any{"id": 1})
	if inst != nil {
		t.Fatalf("no instance may be produced on failure")
	}
	tree, ok := fieldset.AsErrorTree(err)
	if !ok {
		t.Fatalf("expected ErrorTree, got %v", err)
	}
	errs := tree.Field("username")
	if len(errs) != 1 || errs[0].Code != fieldset.CodeRequired {
		t.Fatalf("expected exactly one required error, got %+v", errs)
	}
	if tree.Len() != 1 {
		t.Fatalf("unrelated errors reported: %v", tree.Raw())
	}
}

func TestLoad_AllViolationsReported(t *testing.T) {
	st := userSchema(t)
	_, err := st.Load(map[string]any{"id": "abc", "active": "maybe"})
	tree, ok := fieldset.AsErrorTree(err)
	if !ok {
		t.Fatalf("expected ErrorTree, got %v", err)
	}
	// one call reports every violation: bad id, bad active, missing username
	if got := tree.FieldNames(); len(got) != 3 {
		t.Fatalf("expected 3 failing fields, got %v", got)
	}
}

func TestLoad_UnknownFieldPolicy(t *testing.T) {
	st := userSchema(t)
	_, err := st.Load(map[string]any{"id": 1, "username": "a", "color": "red"})
	tree, ok := fieldset.AsErrorTree(err)
	if !ok {
		t.Fatalf("expected ErrorTree, got %v", err)
	}
	errs := tree.Field("color")
	if len(errs) != 1 || errs[0].Code != fieldset.CodeUnknownField {
		t.Fatalf("expected unknown_field under the stray key, got %v", tree.Raw())
	}

	// per-call override drops the key silently
	inst, err := st.Load(map[string]any{"id": 1, "username": "a", "color": "red"}, fieldset.WithIgnoreExtra())
	if err != nil {
		t.Fatalf("ignore-extra load: %v", err)
	}
	if _, err := inst.Get("color"); err == nil {
		t.Fatalf("stray key must not become a field")
	}

	// per-type policy
	lax := fieldset.New("Lax").
		Field("x", fieldset.Int()).
		Unknown(fieldset.UnknownIgnore).
		MustBuild()
	if _, err := lax.Load(map[string]any{"x": 1, "y": 2}); err != nil {
		t.Fatalf("UnknownIgnore policy: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	calls := 0
	st := fieldset.New("Defaults").
		Field("static", fieldset.String().Default("fallback")).
		Field("produced", fieldset.Int().DefaultFunc(func(d *fieldset.FieldDescriptor, c *fieldset.SchemaContext) any {
			calls++
			return int64(7)
		})).
		MustBuild()

	inst, err := st.Load(map[string]any{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := inst.MustGet("static"); got != "fallback" {
		t.Fatalf("static default: %v", got)
	}
	if got := inst.MustGet("produced"); got != int64(7) {
		t.Fatalf("produced default: %v", got)
	}
	if calls != 1 {
		t.Fatalf("producer invoked %d times", calls)
	}

	// a provided value wins over the default
	inst, err = st.Load(map[string]any{"static": "explicit"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := inst.MustGet("static"); got != "explicit" {
		t.Fatalf("explicit value: %v", got)
	}
}

func TestLoad_NullableAndNil(t *testing.T) {
	st := fieldset.New("N").
		Field("note", fieldset.String().Nullable()).
		Field("name", fieldset.String()).
		MustBuild()

	inst, err := st.Load(map[string]any{"note": nil, "name": "x"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := inst.MustGet("note"); got != nil {
		t.Fatalf("nullable stored value: %v", got)
	}

	_, err = st.Load(map[string]any{"note": nil, "name": nil})
	tree, ok := fieldset.AsErrorTree(err)
	if !ok {
		t.Fatalf("expected ErrorTree, got %v", err)
	}
	errs := tree.Field("name")
	if len(errs) != 1 || errs[0].Code != fieldset.CodeNilDisallowed {
		t.Fatalf("expected nil_disallowed, got %v", tree.Raw())
	}
}

func TestLoad_UnsetFieldAccess(t *testing.T) {
	st := userSchema(t)
	inst, err := st.Load(map[string]any{"id": 1, "username": "a"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	_, err = inst.Get("bio")
	if _, ok := err.(*fieldset.NotSetError); !ok {
		t.Fatalf("expected NotSetError, got %v", err)
	}
	if got := inst.GetOr("bio", "n/a"); got != "n/a" {
		t.Fatalf("GetOr fallback: %v", got)
	}

	// undeclared names are programmer error, distinct from validation
	if _, err := inst.Get("nope"); err == nil {
		t.Fatalf("expected error for undeclared field")
	}
}

func TestLoad_KeysMapping(t *testing.T) {
	st := fieldset.New("Keyed").
		Field("userID", fieldset.Int().LoadKey("user_id").DumpKey("uid")).
		MustBuild()

	inst, err := st.Load(map[string]any{"user_id": 3})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	dumped, err := inst.Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := map[string]any{"uid": int64(3)}
	if diff := cmp.Diff(want, dumped); diff != "" {
		t.Fatalf("dump keys (-want +got):\n%s", diff)
	}
}

func TestLoad_Hooks(t *testing.T) {
	var postLoaded bool
	st := fieldset.New("Hooked").
		Field("n", fieldset.Int()).
		Preprocess(func(raw map[string]any, ctx *fieldset.SchemaContext) (map[string]any, error) {
			out := map[string]any{}
			for k, v := range raw {
				out[k] = v
			}
			out["n"] = 9
			return out, nil
		}).
		PostLoad(func(in *fieldset.Instance) error {
			postLoaded = true
			return nil
		}).
		MustBuild()

	inst, err := st.Load(map[string]any{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := inst.MustGet("n"); got != int64(9) {
		t.Fatalf("preprocess result ignored: %v", got)
	}
	if !postLoaded {
		t.Fatalf("post-load hook did not run")
	}

	// the post-load hook must not run when validation fails
	postLoaded = false
	if _, err := st.Load(map[string]any{"n": "zzz"}); err == nil {
		t.Fatalf("expected failure")
	}
	if postLoaded {
		t.Fatalf("post-load hook ran on failed construction")
	}
}

func TestLoad_ContextState(t *testing.T) {
	var seen any
	st := fieldset.New("Ctx").
		Field("v", fieldset.String().Validate(func(value any, ctx *fieldset.LoadContext) error {
			seen, _ = ctx.Context.Get("tenant")
			return nil
		})).
		MustBuild()

	_, err := st.Load(map[string]any{"v": "x"}, fieldset.WithState(map[any]any{"tenant": "acme"}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if seen != "acme" {
		t.Fatalf("state not visible to validators: %v", seen)
	}
}

func TestNested_ErrorPath(t *testing.T) {
	inner := fieldset.New("Inner").
		Field("b", fieldset.String()).
		MustBuild()
	outer := fieldset.New("Outer").
		Field("a", fieldset.Object(inner)).
		MustBuild()

	_, err := outer.Load(map[string]any{"a": map[string]any{}})
	tree, ok := fieldset.AsErrorTree(err)
	if !ok {
		t.Fatalf("expected ErrorTree, got %v", err)
	}
	want := map[string]any{
		"a": map[string]any{
			"b": []string{"This field is required."},
		},
	}
	if diff := cmp.Diff(want, tree.Raw()); diff != "" {
		t.Fatalf("nested raw tree (-want +got):\n%s", diff)
	}
}

func TestNested_LoadAndDump(t *testing.T) {
	inner := fieldset.New("Address").
		Field("city", fieldset.String()).
		MustBuild()
	outer := fieldset.New("Person").
		Field("name", fieldset.String()).
		Field("address", fieldset.Object(inner)).
		MustBuild()

	inst, err := outer.Load(map[string]any{
		"name":    "bob",
		"address": map[string]any{"city": "osaka"},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	nested, ok := inst.MustGet("address").(*fieldset.Instance)
	if !ok {
		t.Fatalf("nested field holds %T", inst.MustGet("address"))
	}
	if nested.MustGet("city") != "osaka" {
		t.Fatalf("nested value: %v", nested.MustGet("city"))
	}

	dumped, err := inst.Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := map[string]any{
		"name":    "bob",
		"address": map[string]any{"city": "osaka"},
	}
	if diff := cmp.Diff(want, dumped); diff != "" {
		t.Fatalf("recursive dump (-want +got):\n%s", diff)
	}

	// an already-validated instance of the right type is accepted as-is
	pre, err := inner.Load(map[string]any{"city": "kyoto"})
	if err != nil {
		t.Fatalf("inner load: %v", err)
	}
	inst2, err := outer.Load(map[string]any{"name": "carol", "address": pre})
	if err != nil {
		t.Fatalf("load with instance: %v", err)
	}
	if inst2.MustGet("address") != pre {
		t.Fatalf("instance not accepted as-is")
	}

	// an instance of the wrong schema type is rejected
	other := fieldset.New("Other").Field("city", fieldset.String()).MustBuild()
	wrong, _ := other.Load(map[string]any{"city": "nara"})
	_, err = outer.Load(map[string]any{"name": "dave", "address": wrong})
	tree, ok := fieldset.AsErrorTree(err)
	if !ok || len(tree.Field("address")) != 1 {
		t.Fatalf("wrong-type instance must fail: %v", err)
	}
}

func TestExtend_Inheritance(t *testing.T) {
	parent := fieldset.New("Parent").
		Field("a", fieldset.Int()).
		Field("b", fieldset.Int()).
		MustBuild()
	child := fieldset.New("Child").
		Extend(parent).
		Field("c", fieldset.Int()).
		Field("b", fieldset.String()). // redeclaration replaces the inherited field
		MustBuild()

	names := []string{}
	for _, d := range child.Fields() {
		names = append(names, d.Name())
	}
	want := []string{"a", "c", "b"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("field order (-want +got):\n%s", diff)
	}

	inst, err := child.Load(map[string]any{"a": 1, "b": "two", "c": 3})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if inst.MustGet("b") != "two" {
		t.Fatalf("redeclared field: %v", inst.MustGet("b"))
	}
}

func TestBuild_Errors(t *testing.T) {
	if _, err := fieldset.New("Dup").
		Field("x", fieldset.Int()).
		Field("x", fieldset.String()).
		Build(); err == nil {
		t.Fatalf("duplicate field name must fail Build")
	}
	if _, err := fieldset.New("Keys").
		Field("a", fieldset.Int().LoadKey("k")).
		Field("b", fieldset.Int().LoadKey("k")).
		Build(); err == nil {
		t.Fatalf("duplicate load key must fail Build")
	}
}
