package fieldset

// Package fieldset provides:
//
// - Declarative schemas built from named, typed fields (Builder/FieldSpec)
// - Validation and transformation of raw data into typed instances (Load)
//   and back (Dump), with transactional multi-field updates
// - A stable error model via ErrorTree/FieldError (field paths, codes,
//   translated messages)
// - Structural type-expression validation for union/literal/sequence/tuple/
//   mapping/record shapes under typeexpr/
//
// Design policy:
// - Keep only public APIs in the root package; put coercion details under
//   internal/.
// - Place payload decoding under source/, type expressions under typeexpr/,
//   and the CLI under cmd/fieldset.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := fieldset.New("User").
//		Field("id", fieldset.Int().Strict(false)).
//		Field("username", fieldset.String()).
//		Field("active", fieldset.Bool().Default(true)).
//		MustBuild()
//
//	inst, err := fieldset.LoadJSON(user, payload)
//	if tree, ok := fieldset.AsErrorTree(err); ok {
//		report(tree.Raw())
//	}
//
//	out, err := inst.Dump()
