package fieldset_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/reoring/fieldset"
)

func TestValidators_RawSeesPreCoercionValue(t *testing.T) {
	var rawSeen, serializedSeen any
	spec := fieldset.Int().Strict(false).
		ValidateRaw(func(value any, ctx *fieldset.LoadContext) error {
			rawSeen = value
			return nil
		}).
		Validate(func(value any, ctx *fieldset.LoadContext) error {
			serializedSeen = value
			return nil
		})
	st := fieldset.New("T").Field("v", spec).MustBuild()

	if _, err := st.Load(map[string]any{"v": "42"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if rawSeen != "42" {
		t.Fatalf("raw validator saw %v (%T)", rawSeen, rawSeen)
	}
	if serializedSeen != int64(42) {
		t.Fatalf("serialized validator saw %v (%T)", serializedSeen, serializedSeen)
	}
}

func TestValidators_AllFailuresCollected(t *testing.T) {
	spec := fieldset.Int().
		Validate(func(value any, ctx *fieldset.LoadContext) error {
			return fieldset.Fail("first")
		}).
		Validate(func(value any, ctx *fieldset.LoadContext) error {
			return fieldset.Fail("second")
		}).
		Validate(func(value any, ctx *fieldset.LoadContext) error {
			return nil
		})
	st := fieldset.New("T").Field("v", spec).MustBuild()

	_, err := st.Load(map[string]any{"v": 1})
	tree, ok := fieldset.AsErrorTree(err)
	if !ok {
		t.Fatalf("expected ErrorTree, got %v", err)
	}
	errs := tree.Field("v")
	if len(errs) != 2 {
		t.Fatalf("expected both failures reported, got %v", errs)
	}
	if errs[0].Message != "first" || errs[1].Message != "second" {
		t.Fatalf("registration order lost: %v, %v", errs[0].Message, errs[1].Message)
	}
}

func TestValidators_SkippedWhenTypeResolutionFails(t *testing.T) {
	called := false
	spec := fieldset.Int().Validate(func(value any, ctx *fieldset.LoadContext) error {
		called = true
		return nil
	})
	st := fieldset.New("T").Field("v", spec).MustBuild()

	_, err := st.Load(map[string]any{"v": "not a number"})
	if err == nil {
		t.Fatalf("expected type failure")
	}
	if called {
		t.Fatalf("validators must not run on an unresolved value")
	}
}

func TestValidators_BoolFuncDefaultMessage(t *testing.T) {
	spec := fieldset.Int().ValidateBool(func(value any, ctx *fieldset.LoadContext) bool {
		return value.(int64) > 0
	})
	st := fieldset.New("T").Field("age", spec).MustBuild()

	_, err := st.Load(map[string]any{"age": -1})
	tree, _ := fieldset.AsErrorTree(err)
	errs := tree.Field("age")
	if len(errs) != 1 {
		t.Fatalf("expected one failure, got %v", errs)
	}
	if errs[0].Code != fieldset.CodeValidationFailed {
		t.Fatalf("code: %q", errs[0].Code)
	}
	if errs[0].Message != "Validation failed for field 'age'." {
		t.Fatalf("default message: %q", errs[0].Message)
	}
}

func TestValidators_FailWithState(t *testing.T) {
	spec := fieldset.Int().Validate(func(value any, ctx *fieldset.LoadContext) error {
		return fieldset.FailWithState("out of range", map[string]int{"max": 10})
	})
	st := fieldset.New("T").Field("v", spec).MustBuild()

	_, err := st.Load(map[string]any{"v": 11})
	tree, _ := fieldset.AsErrorTree(err)
	fe := tree.Field("v")[0]
	if fe.Message != "out of range" {
		t.Fatalf("message: %q", fe.Message)
	}
	blob, ok := fe.State.(map[string]int)
	if !ok || blob["max"] != 10 {
		t.Fatalf("state blob lost: %v", fe.State)
	}
}

func TestValidators_PlainErrorWrapped(t *testing.T) {
	spec := fieldset.Int().Validate(func(value any, ctx *fieldset.LoadContext) error {
		return fmt.Errorf("boom")
	})
	st := fieldset.New("T").Field("v", spec).MustBuild()

	_, err := st.Load(map[string]any{"v": 1})
	tree, _ := fieldset.AsErrorTree(err)
	fe := tree.Field("v")[0]
	if fe.Code != fieldset.CodeValidationFailed || fe.Message != "boom" {
		t.Fatalf("wrapped error: %+v", fe)
	}
}

// rangeValidator is a stateful Validator implementation.
type rangeValidator struct{ min, max int64 }

func (r rangeValidator) Validate(value any, ctx *fieldset.LoadContext) error {
	n, ok := value.(int64)
	if !ok {
		if jn, isNum := value.(json.Number); isNum {
			n, _ = jn.Int64()
		} else {
			return fieldset.Fail("not an integer")
		}
	}
	if n < r.min || n > r.max {
		return fieldset.Fail(fmt.Sprintf("must be between %d and %d", r.min, r.max))
	}
	return nil
}

func TestValidators_StructImplementation(t *testing.T) {
	spec := fieldset.Int().ValidateWith(rangeValidator{min: 1, max: 5}, false)
	st := fieldset.New("T").Field("v", spec).MustBuild()

	if _, err := st.Load(map[string]any{"v": 3}); err != nil {
		t.Fatalf("in-range load: %v", err)
	}
	_, err := st.Load(map[string]any{"v": 9})
	tree, _ := fieldset.AsErrorTree(err)
	if got := tree.Field("v")[0].Message; got != "must be between 1 and 5" {
		t.Fatalf("message: %q", got)
	}
}

func TestValidatorChain_Management(t *testing.T) {
	chain := &fieldset.ValidatorChain{}
	pass := fieldset.ValidatorFunc(func(any, *fieldset.LoadContext) error { return nil })

	tok1 := chain.Add(pass, false)
	tok2 := chain.Add(pass, true)
	chain.Add(pass, false)
	if chain.Len() != 3 {
		t.Fatalf("len: %d", chain.Len())
	}

	chain.Remove(tok1)
	if chain.Len() != 2 {
		t.Fatalf("len after remove: %d", chain.Len())
	}
	chain.Remove(tok1) // unknown token is ignored
	if chain.Len() != 2 {
		t.Fatalf("len after duplicate remove: %d", chain.Len())
	}
	_ = tok2

	var raws, serialized int
	chain.Walk(func(v fieldset.Validator, raw bool) bool {
		if raw {
			raws++
		} else {
			serialized++
		}
		return true
	})
	if raws != 1 || serialized != 1 {
		t.Fatalf("walk saw %d raw, %d serialized", raws, serialized)
	}

	chain.ClearTagged(true)
	if chain.Len() != 1 {
		t.Fatalf("len after ClearTagged: %d", chain.Len())
	}
	chain.Clear()
	if chain.Len() != 0 {
		t.Fatalf("len after Clear: %d", chain.Len())
	}
}

func TestValidatorChain_WalkStops(t *testing.T) {
	chain := &fieldset.ValidatorChain{}
	pass := fieldset.ValidatorFunc(func(any, *fieldset.LoadContext) error { return nil })
	chain.Add(pass, false)
	chain.Add(pass, false)

	visits := 0
	chain.Walk(func(fieldset.Validator, bool) bool {
		visits++
		return false
	})
	if visits != 1 {
		t.Fatalf("walk did not stop: %d visits", visits)
	}
}
