package fieldset

// Validator is the polymorphic capability implemented by every validation
// unit. Stateful validators (length bounds, ranges) compose the same way as
// function-based ones.
type Validator interface {
	Validate(value any, ctx *LoadContext) error
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func(value any, ctx *LoadContext) error

func (f ValidatorFunc) Validate(value any, ctx *LoadContext) error { return f(value, ctx) }

// BoolFunc adapts a boolean-style validator: a false return means "failed
// with a default message".
func BoolFunc(fn func(value any, ctx *LoadContext) bool) Validator {
	return ValidatorFunc(func(value any, ctx *LoadContext) error {
		if !fn(value, ctx) {
			return NewFieldError(CodeValidationFailed, value, map[string]string{"field": ctx.Field.Name()})
		}
		return nil
	})
}

// chainEntry tags one validator as raw (pre-coercion) or serialized.
type chainEntry struct {
	id  int
	v   Validator
	raw bool
}

// ValidatorChain is the ordered list of validators attached to one field.
// Every unit runs in registration order regardless of earlier failures in
// the same chain; every failure becomes one FieldError.
type ValidatorChain struct {
	entries []chainEntry
	nextID  int
}

// Add registers a validator and returns a token usable with Remove.
func (c *ValidatorChain) Add(v Validator, raw bool) int {
	c.nextID++
	c.entries = append(c.entries, chainEntry{id: c.nextID, v: v, raw: raw})
	return c.nextID
}

// Remove drops the validator registered under the given token. Unknown
// tokens are ignored.
func (c *ValidatorChain) Remove(token int) {
	for i, e := range c.entries {
		if e.id == token {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Clear removes every validator.
func (c *ValidatorChain) Clear() { c.entries = nil }

// ClearTagged removes only the raw or only the serialized validators.
func (c *ValidatorChain) ClearTagged(raw bool) {
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.raw != raw {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

// Walk visits every validator in registration order until fn returns false.
func (c *ValidatorChain) Walk(fn func(v Validator, raw bool) bool) {
	for _, e := range c.entries {
		if !fn(e.v, e.raw) {
			return
		}
	}
}

// Len reports the number of registered validators.
func (c *ValidatorChain) Len() int { return len(c.entries) }

// run executes the raw or serialized side of the chain against value,
// collecting one FieldError per failure. It never stops at the first
// failure.
func (c *ValidatorChain) run(value any, ctx *LoadContext, raw bool) []*FieldError {
	var out []*FieldError
	for _, e := range c.entries {
		if e.raw != raw {
			continue
		}
		err := e.v.Validate(value, ctx)
		if err == nil {
			continue
		}
		out = append(out, asFieldError(err, value))
	}
	return out
}

func asFieldError(err error, value any) *FieldError {
	if fe, ok := err.(*FieldError); ok {
		return fe
	}
	return &FieldError{
		Code:    CodeValidationFailed,
		Message: err.Error(),
		Value:   value,
	}
}

// clone deep-copies the chain so descriptor copies stay independent.
func (c *ValidatorChain) clone() *ValidatorChain {
	out := &ValidatorChain{nextID: c.nextID}
	out.entries = make([]chainEntry, len(c.entries))
	copy(out.entries, c.entries)
	return out
}
