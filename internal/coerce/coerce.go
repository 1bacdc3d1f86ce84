// Package coerce implements the primitive coercion rules shared by the
// built-in field kinds. Strict mode requires the runtime shape to already
// match; lenient mode attempts a best-effort conversion.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Failure classifies a coercion failure.
type Failure int

const (
	OK          Failure = iota
	WrongType           // strict mode: runtime shape does not match
	Unconvertible       // lenient mode: conversion attempted and failed
)

// DefaultTrueTokens and DefaultFalseTokens are the token sets used by lenient
// boolean conversion when the field does not override them.
var (
	DefaultTrueTokens  = []string{"TRUE", "True", "true", "YES", "Yes", "yes", "1"}
	DefaultFalseTokens = []string{"FALSE", "False", "false", "NO", "No", "no", "0"}
)

// String coerces v to a string. Lenient mode stringifies any value.
func String(v any, strict bool) (string, Failure) {
	if s, ok := v.(string); ok {
		return s, OK
	}
	if strict {
		return "", WrongType
	}
	if n, ok := v.(json.Number); ok {
		return n.String(), OK
	}
	return fmt.Sprintf("%v", v), OK
}

// Int coerces v to an int64. Integral JSON numbers satisfy strict mode since
// decoded input carries no native int type.
func Int(v any, strict bool) (int64, Failure) {
	switch n := v.(type) {
	case int:
		return int64(n), OK
	case int8:
		return int64(n), OK
	case int16:
		return int64(n), OK
	case int32:
		return int64(n), OK
	case int64:
		return n, OK
	case uint:
		return int64(n), OK
	case uint8:
		return int64(n), OK
	case uint16:
		return int64(n), OK
	case uint32:
		return int64(n), OK
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, OK
		}
		if strict {
			return 0, WrongType
		}
		return 0, Unconvertible
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), OK
		}
		if strict {
			return 0, WrongType
		}
		return 0, Unconvertible
	case float32:
		return Int(float64(n), strict)
	}
	if strict {
		return 0, WrongType
	}
	if s, ok := v.(string); ok {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, OK
		}
	}
	return 0, Unconvertible
}

// Float coerces v to a float64.
func Float(v any, strict bool) (float64, Failure) {
	switch n := v.(type) {
	case float64:
		return n, OK
	case float32:
		return float64(n), OK
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, OK
		}
		if strict {
			return 0, WrongType
		}
		return 0, Unconvertible
	}
	if strict {
		return 0, WrongType
	}
	switch n := v.(type) {
	case int:
		return float64(n), OK
	case int64:
		return float64(n), OK
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, OK
		}
	}
	return 0, Unconvertible
}

// Bool coerces v to a bool. Lenient mode matches string input against the
// true/false token sets; non-string values never convert.
func Bool(v any, strict bool, trueTokens, falseTokens []string) (bool, Failure) {
	if b, ok := v.(bool); ok {
		return b, OK
	}
	if strict {
		return false, WrongType
	}
	s, ok := v.(string)
	if !ok {
		return false, Unconvertible
	}
	if len(trueTokens) == 0 {
		trueTokens = DefaultTrueTokens
	}
	if len(falseTokens) == 0 {
		falseTokens = DefaultFalseTokens
	}
	for _, t := range trueTokens {
		if s == t {
			return true, OK
		}
	}
	for _, f := range falseTokens {
		if s == f {
			return false, OK
		}
	}
	return false, Unconvertible
}
