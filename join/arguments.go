// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/dave/jennifer/jen"
	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/method"
	"github.com/DataDog/pointcut/typed"
)

type argEquals struct {
	Index int
	Value any
}

// ArgEquals matches invocations whose argument at index (zero-based, the
// receiver excluded) equals value. Numbers compare by value regardless of
// their Go type, and named types compare by their underlying value. Only
// scalar values (strings, numbers, booleans and nil) are supported.
func ArgEquals(index int, value any) (DynamicMatcher, error) {
	if index < 0 {
		return nil, fmt.Errorf("invalid argument index %d", index)
	}
	if !isScalar(value) {
		return nil, fmt.Errorf("unsupported value of type %T: only scalar values are supported", value)
	}
	return &argEquals{Index: index, Value: value}, nil
}

// MustArgEquals is like [ArgEquals] but panics on invalid input.
func MustArgEquals(index int, value any) DynamicMatcher {
	m, err := ArgEquals(index, value)
	if err != nil {
		panic(err)
	}
	return m
}

func (a *argEquals) Matches(m *method.Method, _ reflect.Type) bool {
	return hasParam(m, a.Index)
}

func (a *argEquals) MatchesArgs(_ *method.Method, _ reflect.Type, args []any) bool {
	return a.Index < len(args) && scalarEqual(args[a.Index], a.Value)
}

func (a *argEquals) AsCode() (jen.Code, error) {
	value := jen.Nil()
	if a.Value != nil {
		value = jen.Lit(a.Value)
	}
	return jen.Qual(pkgPath, "MustArgEquals").Call(jen.Lit(a.Index), value), nil
}

func (a *argEquals) Hash(h *fingerprint.Hasher) error {
	return h.Named("arg-equals", fingerprint.Int(a.Index), fingerprint.Scalar(a.Value))
}

type argType struct {
	Index    int
	TypeName string
}

// ArgType matches invocations whose argument at index has the given canonical
// dynamic type. This is mostly useful for parameters of interface type.
func ArgType(index int, typeName string) (DynamicMatcher, error) {
	if index < 0 {
		return nil, fmt.Errorf("invalid argument index %d", index)
	}
	if typeName == "" {
		return nil, errors.New("missing type name")
	}
	return &argType{Index: index, TypeName: normalizeTypes([]string{typeName})[0]}, nil
}

// MustArgType is like [ArgType] but panics on invalid input.
func MustArgType(index int, typeName string) DynamicMatcher {
	m, err := ArgType(index, typeName)
	if err != nil {
		panic(err)
	}
	return m
}

func (a *argType) Matches(m *method.Method, _ reflect.Type) bool {
	return hasParam(m, a.Index)
}

func (a *argType) MatchesArgs(_ *method.Method, _ reflect.Type, args []any) bool {
	if a.Index >= len(args) || args[a.Index] == nil {
		return false
	}
	return typed.Canonical(reflect.TypeOf(args[a.Index])) == a.TypeName
}

func (a *argType) AsCode() (jen.Code, error) {
	return jen.Qual(pkgPath, "MustArgType").Call(jen.Lit(a.Index), jen.Lit(a.TypeName)), nil
}

func (a *argType) Hash(h *fingerprint.Hasher) error {
	return h.Named("arg-type", fingerprint.Int(a.Index), fingerprint.String(a.TypeName))
}

// hasParam reports whether a call to m can have an argument at index.
func hasParam(m *method.Method, index int) bool {
	return index < len(m.Params) || m.Variadic
}

func isScalar(v any) bool {
	if v == nil {
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func scalarEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	a, e := reflect.ValueOf(actual), reflect.ValueOf(expected)
	switch {
	case isNumber(a):
		return isNumber(e) && numberEqual(a, e)
	case a.Kind() == reflect.String:
		return e.Kind() == reflect.String && a.String() == e.String()
	case a.Kind() == reflect.Bool:
		return e.Kind() == reflect.Bool && a.Bool() == e.Bool()
	default:
		return false
	}
}

func isNumber(v reflect.Value) bool {
	return v.CanInt() || v.CanUint() || v.CanFloat()
}

// numberEqual compares integers exactly, whatever their width and signedness.
// Floats are compared by value, so 42 equals 42.0.
func numberEqual(a, b reflect.Value) bool {
	switch {
	case a.CanFloat() || b.CanFloat():
		return asFloat(a) == asFloat(b)
	case a.CanInt() && b.CanInt():
		return a.Int() == b.Int()
	case a.CanUint() && b.CanUint():
		return a.Uint() == b.Uint()
	case a.CanInt():
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	default:
		return b.Int() >= 0 && uint64(b.Int()) == a.Uint()
	}
}

func asFloat(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func init() {
	unmarshalers["arg-equals"] = func(node *yaml.Node) (Matcher, error) {
		var spec struct {
			Index int `yaml:"index"`
			Value any `yaml:"value"`
		}
		if err := node.Decode(&spec); err != nil {
			return nil, err
		}
		return ArgEquals(spec.Index, spec.Value)
	}

	unmarshalers["arg-type"] = func(node *yaml.Node) (Matcher, error) {
		var spec struct {
			Index int    `yaml:"index"`
			Type  string `yaml:"type"`
		}
		if err := node.Decode(&spec); err != nil {
			return nil, err
		}
		return ArgType(spec.Index, spec.Type)
	}
}
