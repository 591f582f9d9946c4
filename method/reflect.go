// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package method

import (
	"reflect"

	"github.com/DataDog/pointcut/typed"
)

// Of returns the descriptor of the method called name in the method set of t.
func Of(t reflect.Type, name string) (*Method, bool) {
	if t == nil {
		return nil, false
	}
	m, found := t.MethodByName(name)
	if !found {
		return nil, false
	}
	return FromReflect(t, m), true
}

// Set returns descriptors for the whole method set of t, in the order of
// [reflect.Type.Method] (lexicographic).
func Set(t reflect.Type) []*Method {
	if t == nil {
		return nil
	}
	res := make([]*Method, t.NumMethod())
	for i := range res {
		res[i] = FromReflect(t, t.Method(i))
	}
	return res
}

// FromReflect builds the descriptor of m, a method obtained from t's method
// set. The receiver is reported as t itself: reflection does not expose which
// type of an embedding chain declared a promoted method.
func FromReflect(t reflect.Type, m reflect.Method) *Method {
	desc := &Method{Name: m.Name, PkgPath: m.PkgPath}

	if recv, ok := typed.FromReflect(t); ok {
		desc.Receiver = &recv
		if desc.PkgPath == "" {
			desc.PkgPath = recv.ImportPath
		}
	}

	fn := m.Type
	first := 1
	if t.Kind() == reflect.Interface {
		// Interface methods carry no receiver in their function type.
		first = 0
	}

	desc.Variadic = fn.IsVariadic()
	for i := first; i < fn.NumIn(); i++ {
		in := fn.In(i)
		if desc.Variadic && i == fn.NumIn()-1 {
			desc.Params = append(desc.Params, "..."+typed.Canonical(in.Elem()))
			continue
		}
		desc.Params = append(desc.Params, typed.Canonical(in))
	}
	for i := range fn.NumOut() {
		desc.Results = append(desc.Results, typed.Canonical(fn.Out(i)))
	}

	return desc
}
