// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"reflect"

	"github.com/dave/jennifer/jen"
	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/may"
	"github.com/DataDog/pointcut/method"
	"github.com/DataDog/pointcut/typed"
)

type receiver struct {
	TypeName typed.TypeName
}

// Receiver matches methods declared on the named type. A pointer type name
// only matches pointer receivers; a value type name matches both.
func Receiver(typeName typed.TypeName) Matcher {
	return &receiver{typeName}
}

func (r *receiver) Matches(m *method.Method, _ reflect.Type) bool {
	return m.Receiver != nil && r.TypeName.Accepts(*m.Receiver)
}

func (r *receiver) AsCode() (jen.Code, error) {
	return jen.Qual(pkgPath, "Receiver").Call(r.TypeName.AsCode()), nil
}

func (r *receiver) Hash(h *fingerprint.Hasher) error {
	return h.Named("receiver", r.TypeName)
}

type target struct {
	TypeName typed.TypeName
}

// Target matches any method invoked on a target of the named type. Unlike
// [Receiver], it inspects the runtime target rather than the declaration, so
// it never matches when the target type is unknown.
func Target(typeName typed.TypeName) Matcher {
	return &target{typeName}
}

func (t *target) Matches(_ *method.Method, typ reflect.Type) bool {
	return t.accepts(typ)
}

func (t *target) TypeMayMatch(typ reflect.Type) may.MatchType {
	return may.FromBool(t.accepts(typ))
}

func (t *target) accepts(typ reflect.Type) bool {
	tn, ok := typed.FromReflect(typ)
	return ok && t.TypeName.Accepts(tn)
}

func (t *target) AsCode() (jen.Code, error) {
	return jen.Qual(pkgPath, "Target").Call(t.TypeName.AsCode()), nil
}

func (t *target) Hash(h *fingerprint.Hasher) error {
	return h.Named("target", t.TypeName)
}

func init() {
	unmarshalers["receiver"] = func(node *yaml.Node) (Matcher, error) {
		tn, err := decodeTypeName(node)
		if err != nil {
			return nil, err
		}
		return Receiver(tn), nil
	}

	unmarshalers["target"] = func(node *yaml.Node) (Matcher, error) {
		tn, err := decodeTypeName(node)
		if err != nil {
			return nil, err
		}
		return Target(tn), nil
	}
}

func decodeTypeName(node *yaml.Node) (typed.TypeName, error) {
	var name string
	if err := node.Decode(&name); err != nil {
		return typed.TypeName{}, err
	}
	return typed.NewTypeName(name)
}
