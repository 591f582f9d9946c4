// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"reflect"

	"github.com/dave/jennifer/jen"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/may"
	"github.com/DataDog/pointcut/method"
)

type constant bool

var (
	// True matches every method.
	True Matcher = constant(true)
	// False matches nothing.
	False Matcher = constant(false)
)

func (c constant) Matches(*method.Method, reflect.Type) bool {
	return bool(c)
}

func (c constant) TypeMayMatch(reflect.Type) may.MatchType {
	return may.FromBool(bool(c))
}

func (c constant) AsCode() (jen.Code, error) {
	if c {
		return jen.Qual(pkgPath, "True"), nil
	}
	return jen.Qual(pkgPath, "False"), nil
}

func (c constant) Hash(h *fingerprint.Hasher) error {
	return h.Named("constant", fingerprint.Bool(c))
}
