// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package method describes the declared methods that pointcuts are evaluated
// against. Descriptors are obtained either through reflection on a live type,
// or by parsing Go source files.
package method

import (
	"go/token"
	"strings"

	"github.com/DataDog/pointcut/typed"
)

// Method describes a declared method or function.
type Method struct {
	// Name is the method's identifier.
	Name string
	// PkgPath is the import path of the package declaring the method.
	PkgPath string
	// Receiver is the declared receiver type, or nil for plain functions.
	Receiver *typed.TypeName
	// Params lists the canonical types of the parameters, excluding the
	// receiver. The last entry of a variadic method is spelled "...T".
	Params []string
	// Results lists the canonical types of the results.
	Results []string
	// Variadic is true when the last parameter is variadic.
	Variadic bool
	// Directives are the directive comments attached to the declaration,
	// without their "//" marker (e.g. "pointcut:traced"). Only available for
	// source descriptors.
	Directives []string
}

// ID returns an identifier for the method, stable across processes:
// "path.Name" for functions, "path.T.Name" or "path.(*T).Name" for methods.
func (m *Method) ID() string {
	var buf strings.Builder
	if m.PkgPath != "" {
		buf.WriteString(m.PkgPath)
		buf.WriteByte('.')
	}
	if recv := m.Receiver; recv != nil {
		if recv.Pointer {
			buf.WriteString("(*" + recv.Name + ")")
		} else {
			buf.WriteString(recv.Name)
		}
		buf.WriteByte('.')
	}
	buf.WriteString(m.Name)
	return buf.String()
}

func (m *Method) String() string {
	return m.ID() + "(" + strings.Join(m.Params, ", ") + ")"
}

// IsExported reports whether the method's name is exported.
func (m *Method) IsExported() bool {
	return token.IsExported(m.Name)
}

// ReceiverName returns the receiver's type name, or "" for functions.
func (m *Method) ReceiverName() string {
	if m.Receiver == nil {
		return ""
	}
	return m.Receiver.String()
}
