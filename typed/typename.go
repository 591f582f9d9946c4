// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package typed provides the type naming scheme shared by method descriptors
// obtained through reflection and those parsed from Go source.
package typed

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/dave/jennifer/jen"

	"github.com/DataDog/pointcut/fingerprint"
)

const pkgPath = "github.com/DataDog/pointcut/typed"

// TypeName represents a parsed Go type name, potentially including a package path and pointer indicator.
type TypeName struct {
	// ImportPath is the import path that provides the type, or an empty string if the
	// type is built-in (like "error" or "any").
	ImportPath string
	// Name is the leaf (un-qualified) name of the type.
	Name string
	// Pointer determines whether the specified type is a pointer or not.
	Pointer bool
}

// Only identifiers, qualified identifiers, and pointers to those are supported.
var typeNameRe = regexp.MustCompile(`\A(\*)?\s*(?:([A-Za-z0-9_.-]+(?:/[A-Za-z0-9_.-]+)*)\.)?([A-Za-z_][A-Za-z0-9_]*)\z`)

// NewTypeName parses a string representation of a type name into a TypeName struct.
func NewTypeName(n string) (tn TypeName, err error) {
	matches := typeNameRe.FindStringSubmatch(n)
	if matches == nil {
		err = fmt.Errorf("invalid TypeName syntax: %q", n)
		return tn, err
	}

	tn.Pointer = matches[1] == "*"
	tn.ImportPath = matches[2]
	tn.Name = matches[3]
	return tn, nil
}

// MustTypeName is the same as NewTypeName, except it panics in case of an error.
func MustTypeName(n string) (tn TypeName) {
	var err error
	if tn, err = NewTypeName(n); err != nil {
		panic(err)
	}
	return tn
}

// FromReflect returns the TypeName of a named type, or of a pointer to a named
// type. It returns false for any other type.
func FromReflect(t reflect.Type) (TypeName, bool) {
	if t == nil {
		return TypeName{}, false
	}

	var tn TypeName
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		tn.Pointer = true
		t = t.Elem()
	}
	if t.Name() == "" {
		return TypeName{}, false
	}

	tn.ImportPath = t.PkgPath()
	tn.Name = t.Name()
	return tn, true
}

// Accepts determines whether a concrete type name satisfies this one used as a
// pattern. Import path and name must be equal; a pointer pattern only accepts
// pointers while a value pattern accepts both forms.
func (n TypeName) Accepts(other TypeName) bool {
	if n.ImportPath != other.ImportPath || n.Name != other.Name {
		return false
	}
	return !n.Pointer || other.Pointer
}

func (n TypeName) String() string {
	str := n.Name
	if n.ImportPath != "" {
		str = n.ImportPath + "." + str
	}
	if n.Pointer {
		str = "*" + str
	}
	return str
}

// AsCode produces the Go expression re-creating this TypeName.
func (n TypeName) AsCode() jen.Code {
	return jen.Qual(pkgPath, "MustTypeName").Call(jen.Lit(n.String()))
}

func (n TypeName) Hash(h *fingerprint.Hasher) error {
	return h.Named(
		"type-name",
		fingerprint.String(n.Name),
		fingerprint.String(n.ImportPath),
		fingerprint.Bool(n.Pointer),
	)
}
