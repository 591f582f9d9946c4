// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package typed

import (
	"fmt"
	"go/types"
	"reflect"
	"slices"
	"strings"

	"github.com/dave/dst"
	"github.com/dlclark/regexp2"
)

// aliases maps the predeclared alias types to the type they denote.
var aliases = map[string]string{
	"byte": "uint8",
	"rune": "int32",
}

var (
	aliasPattern          = regexp2.MustCompile(`(?<![\w/])(?<![^.]\.)(?:byte|rune)(?![\w./])`, regexp2.None)
	emptyInterfacePattern = regexp2.MustCompile(`\binterface\s*\{\s*\}`, regexp2.None)
	emptyStructPattern    = regexp2.MustCompile(`\bstruct\s*\{\s*\}`, regexp2.None)
)

// Normalize rewrites a hand-written type spelling into the form produced by
// [Canonical] and [CanonicalExpr]: the byte and rune aliases are replaced by
// the types they denote, and empty interfaces are spelled "any". Qualified
// names (e.g. "example.com/byte.Buffer") are left untouched.
func Normalize(spelling string) string {
	res := strings.TrimSpace(spelling)
	res = replaceAll(emptyInterfacePattern, res, func(regexp2.Match) string { return "any" })
	res = replaceAll(emptyStructPattern, res, func(regexp2.Match) string { return "struct{}" })
	return replaceAll(aliasPattern, res, func(m regexp2.Match) string { return aliases[m.String()] })
}

func replaceAll(re *regexp2.Regexp, input string, fn regexp2.MatchEvaluator) string {
	res, err := re.ReplaceFunc(input, fn, -1, -1)
	if err != nil {
		// Only a match timeout can fail, and none is configured.
		return input
	}
	return res
}

// Canonical returns the spelling of a type used to compare signatures. Named
// types are qualified by their full import path (e.g. "*net/http.Request"),
// the empty interface is always spelled "any", and the byte and rune aliases
// are spelled "uint8" and "int32" as reflection cannot tell them apart.
func Canonical(t reflect.Type) string {
	if t == nil {
		return ""
	}

	if name := t.Name(); name != "" {
		if path := t.PkgPath(); path != "" {
			return path + "." + name
		}
		return name
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + Canonical(t.Elem())
	case reflect.Slice:
		return "[]" + Canonical(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), Canonical(t.Elem()))
	case reflect.Map:
		return "map[" + Canonical(t.Key()) + "]" + Canonical(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + Canonical(t.Elem())
		case reflect.SendDir:
			return "chan<- " + Canonical(t.Elem())
		default:
			return "chan " + Canonical(t.Elem())
		}
	case reflect.Func:
		return "func" + reflectSignature(t)
	case reflect.Struct:
		fields := make([]string, t.NumField())
		for i := range fields {
			field := t.Field(i)
			if field.Anonymous {
				fields[i] = Canonical(field.Type)
			} else {
				fields[i] = field.Name + " " + Canonical(field.Type)
			}
		}
		return structSpelling(fields)
	case reflect.Interface:
		methods := make([]string, t.NumMethod())
		for i := range methods {
			m := t.Method(i)
			methods[i] = m.Name + reflectSignature(m.Type)
		}
		return interfaceSpelling(methods)
	}

	return t.String()
}

func reflectSignature(fn reflect.Type) string {
	params := make([]string, fn.NumIn())
	for i := range params {
		if fn.IsVariadic() && i == len(params)-1 {
			params[i] = "..." + Canonical(fn.In(i).Elem())
		} else {
			params[i] = Canonical(fn.In(i))
		}
	}
	results := make([]string, fn.NumOut())
	for i := range results {
		results[i] = Canonical(fn.Out(i))
	}
	return signatureSpelling(params, results)
}

// signatureSpelling renders a parameter and result list the way they follow the
// func keyword or a method name.
func signatureSpelling(params, results []string) string {
	res := "(" + strings.Join(params, ", ") + ")"
	switch len(results) {
	case 0:
		return res
	case 1:
		return res + " " + results[0]
	default:
		return res + " (" + strings.Join(results, ", ") + ")"
	}
}

func structSpelling(fields []string) string {
	return "struct{" + strings.Join(fields, "; ") + "}"
}

func interfaceSpelling(methods []string) string {
	if len(methods) == 0 {
		return "any"
	}
	slices.Sort(methods)
	return "interface{" + strings.Join(methods, "; ") + "}"
}

// CanonicalExpr is the source counterpart of [Canonical]. The importPath is
// that of the package the expression appears in, and is used to qualify
// references to locally declared types. Imported identifiers are expected to
// have been resolved (their [dst.Ident.Path] set) by the decorator.
func CanonicalExpr(expr dst.Expr, importPath string) string {
	switch expr := expr.(type) {
	case *dst.Ident:
		if expr.Path != "" {
			return expr.Path + "." + expr.Name
		}
		if types.Universe.Lookup(expr.Name) != nil {
			if alias, ok := aliases[expr.Name]; ok {
				return alias
			}
			return expr.Name
		}
		if importPath == "" {
			return expr.Name
		}
		return importPath + "." + expr.Name

	case *dst.SelectorExpr:
		// Unresolved qualified identifier; best effort using the package name.
		if x, ok := expr.X.(*dst.Ident); ok {
			return x.Name + "." + expr.Sel.Name
		}
		return expr.Sel.Name

	case *dst.StarExpr:
		return "*" + CanonicalExpr(expr.X, importPath)

	case *dst.ParenExpr:
		return CanonicalExpr(expr.X, importPath)

	case *dst.Ellipsis:
		return "..." + CanonicalExpr(expr.Elt, importPath)

	case *dst.ArrayType:
		elt := CanonicalExpr(expr.Elt, importPath)
		switch size := expr.Len.(type) {
		case nil:
			return "[]" + elt
		case *dst.BasicLit:
			return "[" + size.Value + "]" + elt
		case *dst.Ellipsis:
			return "[...]" + elt
		default:
			return "[?]" + elt
		}

	case *dst.MapType:
		return "map[" + CanonicalExpr(expr.Key, importPath) + "]" + CanonicalExpr(expr.Value, importPath)

	case *dst.ChanType:
		val := CanonicalExpr(expr.Value, importPath)
		switch expr.Dir {
		case dst.RECV:
			return "<-chan " + val
		case dst.SEND:
			return "chan<- " + val
		default:
			return "chan " + val
		}

	case *dst.InterfaceType:
		var methods []string
		if expr.Methods != nil {
			for _, field := range expr.Methods.List {
				fn, ok := field.Type.(*dst.FuncType)
				if !ok || len(field.Names) != 1 {
					// Embedded interfaces and type unions cannot be flattened
					// without type-checking.
					return "interface{...}"
				}
				methods = append(methods, field.Names[0].Name+sourceSignature(fn, importPath))
			}
		}
		return interfaceSpelling(methods)

	case *dst.StructType:
		var fields []string
		if expr.Fields != nil {
			for _, field := range expr.Fields.List {
				typ := CanonicalExpr(field.Type, importPath)
				if len(field.Names) == 0 {
					fields = append(fields, typ)
					continue
				}
				for _, name := range field.Names {
					fields = append(fields, name.Name+" "+typ)
				}
			}
		}
		return structSpelling(fields)

	case *dst.FuncType:
		return "func" + sourceSignature(expr, importPath)

	case *dst.IndexExpr:
		return CanonicalExpr(expr.X, importPath) + "[" + CanonicalExpr(expr.Index, importPath) + "]"

	case *dst.IndexListExpr:
		args := make([]string, len(expr.Indices))
		for i, idx := range expr.Indices {
			args[i] = CanonicalExpr(idx, importPath)
		}
		return CanonicalExpr(expr.X, importPath) + "[" + strings.Join(args, ",") + "]"

	default:
		return fmt.Sprintf("<%T>", expr)
	}
}

func sourceSignature(fn *dst.FuncType, importPath string) string {
	return signatureSpelling(FieldTypes(fn.Params, importPath), FieldTypes(fn.Results, importPath))
}

// FieldTypes expands a field list into one canonical type per declared name,
// so that "a, b int" yields two entries.
func FieldTypes(fields *dst.FieldList, importPath string) []string {
	if fields == nil {
		return nil
	}

	var res []string
	for _, field := range fields.List {
		typ := CanonicalExpr(field.Type, importPath)
		count := len(field.Names)
		if count == 0 {
			count = 1
		}
		for range count {
			res = append(res, typ)
		}
	}
	return res
}
