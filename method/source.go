// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package method

import (
	"fmt"
	"go/parser"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"github.com/dave/dst/decorator/resolver/goast"
	"github.com/dave/dst/decorator/resolver/guess"

	"github.com/DataDog/pointcut/typed"
)

// adHocPackage is the import path the go command gives to packages built from
// a list of files. It only serves to enable import resolution when the caller
// does not know the file's import path.
const adHocPackage = "command-line-arguments"

// ParseFile parses the Go source file and returns descriptors for every
// function and method declared in it, in declaration order. The src argument
// is interpreted as in [parser.ParseFile]; importPath is the import path of
// the package the file belongs to. When importPath is empty, imported types are
// still fully qualified but locally declared types are not.
func ParseFile(filename string, src any, importPath string) ([]*Method, error) {
	decoratorPath := importPath
	if decoratorPath == "" {
		decoratorPath = adHocPackage
	}

	fset := token.NewFileSet()
	dec := decorator.NewDecoratorWithImports(fset, decoratorPath, goast.WithResolver(guess.New()))
	file, err := dec.ParseFile(filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	var res []*Method
	for _, decl := range file.Decls {
		fn, ok := decl.(*dst.FuncDecl)
		if !ok {
			continue
		}
		res = append(res, fromFuncDecl(fn, importPath))
	}
	return res, nil
}

func fromFuncDecl(fn *dst.FuncDecl, importPath string) *Method {
	desc := &Method{
		Name:    fn.Name.Name,
		PkgPath: importPath,
		Params:  typed.FieldTypes(fn.Type.Params, importPath),
		Results: typed.FieldTypes(fn.Type.Results, importPath),
	}

	if fn.Recv != nil && len(fn.Recv.List) == 1 {
		desc.Receiver = receiverTypeName(fn.Recv.List[0].Type, importPath)
	}

	if n := len(desc.Params); n > 0 && strings.HasPrefix(desc.Params[n-1], "...") {
		desc.Variadic = true
	}

	for _, dec := range fn.Decs.Start.All() {
		if directive, ok := asDirective(dec); ok {
			desc.Directives = append(desc.Directives, directive)
		}
	}

	return desc
}

func receiverTypeName(expr dst.Expr, importPath string) *typed.TypeName {
	tn := &typed.TypeName{ImportPath: importPath}
	if star, ok := expr.(*dst.StarExpr); ok {
		tn.Pointer = true
		expr = star.X
	}

	// Strip type parameters from generic receivers.
	switch generic := expr.(type) {
	case *dst.IndexExpr:
		expr = generic.X
	case *dst.IndexListExpr:
		expr = generic.X
	}

	ident, ok := expr.(*dst.Ident)
	if !ok {
		return nil
	}
	tn.Name = ident.Name
	return tn
}

// asDirective returns the comment without its leading "//" if it is a
// directive, that is a line comment whose marker is immediately followed by a
// non-space character.
func asDirective(comment string) (string, bool) {
	rest := strings.TrimLeftFunc(comment, unicode.IsSpace)
	if !strings.HasPrefix(rest, "//") {
		return "", false
	}
	rest = rest[2:]
	r, size := utf8.DecodeRuneInString(rest)
	if size == 0 || unicode.IsSpace(r) {
		return "", false
	}
	return strings.TrimRightFunc(rest, unicode.IsSpace), true
}
