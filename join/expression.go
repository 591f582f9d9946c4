// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/dave/jennifer/jen"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/method"
	"github.com/DataDog/pointcut/typed"
)

var errExpressionResultType = errors.New("result type error")

var celEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(),
		ext.Lists(),
		cel.Variable("args", cel.ListType(cel.DynType)),
		cel.Variable("method", cel.StringType),
		cel.Variable("receiver", cel.StringType),
		cel.Variable("pkg", cel.StringType),
		cel.Variable("target", cel.StringType),
	)
})

type expression struct {
	source  string
	program cel.Program
}

// Expression matches invocations for which the CEL expression evaluates to
// true. The expression has access to the following variables:
//   - args: the list of call arguments
//   - method: the method's name
//   - receiver: the declared receiver type name, or ""
//   - pkg: the declaring package's import path
//   - target: the canonical name of the target type, or ""
//
// An evaluation error (e.g, an out of bounds index into args) is a miss.
func Expression(source string) (DynamicMatcher, error) {
	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}

	ast, iss := env.Compile(source)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compiling expression %q: %w", source, iss.Err())
	}

	if !reflect.DeepEqual(ast.OutputType(), cel.BoolType) {
		return nil, fmt.Errorf("%w: wanted bool, got %v", errExpressionResultType, ast.OutputType())
	}

	prg, err := env.Program(ast, cel.EvalOptions(cel.OptOptimize))
	if err != nil {
		return nil, fmt.Errorf("preparing expression %q: %w", source, err)
	}

	return &expression{source: source, program: prg}, nil
}

// MustExpression is like [Expression] but panics if the expression is invalid.
func MustExpression(source string) DynamicMatcher {
	m, err := Expression(source)
	if err != nil {
		panic(err)
	}
	return m
}

func (*expression) Matches(*method.Method, reflect.Type) bool {
	return true
}

func (e *expression) MatchesArgs(m *method.Method, target reflect.Type, args []any) bool {
	if args == nil {
		args = []any{}
	}
	out, _, err := e.program.Eval(map[string]any{
		"args":     args,
		"method":   m.Name,
		"receiver": m.ReceiverName(),
		"pkg":      m.PkgPath,
		"target":   typed.Canonical(target),
	})
	if err != nil {
		return false
	}
	return out.Value() == true
}

func (e *expression) AsCode() (jen.Code, error) {
	return jen.Qual(pkgPath, "MustExpression").Call(jen.Lit(e.source)), nil
}

func (e *expression) Hash(h *fingerprint.Hasher) error {
	return h.Named("expression", fingerprint.String(e.source))
}

func init() {
	unmarshalers["expression"] = func(node *yaml.Node) (Matcher, error) {
		var source string
		if err := node.Decode(&source); err != nil {
			return nil, err
		}
		return Expression(source)
	}
}
