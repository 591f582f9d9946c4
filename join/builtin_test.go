// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"io"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/pointcut/may"
	"github.com/DataDog/pointcut/method"
	"github.com/DataDog/pointcut/typed"
)

type role string

type service struct{}

func TestNames(t *testing.T) {
	getName := &method.Method{Name: "GetName"}
	setName := &method.Method{Name: "SetName"}

	glob := MustName("Get*")
	assert.True(t, glob.Matches(getName, nil))
	assert.False(t, glob.Matches(setName, nil))

	alternatives := MustName("{Get,Set}Name")
	assert.True(t, alternatives.Matches(getName, nil))
	assert.True(t, alternatives.Matches(setName, nil))

	expr := MustNameRegexp(`^(?:Get|Find)[A-Z]`)
	assert.True(t, expr.Matches(getName, nil))
	assert.False(t, expr.Matches(&method.Method{Name: "Getaway"}, nil))

	_, err := Name("Get[")
	require.Error(t, err)
	_, err = NameRegexp("(unbalanced")
	require.Error(t, err)
	assert.Panics(t, func() { MustNameRegexp("(unbalanced") })
}

func TestImportPath(t *testing.T) {
	for name, tc := range map[string]struct {
		pattern string
		path    string
		match   bool
	}{
		"exact":                 {"github.com/myorg/mypackage", "github.com/myorg/mypackage", true},
		"exact mismatch":        {"github.com/myorg/mypackage", "github.com/myorg/other", false},
		"single segment":        {"github.com/myorg/*", "github.com/myorg/mypackage", true},
		"single segment nested": {"github.com/myorg/*", "github.com/myorg/service/api", false},
		"any depth":             {"github.com/myorg/**", "github.com/myorg/service/api", true},
		"question mark":         {"github.com/myorg/service?", "github.com/myorg/service1", true},
		"question mark extra":   {"github.com/myorg/service?", "github.com/myorg/service12", false},
	} {
		t.Run(name, func(t *testing.T) {
			m := MustImportPath(tc.pattern)
			assert.Equal(t, tc.match, m.Matches(&method.Method{PkgPath: tc.path}, nil))
		})
	}
}

func TestReceiverAndTarget(t *testing.T) {
	pointerRecv := &method.Method{Name: "Do", Receiver: &typed.TypeName{ImportPath: "example.com/app", Name: "Service", Pointer: true}}
	valueRecv := &method.Method{Name: "Do", Receiver: &typed.TypeName{ImportPath: "example.com/app", Name: "Service"}}
	function := &method.Method{Name: "Do"}

	byValue := Receiver(typed.MustTypeName("example.com/app.Service"))
	byPointer := Receiver(typed.MustTypeName("*example.com/app.Service"))

	assert.True(t, byValue.Matches(pointerRecv, nil))
	assert.True(t, byValue.Matches(valueRecv, nil))
	assert.False(t, byValue.Matches(function, nil))
	assert.True(t, byPointer.Matches(pointerRecv, nil))
	assert.False(t, byPointer.Matches(valueRecv, nil))

	svc := Target(typed.MustTypeName("github.com/DataDog/pointcut/join.service"))
	assert.True(t, svc.Matches(function, reflect.TypeOf(service{})))
	assert.True(t, svc.Matches(function, reflect.TypeOf(&service{})))
	assert.False(t, svc.Matches(function, reflect.TypeOf("")))
	assert.False(t, svc.Matches(function, nil))
}

func TestSignature(t *testing.T) {
	m := &method.Method{
		Name:    "Find",
		Params:  []string{"context.Context", "string"},
		Results: []string{"any", "error"},
	}

	for name, tc := range map[string]struct {
		args, results []string
		match         bool
	}{
		"unconstrained":     {nil, nil, true},
		"exact":             {[]string{"context.Context", "string"}, []string{"any", "error"}, true},
		"args only":         {[]string{"context.Context", "string"}, nil, true},
		"results only":      {nil, []string{"interface{}", "error"}, true},
		"wrong order":       {[]string{"string", "context.Context"}, nil, false},
		"no args required":  {[]string{}, nil, false},
		"too few results":   {nil, []string{"error"}, false},
		"spaces normalized": {[]string{" context.Context", "string "}, nil, true},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.match, Signature(tc.args, tc.results).Matches(m, nil))
		})
	}

	assert.True(t, Signature([]string{}, []string{}).Matches(&method.Method{Name: "Close"}, nil))
}

type stream struct{}

func (*stream) Write(p []byte) (int, error)             { return len(p), nil }
func (*stream) ReadRune() (r rune, size int, err error) { return 0, 0, nil }

const streamSource = `package join

type stream struct{}

func (*stream) Write(p []byte) (int, error)             { return len(p), nil }
func (*stream) ReadRune() (r rune, size int, err error) { return 0, 0, nil }
`

func TestSignatureAcrossDescriptors(t *testing.T) {
	typ := reflect.TypeOf(&stream{})
	parsed, err := method.ParseFile("stream.go", streamSource, typ.Elem().PkgPath())
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	for i, name := range []string{"Write", "ReadRune"} {
		reflected, found := method.Of(typ, name)
		require.True(t, found)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, reflected.ID(), parsed[i].ID())
			assert.Equal(t, reflected.Params, parsed[i].Params)
			assert.Equal(t, reflected.Results, parsed[i].Results)
		})
	}

	for name, tc := range map[string]struct {
		rule     Matcher
		expected string
	}{
		"byte alias": {Signature([]string{"[]byte"}, []string{"int", "error"}), "Write"},
		"uint8":      {Signature([]string{"[]uint8"}, nil), "Write"},
		"rune alias": {Signature([]string{}, []string{"rune", "int", "error"}), "ReadRune"},
	} {
		t.Run(name, func(t *testing.T) {
			reflected, _ := method.Of(typ, tc.expected)
			assert.True(t, tc.rule.Matches(reflected, typ), "reflected descriptor")

			for _, m := range parsed {
				assert.Equal(t, m.Name == tc.expected, tc.rule.Matches(m, nil), "parsed %s", m.Name)
			}
		})
	}

	writer, found := method.Of(reflect.TypeOf((*io.Writer)(nil)).Elem(), "Write")
	require.True(t, found)
	assert.True(t, Signature([]string{"[]byte"}, []string{"int", "error"}).Matches(writer, nil))
}

func TestDirective(t *testing.T) {
	m := &method.Method{Name: "Get", Directives: []string{"go:noinline", "pointcut:traced span=get"}}

	assert.True(t, Directive("pointcut:traced").Matches(m, nil))
	assert.True(t, Directive("//pointcut:traced").Matches(m, nil))
	assert.True(t, Directive("go:noinline").Matches(m, nil))
	assert.False(t, Directive("pointcut:trace").Matches(m, nil))
	assert.False(t, Directive("pointcut:audit").Matches(m, nil))
	assert.False(t, Directive("pointcut:traced").Matches(&method.Method{Name: "Get"}, nil))
}

func TestArgEquals(t *testing.T) {
	grant := &method.Method{Name: "Grant", Params: []string{"string"}}
	variadic := &method.Method{Name: "Log", Params: []string{"...any"}, Variadic: true}
	noArgs := &method.Method{Name: "Close"}

	m := MustArgEquals(0, "admin")
	assert.True(t, m.Matches(grant, nil))
	assert.True(t, m.Matches(variadic, nil))
	assert.False(t, m.Matches(noArgs, nil), "a method without parameters can never receive the argument")

	assert.True(t, m.MatchesArgs(grant, nil, []any{"admin"}))
	assert.True(t, m.MatchesArgs(grant, nil, []any{role("admin")}), "named string types compare by value")
	assert.False(t, m.MatchesArgs(grant, nil, []any{"guest"}))
	assert.False(t, m.MatchesArgs(grant, nil, []any{42}))

	num := MustArgEquals(1, 3)
	assert.True(t, num.MatchesArgs(nil, nil, []any{"x", int64(3)}))
	assert.True(t, num.MatchesArgs(nil, nil, []any{"x", 3.0}))
	assert.True(t, num.MatchesArgs(nil, nil, []any{"x", uint8(3)}))
	assert.False(t, num.MatchesArgs(nil, nil, []any{"x", "3"}))
	assert.False(t, num.MatchesArgs(nil, nil, []any{"x"}))

	for name, tc := range map[string]struct {
		expected, actual any
		match            bool
	}{
		"beyond float precision": {int64(1<<53 + 1), int64(1 << 53), false},
		"large equal":            {int64(1<<53 + 1), int64(1<<53 + 1), true},
		"large unsigned":         {uint64(math.MaxUint64), uint64(math.MaxUint64 - 1), false},
		"signed and unsigned":    {int64(1<<62 + 1), uint64(1<<62 + 1), true},
		"negative and unsigned":  {int64(-1), uint64(math.MaxUint64), false},
		"unsigned and negative":  {uint64(math.MaxUint64), int8(-1), false},
		"float and integer":      {2.5, 2, false},
		"integral float":         {int32(7), 7.0, true},
	} {
		t.Run(name, func(t *testing.T) {
			rule := MustArgEquals(0, tc.expected)
			assert.Equal(t, tc.match, rule.MatchesArgs(nil, nil, []any{tc.actual}))
		})
	}

	isNil := MustArgEquals(0, nil)
	assert.True(t, isNil.MatchesArgs(nil, nil, []any{nil}))
	assert.False(t, isNil.MatchesArgs(nil, nil, []any{0}))

	_, err := ArgEquals(-1, "admin")
	require.Error(t, err)
	_, err = ArgEquals(0, []string{"admin"})
	require.Error(t, err)
}

func TestArgType(t *testing.T) {
	m := MustArgType(0, "*github.com/DataDog/pointcut/join.service")
	assert.True(t, m.MatchesArgs(nil, nil, []any{&service{}}))
	assert.False(t, m.MatchesArgs(nil, nil, []any{service{}}))
	assert.False(t, m.MatchesArgs(nil, nil, []any{nil}))
	assert.False(t, m.MatchesArgs(nil, nil, nil))

	_, err := ArgType(0, "")
	require.Error(t, err)
}

func TestExpression(t *testing.T) {
	m := &method.Method{
		Name:     "Grant",
		PkgPath:  "example.com/app",
		Receiver: &typed.TypeName{ImportPath: "example.com/app", Name: "Service", Pointer: true},
		Params:   []string{"string", "int"},
	}

	for name, tc := range map[string]struct {
		source string
		args   []any
		target reflect.Type
		match  bool
	}{
		"args":            {`args[0] == "admin" && args[1] > 2`, []any{"admin", 3}, nil, true},
		"args mismatch":   {`args[0] == "admin" && args[1] > 2`, []any{"admin", 1}, nil, false},
		"out of bounds":   {`args[2] == "x"`, []any{"admin", 1}, nil, false},
		"method":          {`method.startsWith("Gr")`, nil, nil, true},
		"receiver":        {`receiver == "*example.com/app.Service"`, nil, nil, true},
		"pkg":             {`pkg.endsWith("/app")`, nil, nil, true},
		"target":          {`target == "*github.com/DataDog/pointcut/join.service"`, nil, reflect.TypeOf(&service{}), true},
		"unknown target":  {`target == ""`, nil, nil, true},
		"string function": {`args[0].lowerAscii() == "admin"`, []any{"ADMIN"}, nil, true},
	} {
		t.Run(name, func(t *testing.T) {
			expr, err := Expression(tc.source)
			require.NoError(t, err)
			assert.True(t, expr.Matches(m, tc.target))
			assert.Equal(t, tc.match, expr.MatchesArgs(m, tc.target, tc.args))
		})
	}

	_, err := Expression(`args[0] +`)
	require.Error(t, err)
	_, err = Expression(`"not a bool"`)
	require.ErrorIs(t, err, errExpressionResultType)
}

func TestComposites(t *testing.T) {
	getName := &method.Method{Name: "GetName", Params: []string{"string"}}
	setName := &method.Method{Name: "SetName", Params: []string{"string"}}
	admin := MustArgEquals(0, "admin")

	t.Run("all-of", func(t *testing.T) {
		assert.False(t, AllOf().Matches(getName, nil), "empty conjunction never matches")
		assert.Same(t, admin, AllOf(admin), "single requirement is returned as-is")

		static := AllOf(MustName("*Name"), Not(MustName("Set*")))
		assert.False(t, IsDynamic(static))
		assert.True(t, static.Matches(getName, nil))
		assert.False(t, static.Matches(setName, nil))

		dynamic := AllOf(MustName("Get*"), admin)
		require.True(t, IsDynamic(dynamic))
		assert.True(t, dynamic.Matches(getName, nil))
		assert.False(t, dynamic.Matches(setName, nil))
		assert.True(t, MatchesArgs(dynamic, getName, nil, []any{"admin"}))
		assert.False(t, MatchesArgs(dynamic, getName, nil, []any{"guest"}))
	})

	t.Run("one-of", func(t *testing.T) {
		assert.False(t, OneOf().Matches(getName, nil))

		dynamic := OneOf(MustName("Set*"), AllOf(MustName("Get*"), admin))
		require.True(t, IsDynamic(dynamic))
		assert.True(t, dynamic.Matches(getName, nil))
		assert.True(t, dynamic.Matches(setName, nil))

		// SetName is accepted by the static candidate whatever the arguments.
		assert.True(t, MatchesArgs(dynamic, setName, nil, []any{"guest"}))
		// GetName is only accepted through the dynamic candidate.
		assert.True(t, MatchesArgs(dynamic, getName, nil, []any{"admin"}))
		assert.False(t, MatchesArgs(dynamic, getName, nil, []any{"guest"}))
	})

	t.Run("not", func(t *testing.T) {
		static := Not(MustName("Get*"))
		assert.False(t, IsDynamic(static))
		assert.False(t, static.Matches(getName, nil))
		assert.True(t, static.Matches(setName, nil))

		dynamic := Not(AllOf(MustName("Get*"), admin))
		require.True(t, IsDynamic(dynamic))
		// The pre-check must not reject anything the negation could accept.
		assert.True(t, dynamic.Matches(getName, nil))
		assert.True(t, dynamic.Matches(setName, nil))
		assert.False(t, MatchesArgs(dynamic, getName, nil, []any{"admin"}))
		assert.True(t, MatchesArgs(dynamic, getName, nil, []any{"guest"}))
		assert.True(t, MatchesArgs(dynamic, setName, nil, []any{"admin"}))
	})
}

func TestTypeMayMatch(t *testing.T) {
	svcType := reflect.TypeOf(&service{})
	strType := reflect.TypeOf("")
	svc := Target(typed.MustTypeName("github.com/DataDog/pointcut/join.service"))

	for name, tc := range map[string]struct {
		matcher  Matcher
		target   reflect.Type
		expected may.MatchType
	}{
		"no filter":           {MustName("Get*"), svcType, may.Unknown},
		"true":                {True, strType, may.Match},
		"false":               {False, svcType, may.CantMatch},
		"target match":        {svc, svcType, may.Match},
		"target mismatch":     {svc, strType, may.CantMatch},
		"target unknown":      {svc, nil, may.CantMatch},
		"all-of undecided":    {AllOf(svc, MustName("Get*")), svcType, may.Unknown},
		"all-of excluded":     {AllOf(svc, MustName("Get*")), strType, may.CantMatch},
		"all-of empty":        {AllOf(), svcType, may.CantMatch},
		"one-of decided":      {OneOf(svc, MustName("Get*")), svcType, may.Match},
		"one-of undecided":    {OneOf(svc, MustName("Get*")), strType, may.Unknown},
		"one-of excluded":     {OneOf(svc, False), strType, may.CantMatch},
		"not":                 {Not(svc), strType, may.Match},
		"not dynamic":         {Not(AllOf(svc, MustArgEquals(0, "x"))), strType, may.Match},
		"not dynamic unknown": {Not(AllOf(svc, MustArgEquals(0, "x"))), svcType, may.Unknown},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, TypeMayMatch(tc.matcher, tc.target))
		})
	}
}
