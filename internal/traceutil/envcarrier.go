// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package traceutil connects the spans of a command to a trace started by the
// process that launched it.
package traceutil

import (
	"strings"

	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const envVarPrefix = "DD_X_"

// EnvVarCarrier carries trace propagation headers as environment variables,
// with the header "x-datadog-trace-id" being spelled DD_X_X_DATADOG_TRACE_ID.
type EnvVarCarrier struct {
	Env *[]string
}

var (
	_ tracer.TextMapReader = EnvVarCarrier{}
	_ tracer.TextMapWriter = EnvVarCarrier{}
)

func (c EnvVarCarrier) ForeachKey(handler func(key string, val string) error) error {
	for _, entry := range *c.Env {
		if !strings.HasPrefix(entry, envVarPrefix) {
			continue
		}

		key, val, _ := strings.Cut(entry, "=")
		if err := handler(headerStyle(key), val); err != nil {
			return err
		}
	}
	return nil
}

func (c EnvVarCarrier) Set(key string, value string) {
	name := envVarStyle(key)
	for idx, entry := range *c.Env {
		if strings.HasPrefix(entry, name+"=") {
			(*c.Env)[idx] = name + "=" + value
			return
		}
	}
	*c.Env = append(*c.Env, name+"="+value)
}

// ParentFromEnv returns span options making new spans children of the span
// propagated through environ, if there is one.
func ParentFromEnv(environ []string) []ddtrace.StartSpanOption {
	sctx, err := tracer.Extract(EnvVarCarrier{Env: &environ})
	if err != nil || sctx == nil {
		return nil
	}
	return []ddtrace.StartSpanOption{tracer.ChildOf(sctx)}
}

func envVarStyle(key string) string {
	key = strings.ToUpper(key)
	return envVarPrefix + strings.ReplaceAll(key, "-", "_")
}

func headerStyle(key string) string {
	key = strings.TrimPrefix(key, envVarPrefix)
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "_", "-")
}
