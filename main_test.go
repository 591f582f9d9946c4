// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/pointcut/internal/log"
	"github.com/DataDog/pointcut/internal/version"
)

func TestApp(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "pointcut.yml")
	require.NoError(t, os.WriteFile(config, []byte("aspects:\n  - id: getters\n    pointcut: { name: Get* }\n"), 0o644))
	logFile := filepath.Join(dir, "pointcut.log")

	t.Run("version", func(t *testing.T) {
		var out bytes.Buffer
		app := newApp()
		app.Writer = &out
		require.NoError(t, app.RunContext(context.Background(), []string{"pointcut", "version"}))
		assert.Equal(t, "pointcut "+version.Tag()+"\n", out.String())
	})

	t.Run("log file", func(t *testing.T) {
		t.Setenv(log.EnvVarLogFile, logFile)

		var out bytes.Buffer
		app := newApp()
		app.Writer = &out
		require.NoError(t, app.RunContext(context.Background(), []string{"pointcut", "--log-level", "debug", "validate", config}))
		assert.Equal(t, config+": 1 aspects (0 dynamic)\n", out.String())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		var loaded map[string]any
		for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
			var entry map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
			if entry["message"] == "Loaded configuration" {
				loaded = entry
			}
		}
		require.NotNil(t, loaded, "no configuration load was logged:\n%s", data)
		assert.Equal(t, "debug", loaded["level"])
		assert.Equal(t, config, loaded["config"])
		assert.EqualValues(t, 1, loaded["aspects"])
	})

	t.Run("invalid log level", func(t *testing.T) {
		app := newApp()
		app.Writer = &bytes.Buffer{}
		app.ErrWriter = &bytes.Buffer{}
		err := app.RunContext(context.Background(), []string{"pointcut", "--log-level", "loud", "version"})
		require.ErrorContains(t, err, `invalid log level "loud"`)
	})
}
