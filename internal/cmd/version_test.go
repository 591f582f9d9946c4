// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package cmd_test

import (
	"bytes"
	"flag"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/DataDog/pointcut/internal/cmd"
	"github.com/DataDog/pointcut/internal/version"
)

func versionFlags(t *testing.T, args ...string) *flag.FlagSet {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	_ = set.Bool("verbose", false, "")
	_ = set.Bool("static", false, "")
	require.NoError(t, set.Parse(args))
	return set
}

func TestVersion(t *testing.T) {
	t.Run("standard", func(t *testing.T) {
		var output bytes.Buffer
		ctx := cli.NewContext(&cli.App{Writer: &output}, versionFlags(t), nil)

		require.NoError(t, cmd.Version.Action(ctx))
		require.Equal(t, fmt.Sprintf("pointcut %s\n", version.Tag()), output.String())
	})

	t.Run("static", func(t *testing.T) {
		var output bytes.Buffer
		ctx := cli.NewContext(&cli.App{Writer: &output}, versionFlags(t, "-static"), nil)

		tag, _ := version.TagInfo()
		require.NoError(t, cmd.Version.Action(ctx))
		require.Equal(t, fmt.Sprintf("pointcut %s\n", tag), output.String())
	})

	t.Run("verbose", func(t *testing.T) {
		var output bytes.Buffer
		ctx := cli.NewContext(&cli.App{Writer: &output}, versionFlags(t, "-verbose"), nil)

		require.NoError(t, cmd.Version.Action(ctx))
		require.Equal(t, fmt.Sprintf("pointcut %s built with %s (%s/%s)\n", version.Tag(), runtime.Version(), runtime.GOOS, runtime.GOARCH), output.String())
	})
}
