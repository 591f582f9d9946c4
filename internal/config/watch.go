// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/DataDog/pointcut/fingerprint"
)

// debounce is how long Watch waits for a burst of file system events to end
// before reloading. Editors commonly produce several events per save.
const debounce = 100 * time.Millisecond

// Watch loads the configuration file at path, then reloads it every time it
// changes, until ctx is done. The callback receives every loaded version that
// differs from the previous one, or the error that prevented loading. It is
// always called from the goroutine running Watch.
func Watch(ctx context.Context, path string, fn func(*File, error)) error {
	log := zerolog.Ctx(ctx)

	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directory, so that atomic replacements of the file
	// (write to a temporary file, then rename) are observed.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	var last string
	reload := func() {
		file, err := LoadFile(ctx, path)
		if err != nil {
			fn(nil, err)
			return
		}
		fp, err := fingerprint.Fingerprint(file)
		if err != nil {
			fn(nil, fmt.Errorf("fingerprinting %s: %w", path, err))
			return
		}
		if fp == last {
			log.Debug().Str("config", path).Msg("Configuration is unchanged, ignoring")
			return
		}
		last = fp
		fn(file, nil)
	}

	reload()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			log.Trace().Stringer("event", event).Msg("Configuration file changed")
			if event.Has(fsnotify.Remove) && !event.Has(fsnotify.Create) {
				log.Warn().Str("config", path).Msg("Configuration file was removed; keeping the current configuration")
				continue
			}
			pending = time.After(debounce)

		case <-pending:
			pending = nil
			reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Str("config", path).Msg("File watcher error")
		}
	}
}
