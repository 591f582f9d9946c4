// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package config loads aspect definitions from YAML files.
package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/aspect"
	"github.com/DataDog/pointcut/dispatch"
	"github.com/DataDog/pointcut/fingerprint"
)

// File is the content of a configuration file.
type File struct {
	// Name is the path the file was loaded from.
	Name    string
	Meta    Meta
	Aspects []*aspect.Aspect
}

// Meta holds the descriptive fields of a configuration file.
type Meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// LoadFile reads, validates and decodes the configuration file at path.
func LoadFile(ctx context.Context, path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Load(ctx, file, path)
}

// Load reads, validates and decodes a configuration file from reader. The name
// is only used to identify the file in error messages.
func Load(ctx context.Context, reader io.Reader, name string) (*File, error) {
	log := zerolog.Ctx(ctx).With().Str("config", name).Logger()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	log.Trace().Msg("Validating configuration against schema")
	if err := Validate(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("validating %s: %w", name, err)
	}

	var raw struct {
		Meta    Meta             `yaml:"meta"`
		Aspects []*aspect.Aspect `yaml:"aspects"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	if err := aspect.CheckUnique(raw.Aspects); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	log.Debug().Int("aspects", len(raw.Aspects)).Msg("Loaded configuration")
	return &File{Name: name, Meta: raw.Meta, Aspects: raw.Aspects}, nil
}

// Dispatcher returns a new dispatcher for the file's aspects.
func (f *File) Dispatcher(opts ...dispatch.Option) *dispatch.Dispatcher {
	return dispatch.New(f.Aspects, opts...)
}

func (f *File) Hash(h *fingerprint.Hasher) error {
	return h.Named("config", fingerprint.List[*aspect.Aspect](f.Aspects))
}
