// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/internal/singleton"
)

type unmarshalerFn func(*yaml.Node) (Matcher, error)

var unmarshalers = make(map[string]unmarshalerFn)

// FromYAML decodes a matcher from its YAML representation, a mapping with a
// single key naming the kind of rule.
func FromYAML(node *yaml.Node) (Matcher, error) {
	key, value, err := singleton.Unmarshal(node)
	if err != nil {
		return nil, err
	}

	unmarshaler, found := unmarshalers[key]
	if !found {
		return nil, fmt.Errorf("line %d: unknown pointcut type %q", node.Line, key)
	}

	m, err := unmarshaler(value)
	if err != nil {
		return nil, fmt.Errorf("line %d: %s: %w", value.Line, key, err)
	}
	return m, nil
}

func decodeList(node *yaml.Node) ([]Matcher, error) {
	var nodes []yaml.Node
	if err := node.Decode(&nodes); err != nil {
		return nil, err
	}

	list := make([]Matcher, len(nodes))
	for i := range nodes {
		var err error
		if list[i], err = FromYAML(&nodes[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}
