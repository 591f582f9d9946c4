// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package singleton

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Unmarshal decodes a mapping with exactly one entry, returning its key and
// value. This is the shape used to tag polymorphic YAML values, as in
// `name: Get*` or `not: {...}`.
func Unmarshal(node *yaml.Node) (key string, value *yaml.Node, err error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return "", nil, fmt.Errorf("line %d: not a singleton mapping", node.Line)
	}

	if err = node.Content[0].Decode(&key); err != nil {
		return "", nil, err
	}

	return key, node.Content[1], nil
}
