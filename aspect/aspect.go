// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package aspect binds a pointcut to an identity and a precedence, which is
// what an interception engine needs to decide which aspects apply to a call.
package aspect

import (
	"cmp"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/join"
)

// Aspect names a pointcut. The advice it guards is opaque to this package.
type Aspect struct {
	// ID is the identifier of the aspect within its configuration file.
	ID string
	// Description is a free-form, human-readable explanation of the aspect.
	Description string
	// Order is the precedence of the aspect; lower values apply first.
	Order int
	// Pointcut selects the method invocations the aspect applies to.
	Pointcut join.Matcher
}

// IsDynamic returns true if the aspect's pointcut needs the arguments of each
// invocation to decide whether it applies.
func (a *Aspect) IsDynamic() bool {
	return join.IsDynamic(a.Pointcut)
}

func (a *Aspect) String() string {
	kind := "static"
	if a.IsDynamic() {
		kind = "dynamic"
	}
	return fmt.Sprintf("%s (order %d, %s)", a.ID, a.Order, kind)
}

func (a *Aspect) Hash(h *fingerprint.Hasher) error {
	return h.Named(
		"aspect",
		fingerprint.String(a.ID),
		fingerprint.Int(a.Order),
		a.Pointcut,
	)
}

// Compare orders aspects by precedence, then by ID.
func Compare(a, b *Aspect) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func (a *Aspect) UnmarshalYAML(node *yaml.Node) error {
	var ti struct {
		ID          string    `yaml:"id"`
		Description string    `yaml:"description"`
		Order       int       `yaml:"order"`
		Pointcut    yaml.Node `yaml:"pointcut"`
	}
	if err := node.Decode(&ti); err != nil {
		return err
	}

	if ti.ID == "" {
		return fmt.Errorf("line %d: missing required key 'id'", node.Line)
	}
	if ti.Pointcut.Kind == 0 {
		return fmt.Errorf("line %d: aspect %q: missing required key 'pointcut'", node.Line, ti.ID)
	}

	pointcut, err := join.FromYAML(&ti.Pointcut)
	if err != nil {
		return fmt.Errorf("aspect %q: %w", ti.ID, err)
	}

	a.ID = ti.ID
	a.Description = strings.TrimSpace(ti.Description)
	a.Order = ti.Order
	a.Pointcut = pointcut
	return nil
}

// ErrDuplicateID is returned by [CheckUnique] when two aspects share an ID.
var ErrDuplicateID = errors.New("duplicate aspect id")

// CheckUnique returns an error wrapping [ErrDuplicateID] if several aspects in
// the list share the same ID.
func CheckUnique(list []*Aspect) error {
	seen := make(map[string]struct{}, len(list))
	for _, a := range list {
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

var (
	_ yaml.Unmarshaler     = (*Aspect)(nil)
	_ fingerprint.Hashable = (*Aspect)(nil)
)
