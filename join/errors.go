// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"errors"
	"fmt"
)

// ErrProtocolViolation is the error matched by every [ProtocolViolationError].
var ErrProtocolViolation = errors.New("illegal method matcher usage")

// ProtocolViolationError is the panic value raised when the argument-aware
// evaluation is requested from a static matcher.
type ProtocolViolationError struct {
	// Matcher is the Go type of the offending matcher.
	Matcher string
	// Method identifies the method that was being evaluated.
	Method string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("%v: %s is static and cannot evaluate the arguments of %s", ErrProtocolViolation, e.Matcher, e.Method)
}

func (*ProtocolViolationError) Unwrap() error {
	return ErrProtocolViolation
}
