// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package may provides the three-valued outcome of cheap, ahead-of-time
// pre-filters that run before precise pointcut evaluation.
package may

import (
	"fmt"
)

// MatchType is an enumeration of the possible outcomes of a pre-filter.
type MatchType int

const (
	// Unknown indicates that the pre-filter cannot decide; precise evaluation is required.
	Unknown MatchType = iota
	// Match indicates that the pointcut matches everything in the given context.
	Match
	// CantMatch indicates that the pointcut definitely does not match the given context.
	CantMatch
)

func (m MatchType) String() string {
	switch m {
	case Unknown:
		return "unknown"
	case Match:
		return "match"
	case CantMatch:
		return "cant-match"
	default:
		return fmt.Sprintf("MatchType(%d)", int(m))
	}
}

// Excludes is true when the outcome rules out any match.
func (m MatchType) Excludes() bool {
	return m == CantMatch
}

// Not returns the logical NOT of a MatchType value
// Truth table:
//
// | A       | NOT A   |
// |---------|---------|
// | Cant    | Match   |
// | Unknown | Unknown |
// | Match   | Cant    |
func (m MatchType) Not() MatchType {
	switch m {
	case Match:
		return CantMatch
	case CantMatch:
		return Match
	case Unknown:
		return Unknown
	default:
		panic(fmt.Sprintf("unknown MatchType: %d", m))
	}
}

// Or returns the logical OR of two MatchType values
// Truth table:
//
// | A       | B       | A OR B  |
// |---------|---------|---------|
// | Cant    | Cant    | Cant    |
// | Cant    | Unknown | Unknown |
// | Cant    | Match   | Match   |
// | Unknown | Unknown | Unknown |
// | Unknown | Match   | Match   |
// | Match   | Match   | Match   |
func (m MatchType) Or(other MatchType) MatchType {
	if m == Match || other == Match {
		return Match
	}

	if m == CantMatch && other == CantMatch {
		return CantMatch
	}

	return Unknown
}

// And returns the logical AND of two MatchType values
// Truth table:
//
// | A       | B       | A AND B |
// |---------|---------|---------|
// | Cant    | Cant    | Cant    |
// | Cant    | Unknown | Cant    |
// | Cant    | Match   | Cant    |
// | Unknown | Unknown | Unknown |
// | Unknown | Match   | Unknown |
// | Match   | Match   | Match   |
func (m MatchType) And(other MatchType) MatchType {
	if m == CantMatch || other == CantMatch {
		return CantMatch
	}
	if m == Match && other == Match {
		return Match
	}
	return Unknown
}

// FromBool converts a decided boolean outcome into a MatchType.
func FromBool(b bool) MatchType {
	if b {
		return Match
	}
	return CantMatch
}
