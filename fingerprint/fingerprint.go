// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package fingerprint computes stable identities for pointcut definitions, so
// that two independently loaded configurations describing the same rules can
// be recognized as equivalent.
package fingerprint

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"hash"
	"sync"
)

type Hasher struct {
	hash hash.Hash
}

type Hashable interface {
	Hash(h *Hasher) error
}

var pool = sync.Pool{New: func() any { return &Hasher{hash: sha512.New()} }}

// Fingerprint returns the URL-safe base64 encoding of the SHA-512 digest of
// the provided value. A nil value has the fingerprint of an empty input.
func Fingerprint(val Hashable) (string, error) {
	h, _ := pool.Get().(*Hasher)
	defer func() {
		h.hash.Reset()
		pool.Put(h)
	}()

	if val != nil {
		if err := val.Hash(h); err != nil {
			return "", err
		}
	}

	var buf [sha512.Size]byte
	return base64.URLEncoding.EncodeToString(h.hash.Sum(buf[:0])), nil
}

// Named writes a framed record to the hasher: the name, then each value
// prefixed by its position. Framing ensures that adjacent values cannot be
// confused with one another ("ab"+"c" vs "a"+"bc").
func (h *Hasher) Named(name string, vals ...Hashable) error {
	if _, err := fmt.Fprintf(h.hash, "\x01%s\x02", name); err != nil {
		return err
	}

	for idx, val := range vals {
		if _, err := fmt.Fprintf(h.hash, "\x01%d\x02", idx); err != nil {
			return err
		}
		if val == nil {
			if _, err := fmt.Fprint(h.hash, "\x00"); err != nil {
				return err
			}
		} else if err := val.Hash(h); err != nil {
			return err
		}
		if _, err := fmt.Fprint(h.hash, "\x03"); err != nil {
			return err
		}
	}

	_, err := fmt.Fprint(h.hash, "\x03", name)
	return err
}
