// Package id generates prefixed NanoID identifiers for corrections and
// other string-keyed records.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for generated identifiers.
const (
	PrefixCorrection = "correction"
	PrefixRequest    = "req"
)

// Generate creates a prefixed unique ID, e.g. "correction-V1StGXR8_Z5jdHi6B-myT".
// The NanoID part is 21 URL-safe characters.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewCorrectionID returns a fresh correction identifier.
func NewCorrectionID() (string, error) {
	return Generate(PrefixCorrection)
}

// HasPrefix reports whether s looks like an ID generated with prefix.
func HasPrefix(s, prefix string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"-")
	return ok && len(rest) == 21
}
