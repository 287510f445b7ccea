// Package id generates short prefixed identifiers for organize runs and
// event stream clients.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Alphabet avoids '-' and '_' so IDs stay readable in log lines and paths.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	// Length of the random part.
	Length = 12

	// RunPrefix tags identifiers of organize runs.
	RunPrefix = "run"
)

// Generate returns prefix-xxxxxxxxxxxx with a random lowercase alphanumeric tail.
func Generate(prefix string) (string, error) {
	tail, err := gonanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + tail, nil
}

// MustGenerate is like Generate but panics if the system has no entropy.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return MustGenerate(RunPrefix)
}
