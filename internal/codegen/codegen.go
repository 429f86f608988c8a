// Package codegen produces the human-shareable codes handed out for students
// and exams.
package codegen

import (
	"context"
	"errors"
	"math/rand"
)

// Alphabet is the character set codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	// StudentCodeLength is scoped per teacher, so collisions are rare.
	StudentCodeLength = 8
	// ExamCodeLength is globally scoped; uniqueness must be checked before commit.
	ExamCodeLength = 6
	// MaxAttempts bounds the re-roll loop in GenerateUnique.
	MaxAttempts = 5
)

// ErrSpaceExhausted indicates MaxAttempts consecutive draws collided.
var ErrSpaceExhausted = errors.New("code space exhausted")

// Generate returns a random code of the given length. Not cryptographically
// secure; callers must verify uniqueness before committing.
func Generate(length int) string {
	if length <= 0 {
		return ""
	}

	code := make([]byte, length)
	for i := range code {
		code[i] = Alphabet[rand.Intn(len(Alphabet))]
	}
	return string(code)
}

// GenerateUnique re-rolls until taken reports false, giving up after
// MaxAttempts draws with ErrSpaceExhausted.
func GenerateUnique(ctx context.Context, length int, taken func(ctx context.Context, code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code := Generate(length)
		exists, err := taken(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrSpaceExhausted
}
