package otp

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strings"
)

// DefaultAlphabet holds uppercase letters and digits minus 0, O, 1 and I.
const DefaultAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultLength is used when Generate is asked for a non-positive length.
const DefaultLength = 6

// ErrAlphabetTooSmall is returned when an alphabet has fewer than two distinct characters.
var ErrAlphabetTooSmall = errors.New("otp: alphabet needs at least two distinct characters")

// Generator produces passcodes.
type Generator interface {
	Generate(length int) (string, error)
}

// Alphabet draws every character independently and uniformly from a fixed set.
type Alphabet struct {
	chars  string
	random io.Reader
}

// Option configures an Alphabet generator.
type Option func(*Alphabet)

// WithRandom replaces the entropy source; tests pass a deterministic reader.
func WithRandom(r io.Reader) Option {
	return func(a *Alphabet) { a.random = r }
}

// NewAlphabet builds a generator over chars; an empty chars selects DefaultAlphabet.
// Duplicate characters are collapsed so the distribution stays uniform.
func NewAlphabet(chars string, opts ...Option) (*Alphabet, error) {
	if chars == "" {
		chars = DefaultAlphabet
	}

	var sb strings.Builder
	seen := make(map[rune]struct{}, len(chars))
	for _, c := range chars {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		sb.WriteRune(c)
	}
	if len(seen) < 2 {
		return nil, ErrAlphabetTooSmall
	}

	a := &Alphabet{chars: sb.String(), random: rand.Reader}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Generate returns a code of the given length.
func (a *Alphabet) Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	runes := []rune(a.chars)
	limit := big.NewInt(int64(len(runes)))

	var sb strings.Builder
	sb.Grow(length)
	for range length {
		idx, err := rand.Int(a.random, limit)
		if err != nil {
			return "", err
		}
		sb.WriteRune(runes[idx.Int64()])
	}

	return sb.String(), nil
}
