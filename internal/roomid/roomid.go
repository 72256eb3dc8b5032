// Package roomid generates short join codes for rooms.
package roomid

import (
	"crypto/rand"
	"fmt"
)

// Crockford's base32 alphabet: no ambiguous i/l/o/u
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of a room code
const Length = 8

// RandSource interface for dependency injection of randomness
type RandSource interface {
	Intn(n int) int
}

// Generator produces room codes with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil RandSource uses crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new 8-character base32 room code
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new room code using the generator's RandSource
func (g *Generator) Generate() string {
	code := make([]byte, Length)

	if g.randSource != nil {
		for i := range code {
			code[i] = alphabet[g.randSource.Intn(len(alphabet))]
		}
		return string(code)
	}

	raw := make([]byte, Length)
	if _, err := rand.Read(raw); err != nil {
		panic("roomid: failed to read random bytes: " + err.Error())
	}
	for i, b := range raw {
		code[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(code)
}

// Validate checks that a room code is well-formed
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(code))
	}
	for i, char := range code {
		valid := false
		for _, validChar := range alphabet {
			if char == validChar {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
