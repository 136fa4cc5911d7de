package roomcode

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	// Length is the number of characters in a room code
	Length = 6

	// Alphabet holds the characters a room code is drawn from
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_roomcode.go github.com/KirkDiggler/blacksheep/internal/common/roomcode Generator

// Generator produces room codes
type Generator interface {
	NewCode() string
}

// DefaultGenerator draws codes from crypto/rand
type DefaultGenerator struct{}

func New() *DefaultGenerator {
	return &DefaultGenerator{}
}

// NewCode returns a random code of Length characters from Alphabet
func (g *DefaultGenerator) NewCode() string {
	max := big.NewInt(int64(len(Alphabet)))
	var b strings.Builder
	b.Grow(Length)
	for range Length {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String()
}

// Normalize upper-cases and trims a user supplied code
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code has the expected length and alphabet
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(Alphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
