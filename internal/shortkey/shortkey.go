// Package shortkey generates the random short codes appended to the
// service's base URL.
package shortkey

import (
	"crypto/rand"
	"math/big"
)

// Alphabet is the base-36 character set short codes are drawn from.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the fixed length of a generated short code.
const Length = 7

// Generate returns a random short code of Length characters from Alphabet.
// Uniqueness is not guaranteed here; callers retry on a store conflict.
func Generate() string {
	code := make([]byte, Length)
	for i := range code {
		randomIndex, _ := rand.Int(rand.Reader, big.NewInt(int64(len(Alphabet))))
		code[i] = Alphabet[randomIndex.Int64()]
	}

	return string(code)
}
