package shortkey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := Generate()
		assert.Len(t, code, Length)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(Alphabet, c), "unexpected character %q in %q", c, code)
		}
		seen[code] = true
	}

	// 100 draws from 36^7 values colliding down to a handful would
	// indicate a broken generator.
	assert.Greater(t, len(seen), 90)
}
