package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewJoinCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewJoinCode()
		assert.Len(t, code, joinCodeLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(joinCodeAlphabet, c), "unexpected character %q", c)
		}
		seen[code] = true
	}
	// ambiguous characters never appear
	for code := range seen {
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "I")
	}
}
