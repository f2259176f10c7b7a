package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/subcrack/internal/cipher"
)

func TestKeyIsDerangement(t *testing.T) {
	gen := NewSeeded(42)
	for i := 0; i < 50; i++ {
		key := gen.Key()
		seen := map[rune]bool{}
		for idx, c := range key {
			require.NotEqual(t, rune('A'+idx), c, "letter maps to itself in %s", key)
			require.False(t, seen[c], "duplicate %c in %s", c, key)
			seen[c] = true
		}
		assert.Len(t, seen, 26)
	}
}

func TestSeededGeneratorIsDeterministic(t *testing.T) {
	assert.Equal(t, NewSeeded(7).Key(), NewSeeded(7).Key())
}

func TestEncipherPreservesNonLetters(t *testing.T) {
	key := NewSeeded(1).Key()
	out := key.Encipher("Hi, 42 üï!")
	require.Equal(t, len([]rune("Hi, 42 üï!")), len([]rune(out)))
	assert.Equal(t, ", 42 üï!", string([]rune(out)[2:]))
	assert.Equal(t, key[7], []rune(out)[0])
	assert.Equal(t, key[8], []rune(out)[1])
}

func TestSolutionRulesRecoverPlaintext(t *testing.T) {
	gen := NewSeeded(99)
	key := gen.Key()
	for _, passage := range Passages() {
		ciphertext := key.Encipher(passage)
		assert.NotEqual(t, strings.ToUpper(passage), ciphertext)
		recovered := cipher.ApplySubstitutions(ciphertext, key.SolutionRules())
		assert.Equal(t, strings.ToLower(passage), recovered)
	}
}

func TestCiphertextFrequenciesArePermuted(t *testing.T) {
	key := NewSeeded(3).Key()
	passage := Passages()[0]
	plain := cipher.CountFrequencies(passage)
	enc := cipher.CountFrequencies(key.Encipher(passage))
	require.Equal(t, plain.Total(), enc.Total())
	for letter, n := range plain {
		assert.Equal(t, n, enc[key[letter-'A']])
	}
}
