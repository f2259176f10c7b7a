// Package generator builds practice ciphertexts.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/verte-zerg/subcrack/internal/cipher"
)

var passages = []string{
	"It was the best of times, it was the worst of times, it was the age of wisdom, " +
		"it was the age of foolishness, it was the epoch of belief, it was the epoch of incredulity, " +
		"it was the season of Light, it was the season of Darkness.",
	"Call me Ishmael. Some years ago, never mind how long precisely, having little or no money " +
		"in my purse, and nothing particular to interest me on shore, I thought I would sail about " +
		"a little and see the watery part of the world.",
	"It is a truth universally acknowledged, that a single man in possession of a good fortune, " +
		"must be in want of a wife. However little known the feelings or views of such a man may be " +
		"on his first entering a neighbourhood, this truth is so well fixed in the minds of the " +
		"surrounding families, that he is considered the rightful property of some one or other of " +
		"their daughters.",
	"The quick brown fox jumps over the lazy dog while the five boxing wizards jump quickly " +
		"and a wizard's job is to vex chumps quickly in fog.",
}

// Key maps each plaintext letter A-Z (by index) to its ciphertext letter.
type Key [26]rune

// Generator produces random keys and passages.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Key returns a random permutation of the alphabet in which no letter
// maps to itself.
func (g *Generator) Key() Key {
	var k Key
	for {
		perm := g.rnd.Perm(26)
		fixed := false
		for i, p := range perm {
			if i == p {
				fixed = true
				break
			}
			k[i] = rune('A' + p)
		}
		if !fixed {
			return k
		}
	}
}

// Passage returns one of the built-in English passages.
func (g *Generator) Passage() string {
	return passages[g.rnd.Intn(len(passages))]
}

// Passages returns every built-in passage.
func Passages() []string {
	return append([]string(nil), passages...)
}

// Encipher replaces each ASCII letter of plaintext with its upper-case
// ciphertext letter. Other characters pass through.
func (k Key) Encipher(plaintext string) string {
	var b strings.Builder
	b.Grow(len(plaintext))
	for _, r := range plaintext {
		upper := unicode.ToUpper(r)
		if upper >= 'A' && upper <= 'Z' && r < unicode.MaxASCII {
			b.WriteRune(k[upper-'A'])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SolutionRules returns the rules that map the ciphertext back to the
// plaintext, in plaintext order.
func (k Key) SolutionRules() cipher.Rules {
	rules := make(cipher.Rules, 0, len(k))
	for i, c := range k {
		rules = append(rules, cipher.Rule{From: c, To: unicode.ToLower(rune('A' + i))})
	}
	return rules
}

// String renders the key as the 26 ciphertext letters for A-Z.
func (k Key) String() string {
	return string(k[:])
}
