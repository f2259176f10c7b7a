package cipher

import (
	"fmt"
	"sort"
	"strings"
)

// Order selects how frequency listings are sorted.
type Order string

const (
	// OrderCount sorts by descending count, ties alphabetical.
	OrderCount Order = "count"
	// OrderAlpha sorts A to Z.
	OrderAlpha Order = "alpha"
)

// ParseOrder validates an order name. Empty input selects OrderCount.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderCount:
		return OrderCount, nil
	case OrderAlpha:
		return OrderAlpha, nil
	default:
		return "", fmt.Errorf("unknown order %q (use %s or %s)", s, OrderCount, OrderAlpha)
	}
}

// Counts maps an uppercase letter to the number of times it occurred.
// Letters that never occurred are absent.
type Counts map[rune]int

// CountFrequencies counts the ASCII letters of text case-insensitively.
// Everything else, including letters outside A-Z, is skipped.
func CountFrequencies(text string) Counts {
	counts := Counts{}
	for _, r := range text {
		if letter, ok := asciiLetter(r); ok {
			counts[letter]++
		}
	}
	return counts
}

// Total returns the number of letters counted.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Percent returns the share of letter in percent, or 0 when nothing was
// counted.
func (c Counts) Percent(letter rune) float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c[letter]) / float64(total) * 100
}

// Percentages converts the counts into percentages of the total. It
// returns nil when no letters were counted.
func (c Counts) Percentages(order Order) []LetterPercent {
	total := c.Total()
	if total == 0 {
		return nil
	}
	out := make([]LetterPercent, 0, len(c))
	for letter, n := range c {
		out = append(out, LetterPercent{
			Letter:  letter,
			Percent: float64(n) / float64(total) * 100,
		})
	}
	if order == OrderAlpha {
		sort.Slice(out, func(i, j int) bool { return out[i].Letter < out[j].Letter })
		return out
	}
	sortByPercent(out)
	return out
}

// Merge adds other into c.
func (c Counts) Merge(other Counts) {
	for letter, n := range other {
		c[letter] += n
	}
}

func asciiLetter(r rune) (rune, bool) {
	switch {
	case r >= 'A' && r <= 'Z':
		return r, true
	case r >= 'a' && r <= 'z':
		return r - 'a' + 'A', true
	default:
		return 0, false
	}
}
