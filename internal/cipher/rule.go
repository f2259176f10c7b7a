package cipher

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrInvalidRule reports a substitution side that is not exactly one character.
	ErrInvalidRule = errors.New("please enter valid characters")
	// ErrNoSelection reports a removal without a selected rule.
	ErrNoSelection = errors.New("please select a substitution to remove")
)

// Rule maps one ciphertext character to one plaintext guess. From is kept
// upper-case and To lower-case.
type Rule struct {
	From rune
	To   rune
}

// NewRule validates user input for a rule. Each side must be exactly one
// character.
func NewRule(from, to string) (Rule, error) {
	f, err := singleRune("from", from)
	if err != nil {
		return Rule{}, err
	}
	t, err := singleRune("to", to)
	if err != nil {
		return Rule{}, err
	}
	return Rule{From: unicode.ToUpper(f), To: unicode.ToLower(t)}, nil
}

// ParseRule parses the FROM=TO form used on the command line, e.g. "E=x".
func ParseRule(s string) (Rule, error) {
	if runes := []rune(s); len(runes) == 3 && runes[1] == '=' {
		return NewRule(string(runes[0]), string(runes[2]))
	}
	from, to, ok := strings.Cut(s, "=")
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q is not FROM=TO", ErrInvalidRule, s)
	}
	return NewRule(from, to)
}

// String renders the rule as "E→x".
func (r Rule) String() string {
	return string(r.From) + "→" + string(r.To)
}

func singleRune(side, s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: %s must be exactly one character, got %q", ErrInvalidRule, side, s)
	}
	if !utf8.ValidString(s) {
		return 0, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidRule, side)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Rules is an ordered sequence of substitutions. Duplicate From entries
// are allowed; the last one wins when applied.
type Rules []Rule

// Add appends a rule.
func (rs *Rules) Add(r Rule) {
	*rs = append(*rs, r)
}

// Remove deletes the rule at index.
func (rs *Rules) Remove(index int) error {
	if index < 0 || index >= len(*rs) {
		return ErrNoSelection
	}
	*rs = append((*rs)[:index], (*rs)[index+1:]...)
	return nil
}

// Clone returns an independent copy.
func (rs Rules) Clone() Rules {
	if rs == nil {
		return nil
	}
	return append(Rules(nil), rs...)
}

// Mapping builds the effective lookup table.
func (rs Rules) Mapping() map[rune]rune {
	m := make(map[rune]rune, len(rs))
	for _, r := range rs {
		m[unicode.ToUpper(r.From)] = r.To
	}
	return m
}

// String renders the rules as "E→x, L→y".
func (rs Rules) String() string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
