package cipher

import (
	"strings"
	"unicode"
)

// ApplyOptions tunes ApplySubstitutions.
type ApplyOptions struct {
	// LetterGated restricts rule lookups to letters. Without it a rule
	// whose From is a symbol also rewrites that symbol.
	LetterGated bool
}

// ApplySubstitutions rewrites text with rules. Characters matched by a
// rule (case-insensitively) become the rule's lower-case target, other
// letters are upper-cased and everything else is kept. The result has the
// same number of runes as text.
func ApplySubstitutions(text string, rules []Rule) string {
	return ApplySubstitutionsWith(text, rules, ApplyOptions{})
}

// ApplySubstitutionsWith is ApplySubstitutions with options.
func ApplySubstitutionsWith(text string, rules []Rule, opts ApplyOptions) string {
	return Compile(rules, opts).Apply(text)
}

// Substitution is a rule sequence reduced to its effective mapping.
type Substitution struct {
	mapping map[rune]rune
	opts    ApplyOptions
}

// Compile builds the effective mapping of rules; later rules for the same
// character override earlier ones.
func Compile(rules []Rule, opts ApplyOptions) Substitution {
	return Substitution{mapping: Rules(rules).Mapping(), opts: opts}
}

// Rune maps a single character and reports whether a rule matched it.
func (s Substitution) Rune(c rune) (rune, bool) {
	isLetter := unicode.IsLetter(c)
	if !s.opts.LetterGated || isLetter {
		if to, ok := s.mapping[unicode.ToUpper(c)]; ok {
			return unicode.ToLower(to), true
		}
	}
	if isLetter {
		return unicode.ToUpper(c), false
	}
	return c, false
}

// Apply rewrites text one rune at a time.
func (s Substitution) Apply(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, c := range text {
		out, _ := s.Rune(c)
		b.WriteRune(out)
	}
	return b.String()
}
