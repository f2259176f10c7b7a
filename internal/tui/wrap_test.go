package tui

import (
	"testing"

	"github.com/verte-zerg/subcrack/internal/cipher"
)

func plainRunes(s string) []styledRune {
	out := make([]styledRune, 0, len(s))
	for _, r := range s {
		if r == '\n' {
			out = append(out, styledRune{isBreak: true})
			continue
		}
		out = append(out, styledRune{s: string(r), width: 1, isSpace: r == ' '})
	}
	return out
}

func TestBuildStyledRunesMarksSubstitutions(t *testing.T) {
	rules := cipher.Rules{{From: 'E', To: 'x'}}
	runes := buildStyledRunes([]rune("he!"), cipher.Compile(rules, cipher.ApplyOptions{}))
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[0].s != cipherStyle.Render("H") {
		t.Fatalf("expected cipher style for unmapped letter")
	}
	if runes[1].s != plainStyle.Render("x") {
		t.Fatalf("expected plain style for substituted letter")
	}
	if runes[2].s != symbolStyle.Render("!") {
		t.Fatalf("expected symbol style for punctuation")
	}
}

func TestBuildStyledRunesSymbolRule(t *testing.T) {
	rules := cipher.Rules{{From: '#', To: 'e'}}
	runes := buildStyledRunes([]rune("#"), cipher.Compile(rules, cipher.ApplyOptions{}))
	if runes[0].s != plainStyle.Render("e") {
		t.Fatalf("expected symbol rule to apply")
	}
	gated := buildStyledRunes([]rune("#"), cipher.Compile(rules, cipher.ApplyOptions{LetterGated: true}))
	if gated[0].s != symbolStyle.Render("#") {
		t.Fatalf("expected gated symbol to stay")
	}
}

func TestBuildStyledRunesLineBreaks(t *testing.T) {
	runes := buildStyledRunes([]rune("a\nb\tc"), cipher.Compile(nil, cipher.ApplyOptions{}))
	if len(runes) != 5 {
		t.Fatalf("expected 5 runes, got %d", len(runes))
	}
	if !runes[1].isBreak {
		t.Fatalf("expected newline to become a break")
	}
	if !runes[3].isSpace {
		t.Fatalf("expected tab to render as space")
	}
}

func TestWrapStyledRunesBreaksAtSpaces(t *testing.T) {
	got := wrapStyledRunes(plainRunes("abc def gh"), 7)
	if got != "abc def\ngh" {
		t.Fatalf("unexpected wrap: %q", got)
	}
	got = wrapStyledRunes(plainRunes("abc def"), 4)
	if got != "abc\ndef" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesHardBreaksLongWords(t *testing.T) {
	got := wrapStyledRunes(plainRunes("abcdef"), 3)
	if got != "abc\ndef" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesKeepsNewlines(t *testing.T) {
	got := wrapStyledRunes(plainRunes("ab\ncd ef"), 10)
	if got != "ab\ncd ef" {
		t.Fatalf("unexpected wrap: %q", got)
	}
	if renderStyledRunes(plainRunes("x\ny")) != "x\ny" {
		t.Fatalf("unexpected render")
	}
}
