// Package report renders frequency analyses as plain text.
package report

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/subcrack/internal/cipher"
)

const (
	frequencyHeader   = "Character Frequencies (%):"
	substitutedHeader = "Substituted Text:"
	referenceHeader   = "English Letter Frequencies"
	noLetters         = "No letters found."
)

// PercentLine formats one entry as "E: 12.70%".
func PercentLine(lp cipher.LetterPercent) string {
	return fmt.Sprintf("%c: %.2f%%", lp.Letter, lp.Percent)
}

// FrequencyReport lists the share of every counted letter under a header.
// Text without letters gets a notice instead of percentages.
func FrequencyReport(counts cipher.Counts, order cipher.Order) string {
	lines := []string{frequencyHeader}
	percentages := counts.Percentages(order)
	if len(percentages) == 0 {
		lines = append(lines, noLetters)
	}
	for _, lp := range percentages {
		lines = append(lines, PercentLine(lp))
	}
	return strings.Join(lines, "\n")
}

// SubstitutedReport renders substituted text under its header.
func SubstitutedReport(text string) string {
	return substitutedHeader + "\n" + text
}

// Analysis joins the frequency report and the substituted text.
func Analysis(counts cipher.Counts, substituted string, order cipher.Order) string {
	return FrequencyReport(counts, order) + "\n\n" + SubstitutedReport(substituted)
}

// ReferenceReport lists the English table by descending frequency.
func ReferenceReport() string {
	ranking := cipher.ReferenceRanking()
	lines := make([]string, 0, len(ranking)+1)
	lines = append(lines, referenceHeader)
	for _, lp := range ranking {
		lines = append(lines, PercentLine(lp))
	}
	return strings.Join(lines, "\n")
}

// TopLetters returns up to n letters ordered by descending count.
func TopLetters(counts cipher.Counts, n int) []rune {
	if n <= 0 {
		return nil
	}
	percentages := counts.Percentages(cipher.OrderCount)
	if n > len(percentages) {
		n = len(percentages)
	}
	out := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, percentages[i].Letter)
	}
	return out
}
