// Package cipher implements letter frequency counting and manual
// substitution for simple substitution ciphers.
package cipher

import "sort"

// Alphabet lists the canonical letters in order.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// LetterPercent pairs a letter with its share of a text, in percent.
type LetterPercent struct {
	Letter  rune
	Percent float64
}

var englishFrequencies = map[rune]float64{
	'A': 8.17,
	'B': 1.49,
	'C': 2.78,
	'D': 4.25,
	'E': 12.70,
	'F': 2.23,
	'G': 2.02,
	'H': 6.09,
	'I': 7.00,
	'J': 0.15,
	'K': 0.77,
	'L': 4.03,
	'M': 2.41,
	'N': 6.75,
	'O': 7.51,
	'P': 1.93,
	'Q': 0.10,
	'R': 5.99,
	'S': 6.33,
	'T': 9.06,
	'U': 2.76,
	'V': 0.98,
	'W': 2.36,
	'X': 0.15,
	'Y': 1.97,
	'Z': 0.07,
}

// ReferenceFrequencies returns a copy of the published English letter
// frequency table.
func ReferenceFrequencies() map[rune]float64 {
	out := make(map[rune]float64, len(englishFrequencies))
	for letter, pct := range englishFrequencies {
		out[letter] = pct
	}
	return out
}

// ReferencePercent returns the English frequency for a letter, or 0 when r
// is not one of A-Z.
func ReferencePercent(r rune) float64 {
	return englishFrequencies[r]
}

// ReferenceRanking returns the English table ordered by descending
// percentage. Ties are ordered alphabetically.
func ReferenceRanking() []LetterPercent {
	out := make([]LetterPercent, 0, len(englishFrequencies))
	for letter, pct := range englishFrequencies {
		out = append(out, LetterPercent{Letter: letter, Percent: pct})
	}
	sortByPercent(out)
	return out
}

func sortByPercent(items []LetterPercent) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Percent == items[j].Percent {
			return items[i].Letter < items[j].Letter
		}
		return items[i].Percent > items[j].Percent
	})
}
