// Package model defines shared data structures.
package model

import "time"

// Config defines analysis settings.
type Config struct {
	Order        string
	LetterGated  bool
	BarWidth     int
	HistoryLimit int
	LogLevel     string
}

// RunRecord captures one analysis run for the session journal.
type RunRecord struct {
	At          time.Time
	InputRunes  int
	Letters     int
	Rules       string
	Substituted string
}

// LetterCount stores the count for one letter of a run.
type LetterCount struct {
	Letter string
	Count  int
}

// RunSummary is a journal row for listing.
type RunSummary struct {
	RunID       int64
	At          time.Time
	InputRunes  int
	Letters     int
	RuleCount   int
	Rules       string
	Substituted string
}
