// Package session holds the working state of one cipher-breaking session.
package session

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/verte-zerg/subcrack/internal/cipher"
	"github.com/verte-zerg/subcrack/internal/log"
	"github.com/verte-zerg/subcrack/internal/model"
	"github.com/verte-zerg/subcrack/internal/store"
)

// Result is the outcome of one analysis.
type Result struct {
	RunID       int64
	At          time.Time
	Text        string
	Counts      cipher.Counts
	Substituted string
	Rules       cipher.Rules
}

// Session owns the ciphertext and the substitution rules. It is not safe
// for concurrent use.
type Session struct {
	text    string
	rules   cipher.Rules
	opts    cipher.ApplyOptions
	store   *store.Store
	logger  *zap.Logger
	now     func() time.Time
	last    *Result
	history cipher.Counts
}

// New returns an empty session. st may be nil to skip journaling.
func New(st *store.Store, logger *zap.Logger, opts cipher.ApplyOptions) *Session {
	return &Session{
		opts:    opts,
		store:   st,
		logger:  log.OrNop(logger),
		now:     time.Now,
		history: cipher.Counts{},
	}
}

// SetText replaces the ciphertext.
func (s *Session) SetText(text string) {
	s.text = text
}

// Text returns the ciphertext.
func (s *Session) Text() string {
	return s.text
}

// Options returns the substitution options of the session.
func (s *Session) Options() cipher.ApplyOptions {
	return s.opts
}

// Rules returns a copy of the current rules.
func (s *Session) Rules() cipher.Rules {
	return s.rules.Clone()
}

// AddRule validates and appends a rule.
func (s *Session) AddRule(from, to string) (cipher.Rule, error) {
	rule, err := cipher.NewRule(from, to)
	if err != nil {
		return cipher.Rule{}, err
	}
	s.rules.Add(rule)
	s.logger.Debug("rule added", zap.Stringer("rule", rule), zap.Int("rules", len(s.rules)))
	return rule, nil
}

// RemoveRule deletes the rule at index (0-based).
func (s *Session) RemoveRule(index int) error {
	if err := s.rules.Remove(index); err != nil {
		return err
	}
	s.logger.Debug("rule removed", zap.Int("index", index), zap.Int("rules", len(s.rules)))
	return nil
}

// ClearRules drops every rule.
func (s *Session) ClearRules() {
	s.rules = nil
}

// LastResult returns the most recent analysis, if any.
func (s *Session) LastResult() (Result, bool) {
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// SessionCounts returns the letters of every analysis in this session,
// read from the journal when there is one.
func (s *Session) SessionCounts(ctx context.Context) cipher.Counts {
	out := cipher.Counts{}
	if s.store != nil {
		totals, err := s.store.LetterTotals(ctx)
		if err == nil {
			for _, lc := range totals {
				if r, _ := utf8.DecodeRuneInString(lc.Letter); r != utf8.RuneError {
					out[r] += lc.Count
				}
			}
			return out
		}
		s.logger.Warn("failed to load letter totals", zap.Error(err))
	}
	out.Merge(s.history)
	return out
}

// Analyze counts letters and applies the rules to the current text. The
// run is recorded in the journal; journal failures are logged only.
func (s *Session) Analyze(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := Result{
		At:          s.now(),
		Text:        s.text,
		Counts:      cipher.CountFrequencies(s.text),
		Substituted: cipher.ApplySubstitutionsWith(s.text, s.rules, s.opts),
		Rules:       s.rules.Clone(),
	}
	if s.store != nil {
		id, err := s.store.InsertRun(ctx, s.record(res), len(res.Rules), letterCounts(res.Counts))
		if err != nil {
			s.logger.Warn("failed to record run", zap.Error(err))
		} else {
			res.RunID = id
		}
	}
	s.history.Merge(res.Counts)
	s.last = &res
	s.logger.Debug("analysis complete",
		zap.Int64("run", res.RunID),
		zap.Int("letters", res.Counts.Total()),
		zap.Int("rules", len(res.Rules)))
	return res, nil
}

// History lists journaled runs, newest first.
func (s *Session) History(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if s.store == nil {
		return nil, nil
	}
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func (s *Session) record(res Result) model.RunRecord {
	return model.RunRecord{
		At:          res.At,
		InputRunes:  utf8.RuneCountInString(s.text),
		Letters:     res.Counts.Total(),
		Rules:       res.Rules.String(),
		Substituted: res.Substituted,
	}
}

func letterCounts(counts cipher.Counts) []model.LetterCount {
	out := make([]model.LetterCount, 0, len(counts))
	for _, letter := range cipher.Alphabet {
		if n := counts[letter]; n > 0 {
			out = append(out, model.LetterCount{Letter: string(letter), Count: n})
		}
	}
	return out
}
