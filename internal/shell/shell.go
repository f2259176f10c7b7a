// Package shell provides a line-oriented interface to a session.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/verte-zerg/subcrack/internal/cipher"
	"github.com/verte-zerg/subcrack/internal/log"
	"github.com/verte-zerg/subcrack/internal/report"
	"github.com/verte-zerg/subcrack/internal/session"
)

const prompt = "subcrack> "

// Options controls rendering.
type Options struct {
	Order        cipher.Order
	BarWidth     int
	HistoryLimit int
}

// Shell reads commands and applies them to a session.
type Shell struct {
	sess   *session.Session
	out    io.Writer
	opts   Options
	logger *zap.Logger
}

type command struct {
	usage string
	help  string
	run   func(s *Shell, ctx context.Context, arg string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"text":    {usage: "text <ciphertext>", help: "replace the ciphertext", run: (*Shell).cmdText},
		"append":  {usage: "append <ciphertext>", help: "add a line to the ciphertext", run: (*Shell).cmdAppend},
		"show":    {usage: "show", help: "print the ciphertext", run: (*Shell).cmdShow},
		"add":     {usage: "add <from> <to>", help: "add a substitution", run: (*Shell).cmdAdd},
		"rm":      {usage: "rm <n>", help: "remove substitution n", run: (*Shell).cmdRemove},
		"rules":   {usage: "rules", help: "list substitutions", run: (*Shell).cmdRules},
		"clear":   {usage: "clear", help: "remove every substitution", run: (*Shell).cmdClear},
		"analyze": {usage: "analyze", help: "count letters and apply substitutions", run: (*Shell).cmdAnalyze},
		"compare": {usage: "compare", help: "chart the last analysis against English", run: (*Shell).cmdCompare},
		"ref":     {usage: "ref", help: "print the English letter frequencies", run: (*Shell).cmdReference},
		"history": {usage: "history", help: "list analyses of this session", run: (*Shell).cmdHistory},
		"help":    {usage: "help", help: "show this help", run: (*Shell).cmdHelp},
	}
}

// New returns a Shell writing to out.
func New(sess *session.Session, out io.Writer, opts Options, logger *zap.Logger) *Shell {
	if opts.Order == "" {
		opts.Order = cipher.OrderCount
	}
	return &Shell{sess: sess, out: out, opts: opts, logger: log.OrNop(logger)}
}

// Run reads lines from the terminal until quit, EOF or ctrl+c.
func (s *Shell) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer func() {
		if cerr := line.Close(); cerr != nil {
			s.logger.Warn("failed to restore terminal", zap.Error(cerr))
		}
	}()
	line.SetCtrlCAborts(true)
	line.SetCompleter(Complete)

	s.printf("Type help for commands, quit to exit.\n")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		quit, err := s.Exec(ctx, input)
		if err != nil {
			s.printf("error: %v\n", err)
			continue
		}
		if quit {
			return nil
		}
	}
}

// Exec runs one command line. It reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, input string) (bool, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, nil
	}
	name, arg, _ := strings.Cut(input, " ")
	name = strings.ToLower(name)
	if name == "quit" || name == "exit" {
		return true, nil
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q (try help)", name)
	}
	return false, cmd.run(s, ctx, strings.TrimSpace(arg))
}

// Complete suggests command names for the current line.
func Complete(line string) []string {
	if strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, name := range commandNames() {
		if strings.HasPrefix(name, strings.ToLower(line)) {
			out = append(out, name)
		}
	}
	return out
}

func commandNames() []string {
	names := make([]string, 0, len(commands)+1)
	for name := range commands {
		names = append(names, name)
	}
	names = append(names, "quit")
	sort.Strings(names)
	return names
}

func (s *Shell) cmdText(_ context.Context, arg string) error {
	s.sess.SetText(arg)
	s.printf("ciphertext set (%d letters)\n", cipher.CountFrequencies(arg).Total())
	return nil
}

func (s *Shell) cmdAppend(_ context.Context, arg string) error {
	text := s.sess.Text()
	if text != "" {
		text += "\n"
	}
	s.sess.SetText(text + arg)
	s.printf("ciphertext extended (%d letters)\n", cipher.CountFrequencies(s.sess.Text()).Total())
	return nil
}

func (s *Shell) cmdShow(_ context.Context, _ string) error {
	if s.sess.Text() == "" {
		s.printf("no ciphertext\n")
		return nil
	}
	s.printf("%s\n", s.sess.Text())
	return nil
}

func (s *Shell) cmdAdd(_ context.Context, arg string) error {
	fields := strings.Fields(arg)
	if len(fields) == 1 {
		rule, err := cipher.ParseRule(fields[0])
		if err != nil {
			return err
		}
		fields = []string{string(rule.From), string(rule.To)}
	}
	if len(fields) != 2 {
		return fmt.Errorf("%w: usage %s", cipher.ErrInvalidRule, commands["add"].usage)
	}
	rule, err := s.sess.AddRule(fields[0], fields[1])
	if err != nil {
		return err
	}
	s.printf("added %s\n", rule)
	return nil
}

func (s *Shell) cmdRemove(_ context.Context, arg string) error {
	if arg == "" {
		return cipher.ErrNoSelection
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid rule number %q", arg)
	}
	if err := s.sess.RemoveRule(n - 1); err != nil {
		return err
	}
	s.printf("removed rule %d\n", n)
	return nil
}

func (s *Shell) cmdRules(_ context.Context, _ string) error {
	rules := s.sess.Rules()
	if len(rules) == 0 {
		s.printf("no substitutions\n")
		return nil
	}
	for i, rule := range rules {
		s.printf("%2d  %c → %c\n", i+1, rule.From, rule.To)
	}
	return nil
}

func (s *Shell) cmdClear(_ context.Context, _ string) error {
	s.sess.ClearRules()
	s.printf("substitutions cleared\n")
	return nil
}

func (s *Shell) cmdAnalyze(ctx context.Context, _ string) error {
	res, err := s.sess.Analyze(ctx)
	if err != nil {
		return err
	}
	s.printf("%s\n", report.Analysis(res.Counts, res.Substituted, s.opts.Order))
	return nil
}

func (s *Shell) cmdCompare(ctx context.Context, _ string) error {
	res, ok := s.sess.LastResult()
	if !ok {
		return fmt.Errorf("nothing analyzed yet (run analyze)")
	}
	return report.RenderComparisonWithSession(s.out, res.Counts, s.sess.SessionCounts(ctx), s.opts.BarWidth)
}

func (s *Shell) cmdReference(_ context.Context, _ string) error {
	s.printf("%s\n", report.ReferenceReport())
	return nil
}

func (s *Shell) cmdHistory(ctx context.Context, _ string) error {
	runs, err := s.sess.History(ctx, s.opts.HistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		s.printf("no analyses yet\n")
		return nil
	}
	for _, run := range runs {
		rules := run.Rules
		if rules == "" {
			rules = "-"
		}
		s.printf("#%d %s  letters=%d  rules=%s\n", run.RunID, run.At.Format("15:04:05"), run.Letters, rules)
	}
	return nil
}

func (s *Shell) cmdHelp(_ context.Context, _ string) error {
	for _, name := range commandNames() {
		if name == "quit" {
			s.printf("  %-22s %s\n", "quit", "leave the shell")
			continue
		}
		cmd := commands[name]
		s.printf("  %-22s %s\n", cmd.usage, cmd.help)
	}
	return nil
}

func (s *Shell) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(s.out, format, args...); err != nil {
		s.logger.Debug("failed to write output", zap.Error(err))
	}
}
