// Package main provides the CLI entrypoint for subcrack.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/subcrack/internal/cipher"
	"github.com/verte-zerg/subcrack/internal/config"
	"github.com/verte-zerg/subcrack/internal/generator"
	"github.com/verte-zerg/subcrack/internal/log"
	"github.com/verte-zerg/subcrack/internal/model"
	"github.com/verte-zerg/subcrack/internal/report"
	"github.com/verte-zerg/subcrack/internal/session"
	"github.com/verte-zerg/subcrack/internal/shell"
	"github.com/verte-zerg/subcrack/internal/store"
	"github.com/verte-zerg/subcrack/internal/tui"
)

const (
	defaultOrder        = string(cipher.OrderCount)
	defaultBarWidth     = 0
	defaultHistoryLimit = 50
	journalName         = "subcrack"
	fallbackWidth       = 80
)

var (
	flagOrder        string
	flagLetterGated  bool
	flagBarWidth     int
	flagHistoryLimit int
	flagLogLevel     string

	rootText  string
	rootRules []string
	rootDemo  bool

	analyzeText    string
	analyzeRules   []string
	analyzeCompare bool

	demoSeed    int64
	demoShowKey bool
)

var errNoCiphertext = errors.New("no ciphertext: pass --text or pipe text on stdin")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "subcrack",
		Short:         "Letter frequency analysis for substitution ciphers",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runRootCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagOrder, "order", defaultOrder, "frequency order: count or alpha")
	pf.BoolVar(&flagLetterGated, "letter-gated", false, "apply substitutions to letters only")
	pf.IntVar(&flagBarWidth, "bar-width", defaultBarWidth, "comparison bar width (0 fits the terminal)")
	pf.IntVar(&flagHistoryLimit, "history-limit", defaultHistoryLimit, "number of runs listed in history (0 for all)")
	pf.StringVar(&flagLogLevel, "log-level", log.DefaultLevel, "log level: debug, info, warn or error")

	rootCmd.Flags().StringVar(&rootText, "text", "", "initial ciphertext")
	rootCmd.Flags().StringArrayVar(&rootRules, "rule", nil, "substitution FROM=TO (repeatable)")
	rootCmd.Flags().BoolVar(&rootDemo, "demo", false, "start with a generated practice ciphertext")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newReferenceCmd())
	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app bundles what every command needs once settings are resolved.
type app struct {
	cfg    model.Config
	logger *zap.Logger
	store  *store.Store
	sess   *session.Session
}

func newApp(cmd *cobra.Command, rules []string) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := log.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(journalName)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	sess := session.New(st, logger, cipher.ApplyOptions{LetterGated: cfg.LetterGated})
	a := &app{cfg: cfg, logger: logger, store: st, sess: sess}
	for _, raw := range rules {
		rule, err := cipher.ParseRule(raw)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("invalid --rule %q: %w", raw, err)
		}
		if _, err := sess.AddRule(string(rule.From), string(rule.To)); err != nil {
			a.close()
			return nil, err
		}
	}
	logger.Debug("session ready", zap.String("order", cfg.Order), zap.Bool("letter-gated", cfg.LetterGated), zap.Int("rules", len(rules)))
	return a, nil
}

func (a *app) close() {
	if cerr := a.store.Close(); cerr != nil {
		a.logger.Warn("failed to close journal", zap.Error(cerr))
	}
	_ = a.logger.Sync()
}

func (a *app) order() cipher.Order {
	order, err := cipher.ParseOrder(a.cfg.Order)
	if err != nil {
		return cipher.OrderCount
	}
	return order
}

func loadConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "order", &flagOrder, fileCfg.Analyze.Order)
	applyBoolConfig(cmd, "letter-gated", &flagLetterGated, fileCfg.Analyze.LetterGated)
	applyIntConfig(cmd, "bar-width", &flagBarWidth, fileCfg.Analyze.BarWidth)
	applyIntConfig(cmd, "history-limit", &flagHistoryLimit, fileCfg.UI.HistoryLimit)
	applyStringConfig(cmd, "log-level", &flagLogLevel, fileCfg.Log.Level)

	cfg := model.Config{
		Order:        flagOrder,
		LetterGated:  flagLetterGated,
		BarWidth:     flagBarWidth,
		HistoryLimit: flagHistoryLimit,
		LogLevel:     flagLogLevel,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runRootCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, rootRules)
	if err != nil {
		return err
	}
	defer a.close()

	text := rootText
	if rootDemo && text == "" {
		gen := generator.New()
		text = gen.Key().Encipher(gen.Passage())
	}
	a.sess.SetText(text)

	ui := tui.NewModel(a.sess, tui.Options{
		Order:        a.order(),
		BarWidth:     a.cfg.BarWidth,
		HistoryLimit: a.cfg.HistoryLimit,
	}, a.logger)
	program := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Count letters and apply substitutions to a ciphertext",
		Args:  cobra.NoArgs,
		RunE:  runAnalyzeCmd,
	}
	cmd.Flags().StringVar(&analyzeText, "text", "", "ciphertext (default: read stdin)")
	cmd.Flags().StringArrayVar(&analyzeRules, "rule", nil, "substitution FROM=TO (repeatable)")
	cmd.Flags().BoolVar(&analyzeCompare, "compare", false, "chart letter shares against English")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	text := analyzeText
	if !cmd.Flags().Changed("text") {
		var err error
		text, err = readCiphertext(cmd.InOrStdin(), stdinIsTerminal())
		if err != nil {
			return err
		}
	}

	a, err := newApp(cmd, analyzeRules)
	if err != nil {
		return err
	}
	defer a.close()

	a.sess.SetText(text)
	res, err := a.sess.Analyze(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, report.Analysis(res.Counts, res.Substituted, a.order())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !analyzeCompare {
		return nil
	}
	barWidth := a.cfg.BarWidth
	if barWidth <= 0 {
		barWidth = report.BarWidthFor(report.TerminalWidth(fallbackWidth), 2)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.RenderComparison(out, res.Counts, barWidth); err != nil {
		return fmt.Errorf("failed to write comparison: %w", err)
	}
	return nil
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func readCiphertext(r io.Reader, isTerminal bool) (string, error) {
	if isTerminal {
		return "", errNoCiphertext
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func newReferenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reference",
		Short: "Print the English letter frequencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), report.ReferenceReport()); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Encipher a built-in passage with a random key",
		Args:  cobra.NoArgs,
		RunE:  runDemoCmd,
	}
	cmd.Flags().Int64Var(&demoSeed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().BoolVar(&demoShowKey, "show-key", false, "also print the key and the rules that solve it")
	return cmd
}

func runDemoCmd(cmd *cobra.Command, _ []string) error {
	gen := generator.New()
	if cmd.Flags().Changed("seed") && demoSeed != 0 {
		gen = generator.NewSeeded(demoSeed)
	}
	key := gen.Key()
	lines := []string{key.Encipher(gen.Passage())}
	if demoShowKey {
		lines = append(lines,
			"",
			"Key:      "+key.String(),
			"Solution: "+key.SolutionRules().String(),
		)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the line-oriented shell",
		Args:  cobra.NoArgs,
		RunE:  runShellCmd,
	}
}

func runShellCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close()

	sh := shell.New(a.sess, cmd.OutOrStdout(), shell.Options{
		Order:        a.order(),
		BarWidth:     a.cfg.BarWidth,
		HistoryLimit: a.cfg.HistoryLimit,
	}, a.logger)
	if err := sh.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# subcrack configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyze]
# order = %q          # Frequency order: count or alpha
# letter-gated = false     # Apply substitutions to letters only
# bar-width = %d            # Comparison bar width (0 fits the terminal)

[ui]
# history-limit = %d       # Runs listed in history (0 for all)

[log]
# level = %q           # debug, info, warn or error
`,
		defaultOrder,
		defaultBarWidth,
		defaultHistoryLimit,
		log.DefaultLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if _, err := cipher.ParseOrder(cfg.Order); err != nil {
		return fmt.Errorf("--order: %w", err)
	}
	if cfg.BarWidth < 0 {
		return fmt.Errorf("--bar-width must be >= 0")
	}
	if cfg.HistoryLimit < 0 {
		return fmt.Errorf("--history-limit must be >= 0")
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}
