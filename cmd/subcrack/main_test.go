package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/subcrack/internal/config"
	"github.com/verte-zerg/subcrack/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	out, err := execute(t, "analyze", "--text", "hello, world! 123", "--rule", "E=x", "--rule", "L=y")
	require.NoError(t, err)
	assert.Contains(t, out, "Character Frequencies (%):\nL: 30.00%\nO: 20.00%\n")
	assert.Contains(t, out, "Substituted Text:\nHxyyO, WORyD! 123\n")
}

func TestAnalyzeCommandAlphaOrderAndCompare(t *testing.T) {
	out, err := execute(t, "analyze", "--text", "ba", "--order", "alpha", "--compare", "--bar-width", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "A: 50.00%\nB: 50.00%")
	assert.Contains(t, out, "Letter")
	assert.Contains(t, out, "English")
}

func TestAnalyzeCommandLetterGated(t *testing.T) {
	out, err := execute(t, "analyze", "--text", "a#b", "--rule", "#=e")
	require.NoError(t, err)
	assert.Contains(t, out, "AeB")

	out, err = execute(t, "analyze", "--text", "a#b", "--rule", "#=e", "--letter-gated")
	require.NoError(t, err)
	assert.Contains(t, out, "A#B")
}

func TestAnalyzeCommandRejectsBadInput(t *testing.T) {
	_, err := execute(t, "analyze", "--text", "abc", "--rule", "ab=c")
	assert.Error(t, err)
	_, err = execute(t, "analyze", "--text", "abc", "--order", "random")
	assert.Error(t, err)
	_, err = execute(t, "analyze", "--text", "abc", "--bar-width", "-1")
	assert.Error(t, err)
}

func TestAnalyzeCommandReadsConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subcrack"), 0o755))
	cfg := "[analyze]\norder = \"alpha\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "subcrack", "config.toml"), []byte(cfg), 0o644))

	cmd := newRootCmd()
	t.Setenv("XDG_CONFIG_HOME", dir)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"analyze", "--text", "abb"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "A: 33.33%\nB: 66.67%")
}

func TestReferenceCommand(t *testing.T) {
	out, err := execute(t, "reference")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 27)
	assert.Equal(t, "E: 12.70%", lines[1])
	assert.Equal(t, "Z: 0.07%", lines[26])
}

func TestDemoCommandIsDeterministic(t *testing.T) {
	first, err := execute(t, "demo", "--seed", "7", "--show-key")
	require.NoError(t, err)
	second, err := execute(t, "demo", "--seed", "7", "--show-key")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "Key:      ")
	assert.Contains(t, first, "Solution: ")
}

func TestReadCiphertext(t *testing.T) {
	_, err := readCiphertext(strings.NewReader("abc"), true)
	assert.ErrorIs(t, err, errNoCiphertext)

	text, err := readCiphertext(strings.NewReader("line one\nline two\n"), false)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{Order: "count", LogLevel: "warn"}
	assert.NoError(t, validateConfig(valid))

	bad := valid
	bad.LogLevel = "loud"
	assert.Error(t, validateConfig(bad))

	bad = valid
	bad.HistoryLimit = -1
	assert.Error(t, validateConfig(bad))
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	tmpl := defaultConfigTemplate()
	var cfg config.FileConfig
	md, err := toml.Decode(tmpl, &cfg)
	require.NoError(t, err)
	assert.Empty(t, md.Undecoded())
	assert.Nil(t, cfg.Analyze.Order)
	assert.Contains(t, tmpl, "[analyze]")
	assert.Contains(t, tmpl, "[ui]")
	assert.Contains(t, tmpl, "[log]")
}
