package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/subcrack/internal/cipher"
	"github.com/verte-zerg/subcrack/internal/session"
	"github.com/verte-zerg/subcrack/internal/store"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	st, err := store.Open(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	var out bytes.Buffer
	sess := session.New(st, nil, cipher.ApplyOptions{})
	return New(sess, &out, Options{BarWidth: 10}, nil), &out
}

func run(t *testing.T, sh *Shell, lines ...string) {
	t.Helper()
	for _, line := range lines {
		quit, err := sh.Exec(context.Background(), line)
		require.NoError(t, err, "line %q", line)
		require.False(t, quit)
	}
}

func TestShellAnalyzeFlow(t *testing.T) {
	sh, out := newTestShell(t)
	run(t, sh, "text hello, world! 123", "add e x", "add L=y", "analyze")

	got := out.String()
	assert.Contains(t, got, "ciphertext set (10 letters)")
	assert.Contains(t, got, "added E→x")
	assert.Contains(t, got, "added L→y")
	assert.Contains(t, got, "Character Frequencies (%):\nL: 30.00%\nO: 20.00%")
	assert.Contains(t, got, "Substituted Text:\nHxyyO, WORyD! 123")
}

func TestShellRulesAndRemove(t *testing.T) {
	sh, out := newTestShell(t)
	run(t, sh, "add A b", "add C d", "rm 1", "rules")
	assert.Contains(t, out.String(), " 1  C → d")
	assert.NotContains(t, out.String(), " 1  A → b\n 2")

	_, err := sh.Exec(context.Background(), "rm 5")
	assert.ErrorIs(t, err, cipher.ErrNoSelection)
	_, err = sh.Exec(context.Background(), "rm")
	assert.ErrorIs(t, err, cipher.ErrNoSelection)
	_, err = sh.Exec(context.Background(), "rm x")
	assert.Error(t, err)

	run(t, sh, "clear", "rules")
	assert.Contains(t, out.String(), "no substitutions")
}

func TestShellRejectsInvalidRules(t *testing.T) {
	sh, _ := newTestShell(t)
	for _, line := range []string{"add", "add ab c", "add a", "add a b c"} {
		_, err := sh.Exec(context.Background(), line)
		assert.ErrorIs(t, err, cipher.ErrInvalidRule, "line %q", line)
	}
}

func TestShellCompareNeedsAnalysis(t *testing.T) {
	sh, out := newTestShell(t)
	_, err := sh.Exec(context.Background(), "compare")
	assert.Error(t, err)

	run(t, sh, "text eeet", "analyze", "compare")
	assert.Contains(t, out.String(), "Session")
	assert.Contains(t, out.String(), "75.00%")
}

func TestShellHistoryAndReference(t *testing.T) {
	sh, out := newTestShell(t)
	run(t, sh, "history")
	assert.Contains(t, out.String(), "no analyses yet")

	run(t, sh, "text abc", "add A z", "analyze", "history", "ref")
	got := out.String()
	assert.Contains(t, got, "letters=3  rules=A→z")
	assert.Contains(t, got, "English Letter Frequencies\nE: 12.70%")
}

func TestShellAppendAndShow(t *testing.T) {
	sh, out := newTestShell(t)
	run(t, sh, "show", "append abc", "append def", "show")
	assert.Contains(t, out.String(), "no ciphertext")
	assert.Contains(t, out.String(), "abc\ndef\n")
}

func TestShellQuitAndUnknown(t *testing.T) {
	sh, _ := newTestShell(t)
	quit, err := sh.Exec(context.Background(), "QUIT")
	require.NoError(t, err)
	assert.True(t, quit)

	quit, err = sh.Exec(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, quit)

	_, err = sh.Exec(context.Background(), "solve")
	assert.Error(t, err)
}

func TestShellHelpListsCommands(t *testing.T) {
	sh, out := newTestShell(t)
	run(t, sh, "help")
	for _, name := range []string{"add <from> <to>", "analyze", "compare", "quit"} {
		assert.True(t, strings.Contains(out.String(), name), "missing %q", name)
	}
}

func TestComplete(t *testing.T) {
	assert.Equal(t, []string{"add", "analyze", "append"}, Complete("a"))
	assert.Equal(t, []string{"rules"}, Complete("RU"))
	assert.Nil(t, Complete("add x"))
}
