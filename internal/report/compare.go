package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/subcrack/internal/cipher"
)

const (
	defaultBarWidth     = 30
	minBarWidth         = 5
	terminalWidthBackup = 80
	barGlyph            = "#"
	referenceBarGlyph   = "="
)

type comparisonColumn struct {
	title   string
	glyph   string
	percent func(rune) float64
}

// RenderComparison writes an A-Z table of the text's letter shares next
// to the English reference, each with a bar scaled to barWidth.
func RenderComparison(w io.Writer, counts cipher.Counts, barWidth int) error {
	return RenderComparisonWithSession(w, counts, nil, barWidth)
}

// RenderComparisonWithSession is RenderComparison with an extra column
// for the letters of every run in the session. A nil or empty session
// omits the column.
func RenderComparisonWithSession(w io.Writer, counts, session cipher.Counts, barWidth int) error {
	if barWidth <= 0 {
		barWidth = defaultBarWidth
	}
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	columns := []comparisonColumn{
		{title: "Text", glyph: barGlyph, percent: counts.Percent},
	}
	if session.Total() > 0 {
		columns = append(columns, comparisonColumn{title: "Session", glyph: barGlyph, percent: session.Percent})
	}
	columns = append(columns, comparisonColumn{title: "English", glyph: referenceBarGlyph, percent: cipher.ReferencePercent})

	maxPct := 0.0
	for _, col := range columns {
		for _, letter := range cipher.Alphabet {
			maxPct = math.Max(maxPct, col.percent(letter))
		}
	}

	headers := []string{"Letter"}
	rightAlign := map[int]bool{}
	for _, col := range columns {
		rightAlign[len(headers)] = true
		headers = append(headers, col.title, "")
	}
	rows := make([][]string, 0, len(cipher.Alphabet))
	for _, letter := range cipher.Alphabet {
		row := []string{string(letter)}
		for _, col := range columns {
			pct := col.percent(letter)
			row = append(row, fmt.Sprintf("%.2f%%", pct), bar(pct, maxPct, barWidth, col.glyph))
		}
		rows = append(rows, row)
	}

	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func bar(pct, maxPct float64, width int, glyph string) string {
	if maxPct <= 0 || pct <= 0 {
		return ""
	}
	n := int(math.Round(pct / maxPct * float64(width)))
	if n < 1 {
		n = 1
	}
	return strings.Repeat(glyph, n)
}

// BarWidthFor picks a bar width that fits columns bars into a terminal of
// totalWidth cells.
func BarWidthFor(totalWidth, columns int) int {
	if columns <= 0 {
		columns = 1
	}
	// Letter column plus a percent cell and separators per column.
	fixed := len("Letter") + columns*(len(" 100.00% ")+1)
	w := (totalWidth - fixed) / columns
	if w < minBarWidth {
		return minBarWidth
	}
	if w > defaultBarWidth {
		return defaultBarWidth
	}
	return w
}

// TerminalWidth returns the width of stdout, or fallback when stdout is
// not a terminal.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = terminalWidthBackup
	}
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
