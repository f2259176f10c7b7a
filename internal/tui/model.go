// Package tui provides the Bubble Tea cipher-breaking interface.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/subcrack/internal/cipher"
	"github.com/verte-zerg/subcrack/internal/log"
	"github.com/verte-zerg/subcrack/internal/model"
	"github.com/verte-zerg/subcrack/internal/report"
	"github.com/verte-zerg/subcrack/internal/session"
)

const (
	pageAnalyze = iota
	pageReference
	pageHistory
)

const (
	focusText = iota
	focusRules
	focusOutput
	focusCount
)

const (
	rulesPaneWidth = 16
	topLetterCount = 5
)

var (
	cipherStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	plainStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	symbolStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))

	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	focusedPaneStyle = paneStyle.Copy().BorderForeground(lipgloss.Color("#C89A3A"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	modalStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 2)
)

// Options controls rendering.
type Options struct {
	Order        cipher.Order
	BarWidth     int
	HistoryLimit int
}

// Model implements the Bubble Tea cipher UI.
type Model struct {
	sess   *session.Session
	opts   Options
	logger *zap.Logger

	pages      []string
	activePage int
	focus      int

	input     textarea.Model
	rules     table.Model
	output    viewport.Model
	reference viewport.Model
	history   table.Model

	width  int
	height int

	status string
	errMsg string

	addMode   bool
	addInputs []textinput.Model
	addIndex  int
	addError  string
}

// NewModel constructs the UI around sess.
func NewModel(sess *session.Session, opts Options, logger *zap.Logger) *Model {
	if opts.Order == "" {
		opts.Order = cipher.OrderCount
	}
	m := &Model{
		sess:   sess,
		opts:   opts,
		logger: log.OrNop(logger),
		pages:  []string{"F1 Analyze", "F2 Reference", "F3 History"},
	}
	m.initInput()
	m.initAddInputs()
	m.rules = newTable(ruleColumns(), 1)
	m.history = newTable(historyColumns(0), 1)
	m.output = viewport.New(0, 0)
	m.reference = viewport.New(0, 0)
	m.refreshRules()
	m.renderContents()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.addMode {
			return m.updateAddRule(msg)
		}
		switch msg.String() {
		case "f1":
			return m, m.setPage(pageAnalyze)
		case "f2":
			return m, m.setPage(pageReference)
		case "f3":
			return m, m.setPage(pageHistory)
		case "ctrl+r":
			m.analyze()
			return m, nil
		}
		switch m.activePage {
		case pageReference:
			if msg.String() == "q" {
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.reference, cmd = m.reference.Update(msg)
			return m, cmd
		case pageHistory:
			if msg.String() == "q" {
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		default:
			return m.updateAnalyze(msg)
		}
	}
	if m.focus == focusText && m.activePage == pageAnalyze && !m.addMode {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.addMode {
		return fitLines(m.renderAddModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) updateAnalyze(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		return m, m.setFocus(m.focus + 1)
	case tea.KeyShiftTab:
		return m, m.setFocus(m.focus - 1)
	}
	switch m.focus {
	case focusText:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.sess.SetText(m.input.Value())
		return m, cmd
	case focusRules:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "a", "enter":
			return m.startAddRule()
		case "d", "delete", "backspace":
			m.removeSelectedRule()
			return m, nil
		case "c":
			m.sess.ClearRules()
			m.errMsg = ""
			m.status = "substitutions cleared"
			m.refreshRules()
			return m, nil
		}
		var cmd tea.Cmd
		m.rules, cmd = m.rules.Update(msg)
		return m, cmd
	default:
		if msg.String() == "q" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}
}

func (m *Model) setPage(page int) tea.Cmd {
	m.activePage = page
	m.renderContents()
	if page == pageAnalyze {
		return m.setFocus(m.focus)
	}
	m.input.Blur()
	m.rules.Blur()
	if page == pageHistory {
		m.history.Focus()
	} else {
		m.history.Blur()
	}
	return tea.ClearScreen
}

func (m *Model) setFocus(focus int) tea.Cmd {
	if focus < 0 {
		focus = focusCount - 1
	}
	if focus >= focusCount {
		focus = 0
	}
	m.focus = focus
	m.rules.Blur()
	m.input.Blur()
	switch focus {
	case focusText:
		return m.input.Focus()
	case focusRules:
		m.rules.Focus()
	}
	return nil
}

func (m *Model) analyze() {
	res, err := m.sess.Analyze(context.Background())
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.status = fmt.Sprintf("analyzed %d letters with %d substitutions", res.Counts.Total(), len(res.Rules))
	m.renderContents()
	m.output.GotoTop()
}

func (m *Model) removeSelectedRule() {
	rules := m.sess.Rules()
	if len(rules) == 0 {
		m.errMsg = cipher.ErrNoSelection.Error()
		return
	}
	idx := m.rules.Cursor()
	if idx < 0 || idx >= len(rules) {
		idx = len(rules) - 1
	}
	if err := m.sess.RemoveRule(idx); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.status = fmt.Sprintf("removed %s", rules[idx])
	m.refreshRules()
}

func (m *Model) refreshRules() {
	rules := m.sess.Rules()
	rows := make([]table.Row, 0, len(rules))
	for i, rule := range rules {
		rows = append(rows, table.Row{strconv.Itoa(i + 1), string(rule.From), string(rule.To)})
	}
	m.rules.SetRows(rows)
	if len(rows) == 0 {
		return
	}
	if cur := m.rules.Cursor(); cur < 0 || cur >= len(rows) {
		m.rules.SetCursor(len(rows) - 1)
	}
}

func (m *Model) refreshHistory() {
	runs, err := m.sess.History(context.Background(), m.opts.HistoryLimit)
	if err != nil {
		m.logger.Warn("failed to load history", zap.Error(err))
		m.errMsg = err.Error()
		return
	}
	m.history.SetColumns(historyColumns(m.width))
	m.history.SetRows(historyRows(runs))
}

func (m *Model) initInput() {
	m.input = textarea.New()
	m.input.Placeholder = "Paste or type the ciphertext, then press ctrl+r"
	m.input.CharLimit = 0
	m.input.MaxHeight = 0
	m.input.ShowLineNumbers = false
	m.input.Cursor.SetMode(cursor.CursorBlink)
	m.input.SetValue(m.sess.Text())
	m.input.Focus()
}

func (m *Model) initAddInputs() {
	m.addInputs = []textinput.Model{
		newRuleInput("From: "),
		newRuleInput("To:   "),
	}
}

func newRuleInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 1
	input.Width = 4
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) startAddRule() (tea.Model, tea.Cmd) {
	m.addMode = true
	m.addError = ""
	for i := range m.addInputs {
		m.addInputs[i].SetValue("")
	}
	return m, m.setAddIndex(0)
}

func (m *Model) updateAddRule(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.addMode = false
		m.addError = ""
		return m, nil
	case tea.KeyEnter:
		rule, err := m.sess.AddRule(m.addInputs[0].Value(), m.addInputs[1].Value())
		if err != nil {
			m.addError = err.Error()
			return m, nil
		}
		m.addMode = false
		m.addError = ""
		m.errMsg = ""
		m.status = fmt.Sprintf("added %s", rule)
		m.refreshRules()
		m.rules.GotoBottom()
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m, m.setAddIndex(1 - m.addIndex)
	}
	var cmd tea.Cmd
	m.addInputs[m.addIndex], cmd = m.addInputs[m.addIndex].Update(msg)
	return m, cmd
}

func (m *Model) setAddIndex(idx int) tea.Cmd {
	m.addIndex = idx
	var cmd tea.Cmd
	for i := range m.addInputs {
		if i == idx {
			cmd = m.addInputs[i].Focus()
		} else {
			m.addInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	frameW, frameH := paneStyle.GetFrameSize()

	topHeight := maxInt(3, bodyHeight/3)
	outputHeight := maxInt(1, bodyHeight-topHeight-2*frameH)
	textWidth := maxInt(10, m.width-rulesPaneWidth-2*frameW)

	m.input.SetWidth(textWidth)
	m.input.SetHeight(topHeight)
	m.rules.SetWidth(rulesPaneWidth)
	m.rules.SetHeight(maxInt(1, topHeight-1))
	m.output.Width = maxInt(1, m.width-frameW)
	m.output.Height = outputHeight
	m.reference.Width = m.width
	m.reference.Height = bodyHeight
	m.history.SetWidth(m.width)
	m.history.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) renderContents() {
	m.renderOutput()
	m.renderReference()
	m.refreshHistory()
}

func (m *Model) renderOutput() {
	res, ok := m.sess.LastResult()
	if !ok {
		m.output.SetContent(headerStyle.Render("Press ctrl+r to analyze the ciphertext."))
		return
	}
	width := m.output.Width
	styled := buildStyledRunes([]rune(res.Text), cipher.Compile(res.Rules, m.sess.Options()))
	lines := []string{
		titleStyle.Render("Substituted Text:"),
		wrapStyledRunes(styled, width),
		"",
		report.FrequencyReport(res.Counts, m.opts.Order),
	}
	m.output.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) renderReference() {
	res, ok := m.sess.LastResult()
	if !ok {
		m.reference.SetContent(report.ReferenceReport())
		return
	}
	barWidth := m.opts.BarWidth
	if barWidth <= 0 {
		barWidth = report.BarWidthFor(maxInt(m.width, 80), 3)
	}
	var buf bytes.Buffer
	if err := report.RenderComparisonWithSession(&buf, res.Counts, m.sess.SessionCounts(context.Background()), barWidth); err != nil {
		m.reference.SetContent(fmt.Sprintf("Failed to render comparison: %v", err))
		return
	}
	header := headerStyle.Render(topLettersLine(res.Counts))
	m.reference.SetContent(header + "\n\n" + strings.TrimRight(buf.String(), "\n"))
}

func topLettersLine(counts cipher.Counts) string {
	text := string(report.TopLetters(counts, topLetterCount))
	if text == "" {
		text = "-"
	}
	ranking := cipher.ReferenceRanking()
	english := make([]rune, 0, topLetterCount)
	for _, lp := range ranking[:topLetterCount] {
		english = append(english, lp.Letter)
	}
	return fmt.Sprintf("Most frequent: text %s  English %s", spaced(text), spaced(string(english)))
}

func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.pages))
	for i, page := range m.pages {
		if i == m.activePage {
			parts = append(parts, activeNavStyle.Render(page))
		} else {
			parts = append(parts, inactiveNavStyle.Render(page))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	summary := fmt.Sprintf("Letters: %d  Substitutions: %d", cipher.CountFrequencies(m.sess.Text()).Total(), len(m.sess.Rules()))
	if m.status != "" {
		summary += "  " + m.status
	}
	return m.renderTabs() + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	var help string
	switch {
	case m.activePage == pageReference:
		help = "Pages: F1/F2/F3  Scroll: up/down/pgup/pgdn  Analyze: ctrl+r  Quit: q"
	case m.activePage == pageHistory:
		help = "Pages: F1/F2/F3  Move: up/down  Analyze: ctrl+r  Quit: q"
	case m.focus == focusRules:
		help = "Add: a  Remove: d  Clear: c  Focus: tab  Analyze: ctrl+r  Pages: F1/F2/F3  Quit: q"
	case m.focus == focusOutput:
		help = "Scroll: up/down/pgup/pgdn  Focus: tab  Analyze: ctrl+r  Pages: F1/F2/F3  Quit: q"
	default:
		help = "Focus: tab  Analyze: ctrl+r  Pages: F1/F2/F3  Quit: ctrl+c"
	}
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody() string {
	switch m.activePage {
	case pageReference:
		return m.reference.View()
	case pageHistory:
		if len(m.history.Rows()) == 0 {
			return "No analyses yet."
		}
		return m.history.View()
	}
	rulesView := m.rules.View()
	if len(m.rules.Rows()) == 0 {
		rulesView = headerStyle.Render("No rules.\nPress a to add.")
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.pane(focusText).Render(m.input.View()),
		m.pane(focusRules).Width(rulesPaneWidth).Height(m.input.Height()).Render(rulesView),
	)
	bottom := m.pane(focusOutput).Render(m.output.View())
	return top + "\n" + bottom
}

func (m *Model) pane(focus int) lipgloss.Style {
	if m.focus == focus {
		return focusedPaneStyle
	}
	return paneStyle
}

func (m *Model) renderAddModal() string {
	body := []string{
		titleStyle.Render("Add Substitution"),
		m.addInputs[0].View(),
		m.addInputs[1].View(),
		headerStyle.Render("One character each. Later rules override earlier ones."),
		headerStyle.Render("Tab to switch / Enter to add / Esc to cancel"),
	}
	if m.addError != "" {
		body = append(body, errorStyle.Render(m.addError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func newTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(height),
	)
	t.SetStyles(tableStyles())
	t.Blur()
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func ruleColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "From", Width: 4},
		{Title: "To", Width: 4},
	}
}

func historyColumns(width int) []table.Column {
	columns := []table.Column{
		{Title: "Run", Width: 4},
		{Title: "Time", Width: 8},
		{Title: "Letters", Width: 7},
		{Title: "Rules", Width: 20},
		{Title: "Substituted", Width: 30},
	}
	used := 0
	for _, col := range columns[:len(columns)-1] {
		used += col.Width + 1
	}
	if rest := width - used - 1; rest > columns[len(columns)-1].Width {
		columns[len(columns)-1].Width = rest
	}
	return columns
}

func historyRows(runs []model.RunSummary) []table.Row {
	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		rules := run.Rules
		if rules == "" {
			rules = "-"
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(run.RunID, 10),
			run.At.Format("15:04:05"),
			strconv.Itoa(run.Letters),
			rules,
			strings.ReplaceAll(run.Substituted, "\n", " "),
		})
	}
	return rows
}
