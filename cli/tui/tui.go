// Package tui is the interactive search browser of the revelare CLI.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/revelare/revelare-web/internal/detail"
	"github.com/revelare/revelare-web/internal/search"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
)

type View int

const (
	ViewSearch View = iota
	ViewDetail
	ViewHelp
)

// Bookmarker saves books for the signed-in user.
type Bookmarker interface {
	AddBookmark(ctx context.Context, token string, in models.AddBookmarkRequest) error
}

type Options struct {
	Source    detail.Source
	Bookmarks Bookmarker
	Session   *models.SessionUser
	Scenario  models.Scenario
	Query     string
	Debounce  time.Duration
	Logger    *logger.Logger
}

type Model struct {
	orch      *search.Orchestrator
	resolver  *detail.Resolver
	bookmarks Bookmarker
	session   *models.SessionUser
	log       *logger.Logger
	debounce  time.Duration

	view     View
	input    textinput.Model
	list     list.Model
	viewport viewport.Model
	spinner  spinner.Model

	scenario   models.Scenario
	snap       search.Snapshot
	typingSeq  int
	loading    bool
	current    *detail.Result
	width      int
	height     int
	err        error
	statusMsg  string
	sessionEnd bool
}

type debounceMsg struct {
	seq int
}

type resultsMsg struct {
	snap search.Snapshot
	err  error
}

type detailMsg struct {
	result *detail.Result
	err    error
}

type errorMsg struct {
	err error
}

type statusMsg string

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

func New(opts Options) Model {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	in := textinput.New()
	in.Placeholder = "Search books by meaning..."
	in.Prompt = "› "
	in.CharLimit = 200
	in.SetValue(opts.Query)
	in.Focus()

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Revelare"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		orch:      search.NewOrchestrator(opts.Source, log),
		resolver:  detail.NewResolver(opts.Source, 5*time.Second, log),
		bookmarks: opts.Bookmarks,
		session:   opts.Session,
		log:       log.WithContext("component", "tui"),
		debounce:  opts.Debounce,
		view:      ViewSearch,
		input:     in,
		list:      l,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
		scenario:  opts.Scenario,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, tea.EnterAltScreen}
	if strings.TrimSpace(m.input.Value()) != "" {
		cmds = append(cmds, m.runSearch(m.input.Value(), 1), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// SessionExpired reports whether the API rejected the stored token.
func (m Model) SessionExpired() bool {
	return m.sessionEnd
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-5)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 3
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case debounceMsg:
		if msg.seq != m.typingSeq {
			return m, nil
		}
		q := strings.TrimSpace(m.input.Value())
		if q == "" {
			m.orch.Cancel()
			m.loading = false
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, tea.Batch(m.runSearch(q, 1), m.spinner.Tick)

	case resultsMsg:
		if errors.Is(msg.err, search.ErrSuperseded) {
			return m, nil
		}
		m.loading = false
		m.snap = msg.snap
		if msg.err != nil {
			m.err = errors.New("Failed to load search results. Please try again.")
			m.list.SetItems(nil)
			return m, nil
		}
		m.err = nil
		items := make([]list.Item, len(msg.snap.Results))
		for i, b := range msg.snap.Results {
			items[i] = bookItem{b}
		}
		m.list.Select(0)
		m.statusMsg = fmt.Sprintf("%d results · page %d of %d", msg.snap.TotalResults, msg.snap.CurrentPage, msg.snap.TotalPages)
		cmd := m.list.SetItems(items)
		return m, cmd

	case detailMsg:
		m.loading = false
		if msg.err != nil {
			if errors.Is(msg.err, detail.ErrBookNotFound) {
				m.err = errors.New("Book not found")
			} else {
				m.err = errors.New("Failed to load book details.")
			}
			return m, nil
		}
		m.current = msg.result
		m.view = ViewDetail
		m.viewport.SetContent(m.renderDocument(msg.result.Document()))
		m.viewport.GotoTop()
		return m, nil

	case errorMsg:
		m.loading = false
		m.err = msg.err
		if errors.Is(msg.err, upstream.ErrUnauthorized) {
			m.sessionEnd = true
			m.err = errors.New("Session expired. Sign in again.")
		}
		return m, nil

	case statusMsg:
		m.err = nil
		m.statusMsg = string(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.orch.Cancel()
		return m, tea.Quit
	}
	switch m.view {
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewHelp:
		return m.handleHelpKeys(msg)
	}
	if m.input.Focused() {
		return m.handleInputKeys(msg)
	}
	return m.handleListKeys(msg)
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		if len(m.list.Items()) > 0 {
			m.input.Blur()
		}
		return m, nil
	case "enter":
		m.typingSeq++
		return m, m.fire(m.typingSeq, 0)
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	m.typingSeq++
	return m, tea.Batch(cmd, m.fire(m.typingSeq, m.debounce))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.orch.Cancel()
		return m, tea.Quit

	case "tab", "/", "esc":
		cmd := m.input.Focus()
		return m, cmd

	case "enter":
		if i, ok := m.list.SelectedItem().(bookItem); ok {
			m.loading = true
			return m, tea.Batch(m.loadDetail(i.book.ID), m.spinner.Tick)
		}

	case "n", "right":
		return m.changePage(m.snap.Controls.Next())

	case "p", "left":
		return m.changePage(m.snap.Controls.Prev())

	case "s":
		m.scenario = nextScenario(m.scenario)
		m.statusMsg = "Scenario: " + m.scenario.Label()
		if q := strings.TrimSpace(m.input.Value()); q != "" {
			m.loading = true
			return m, tea.Batch(m.runSearch(q, 1), m.spinner.Tick)
		}
		return m, nil

	case "b":
		if i, ok := m.list.SelectedItem().(bookItem); ok {
			return m, m.addBookmark(i.book.ID)
		}

	case "?":
		m.view = ViewHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.orch.Cancel()
		return m, tea.Quit
	case "esc", "backspace":
		m.view = ViewSearch
		m.current = nil
		return m, nil
	case "b":
		if m.current != nil {
			return m, m.addBookmark(m.current.Book.ID)
		}
	case "?":
		m.view = ViewHelp
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		if m.current != nil {
			m.view = ViewDetail
		} else {
			m.view = ViewSearch
		}
	}
	return m, nil
}

func (m Model) changePage(page int) (tea.Model, tea.Cmd) {
	if !m.snap.Searched || page == m.snap.CurrentPage || !m.snap.Controls.InRange(page) {
		return m, nil
	}
	m.loading = true
	orch := m.orch
	return m, tea.Batch(func() tea.Msg {
		snap, err := orch.ChangePage(context.Background(), page)
		return resultsMsg{snap: snap, err: err}
	}, m.spinner.Tick)
}

// fire schedules the search for typing sequence seq after delay. Only the
// latest sequence survives to run.
func (m Model) fire(seq int, delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return debounceMsg{seq: seq} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return debounceMsg{seq: seq} })
}

func (m Model) runSearch(query string, page int) tea.Cmd {
	orch, scenario := m.orch, m.scenario
	return func() tea.Msg {
		snap, err := orch.Load(context.Background(), query, scenario, page)
		return resultsMsg{snap: snap, err: err}
	}
}

func (m Model) loadDetail(id int) tea.Cmd {
	resolver, query, scenario := m.resolver, m.snap.Query, m.scenario
	return func() tea.Msg {
		res, err := resolver.Resolve(context.Background(), strconv.Itoa(id), query, scenario)
		return detailMsg{result: res, err: err}
	}
}

func (m Model) addBookmark(bookID int) tea.Cmd {
	if !m.session.IsAuthenticated() || m.bookmarks == nil {
		return func() tea.Msg { return errorMsg{errors.New("Sign in to save bookmarks (revelare auth signin)")} }
	}
	userID, err := strconv.Atoi(m.session.ID)
	if err != nil {
		return func() tea.Msg { return errorMsg{fmt.Errorf("invalid user id %q", m.session.ID)} }
	}
	bm, token, log := m.bookmarks, m.session.AccessToken, m.log
	return func() tea.Msg {
		err := bm.AddBookmark(context.Background(), token, models.AddBookmarkRequest{UserID: userID, BookID: bookID})
		if err != nil {
			log.Warn("bookmark_add_failed", "book_id", bookID, "error", err.Error())
			if errors.Is(err, upstream.ErrUnauthorized) {
				return errorMsg{err}
			}
			return errorMsg{errors.New("Failed to save bookmark")}
		}
		return statusMsg("Book saved to bookmarks")
	}
}

func (m Model) renderDocument(doc string) string {
	width := m.width
	if width <= 0 || width > 100 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width-4))
	if err != nil {
		return doc
	}
	out, err := r.Render(doc)
	if err != nil {
		return doc
	}
	return out
}

func nextScenario(cur models.Scenario) models.Scenario {
	all := models.Scenarios()
	if cur == models.ScenarioDefault {
		cur = models.DefaultWireScenario
	}
	for i, s := range all {
		if s == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

func (m Model) View() string {
	switch m.view {
	case ViewDetail:
		return m.renderDetail()
	case ViewHelp:
		return m.renderHelp()
	}
	return m.renderSearch()
}

func (m Model) statusLine() string {
	switch {
	case m.loading:
		return m.spinner.View() + " Loading..."
	case m.err != nil:
		return errorStyle.Render(m.err.Error())
	case m.statusMsg != "":
		return statusStyle.Render(m.statusMsg)
	}
	return ""
}

func (m Model) renderSearch() string {
	var s strings.Builder

	s.WriteString(m.input.View())
	s.WriteString("  ")
	s.WriteString(helpStyle.Render(m.scenario.Label()))
	s.WriteString("\n\n")
	if m.snap.Searched && m.err == nil && len(m.snap.Results) == 0 {
		s.WriteString("No books found.\n")
	} else {
		s.WriteString(m.list.View())
	}
	s.WriteString("\n")
	s.WriteString(m.statusLine())
	s.WriteString("\n")
	if m.input.Focused() {
		s.WriteString(helpStyle.Render("type to search • enter: search now • tab: results • ctrl+c: quit"))
	} else {
		s.WriteString(helpStyle.Render("enter: details • n/p: page • s: scenario • b: bookmark • tab: edit query • ?: help • q: quit"))
	}
	return s.String()
}

func (m Model) renderDetail() string {
	var s strings.Builder

	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	s.WriteString(m.statusLine())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: scroll • b: bookmark • esc: back • ?: help • q: quit"))
	return s.String()
}

func (m Model) renderHelp() string {
	help := `
Revelare - Keyboard Shortcuts

Search:
  type         Search as you type
  enter        Search now
  tab          Move between query and results

Results:
  ↑/↓, j/k     Navigate books
  enter        Book details and similar books
  n/p          Next or previous page
  s            Cycle the ranking scenario
  b            Save to bookmarks
  q, ctrl+c    Quit

Details:
  ↑/↓          Scroll
  b            Save to bookmarks
  esc          Back to results
`
	return help + "\n" + helpStyle.Render("Press ? or esc to close help")
}
