// Package tui is a terminal rendering surface for the admin panel: one tab
// per collection over a listing.Controller, plus the task board.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
)

// Store is what the terminal UI reads from.
type Store interface {
	Collections() ([]string, error)
	NewView(collection string) (listing.Controller, error)
	Board(collection, field string, q listing.Query) (any, error)
}

// Model is the bubbletea model. Every list page keeps its own query, filters
// and selection while the user switches tabs.
type Model struct {
	store  Store
	views  []listing.Controller
	active int
	keys   keyMap

	cursor int
	top    int

	searching bool
	board     bool

	width  int
	height int

	status    string
	statusErr bool
}

// New opens one view per collection.
func New(s Store) (Model, error) {
	names, err := s.Collections()
	if err != nil {
		return Model{}, err
	}
	m := Model{store: s, keys: defaultKeys()}
	for _, name := range names {
		v, err := s.NewView(name)
		if err != nil {
			return Model{}, fmt.Errorf("open %s: %w", name, err)
		}
		m.views = append(m.views, v)
	}
	if len(m.views) == 0 {
		return Model{}, fmt.Errorf("no collections")
	}
	return m, nil
}

// Run blocks until the user quits.
func Run(s Store) error {
	m, err := New(s)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) view() listing.Controller { return m.views[m.active] }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInWindow()
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		f := m.view().Frame()
		if f.FormOpen {
			return m.updateForm(msg)
		}
		if f.DetailOpen {
			return m.updateDetail(msg)
		}
		if m.board {
			return m.updateBoard(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.view()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(-1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Select):
		ids := v.Frame().IDs
		if m.cursor < len(ids) {
			if err := v.SelectID(ids[m.cursor]); err != nil {
				m.setError(err.Error())
			}
		}
	case key.Matches(msg, m.keys.Back):
		if v.Query() != "" {
			v.SetQuery("")
			m.resetCursor()
		}
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.setStatus("")
	case key.Matches(msg, m.keys.Filter1):
		m.cycleFilter(0)
	case key.Matches(msg, m.keys.Filter2):
		m.cycleFilter(1)
	case key.Matches(msg, m.keys.Filter3):
		m.cycleFilter(2)
	case key.Matches(msg, m.keys.Reset):
		v.ResetFilters()
		v.SetQuery("")
		m.resetCursor()
		m.setStatus("Фильтры сброшены")
	case key.Matches(msg, m.keys.NewRecord):
		v.OpenForm()
	case key.Matches(msg, m.keys.Board):
		if v.Name() != schema.TasksCollection {
			m.setError("Доска есть только у задач")
			break
		}
		m.board = true
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.view()
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.searching = false
		v.SetQuery("")
	case tea.KeyEnter:
		m.searching = false
	case tea.KeyBackspace:
		if q := []rune(v.Query()); len(q) > 0 {
			v.SetQuery(string(q[:len(q)-1]))
		}
	case tea.KeyRunes, tea.KeySpace:
		v.SetQuery(v.Query() + string(msg.Runes))
	default:
		return m, nil
	}
	m.resetCursor()
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Select):
		m.view().Clear()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.view().CloseForm()
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Board):
		m.board = false
	}
	return m, nil
}

func (m *Model) switchTab(delta int) {
	n := len(m.views)
	m.active = ((m.active+delta)%n + n) % n
	m.board = false
	m.resetCursor()
	m.setStatus("")
}

// cycleFilter advances the i-th filter of the active view through all and
// then each of its options.
func (m *Model) cycleFilter(i int) {
	v := m.view()
	names := v.FilterNames()
	if i >= len(names) {
		m.setError("Нет такого фильтра")
		return
	}
	name := names[i]
	opts, err := v.Options(name)
	if err != nil {
		m.setError(err.Error())
		return
	}
	values := append([]string{listing.All}, opts...)
	next := values[0]
	for j, val := range values {
		if val == v.Filter(name) {
			next = values[(j+1)%len(values)]
			break
		}
	}
	if err := v.SetFilter(name, next); err != nil {
		m.setError(err.Error())
		return
	}
	m.resetCursor()
	m.setStatus(fmt.Sprintf("Фильтр %s: %s", name, next))
}

func (m *Model) moveCursor(delta int) {
	n := m.view().Frame().Count
	if n == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	m.ensureCursorInWindow()
}

func (m *Model) resetCursor() {
	m.cursor = 0
	m.top = 0
}

func (m *Model) ensureCursorInWindow() {
	rows := m.visibleRows()
	if rows <= 0 {
		return
	}
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+rows {
		m.top = m.cursor - rows + 1
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}
