// Package tui is a terminal client for the todo API. It renders the
// session controller's snapshots with Bubble Tea and translates key
// presses back into controller calls; all list semantics (debounce,
// pagination, undo window) live in the controller.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskleaf/taskleaf/client"
	"github.com/taskleaf/taskleaf/models"
	"github.com/taskleaf/taskleaf/session"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeSearch
)

// snapshotMsg carries a controller state change into the Bubble Tea loop
type snapshotMsg session.Snapshot

type Model struct {
	ctrl   *session.Controller
	snaps  chan session.Snapshot
	snap   session.Snapshot
	keys   Keymap
	mode   mode
	input  textinput.Model
	cursor int
	width  int
}

// Run connects to the API at cfg.BaseURL and drives the UI until quit.
func Run(cfg Config) error {
	repo := client.New(cfg.BaseURL)

	snaps := make(chan session.Snapshot, 1)
	ctrl := session.New(repo, models.DefaultViewState(), session.Options{
		PageSize: cfg.PageSize,
		OnChange: func(s session.Snapshot) { pushLatest(snaps, s) },
	})

	ti := textinput.New()
	ti.Placeholder = "Todo title"
	ti.CharLimit = models.MaxTitleLength
	ti.Width = 40

	m := Model{
		ctrl:  ctrl,
		snaps: snaps,
		keys:  cfg.Keys,
		input: ti,
	}

	ctrl.Start()
	defer ctrl.Close()

	_, err := tea.NewProgram(m).Run()
	return err
}

// pushLatest delivers a snapshot without ever blocking the controller.
// Each snapshot is the complete state, so dropping a superseded one is safe.
func pushLatest(ch chan session.Snapshot, s session.Snapshot) {
	for {
		select {
		case ch <- s:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

func waitForSnapshot(ch chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.snaps)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = session.Snapshot(msg)
		m.cursor = clampCursor(m.cursor, len(m.snap.Items))
		return m, waitForSnapshot(m.snaps)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 10
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(msg)
		case modeSearch:
			return m.updateSearchMode(msg)
		default:
			return m.updateListMode(msg.String())
		}
	}
	return m, nil
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		if title != "" {
			m.ctrl.Add(title)
		}
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.ctrl.SetSearch("")
		return m, nil
	case "enter":
		m.mode = modeList
		m.input.Blur()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		// Every keystroke goes to the controller; its debounce decides
		// when the query actually runs
		m.ctrl.SetSearch(m.input.Value())
		return m, cmd
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.keys.Quit:
		return m, tea.Quit
	case "down", m.keys.Down:
		m.cursor = clampCursor(m.cursor+1, len(m.snap.Items))
	case "up", m.keys.Up:
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.snap.Items))
		}
	case m.keys.Add:
		m.mode = modeAdd
		m.input.Placeholder = "Todo title"
		m.input.SetValue("")
		m.input.Focus()
	case m.keys.Search:
		m.mode = modeSearch
		m.input.Placeholder = "Search"
		m.input.SetValue(m.snap.View.Q)
		m.input.Focus()
	case m.keys.Toggle:
		if item, ok := m.selected(); ok {
			m.ctrl.Toggle(item.ID)
		}
	case m.keys.Delete:
		if item, ok := m.selected(); ok {
			m.ctrl.Remove(item.ID)
		}
	case m.keys.Undo:
		m.ctrl.Undo()
	case m.keys.Filter:
		m.ctrl.SetFilter(nextFilter(m.snap.View.Filter))
		m.cursor = 0
	case m.keys.Sort:
		m.ctrl.SetSort(nextSortBy(m.snap.View.SortBy), m.snap.View.SortOrder)
		m.cursor = 0
	case m.keys.Order:
		m.ctrl.SetSort(m.snap.View.SortBy, flipOrder(m.snap.View.SortOrder))
		m.cursor = 0
	case "right", m.keys.NextPage:
		m.ctrl.NextPage()
		m.cursor = 0
	case "left", m.keys.PrevPage:
		m.ctrl.PrevPage()
		m.cursor = 0
	case m.keys.Clear:
		m.ctrl.ClearCompleted()
		m.cursor = 0
	case m.keys.Reload:
		m.ctrl.Reload()
	case m.keys.Dismiss:
		m.ctrl.ClearError()
	}
	return m, nil
}

func (m Model) selected() (models.Todo, bool) {
	if len(m.snap.Items) == 0 || m.cursor >= len(m.snap.Items) {
		return models.Todo{}, false
	}
	return m.snap.Items[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TaskLeaf"))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderViewLine())
	b.WriteString("\n\n")

	switch {
	case m.snap.Loading && len(m.snap.Items) == 0:
		b.WriteString(helpStyle.Render("Loading..."))
		b.WriteString("\n")
	case len(m.snap.Items) == 0:
		b.WriteString(helpStyle.Render(m.emptyMessage()))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")
	b.WriteString(m.renderPager())
	b.WriteString("\n")

	if m.snap.PendingDelete != nil {
		b.WriteString(noticeStyle.Render(fmt.Sprintf("Deleted %q — press %s to undo", m.snap.PendingDelete.Title, m.keys.Undo)))
		b.WriteString("\n")
	}
	if m.snap.Err != "" {
		b.WriteString(errorStyle.Render(m.snap.Err + " (" + m.keys.Dismiss + " to dismiss)"))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeAdd:
		b.WriteString("\nAdd todo (enter to save, esc to cancel)\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeSearch:
		b.WriteString("\nSearch (enter to keep, esc to clear)\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	default:
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(m.renderHelp()))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderTabs() string {
	tabs := []struct {
		filter models.Filter
		label  string
	}{
		{models.FilterAll, fmt.Sprintf("All (%d)", m.snap.TotalActive+m.snap.TotalCompleted)},
		{models.FilterActive, fmt.Sprintf("Active (%d)", m.snap.TotalActive)},
		{models.FilterCompleted, fmt.Sprintf("Completed (%d)", m.snap.TotalCompleted)},
	}

	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		if tab.filter == m.snap.View.Filter {
			parts = append(parts, tabActiveStyle.Render(tab.label))
		} else {
			parts = append(parts, tabInactiveStyle.Render(tab.label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderViewLine() string {
	arrow := "↓"
	if m.snap.View.SortOrder == models.SortAsc {
		arrow = "↑"
	}
	line := fmt.Sprintf("sort: %s %s", m.snap.View.SortBy, arrow)
	if m.snap.View.Q != "" {
		line += fmt.Sprintf("  search: %q", m.snap.View.Q)
	}
	if m.snap.Loading {
		line += "  …"
	}
	return helpStyle.Render(line)
}

func (m Model) renderList() string {
	var b strings.Builder
	for i, item := range m.snap.Items {
		cursor := " "
		if i == m.cursor && m.mode == modeList {
			cursor = ">"
		}

		checkbox := boxUnchecked
		if item.Completed {
			checkbox = boxChecked
		}

		title := item.Title
		switch {
		case item.ID == m.snap.DeletingID:
			title = leavingStyle.Render(title + " (deleting…)")
		case item.Completed:
			title = doneStyle.Render(title)
		}

		row := fmt.Sprintf("%s %s %s", cursor, checkbox, title)
		if i == m.cursor && m.mode == modeList {
			row = selectedStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderPager() string {
	return helpStyle.Render(fmt.Sprintf("page %d/%d · %d items",
		m.snap.View.Page, m.snap.TotalPages, m.snap.TotalItems))
}

func (m Model) renderHelp() string {
	k := m.keys
	toggle := k.Toggle
	if toggle == " " {
		toggle = "space"
	}
	return fmt.Sprintf("%s/%s move · %s add · %s search · %s toggle · %s delete · %s undo · %s filter · %s/%s sort · %s/%s page · %s clear done · %s quit",
		k.Up, k.Down, k.Add, k.Search, toggle, k.Delete, k.Undo, k.Filter, k.Sort, k.Order, k.PrevPage, k.NextPage, k.Clear, k.Quit)
}

func (m Model) emptyMessage() string {
	if m.snap.View.Q != "" {
		return fmt.Sprintf("No todos match %q", m.snap.View.Q)
	}
	switch m.snap.View.Filter {
	case models.FilterActive:
		return "No active todos"
	case models.FilterCompleted:
		return "No completed todos"
	default:
		return "No todos yet. Press '" + m.keys.Add + "' to add one."
	}
}

func nextFilter(f models.Filter) models.Filter {
	switch f {
	case models.FilterAll:
		return models.FilterActive
	case models.FilterActive:
		return models.FilterCompleted
	default:
		return models.FilterAll
	}
}

func nextSortBy(s models.SortBy) models.SortBy {
	switch s {
	case models.SortByCreatedAt:
		return models.SortByTitle
	case models.SortByTitle:
		return models.SortByStatus
	default:
		return models.SortByCreatedAt
	}
}

func flipOrder(o models.SortOrder) models.SortOrder {
	if o == models.SortAsc {
		return models.SortDesc
	}
	return models.SortAsc
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
