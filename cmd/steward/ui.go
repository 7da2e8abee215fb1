// # cmd/steward/ui.go
package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"steward/internal/core/app"
	"steward/internal/ui/report"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Functions at or above this complexity count as alerts in the summary
// line.
const complexityAlert = 8

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	hotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	unresolvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type unresolvedFile struct {
	file  string
	count int
}

type updateMsg struct {
	data       report.Data
	unresolved []unresolvedFile
}

type model struct {
	list       list.Model
	data       report.Data
	unresolved []unresolvedFile
	lastUpdate time.Time
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.data = msg.data
		m.unresolved = msg.unresolved
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, h := range m.data.Hotspots {
			items = append(items, item{
				title: fmt.Sprintf("%s (complexity %d)", h.Function, h.Complexity),
				desc:  fmt.Sprintf("%s:%d · %d loc", h.File, h.Line, h.LOC),
			})
		}
		for _, u := range m.unresolved {
			items = append(items, item{
				title: "Unresolved identifiers",
				desc:  fmt.Sprintf("%d in %s", u.count, u.file),
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %s | %d files | %d loc",
		m.lastUpdate.Format("15:04:05"), m.data.TotalFiles, m.data.TotalLOC))

	alerts := 0
	for _, h := range m.data.Hotspots {
		if h.Complexity >= complexityAlert {
			alerts++
		}
	}

	var summary string
	if alerts == 0 && m.data.TotalUnresolved == 0 {
		summary = successStyle.Render("✅ Clean")
	} else {
		summary = fmt.Sprintf("⚠️  %s | %s",
			hotStyle.Render(fmt.Sprintf("%d Hot Functions", alerts)),
			unresolvedStyle.Render(fmt.Sprintf("%d Unresolved", m.data.TotalUnresolved)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Steward Watch"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Hotspots & Unresolved"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}

// unresolvedRows lists files with unresolved identifiers, worst first.
func unresolvedRows(snap *app.Snapshot) []unresolvedFile {
	var rows []unresolvedFile
	for path, fm := range snap.Files {
		if fm.UnresolvedCount == 0 {
			continue
		}
		rel, err := filepath.Rel(snap.Root, path)
		if err != nil {
			rel = path
		}
		rows = append(rows, unresolvedFile{file: filepath.ToSlash(rel), count: fm.UnresolvedCount})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].file < rows[j].file
	})
	return rows
}

func runUI(ctx context.Context, a *app.App) error {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen(), tea.WithContext(ctx))

	sendSnapshot := func(snap *app.Snapshot) {
		if snap == nil {
			return
		}
		p.Send(updateMsg{
			data:       report.FromSnapshot(snap, nil),
			unresolved: unresolvedRows(snap),
		})
	}

	a.SetUpdateHandler(func(u app.Update) {
		sendSnapshot(u.Snapshot)
	})
	defer a.SetUpdateHandler(nil)

	go sendSnapshot(a.Snapshot())

	_, err := p.Run()
	return err
}
