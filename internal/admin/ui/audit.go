package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Brandon541/BBS/internal/admin/app"
)

const auditPageSize = 100

// auditModel is a read-only viewer over the login audit log.
type auditModel struct {
	app *app.App

	width  int
	height int

	Done bool

	list list.Model
	err  error
}

type auditItem struct {
	title string
	desc  string
}

func (i auditItem) Title() string       { return i.title }
func (i auditItem) Description() string { return i.desc }
func (i auditItem) FilterValue() string { return i.title }

func newAuditModel(a *app.App) *auditModel {
	m := &auditModel{app: a}
	m.reload()
	return m
}

func (m *auditModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-2)
}

func (m *auditModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
				m.Done = true
			}
		}
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			m.Done = true
			return nil
		case "r":
			m.reload()
			return nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *auditModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Audit error: %v\n\nPress Enter/Esc to go back.", m.err)
	}
	m.list.Title = "Login Audit (newest first)"
	return m.list.View() + "\n(r reload, q/esc back)"
}

func (m *auditModel) reload() {
	attempts, err := m.app.Users.ListAttempts(auditPageSize)
	if err != nil {
		m.err = err
		return
	}

	items := make([]list.Item, 0, len(attempts))
	for _, a := range attempts {
		outcome := "FAIL"
		if a.Success {
			outcome = "ok"
		}
		title := fmt.Sprintf("%s  %s", outcome, a.Username)
		desc := fmt.Sprintf("from %s at %s", a.IPAddress, a.Timestamp.Format("2006-01-02 15:04:05"))
		items = append(items, auditItem{title: title, desc: desc})
	}

	m.list = list.New(items, list.NewDefaultDelegate(), m.width, m.height-2)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(true)
	m.list.SetShowHelp(true)
}
