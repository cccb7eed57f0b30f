package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Brandon541/BBS/internal/admin/app"
	"github.com/Brandon541/BBS/internal/message"
)

type messagesModel struct {
	app *app.App

	width  int
	height int

	Done bool

	state messagesState
	list  list.Model
	err   error

	selectedArea string
	offset       int
	limit        int

	selectedMsgID int64
	msgBody       string
	msgHeader     string
}

type messagesState int

const (
	messagesStateAreas messagesState = iota
	messagesStateList
	messagesStateDetail
)

type msgItem struct {
	id    int64
	area  string
	title string
	desc  string
	kind  string
}

func (i msgItem) Title() string       { return i.title }
func (i msgItem) Description() string { return i.desc }
func (i msgItem) FilterValue() string { return i.title }

func newMessagesModel(a *app.App) *messagesModel {
	m := &messagesModel{app: a, state: messagesStateAreas, limit: 50}
	m.reloadAreas()
	return m
}

func (m *messagesModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-2)
}

func (m *messagesModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
				m.err = nil
				m.state = messagesStateAreas
				m.reloadAreas()
			}
		}
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			if m.state == messagesStateAreas {
				m.Done = true
				return nil
			}
		case "esc":
			m.back()
			return nil
		case "n":
			if m.state == messagesStateList {
				m.offset += m.limit
				m.reloadMessages()
				return nil
			}
		case "p":
			if m.state == messagesStateList {
				m.offset -= m.limit
				if m.offset < 0 {
					m.offset = 0
				}
				m.reloadMessages()
				return nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			it, ok := m.list.SelectedItem().(msgItem)
			if !ok {
				return cmd
			}
			switch m.state {
			case messagesStateAreas:
				m.selectedArea = it.area
				m.offset = 0
				m.state = messagesStateList
				m.reloadMessages()
				return nil
			case messagesStateList:
				m.selectedMsgID = it.id
				m.state = messagesStateDetail
				m.loadMessageDetail()
				return nil
			}
		}
	}

	return cmd
}

func (m *messagesModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Messages error: %v\n\nPress Enter/Esc to go back.", m.err)
	}

	switch m.state {
	case messagesStateAreas:
		m.list.Title = "Message Areas"
		return m.list.View() + "\n(q to quit, enter to select)"
	case messagesStateList:
		m.list.Title = fmt.Sprintf("Messages - %s", m.selectedArea)
		return m.list.View() + "\n(n next page, p prev page, esc back)"
	case messagesStateDetail:
		return m.msgHeader + "\n\n" + m.msgBody + "\n\n(esc back)"
	default:
		return "Messages"
	}
}

func (m *messagesModel) reloadAreas() {
	items := make([]list.Item, 0, len(message.Areas))
	for _, area := range message.Areas {
		n, err := m.app.Messages.Count(area)
		if err != nil {
			m.err = err
			return
		}
		desc := fmt.Sprintf("total %d", n)
		if message.ReadOnly(area) {
			desc += ", read-only"
		}
		items = append(items, msgItem{area: area, title: area, desc: desc, kind: "area"})
	}

	m.list = list.New(items, list.NewDefaultDelegate(), m.width, m.height-2)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(false)
	m.list.SetShowHelp(true)
}

func (m *messagesModel) reloadMessages() {
	msgs, err := m.app.Messages.ListPage(m.selectedArea, m.offset, m.limit)
	if err != nil {
		m.err = err
		return
	}

	items := make([]list.Item, 0, len(msgs))
	for _, msg := range msgs {
		desc := fmt.Sprintf("from %s to %s, %s", msg.FromUser, msg.ToUser, msg.PostedAt.Format("2006-01-02"))
		items = append(items, msgItem{id: msg.ID, title: msg.Subject, desc: desc, kind: "msg"})
	}

	m.list = list.New(items, list.NewDefaultDelegate(), m.width, m.height-2)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(true)
	m.list.SetShowHelp(true)
}

func (m *messagesModel) loadMessageDetail() {
	msg, err := m.app.Messages.GetByID(m.selectedMsgID)
	if err != nil {
		m.err = err
		return
	}

	m.msgHeader = fmt.Sprintf("Subject: %s\nFrom: %s\nTo: %s\nArea: %s\nDate: %s",
		msg.Subject, msg.FromUser, msg.ToUser, msg.Area, msg.PostedAt.Format("2006-01-02 15:04"),
	)
	m.msgBody = msg.Body
}

func (m *messagesModel) back() {
	switch m.state {
	case messagesStateAreas:
		m.Done = true
	case messagesStateList:
		m.state = messagesStateAreas
		m.reloadAreas()
	case messagesStateDetail:
		m.state = messagesStateList
		m.reloadMessages()
	}
}
