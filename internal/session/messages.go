package session

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Brandon541/BBS/internal/message"
	"github.com/Brandon541/BBS/internal/validate"
)

// handleMessages drives the message-area views: area menu, listing,
// reading, and composition.
func (s *Session) handleMessages(input string) *Response {
	switch s.msg.view {
	case msgViewMenu:
		return s.messageMenu(input)
	case msgViewList:
		return s.messageList(input)
	case msgViewRead:
		// Any input returns to the listing.
		s.msg.view = msgViewList
		return s.messageList("")
	case msgViewCompose:
		return s.messageCompose(input)
	case msgViewPosted:
		s.msg.view = msgViewList
		return s.messageList("")
	}

	s.msg.view = msgViewMenu
	return s.messageMenu("")
}

func (s *Session) messageMenu(input string) *Response {
	choice := strings.ToUpper(strings.TrimSpace(input))

	switch choice {
	case "":
		return s.showAreaMenu()
	case "B", "BACK":
		return s.showMainMenu(false)
	case "1":
		s.msg.area = message.AreaGeneral
	case "2":
		s.msg.area = message.AreaGaming
	case "3":
		s.msg.area = message.AreaTechnical
	case "4":
		s.msg.area = message.AreaAnnouncements
	case "R", "READ":
		s.msg.view = msgViewList
		return s.messageList("")
	case "P", "POST":
		return s.startCompose()
	default:
		return &Response{
			Output: []string{"Invalid choice. Select an area, [R]ead, [P]ost, or [B]ack."},
			Prompt: "Enter choice:",
			Menu:   MenuMessages,
		}
	}

	return &Response{
		Output: []string{fmt.Sprintf("Current area: %s", s.msg.area)},
		Prompt: "Enter choice:",
		Menu:   MenuMessages,
	}
}

func (s *Session) showAreaMenu() *Response {
	output := []string{
		"",
		strings.Repeat("-", 40),
		"  MESSAGE AREAS",
		strings.Repeat("-", 40),
		"",
	}
	for i, area := range message.Areas {
		marker := " "
		if area == s.msg.area {
			marker = "*"
		}
		label := area
		if message.ReadOnly(area) {
			label += " (read-only)"
		}
		output = append(output, fmt.Sprintf("  [%d]%s %s", i+1, marker, label))
	}
	output = append(output,
		"",
		"  [R]ead Messages   [P]ost Message   [B]ack to Main Menu",
		"",
	)

	return &Response{
		Output:      output,
		Prompt:      "Enter choice:",
		ClearScreen: true,
		Menu:        MenuMessages,
	}
}

func (s *Session) messageList(input string) *Response {
	choice := strings.ToUpper(strings.TrimSpace(input))

	switch choice {
	case "B", "BACK":
		s.msg.view = msgViewMenu
		return s.messageMenu("")
	case "P", "POST":
		return s.startCompose()
	case "":
		return s.showMessageList()
	}

	id, err := strconv.ParseInt(choice, 10, 64)
	if err != nil {
		return &Response{
			Output: []string{"Invalid choice. Enter a message number, [P]ost, or [B]ack."},
			Prompt: "Enter choice:",
			Menu:   MenuMessages,
		}
	}
	return s.readMessage(id)
}

func (s *Session) showMessageList() *Response {
	msgs, err := s.msgs.List(s.msg.area, 20)
	if err != nil {
		log.Printf("Session %s: list messages in %s: %v", s.ID, s.msg.area, err)
		return s.systemError()
	}

	output := []string{
		"",
		strings.Repeat("-", 58),
		fmt.Sprintf("  MESSAGES - %s", s.msg.area),
		strings.Repeat("-", 58),
		"",
	}

	if len(msgs) == 0 {
		output = append(output, "No messages in this area yet.")
	} else {
		output = append(output,
			fmt.Sprintf("%-5s %-15s %-25s %-10s", "#", "From", "Subject", "Date"),
			strings.Repeat("-", 58),
		)
		for _, m := range msgs {
			subject := m.Subject
			if len(subject) > 23 {
				subject = subject[:20] + "..."
			}
			output = append(output, fmt.Sprintf("%-5d %-15s %-25s %-10s",
				m.ID, m.FromUser, subject, m.PostedAt.Format("2006-01-02")))
		}
	}

	output = append(output,
		"",
		"Enter message number to read.",
		"[P]ost New Message | [B]ack to Menu",
	)

	return &Response{
		Output:      output,
		Prompt:      "Enter choice:",
		ClearScreen: true,
		Menu:        MenuMessages,
	}
}

func (s *Session) readMessage(id int64) *Response {
	m, err := s.msgs.Get(id, s.msg.area)
	if err != nil {
		if errors.Is(err, message.ErrNotFound) {
			s.msg.view = msgViewRead
			return &Response{
				Output: []string{"Message not found."},
				Prompt: "Press Enter to return to the list...",
				Menu:   MenuMessages,
			}
		}
		log.Printf("Session %s: read message %d: %v", s.ID, id, err)
		return s.systemError()
	}

	s.msg.view = msgViewRead

	output := []string{
		"",
		strings.Repeat("=", 58),
		fmt.Sprintf("Message #%d - %s", m.ID, s.msg.area),
		strings.Repeat("=", 58),
		fmt.Sprintf("From:    %s", m.FromUser),
		fmt.Sprintf("To:      %s", m.ToUser),
		fmt.Sprintf("Subject: %s", m.Subject),
		fmt.Sprintf("Date:    %s", m.PostedAt.Format("2006-01-02 15:04")),
		strings.Repeat("-", 58),
		"",
	}
	for _, line := range strings.Split(m.Body, "\n") {
		output = append(output, wrapLine(line, 58)...)
	}
	output = append(output, "", strings.Repeat("=", 58))

	return &Response{
		Output:      output,
		Prompt:      "Press Enter to return to the list...",
		ClearScreen: true,
		Menu:        MenuMessages,
	}
}

// wrapLine breaks a body line at word boundaries so it fits a classic
// terminal width. A single overlong word is hard-split.
func wrapLine(line string, width int) []string {
	if len(line) <= width {
		return []string{line}
	}

	var out []string
	current := ""
	for _, word := range strings.Fields(line) {
		for len(word) > width {
			if current != "" {
				out = append(out, current)
				current = ""
			}
			out = append(out, word[:width])
			word = word[width:]
		}
		if current == "" {
			current = word
		} else if len(current)+1+len(word) <= width {
			current += " " + word
		} else {
			out = append(out, current)
			current = word
		}
	}
	if current != "" {
		out = append(out, current)
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

func (s *Session) startCompose() *Response {
	if message.ReadOnly(s.msg.area) {
		return &Response{
			Output: []string{fmt.Sprintf("%s area is read-only.", s.msg.area)},
			Prompt: "Enter choice:",
			Menu:   MenuMessages,
		}
	}

	s.msg.view = msgViewCompose
	s.msg.compose = composeState{step: composeStepSubject}

	return &Response{
		Output: []string{
			"",
			strings.Repeat("-", 40),
			fmt.Sprintf("  POST MESSAGE - %s", s.msg.area),
			strings.Repeat("-", 40),
			"",
			"Type CANCEL at any prompt to abort.",
			"",
		},
		Prompt:      fmt.Sprintf("Enter subject (max %d chars):", validate.MaxSubjectLen),
		ClearScreen: true,
		Menu:        MenuMessages,
	}
}

func (s *Session) messageCompose(input string) *Response {
	if strings.EqualFold(strings.TrimSpace(input), "CANCEL") {
		s.msg.view = msgViewMenu
		s.msg.compose = composeState{}
		return &Response{
			Output: []string{"Message cancelled."},
			Prompt: "Enter choice:",
			Menu:   MenuMessages,
		}
	}

	switch s.msg.compose.step {
	case composeStepSubject:
		subject := validate.SanitizeText(input, validate.MaxSubjectLen)
		if subject == "" {
			return &Response{
				Output: []string{"Subject cannot be empty."},
				Prompt: "Enter subject:",
				Menu:   MenuMessages,
			}
		}
		s.msg.compose.subject = subject
		s.msg.compose.step = composeStepBody
		return &Response{
			Output: []string{
				"Enter your message, one line at a time.",
				"Type END on its own line to post, CANCEL to abort.",
				fmt.Sprintf("Maximum message length: %d characters.", validate.MaxBodyLen),
				"",
			},
			Prompt: ">",
			Menu:   MenuMessages,
		}

	case composeStepBody:
		if strings.EqualFold(strings.TrimSpace(input), "END") {
			return s.postMessage()
		}

		line := validate.SanitizeText(input, 0)
		current := len(strings.Join(s.msg.compose.bodyLines, "\n"))
		added := len(line)
		if len(s.msg.compose.bodyLines) > 0 {
			added++
		}
		if current+added > validate.MaxBodyLen {
			return &Response{
				Output: []string{"Message too long. Type END to finish or CANCEL to abort."},
				Prompt: ">",
				Menu:   MenuMessages,
			}
		}
		s.msg.compose.bodyLines = append(s.msg.compose.bodyLines, line)
		return &Response{
			Prompt: ">",
			Menu:   MenuMessages,
		}
	}

	s.msg.view = msgViewMenu
	return s.messageMenu("")
}

func (s *Session) postMessage() *Response {
	c := s.msg.compose
	if c.subject == "" || len(c.bodyLines) == 0 {
		return &Response{
			Output: []string{"Message is incomplete. Add at least one line of text."},
			Prompt: ">",
			Menu:   MenuMessages,
		}
	}

	body := strings.Join(c.bodyLines, "\n")
	id, err := s.msgs.Post(s.Username, "ALL", c.subject, body, s.msg.area)
	if err != nil {
		log.Printf("Session %s: post message in %s: %v", s.ID, s.msg.area, err)
		s.msg.view = msgViewMenu
		s.msg.compose = composeState{}
		return &Response{
			Output: []string{"Error posting message."},
			Prompt: "Enter choice:",
			Menu:   MenuMessages,
		}
	}

	s.msg.view = msgViewPosted
	s.msg.compose = composeState{}

	return &Response{
		Output: []string{
			"",
			fmt.Sprintf("Message #%d posted to %s.", id, s.msg.area),
			"",
		},
		Prompt: "Press Enter to return to the message list...",
		Menu:   MenuMessages,
	}
}
