package session

import (
	"fmt"
	"log"
	"strings"

	"github.com/Brandon541/BBS/internal/validate"
)

// showMainMenu renders the main menu and makes it the current state.
func (s *Session) showMainMenu(welcome bool) *Response {
	s.Menu = MenuMain

	var output []string
	if welcome {
		output = append(output,
			"",
			fmt.Sprintf("Welcome back, %s!", s.Username),
			"",
		)
	}

	output = append(output,
		"",
		strings.Repeat("-", 40),
		fmt.Sprintf("  MAIN MENU - User: %s", s.Username),
		strings.Repeat("-", 40),
		"",
		"  [1] (M)essage Areas",
		"  [2] (D)oor Games",
		"  [3] (U)ser List",
		"  [4] (H)elp",
		"  [5] (T)ime",
		"  [Q]uit",
		"",
	)

	return &Response{
		Output:      output,
		Prompt:      "Enter command:",
		ClearScreen: welcome,
		Menu:        MenuMain,
	}
}

// handleMainMenu validates and dispatches a main-menu command.
// Syntactically invalid input is an error; valid-but-unhandled
// commands get the generic not-implemented notice.
func (s *Session) handleMainMenu(input string) *Response {
	if input == "" {
		return s.showMainMenu(false)
	}

	cmd, err := validate.Command(input)
	if err != nil {
		return &Response{
			Output: []string{fmt.Sprintf("Invalid command: %s", input)},
			Prompt: "Enter command:",
			Menu:   MenuMain,
		}
	}

	switch cmd {
	case "Q", "QUIT", "EXIT", "LOGOFF", "BYE":
		s.ended = true
		return &Response{
			Output: []string{
				"Thank you for using our BBS.",
				"Your session has been logged off.",
				"Goodbye!",
			},
			Menu:         MenuMain,
			SessionEnded: true,
		}
	case "M", "MESSAGES", "MESSAGE", "1":
		s.Menu = MenuMessages
		s.msg.view = msgViewMenu
		return s.handleMessages("")
	case "D", "DOORS", "DOOR", "GAMES", "2":
		s.Menu = MenuDoors
		return s.handleDoors("")
	case "U", "USERS", "USER", "3":
		s.Menu = MenuUsers
		return s.handleUsers("")
	case "H", "HELP", "?", "4":
		s.Menu = MenuHelp
		return s.showHelp()
	case "T", "TIME", "5":
		return s.showTime()
	default:
		return &Response{
			Output: []string{"Command not implemented yet."},
			Prompt: "Enter command:",
			Menu:   MenuMain,
		}
	}
}

func (s *Session) showTime() *Response {
	return &Response{
		Output: []string{
			"",
			"Current system time: " + s.now().Format("Monday, January 2, 2006 at 3:04:05 PM"),
			"",
		},
		Prompt: "Enter command:",
		Menu:   MenuMain,
	}
}

// handleUsers shows the recent-visitor list.
func (s *Session) handleUsers(input string) *Response {
	if strings.EqualFold(input, "B") || strings.EqualFold(input, "BACK") {
		return s.showMainMenu(false)
	}
	if input != "" {
		return s.handleUsers("")
	}

	users, err := s.users.ListRecent(20)
	if err != nil {
		log.Printf("Session %s: list users: %v", s.ID, err)
		return &Response{
			Output: []string{
				"Error retrieving user list.",
				"[B]ack to Main Menu",
			},
			Prompt:      "Enter choice:",
			ClearScreen: true,
			Menu:        MenuUsers,
		}
	}

	output := []string{
		"",
		strings.Repeat("-", 50),
		"  USER LIST - Recent Visitors",
		strings.Repeat("-", 50),
		"",
	}

	if len(users) == 0 {
		output = append(output, "No users found.")
	} else {
		output = append(output,
			fmt.Sprintf("%-15s %-20s %-15s", "Username", "Real Name", "Last Login"),
			strings.Repeat("-", 50),
		)
		for _, u := range users {
			realName := u.RealName
			if realName == "" {
				realName = "(not provided)"
			}
			if len(realName) > 18 {
				realName = realName[:15] + "..."
			}
			lastLogin := "Never"
			if u.LastLogin != nil {
				lastLogin = u.LastLogin.Format("2006-01-02")
			}
			output = append(output, fmt.Sprintf("%-15s %-20s %-15s", u.Username, realName, lastLogin))
		}
	}

	output = append(output, "", "[B]ack to Main Menu")

	return &Response{
		Output:      output,
		Prompt:      "Enter choice:",
		ClearScreen: true,
		Menu:        MenuUsers,
	}
}

// handleHelp fires after the help screen is on display; any input,
// including a bare Enter, returns to the main menu.
func (s *Session) handleHelp(input string) *Response {
	return s.showMainMenu(false)
}

func (s *Session) showHelp() *Response {
	return &Response{
		Output: []string{
			"",
			strings.Repeat("-", 50),
			"  HELP - BBS COMMANDS",
			strings.Repeat("-", 50),
			"",
			"  Navigation:",
			"    - Enter menu numbers (1, 2, 3...) or letters (M, D, U...)",
			"    - Commands are case-insensitive",
			"    - Type B or BACK to go back in menus",
			"",
			"  Security Features:",
			"    - All input is validated and sanitized",
			"    - Rate limiting prevents abuse",
			"    - Failed login attempts are logged",
			"    - Sessions timeout after 30 minutes of inactivity",
			"",
			"  Available Areas:",
			"    - Messages: Read and post messages",
			"    - Door Games: Information about available games",
			"    - User List: See who's on the system",
			"",
		},
		Prompt:      "Press Enter to continue...",
		ClearScreen: true,
		Menu:        MenuHelp,
	}
}

// handleDoors shows the door-game roster. The games run outside the
// BBS core; this menu only points at them.
func (s *Session) handleDoors(input string) *Response {
	if strings.EqualFold(input, "B") || strings.EqualFold(input, "BACK") {
		return s.showMainMenu(false)
	}

	switch input {
	case "":
		return &Response{
			Output: []string{
				"",
				strings.Repeat("-", 40),
				"  DOOR GAMES AVAILABLE",
				strings.Repeat("-", 40),
				"",
				"  [1] The Pit - Gladiator Combat",
				"  [2] Galactic Conquest - Space Trading",
				"  [3] Hi-Lo Casino - Number Guessing",
				"",
				"  [B]ack to Main Menu",
				"",
				"Note: Games run in separate processes for security.",
			},
			Prompt:      "Enter choice:",
			ClearScreen: true,
			Menu:        MenuDoors,
		}
	case "1":
		return s.doorInfo("The Pit - Gladiator Combat Arena",
			"Real-time combat and character progression.")
	case "2":
		return s.doorInfo("Galactic Conquest - Space Trading Game",
			"Trade across the galaxy and build your fortune!")
	case "3":
		return s.doorInfo("Hi-Lo Casino - Number Guessing Game",
			"Test your luck and win big!")
	default:
		return &Response{
			Output: []string{"Invalid selection."},
			Prompt: "Enter choice:",
			Menu:   MenuDoors,
		}
	}
}

func (s *Session) doorInfo(title, tagline string) *Response {
	return &Response{
		Output: []string{
			title,
			"",
			"This game launches outside the BBS core.",
			tagline,
		},
		Prompt: "Press Enter to continue...",
		Menu:   MenuDoors,
	}
}
