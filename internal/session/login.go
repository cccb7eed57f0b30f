package session

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Brandon541/BBS/internal/user"
	"github.com/Brandon541/BBS/internal/validate"
)

// handleLogin drives the banner -> username -> password ->
// register-offer sequence.
func (s *Session) handleLogin(input string) *Response {
	switch s.login {
	case loginStepBanner:
		s.login = loginStepUsername
		return &Response{
			Output: []string{
				"",
				strings.Repeat("=", 60),
				"             SECURE TEXT BBS - RETRO COMPUTING",
				"                Connected at " + s.now().Format("2006-01-02 15:04:05"),
				strings.Repeat("=", 60),
				"",
				"Welcome to a secure, text-only bulletin board system!",
				"All input is validated and logged for security.",
				"",
			},
			Prompt:      "Enter username (3-20 chars, letters/numbers/underscore only):",
			ClearScreen: true,
			Menu:        MenuLogin,
		}

	case loginStepUsername:
		if strings.TrimSpace(input) == "" {
			return &Response{
				Output: []string{"Username cannot be empty."},
				Prompt: "Enter username:",
				Menu:   MenuLogin,
			}
		}
		if err := validate.Username(input); err != nil {
			// Invalid usernames re-prompt without penalty.
			return &Response{
				Output: []string{fmt.Sprintf("Invalid username: %v", err)},
				Prompt: "Enter username:",
				Menu:   MenuLogin,
			}
		}
		s.pendingUsername = input
		s.login = loginStepPassword
		return &Response{
			Prompt:        "Enter password (8+ chars with upper, lower, digit, special):",
			Menu:          MenuLogin,
			PasswordField: true,
		}

	case loginStepPassword:
		if input == "" {
			return &Response{
				Output:        []string{"Password cannot be empty."},
				Prompt:        "Enter password:",
				Menu:          MenuLogin,
				PasswordField: true,
			}
		}
		return s.checkCredentials(s.pendingUsername, input)

	case loginStepRegisterOffer:
		answer := strings.ToUpper(strings.TrimSpace(input))
		if answer == "Y" || answer == "YES" {
			s.Menu = MenuRegister
			s.reg = registrationState{step: regStepUsername, username: s.pendingUsername}
			return s.handleRegister("")
		}
		s.login = loginStepUsername
		s.pendingUsername = ""
		return &Response{
			Output: []string{""},
			Prompt: "Enter username:",
			Menu:   MenuLogin,
		}
	}

	return s.handleLogin("")
}

// checkCredentials resolves one login decision: audit record, limiter
// sample, and either the main menu or the failure path.
func (s *Session) checkCredentials(username, password string) *Response {
	ok, err := s.users.Verify(username, password)
	if err != nil {
		log.Printf("Session %s: verify %s: %v", s.ID, username, err)
		return s.systemError()
	}

	if ok {
		s.Username = username
		s.Authenticated = true
		if err := s.users.UpdateLogin(username); err != nil {
			log.Printf("Session %s: update login %s: %v", s.ID, username, err)
		}
		s.users.LogAttempt(username, s.IPAddress, true)
		s.limiter.RecordLoginAttempt(s.IPAddress, true)
		return s.showMainMenu(true)
	}

	s.loginAttempts++
	s.users.LogAttempt(username, s.IPAddress, false)
	s.limiter.RecordLoginAttempt(s.IPAddress, false)

	if s.loginAttempts >= MaxLoginAttempts {
		s.ended = true
		return &Response{
			Output: []string{
				"Too many failed attempts.",
				"Session terminated for security.",
			},
			Menu:         MenuLogin,
			SessionEnded: true,
		}
	}

	s.login = loginStepRegisterOffer
	return &Response{
		Output: []string{
			"Invalid login.",
			"",
			"Would you like to register a new account? (Y/N)",
		},
		Prompt: "Your choice:",
		Menu:   MenuLogin,
	}
}

// handleRegister drives the username -> password -> real name ->
// location sequence and persists the account at the end. The username
// is pre-seeded when registration was offered after a failed login.
func (s *Session) handleRegister(input string) *Response {
	switch s.reg.step {
	case regStepUsername:
		if s.reg.username != "" {
			s.reg.step = regStepPassword
			return &Response{
				Output: []string{
					"Registering username: " + s.reg.username,
					"",
					"Password requirements:",
					"- At least 8 characters",
					"- Must contain uppercase and lowercase letters",
					"- Must contain at least one digit",
					"- Must contain at least one special character (!@#$%^&*...)",
				},
				Prompt:        "Enter password:",
				Menu:          MenuRegister,
				PasswordField: true,
			}
		}
		if input == "" {
			return &Response{
				Output: []string{
					"USER REGISTRATION",
					strings.Repeat("=", 20),
					"",
					"Username requirements:",
					"- 3-20 characters",
					"- Letters, numbers, and underscores only",
					"- Must start with a letter",
				},
				Prompt:      "Enter desired username:",
				ClearScreen: true,
				Menu:        MenuRegister,
			}
		}
		if err := validate.Username(input); err != nil {
			return &Response{
				Output: []string{fmt.Sprintf("Invalid username: %v", err)},
				Prompt: "Enter desired username:",
				Menu:   MenuRegister,
			}
		}
		s.reg.username = input
		return s.handleRegister("")

	case regStepPassword:
		if input == "" {
			return &Response{
				Output:        []string{"Password cannot be empty."},
				Prompt:        "Enter password:",
				Menu:          MenuRegister,
				PasswordField: true,
			}
		}
		if err := validate.Password(input); err != nil {
			return &Response{
				Output:        []string{fmt.Sprintf("Password validation failed: %v", err)},
				Prompt:        "Enter password:",
				Menu:          MenuRegister,
				PasswordField: true,
			}
		}
		s.reg.password = input
		s.reg.step = regStepRealName
		return &Response{
			Output: []string{"Password accepted."},
			Prompt: "Enter your real name (optional, press Enter to skip):",
			Menu:   MenuRegister,
		}

	case regStepRealName:
		s.reg.realName = validate.SanitizeText(input, validate.MaxRealNameLen)
		s.reg.step = regStepLocation
		return &Response{
			Prompt: "Enter your location (optional, press Enter to skip):",
			Menu:   MenuRegister,
		}

	case regStepLocation:
		location := validate.SanitizeText(input, validate.MaxLocationLen)
		return s.createAccount(location)
	}

	return s.showMainMenu(false)
}

func (s *Session) createAccount(location string) *Response {
	err := s.users.Create(s.reg.username, s.reg.password, s.reg.realName, location)
	if errors.Is(err, user.ErrConflict) {
		// The conflict notice names the username so a retry loop with
		// the same name is at least visible to the user.
		taken := s.reg.username
		s.reg = registrationState{step: regStepUsername}
		return &Response{
			Output: []string{
				"Registration failed.",
				fmt.Sprintf("Username '%s' may already be taken.", taken),
				"",
			},
			Prompt: "Enter desired username:",
			Menu:   MenuRegister,
		}
	}
	if err != nil {
		log.Printf("Session %s: create user %s: %v", s.ID, s.reg.username, err)
		return s.systemError()
	}

	s.Username = s.reg.username
	s.Authenticated = true
	if err := s.users.UpdateLogin(s.Username); err != nil {
		log.Printf("Session %s: update login %s: %v", s.ID, s.Username, err)
	}
	s.Menu = MenuMain
	s.reg = registrationState{}

	return &Response{
		Output: []string{
			"",
			"Registration successful!",
			fmt.Sprintf("Welcome to the BBS, %s!", s.Username),
			"",
		},
		Prompt: "Press Enter to continue to main menu...",
		Menu:   MenuMain,
	}
}
