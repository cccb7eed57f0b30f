package validate

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"
)

// Input limits enforced across both front ends.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 20
	MinPasswordLen = 8
	MaxPasswordLen = 128
	MaxRealNameLen = 50
	MaxLocationLen = 50
	MaxSubjectLen  = 100
	MaxBodyLen     = 1000
)

// Filtered is returned by SanitizeText in place of any input that
// matched a banned pattern. The whole string is replaced, never
// partially redacted.
const Filtered = "[CONTENT FILTERED]"

// specialChars is the fixed set accepted as the "special" password class.
const specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// reservedNames cannot be registered regardless of case.
var reservedNames = []string{"admin", "root", "system", "sysop", "guest", "anonymous", "user"}

// controlChars matches C0 control characters (minus tab/newline/CR) and DEL.
var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// bannedPatterns are scanned against sanitized input. Any match rejects
// the entire string.
var bannedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script[^>]*>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`(?i)(union|select|insert|update|delete|drop|create|alter)\s`),
}

var usernameChars = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Username checks a candidate username against the account naming rules.
func Username(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLen {
		return fmt.Errorf("username too short (min %d characters)", MinUsernameLen)
	}
	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username too long (max %d)", MaxUsernameLen)
	}
	if !usernameChars.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, and underscores")
	}
	if !unicode.IsLetter(rune(username[0])) {
		return fmt.Errorf("username must start with a letter")
	}
	lower := strings.ToLower(username)
	for _, r := range reservedNames {
		if lower == r {
			return fmt.Errorf("username is reserved")
		}
	}
	return nil
}

// Password checks password strength. All four character classes are
// required; there is no partial credit.
func Password(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password too long (max %d)", MaxPasswordLen)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return fmt.Errorf("password must contain uppercase, lowercase, digit, and special character")
	}
	return nil
}

// SanitizeText strips control characters, rejects banned content, and
// HTML-escapes the remainder truncated to maxLen. A banned pattern
// replaces the whole string with the Filtered sentinel: the gate is
// fail-closed, not a redactor. maxLen <= 0 means unlimited.
func SanitizeText(text string, maxLen int) string {
	if text == "" {
		return ""
	}

	text = controlChars.ReplaceAllString(text, "")

	for _, p := range bannedPatterns {
		if p.MatchString(text) {
			return Filtered
		}
	}

	text = html.EscapeString(text)

	if maxLen > 0 && len(text) > maxLen {
		text = text[:maxLen]
	}

	return strings.TrimSpace(text)
}

// validCommands is the fixed command vocabulary accepted at menus.
var validCommands = map[string]bool{
	// Main menu
	"M": true, "MESSAGES": true, "MESSAGE": true,
	"F": true, "FILES": true, "FILE": true,
	"D": true, "DOORS": true, "DOOR": true, "GAMES": true,
	"C": true, "CHAT": true,
	"U": true, "USERS": true, "USER": true,
	"S": true, "STATS": true, "STATISTICS": true,
	"Q": true, "QUIT": true, "EXIT": true, "LOGOFF": true, "BYE": true,
	"H": true, "HELP": true, "?": true,
	"T": true, "TIME": true,
	"W": true, "WHO": true,

	// Message commands
	"R": true, "READ": true,
	"P": true, "POST": true,
	"L": true, "LIST": true,
	"B": true, "BACK": true,

	// Confirmation and navigation
	"Y": true, "YES": true, "N": true, "NO": true,
	"ENTER": true, "RETURN": true,
}

// Command normalizes a command to uppercase and checks it against the
// menu vocabulary. Digits are always accepted (menu selections).
func Command(command string) (string, error) {
	command = strings.ToUpper(strings.TrimSpace(command))
	if command == "" {
		return "", fmt.Errorf("command cannot be empty")
	}

	if isDigits(command) {
		return command, nil
	}
	if validCommands[command] {
		return command, nil
	}
	return "", fmt.Errorf("invalid command: %s", command)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
