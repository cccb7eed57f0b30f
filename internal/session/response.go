package session

// Menu names the session's current top-level state. The value is what
// front ends see in the response envelope.
type Menu string

const (
	MenuLogin    Menu = "login"
	MenuRegister Menu = "register"
	MenuMain     Menu = "main"
	MenuMessages Menu = "messages"
	MenuDoors    Menu = "doors"
	MenuUsers    Menu = "users"
	MenuHelp     Menu = "help"
)

// Response is the envelope returned for every processed input. Errors
// are ordinary responses whose prompt does not advance state; there is
// no separate error channel.
type Response struct {
	Output        []string `json:"output"`
	Prompt        string   `json:"prompt"`
	ClearScreen   bool     `json:"clear_screen"`
	Menu          Menu     `json:"menu"`
	PasswordField bool     `json:"password_field,omitempty"`
	SessionEnded  bool     `json:"session_ended,omitempty"`
}
