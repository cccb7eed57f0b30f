package session

import (
	"sync"
	"time"

	"github.com/Brandon541/BBS/internal/message"
	"github.com/Brandon541/BBS/internal/ratelimit"
	"github.com/Brandon541/BBS/internal/user"
	"github.com/Brandon541/BBS/internal/validate"
)

// Session timeouts and limits. Static policy, not runtime-tunable.
const (
	IdleTimeout  = 1800 * time.Second
	LoginTimeout = 300 * time.Second

	// Failed logins within one session before it is forcibly ended.
	// Independent of the address-level lockout in ratelimit.
	MaxLoginAttempts = 3

	// Every inbound line is sanitized to this length before dispatch.
	maxInputLen = 100
)

// UserStore is the credential storage consumed by sessions.
// *user.Repo satisfies it; tests substitute fakes.
type UserStore interface {
	Create(username, password, realName, location string) error
	Verify(username, password string) (bool, error)
	UpdateLogin(username string) error
	LogAttempt(username, ipAddress string, success bool)
	ListRecent(limit int) ([]*user.User, error)
}

// MessageStore is the message storage consumed by sessions.
// *message.Repo satisfies it.
type MessageStore interface {
	Post(fromUser, toUser, subject, body, area string) (int64, error)
	List(area string, limit int) ([]*message.Message, error)
	Get(id int64, area string) (*message.Message, error)
}

// Sub-steps of the login flow.
type loginStep int

const (
	loginStepBanner loginStep = iota
	loginStepUsername
	loginStepPassword
	loginStepRegisterOffer
)

// Sub-steps of the registration flow.
type regStep int

const (
	regStepUsername regStep = iota
	regStepPassword
	regStepRealName
	regStepLocation
)

type registrationState struct {
	step     regStep
	username string
	password string
	realName string
}

// Views within the message area.
type msgView int

const (
	msgViewMenu msgView = iota
	msgViewList
	msgViewRead
	msgViewCompose
	msgViewPosted
)

// Sub-steps of message composition.
type composeStep int

const (
	composeStepSubject composeStep = iota
	composeStepBody
)

type composeState struct {
	step      composeStep
	subject   string
	bodyLines []string
}

type messageState struct {
	view    msgView
	area    string
	compose composeState
}

// Session is the per-connection state machine. The Manager owns the
// table entry and is the sole party that creates or discards sessions;
// mu serializes input so a session never runs two Process calls at
// once, whatever the transport does.
type Session struct {
	ID            string
	IPAddress     string
	Username      string
	Authenticated bool
	Menu          Menu
	LastActivity  time.Time

	mu sync.Mutex

	users   UserStore
	msgs    MessageStore
	limiter *ratelimit.Limiter
	now     func() time.Time

	login           loginStep
	loginAttempts   int
	pendingUsername string

	reg registrationState
	msg messageState

	ended bool
}

// New creates a session awaiting its login banner.
func New(id, ipAddress string, users UserStore, msgs MessageStore, limiter *ratelimit.Limiter) *Session {
	s := &Session{
		ID:        id,
		IPAddress: ipAddress,
		Menu:      MenuLogin,
		users:     users,
		msgs:      msgs,
		limiter:   limiter,
		now:       time.Now,
	}
	s.msg.area = message.AreaGeneral
	s.LastActivity = s.now()
	return s
}

// SetClock replaces the time source. Test hook.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.LastActivity = now()
}

// IsValid reports whether the session may still receive input. Expired
// sessions are discarded by the Manager and replaced fresh; they are
// never resurrected.
func (s *Session) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false
	}
	idle := s.now().Sub(s.LastActivity)
	if idle > IdleTimeout {
		return false
	}
	if !s.Authenticated && idle > LoginTimeout {
		return false
	}
	return true
}

// Process handles one line of input and returns the response envelope.
// Input is throttled, sanitized, and dispatched to the handler for the
// current menu. Concurrent calls for the same session (two browser tabs
// sharing a cookie) queue up here rather than interleave.
func (s *Session) Process(input string) *Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastActivity = s.now()

	// Address-level throttle first. The generic wording does not reveal
	// whether the address or the account tripped it.
	if s.limiter.IsLimited(s.IPAddress) {
		return &Response{
			Output: []string{"Rate limit exceeded. Please slow down."},
			Prompt: "Press Enter to continue...",
			Menu:   s.Menu,
		}
	}
	s.limiter.RecordCommand(s.IPAddress)

	if input != "" {
		input = validate.SanitizeText(input, maxInputLen)
	}

	switch s.Menu {
	case MenuLogin:
		return s.handleLogin(input)
	case MenuRegister:
		return s.handleRegister(input)
	case MenuMain:
		return s.handleMainMenu(input)
	case MenuMessages:
		return s.handleMessages(input)
	case MenuDoors:
		return s.handleDoors(input)
	case MenuUsers:
		return s.handleUsers(input)
	case MenuHelp:
		return s.handleHelp(input)
	default:
		return s.showMainMenu(false)
	}
}

// systemError is the generic storage-fault response: logged server-side
// by the caller, never propagated as a crash.
func (s *Session) systemError() *Response {
	return &Response{
		Output: []string{"System error. Please try again later."},
		Prompt: "Press Enter to continue...",
		Menu:   s.Menu,
	}
}
