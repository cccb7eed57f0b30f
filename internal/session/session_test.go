package session

import (
	"strings"
	"testing"
	"time"

	"github.com/Brandon541/BBS/internal/message"
	"github.com/Brandon541/BBS/internal/ratelimit"
	"github.com/Brandon541/BBS/internal/user"
)

// fakeUsers is an in-memory UserStore.
type fakeUsers struct {
	passwords map[string]string
	profiles  map[string]*user.User
	attempts  []user.LoginAttempt
	logins    map[string]int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		passwords: make(map[string]string),
		profiles:  make(map[string]*user.User),
		logins:    make(map[string]int),
	}
}

func (f *fakeUsers) Create(username, password, realName, location string) error {
	if _, ok := f.passwords[username]; ok {
		return user.ErrConflict
	}
	f.passwords[username] = password
	f.profiles[username] = &user.User{Username: username, RealName: realName, Location: location}
	return nil
}

func (f *fakeUsers) Verify(username, password string) (bool, error) {
	stored, ok := f.passwords[username]
	return ok && stored == password, nil
}

func (f *fakeUsers) UpdateLogin(username string) error {
	f.logins[username]++
	return nil
}

func (f *fakeUsers) LogAttempt(username, ipAddress string, success bool) {
	f.attempts = append(f.attempts, user.LoginAttempt{
		Username: username, IPAddress: ipAddress, Success: success,
	})
}

func (f *fakeUsers) ListRecent(limit int) ([]*user.User, error) {
	var out []*user.User
	for _, u := range f.profiles {
		out = append(out, u)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeMessages is an in-memory MessageStore.
type fakeMessages struct {
	msgs   []*message.Message
	nextID int64
}

func (f *fakeMessages) Post(fromUser, toUser, subject, body, area string) (int64, error) {
	f.nextID++
	f.msgs = append(f.msgs, &message.Message{
		ID: f.nextID, FromUser: fromUser, ToUser: toUser,
		Subject: subject, Body: body, Area: area, PostedAt: time.Now(),
	})
	return f.nextID, nil
}

func (f *fakeMessages) List(area string, limit int) ([]*message.Message, error) {
	var out []*message.Message
	for i := len(f.msgs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.msgs[i].Area == area {
			out = append(out, f.msgs[i])
		}
	}
	return out, nil
}

func (f *fakeMessages) Get(id int64, area string) (*message.Message, error) {
	for _, m := range f.msgs {
		if m.ID == id && m.Area == area {
			return m, nil
		}
	}
	return nil, message.ErrNotFound
}

func newTestSession(t *testing.T) (*Session, *fakeUsers, *fakeMessages) {
	t.Helper()
	users := newFakeUsers()
	msgs := &fakeMessages{}
	s := New("test-session", "10.1.1.1", users, msgs, ratelimit.New())
	return s, users, msgs
}

func authenticate(t *testing.T, s *Session, username string) {
	t.Helper()
	s.Username = username
	s.Authenticated = true
	s.Menu = MenuMain
}

func hasLine(resp *Response, substr string) bool {
	for _, line := range resp.Output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestBannerOnFirstInput(t *testing.T) {
	s, _, _ := newTestSession(t)

	resp := s.Process("")
	if !resp.ClearScreen {
		t.Error("banner did not clear the screen")
	}
	if resp.Menu != MenuLogin {
		t.Errorf("menu = %q, want %q", resp.Menu, MenuLogin)
	}
	if !hasLine(resp, "SECURE TEXT BBS") {
		t.Error("banner text missing")
	}
	if !strings.Contains(resp.Prompt, "username") {
		t.Errorf("prompt = %q, want username prompt", resp.Prompt)
	}
}

func TestLoginSuccess(t *testing.T) {
	s, users, _ := newTestSession(t)
	users.passwords["alice"] = "Str0ng!Pass"

	s.Process("")
	s.Process("alice")
	resp := s.Process("Str0ng!Pass")

	if !s.Authenticated {
		t.Fatal("session not authenticated after valid credentials")
	}
	if resp.Menu != MenuMain {
		t.Errorf("menu = %q, want %q", resp.Menu, MenuMain)
	}
	if !hasLine(resp, "Welcome back, alice!") {
		t.Error("welcome line missing")
	}
	if users.logins["alice"] != 1 {
		t.Errorf("login count = %d, want 1", users.logins["alice"])
	}
	if len(users.attempts) != 1 || !users.attempts[0].Success {
		t.Errorf("audit trail = %+v, want one successful attempt", users.attempts)
	}
}

func TestInvalidUsernameDoesNotCountAsFailure(t *testing.T) {
	s, users, _ := newTestSession(t)

	s.Process("")
	resp := s.Process("_bad")

	if !hasLine(resp, "Invalid username") {
		t.Error("expected validation message")
	}
	if s.loginAttempts != 0 {
		t.Errorf("loginAttempts = %d, want 0", s.loginAttempts)
	}
	if len(users.attempts) != 0 {
		t.Errorf("audit trail = %+v, want empty", users.attempts)
	}
}

func TestFailedLoginOffersRegistration(t *testing.T) {
	s, users, _ := newTestSession(t)

	s.Process("")
	s.Process("newuser")
	resp := s.Process("WrongPass1!")

	if s.Authenticated {
		t.Fatal("authenticated on wrong password")
	}
	if !hasLine(resp, "register a new account") {
		t.Error("registration offer missing")
	}
	if len(users.attempts) != 1 || users.attempts[0].Success {
		t.Errorf("audit trail = %+v, want one failed attempt", users.attempts)
	}

	// Declining returns to the username prompt.
	resp = s.Process("N")
	if !strings.Contains(resp.Prompt, "username") {
		t.Errorf("prompt = %q, want username prompt after decline", resp.Prompt)
	}
}

func TestRegistrationAfterFailedLogin(t *testing.T) {
	s, users, _ := newTestSession(t)

	s.Process("")
	s.Process("newuser")
	s.Process("WrongPass1!")

	resp := s.Process("Y")
	if resp.Menu != MenuRegister {
		t.Fatalf("menu = %q, want %q", resp.Menu, MenuRegister)
	}
	if !hasLine(resp, "Registering username: newuser") {
		t.Error("pre-seeded username not announced")
	}
	if !resp.PasswordField {
		t.Error("password prompt not marked as a password field")
	}

	resp = s.Process("Str0ng!Pass")
	if !hasLine(resp, "Password accepted.") {
		t.Fatalf("password rejected: %+v", resp.Output)
	}

	s.Process("Test User")
	resp = s.Process("Somewhere")

	if !s.Authenticated {
		t.Fatal("not authenticated after registration")
	}
	if resp.Menu != MenuMain {
		t.Errorf("menu = %q, want %q", resp.Menu, MenuMain)
	}
	if !hasLine(resp, "Registration successful!") {
		t.Error("success message missing")
	}
	u := users.profiles["newuser"]
	if u == nil {
		t.Fatal("account row missing")
	}
	if u.RealName != "Test User" || u.Location != "Somewhere" {
		t.Errorf("profile = %+v, want sanitized real name and location", u)
	}
}

func TestRegistrationWeakPasswordRejected(t *testing.T) {
	s, _, _ := newTestSession(t)

	s.Process("")
	s.Process("newuser")
	s.Process("WrongPass1!")
	s.Process("Y")

	resp := s.Process("weakpass")
	if !hasLine(resp, "Password validation failed") {
		t.Errorf("weak password accepted: %+v", resp.Output)
	}
	if s.reg.step != regStepPassword {
		t.Error("step advanced past password on invalid input")
	}
}

func TestRegistrationConflictRestarts(t *testing.T) {
	s, users, _ := newTestSession(t)
	users.passwords["taken"] = "Other1!Pass"

	s.Process("")
	s.Process("taken")
	s.Process("WrongPass1!")
	s.Process("Y")
	s.Process("Str0ng!Pass")
	s.Process("")
	resp := s.Process("")

	if s.Authenticated {
		t.Fatal("authenticated despite username conflict")
	}
	if !hasLine(resp, "Username 'taken' may already be taken.") {
		t.Errorf("conflict notice missing: %+v", resp.Output)
	}
	if !strings.Contains(resp.Prompt, "desired username") {
		t.Errorf("prompt = %q, want restart at username step", resp.Prompt)
	}
}

func TestThreeFailuresEndSession(t *testing.T) {
	s, _, _ := newTestSession(t)

	s.Process("")
	for i := 0; i < MaxLoginAttempts; i++ {
		s.Process("ghost")
		resp := s.Process("WrongPass1!")
		if i < MaxLoginAttempts-1 {
			if resp.SessionEnded {
				t.Fatalf("session ended after %d failures", i+1)
			}
			// Decline registration to get back to the username prompt.
			s.Process("N")
		} else {
			if !resp.SessionEnded {
				t.Fatal("session survived the final failed attempt")
			}
			if !hasLine(resp, "Too many failed attempts.") {
				t.Error("termination notice missing")
			}
		}
	}

	if s.IsValid() {
		t.Error("ended session still reports valid")
	}
}

func TestQuitEndsSession(t *testing.T) {
	s, _, _ := newTestSession(t)
	authenticate(t, s, "alice")

	resp := s.Process("Q")
	if !resp.SessionEnded {
		t.Fatal("quit did not end the session")
	}
	if !hasLine(resp, "Goodbye!") {
		t.Error("farewell missing")
	}
	if s.IsValid() {
		t.Error("session valid after quit")
	}
}

func TestRateLimitShortCircuits(t *testing.T) {
	s, _, _ := newTestSession(t)
	authenticate(t, s, "alice")

	for i := 0; i < ratelimit.MaxCommandsPerMinute; i++ {
		s.limiter.RecordCommand(s.IPAddress)
	}

	resp := s.Process("H")
	if !hasLine(resp, "Rate limit exceeded") {
		t.Fatalf("limited session still dispatched: %+v", resp.Output)
	}
	if resp.Menu != MenuMain {
		t.Errorf("menu = %q, want state preserved", resp.Menu)
	}
}

func TestMaliciousInputFiltered(t *testing.T) {
	s, _, _ := newTestSession(t)
	authenticate(t, s, "alice")
	s.Menu = MenuMessages
	s.msg.view = msgViewCompose
	s.msg.compose = composeState{step: composeStepSubject}

	s.Process("<script>alert(1)</script>")
	if s.msg.compose.subject != "[CONTENT FILTERED]" {
		t.Errorf("subject = %q, want filtered sentinel", s.msg.compose.subject)
	}
}

func TestSessionTimeouts(t *testing.T) {
	s, _, _ := newTestSession(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s.SetClock(func() time.Time { return current })

	// Unauthenticated sessions expire on the shorter window.
	current = base.Add(LoginTimeout + time.Second)
	if s.IsValid() {
		t.Error("unauthenticated session survived the login window")
	}

	s.Authenticated = true
	if !s.IsValid() {
		t.Error("authenticated session expired inside the idle window")
	}

	current = base.Add(IdleTimeout + time.Second)
	if s.IsValid() {
		t.Error("session survived the idle window")
	}
}

func TestMainMenuInvalidCommand(t *testing.T) {
	s, _, _ := newTestSession(t)
	authenticate(t, s, "alice")

	// In the vocabulary but not wired to a screen.
	resp := s.Process("W")
	if !hasLine(resp, "Command not implemented yet.") {
		t.Errorf("output = %+v, want not-implemented notice", resp.Output)
	}

	resp = s.Process("XYZZY")
	if !hasLine(resp, "Invalid command") {
		t.Errorf("output = %+v, want invalid-command notice", resp.Output)
	}
}

func TestHelpAndTime(t *testing.T) {
	s, _, _ := newTestSession(t)
	authenticate(t, s, "alice")

	resp := s.Process("H")
	if !hasLine(resp, "HELP - BBS COMMANDS") {
		t.Error("help screen missing")
	}
	resp = s.Process("")
	if resp.Menu != MenuMain {
		t.Errorf("menu = %q, want return to main", resp.Menu)
	}

	resp = s.Process("T")
	if !hasLine(resp, "Current system time") {
		t.Error("time output missing")
	}
}

func TestUserList(t *testing.T) {
	s, users, _ := newTestSession(t)
	users.profiles["bob"] = &user.User{Username: "bob", RealName: "Bob Jones"}
	authenticate(t, s, "alice")

	resp := s.Process("U")
	if !hasLine(resp, "USER LIST") {
		t.Error("user list header missing")
	}
	if !hasLine(resp, "bob") {
		t.Error("user row missing")
	}

	resp = s.Process("B")
	if resp.Menu != MenuMain {
		t.Errorf("menu = %q, want return to main", resp.Menu)
	}
}
