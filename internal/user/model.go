package user

import "time"

// User represents a BBS user account. Accounts are created only by
// successful registration and are never deleted.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Salt         string
	RealName     string
	Location     string
	LastLogin    *time.Time
	CreatedAt    time.Time
	LoginCount   int
	AccessLevel  int
}

// LoginAttempt is an append-only audit record written on every login
// decision.
type LoginAttempt struct {
	ID        int64
	Username  string
	IPAddress string
	Success   bool
	Timestamp time.Time
}

// Access level constants.
const (
	LevelUser  = 1
	LevelSysop = 100
)
