package user

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrConflict is returned when a username is already taken.
var ErrConflict = errors.New("username already exists")

// ErrNotFound is returned when no user matches a lookup.
var ErrNotFound = errors.New("user not found")

// Repo handles database operations for users and the login audit log.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a new user repository.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a new user with a fresh salt and derived password
// hash. Returns ErrConflict if the username is taken; the uniqueness
// race is left to the database constraint.
func (r *Repo) Create(username, password, realName, location string) error {
	salt, err := GenerateSalt()
	if err != nil {
		return err
	}
	hash := HashPassword(password, salt)

	_, err = r.db.Exec(`
		INSERT INTO users (username, password_hash, salt, real_name, location, access_level)
		VALUES (?, ?, ?, ?, ?, ?)
	`, username, hash, salt, realName, location, LevelUser)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create user %s: %w", username, err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure. Duplicate usernames are an expected outcome, not a fault.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// Verify checks a username/password pair. Unknown usernames and wrong
// passwords are both reported as plain false, without distinction.
func (r *Repo) Verify(username, password string) (bool, error) {
	var hash, salt string
	err := r.db.QueryRow(
		"SELECT password_hash, salt FROM users WHERE username = ?", username,
	).Scan(&hash, &salt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify user %s: %w", username, err)
	}

	return CheckPassword(password, salt, hash), nil
}

// UpdateLogin stamps a successful login: last-login time and counter.
func (r *Repo) UpdateLogin(username string) error {
	_, err := r.db.Exec(`
		UPDATE users SET last_login = CURRENT_TIMESTAMP, login_count = login_count + 1
		WHERE username = ?
	`, username)
	if err != nil {
		return fmt.Errorf("update login %s: %w", username, err)
	}
	return nil
}

// LogAttempt appends a login audit record. Audit failures must never
// propagate into the caller's auth decision, so errors are only logged.
func (r *Repo) LogAttempt(username, ipAddress string, success bool) {
	_, err := r.db.Exec(
		"INSERT INTO login_log (username, ip_address, success) VALUES (?, ?, ?)",
		username, ipAddress, success,
	)
	if err != nil {
		log.Printf("Failed to log login attempt for %s from %s: %v", username, ipAddress, err)
	}
}

// GetByUsername retrieves a user by exact username.
func (r *Repo) GetByUsername(username string) (*User, error) {
	u := &User{}
	var lastLogin, created sql.NullTime

	err := r.db.QueryRow(`
		SELECT id, username, password_hash, salt, real_name, location,
		       last_login, created_at, login_count, access_level
		FROM users WHERE username = ?
	`, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Salt, &u.RealName, &u.Location,
		&lastLogin, &created, &u.LoginCount, &u.AccessLevel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}

	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	if created.Valid {
		u.CreatedAt = created.Time
	}

	return u, nil
}

// ListRecent returns the most recently seen users, newest login first.
func (r *Repo) ListRecent(limit int) ([]*User, error) {
	rows, err := r.db.Query(`
		SELECT id, username, real_name, location, last_login, login_count
		FROM users ORDER BY last_login DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.Username, &u.RealName, &u.Location,
			&lastLogin, &u.LoginCount); err != nil {
			return nil, err
		}
		if lastLogin.Valid {
			u.LastLogin = &lastLogin.Time
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetByID retrieves a user by id.
func (r *Repo) GetByID(id int64) (*User, error) {
	u := &User{}
	var lastLogin, created sql.NullTime

	err := r.db.QueryRow(`
		SELECT id, username, password_hash, salt, real_name, location,
		       last_login, created_at, login_count, access_level
		FROM users WHERE id = ?
	`, id).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Salt, &u.RealName, &u.Location,
		&lastLogin, &created, &u.LoginCount, &u.AccessLevel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}

	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	if created.Valid {
		u.CreatedAt = created.Time
	}

	return u, nil
}

// List returns all users ordered by username.
func (r *Repo) List() ([]*User, error) {
	rows, err := r.db.Query(`
		SELECT id, username, real_name, location, last_login, login_count, access_level
		FROM users ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.Username, &u.RealName, &u.Location,
			&lastLogin, &u.LoginCount, &u.AccessLevel); err != nil {
			return nil, err
		}
		if lastLogin.Valid {
			u.LastLogin = &lastLogin.Time
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateProfile replaces the optional profile fields.
func (r *Repo) UpdateProfile(id int64, realName, location string) error {
	_, err := r.db.Exec(
		"UPDATE users SET real_name = ?, location = ? WHERE id = ?",
		realName, location, id,
	)
	if err != nil {
		return fmt.Errorf("update profile %d: %w", id, err)
	}
	return nil
}

// UpdatePassword re-salts and re-hashes the password for a user.
func (r *Repo) UpdatePassword(id int64, password string) error {
	salt, err := GenerateSalt()
	if err != nil {
		return err
	}
	hash := HashPassword(password, salt)

	_, err = r.db.Exec(
		"UPDATE users SET password_hash = ?, salt = ? WHERE id = ?",
		hash, salt, id,
	)
	if err != nil {
		return fmt.Errorf("update password %d: %w", id, err)
	}
	return nil
}

// UpdateAccessLevel sets a user's access level.
func (r *Repo) UpdateAccessLevel(id int64, level int) error {
	_, err := r.db.Exec(
		"UPDATE users SET access_level = ? WHERE id = ?", level, id,
	)
	if err != nil {
		return fmt.Errorf("update access level %d: %w", id, err)
	}
	return nil
}

// ListAttempts returns recent login audit records, newest first. This
// is the operator-audit read path; nothing in the session layer reads
// the log back.
func (r *Repo) ListAttempts(limit int) ([]*LoginAttempt, error) {
	rows, err := r.db.Query(`
		SELECT id, COALESCE(username, ''), COALESCE(ip_address, ''), success, timestamp
		FROM login_log ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list login attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*LoginAttempt
	for rows.Next() {
		a := &LoginAttempt{}
		var ts sql.NullTime
		if err := rows.Scan(&a.ID, &a.Username, &a.IPAddress, &a.Success, &ts); err != nil {
			return nil, err
		}
		if ts.Valid {
			a.Timestamp = ts.Time
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
