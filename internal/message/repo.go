package message

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no message matches a lookup.
var ErrNotFound = errors.New("message not found")

// Repo handles database operations for messages.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a new message repository.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Post inserts a new message with a server-assigned id and timestamp.
func (r *Repo) Post(fromUser, toUser, subject, body, area string) (int64, error) {
	if toUser == "" {
		toUser = "ALL"
	}

	result, err := r.db.Exec(`
		INSERT INTO messages (from_user, to_user, subject, body, message_area)
		VALUES (?, ?, ?, ?, ?)
	`, fromUser, toUser, subject, body, area)
	if err != nil {
		return 0, fmt.Errorf("post message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post message id: %w", err)
	}
	return id, nil
}

// List returns the most recent messages in an area, newest first.
func (r *Repo) List(area string, limit int) ([]*Message, error) {
	rows, err := r.db.Query(`
		SELECT id, from_user, to_user, subject, body, posted_at, message_area
		FROM messages WHERE message_area = ?
		ORDER BY id DESC LIMIT ?
	`, area, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages in %s: %w", area, err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		var posted sql.NullTime
		if err := rows.Scan(&m.ID, &m.FromUser, &m.ToUser, &m.Subject,
			&m.Body, &posted, &m.Area); err != nil {
			return nil, err
		}
		if posted.Valid {
			m.PostedAt = posted.Time
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListPage returns a page of messages in an area, newest first.
func (r *Repo) ListPage(area string, offset, limit int) ([]*Message, error) {
	rows, err := r.db.Query(`
		SELECT id, from_user, to_user, subject, body, posted_at, message_area
		FROM messages WHERE message_area = ?
		ORDER BY id DESC LIMIT ? OFFSET ?
	`, area, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages in %s: %w", area, err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		var posted sql.NullTime
		if err := rows.Scan(&m.ID, &m.FromUser, &m.ToUser, &m.Subject,
			&m.Body, &posted, &m.Area); err != nil {
			return nil, err
		}
		if posted.Valid {
			m.PostedAt = posted.Time
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Count returns the number of messages in an area.
func (r *Repo) Count(area string) (int, error) {
	var n int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE message_area = ?", area,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages in %s: %w", area, err)
	}
	return n, nil
}

// GetByID returns one message by id regardless of area, or ErrNotFound.
// Operator read path; the session layer always scopes by area.
func (r *Repo) GetByID(id int64) (*Message, error) {
	m := &Message{}
	var posted sql.NullTime

	err := r.db.QueryRow(`
		SELECT id, from_user, to_user, subject, body, posted_at, message_area
		FROM messages WHERE id = ?
	`, id).Scan(&m.ID, &m.FromUser, &m.ToUser, &m.Subject,
		&m.Body, &posted, &m.Area)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message %d: %w", id, err)
	}

	if posted.Valid {
		m.PostedAt = posted.Time
	}
	return m, nil
}

// Get returns one message by id within an area, or ErrNotFound.
func (r *Repo) Get(id int64, area string) (*Message, error) {
	m := &Message{}
	var posted sql.NullTime

	err := r.db.QueryRow(`
		SELECT id, from_user, to_user, subject, body, posted_at, message_area
		FROM messages WHERE id = ? AND message_area = ?
	`, id, area).Scan(&m.ID, &m.FromUser, &m.ToUser, &m.Subject,
		&m.Body, &posted, &m.Area)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message %d: %w", id, err)
	}

	if posted.Valid {
		m.PostedAt = posted.Time
	}
	return m, nil
}
