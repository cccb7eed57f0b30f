package message

import "time"

// Message represents a single posted message. Messages are immutable
// once stored and are never deleted.
type Message struct {
	ID       int64
	FromUser string
	ToUser   string
	Subject  string
	Body     string
	PostedAt time.Time
	Area     string
}

// The fixed set of message areas. Announcements is read-only for
// regular users.
const (
	AreaGeneral       = "General"
	AreaGaming        = "Gaming"
	AreaTechnical     = "Technical"
	AreaAnnouncements = "Announcements"
)

// Areas lists all message areas in menu order.
var Areas = []string{AreaGeneral, AreaGaming, AreaTechnical, AreaAnnouncements}

// ValidArea reports whether name is one of the fixed areas.
func ValidArea(name string) bool {
	for _, a := range Areas {
		if a == name {
			return true
		}
	}
	return false
}

// ReadOnly reports whether posting is disallowed in the area.
func ReadOnly(area string) bool {
	return area == AreaAnnouncements
}
