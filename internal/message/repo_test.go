package message_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Brandon541/BBS/internal/db"
	"github.com/Brandon541/BBS/internal/message"
)

func newTestRepo(t *testing.T) *message.Repo {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return message.NewRepo(database.DB)
}

func TestPostAndList(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.Post("alice", "ALL", "First", "older post", message.AreaGeneral); err != nil {
		t.Fatalf("Post: %v", err)
	}
	id, err := repo.Post("alice", "", "Hello", "World", message.AreaGeneral)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}

	msgs, err := repo.List(message.AreaGeneral, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}

	// Most recent first, with the fields round-tripped.
	if msgs[0].ID != id || msgs[0].Subject != "Hello" || msgs[0].Body != "World" {
		t.Errorf("newest message = %+v", msgs[0])
	}
	if msgs[0].ToUser != "ALL" {
		t.Errorf("ToUser = %q, want default ALL", msgs[0].ToUser)
	}

	// Other areas stay empty.
	other, err := repo.List(message.AreaGaming, 20)
	if err != nil {
		t.Fatalf("List gaming: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("gaming area has %d messages, want 0", len(other))
	}
}

func TestGetScopedToArea(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.Post("bob", "ALL", "Multi\nline", "line one\nline two", message.AreaTechnical)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}

	m, err := repo.Get(id, message.AreaTechnical)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m.Body != "line one\nline two" {
		t.Errorf("Body = %q, newlines not preserved", m.Body)
	}

	// The same id is not visible from a different area.
	if _, err := repo.Get(id, message.AreaGeneral); !errors.Is(err, message.ErrNotFound) {
		t.Fatalf("Get across areas = %v, want ErrNotFound", err)
	}

	if _, err := repo.Get(9999, message.AreaTechnical); !errors.Is(err, message.ErrNotFound) {
		t.Fatalf("Get missing id = %v, want ErrNotFound", err)
	}
}

func TestAreaHelpers(t *testing.T) {
	if !message.ValidArea(message.AreaGeneral) || message.ValidArea("Nonsense") {
		t.Error("ValidArea misclassified an area")
	}
	if !message.ReadOnly(message.AreaAnnouncements) || message.ReadOnly(message.AreaGeneral) {
		t.Error("ReadOnly misclassified an area")
	}
}

func TestListPageAndCount(t *testing.T) {
	repo := newTestRepo(t)

	for i := 1; i <= 5; i++ {
		if _, err := repo.Post("alice", "ALL", fmt.Sprintf("msg %d", i), "body", message.AreaGeneral); err != nil {
			t.Fatalf("Post: %v", err)
		}
	}

	n, err := repo.Count(message.AreaGeneral)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 5 {
		t.Errorf("count = %d, want 5", n)
	}

	page, err := repo.ListPage(message.AreaGeneral, 2, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	// Newest first: offset 2 skips msgs 5 and 4.
	if page[0].Subject != "msg 3" || page[1].Subject != "msg 2" {
		t.Errorf("page = %q,%q, want msg 3, msg 2", page[0].Subject, page[1].Subject)
	}
}

func TestGetByIDIgnoresArea(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.Post("alice", "ALL", "cross-area", "body", message.AreaGaming)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}

	m, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if m.Area != message.AreaGaming {
		t.Errorf("area = %q, want %q", m.Area, message.AreaGaming)
	}

	if _, err := repo.GetByID(id + 100); !errors.Is(err, message.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
