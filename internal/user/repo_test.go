package user_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Brandon541/BBS/internal/db"
	"github.com/Brandon541/BBS/internal/user"
)

func newTestRepo(t *testing.T) *user.Repo {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return user.NewRepo(database.DB)
}

func TestCreateAndVerify(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create("alice", "Abcdef1!", "Alice", "Oslo"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := repo.Verify("alice", "Abcdef1!")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("correct credentials rejected")
	}

	ok, err = repo.Verify("alice", "WrongPass1!")
	if err != nil {
		t.Fatalf("Verify wrong password: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}

	// Unknown user reads exactly like a wrong password.
	ok, err = repo.Verify("nobody", "Abcdef1!")
	if err != nil {
		t.Fatalf("Verify unknown user: %v", err)
	}
	if ok {
		t.Error("unknown user accepted")
	}
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create("bob", "Abcdef1!", "", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.Create("bob", "Other1!x", "", "")
	if !errors.Is(err, user.ErrConflict) {
		t.Fatalf("duplicate Create = %v, want ErrConflict", err)
	}
}

func TestUpdateLogin(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create("carol", "Abcdef1!", "", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.UpdateLogin("carol"); err != nil {
		t.Fatalf("UpdateLogin: %v", err)
	}
	if err := repo.UpdateLogin("carol"); err != nil {
		t.Fatalf("UpdateLogin: %v", err)
	}

	u, err := repo.GetByUsername("carol")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u.LoginCount != 2 {
		t.Errorf("LoginCount = %d, want 2", u.LoginCount)
	}
	if u.LastLogin == nil {
		t.Error("LastLogin not set")
	}
}

func TestGetByUsernameNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByUsername("ghost")
	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("GetByUsername = %v, want ErrNotFound", err)
	}
}

func TestLoginAudit(t *testing.T) {
	repo := newTestRepo(t)

	repo.LogAttempt("alice", "10.0.0.1", false)
	repo.LogAttempt("alice", "10.0.0.1", true)

	attempts, err := repo.ListAttempts(10)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(attempts))
	}

	// Newest first.
	if !attempts[0].Success || attempts[1].Success {
		t.Error("attempts out of order")
	}
	if attempts[0].Username != "alice" || attempts[0].IPAddress != "10.0.0.1" {
		t.Errorf("unexpected attempt record: %+v", attempts[0])
	}
}

func TestAdminUpdates(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create("carol", "Abcdef1!", "", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	u, err := repo.GetByUsername("carol")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}

	if err := repo.UpdateProfile(u.ID, "Carol C", "Bergen"); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if err := repo.UpdateAccessLevel(u.ID, user.LevelSysop); err != nil {
		t.Fatalf("UpdateAccessLevel: %v", err)
	}
	if err := repo.UpdatePassword(u.ID, "NewPass1!x"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	got, err := repo.GetByID(u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.RealName != "Carol C" || got.Location != "Bergen" {
		t.Errorf("profile = %q/%q, want updated values", got.RealName, got.Location)
	}
	if got.AccessLevel != user.LevelSysop {
		t.Errorf("access level = %d, want %d", got.AccessLevel, user.LevelSysop)
	}

	ok, err := repo.Verify("carol", "NewPass1!x")
	if err != nil || !ok {
		t.Errorf("new password rejected (ok=%v, err=%v)", ok, err)
	}
	ok, _ = repo.Verify("carol", "Abcdef1!")
	if ok {
		t.Error("old password still accepted after reset")
	}
}

func TestListOrdersByUsername(t *testing.T) {
	repo := newTestRepo(t)

	for _, name := range []string{"zed", "amy", "mike"} {
		if err := repo.Create(name, "Abcdef1!", "", ""); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	users, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("got %d users, want 3", len(users))
	}
	if users[0].Username != "amy" || users[2].Username != "zed" {
		t.Errorf("order = %s,%s,%s, want alphabetical", users[0].Username, users[1].Username, users[2].Username)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.GetByID(9999); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
