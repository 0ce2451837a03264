package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/gotovkk/MyCarExpenses/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return NewStore()
}

func testSession(t *testing.T) model.Session {
	t.Helper()
	return model.Session{
		Token: "tok-abc",
		User:  model.User{ID: uuid.Must(uuid.NewV4()), Username: "alice", Email: "a@b.c"},
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	s := testStore(t)
	want := testSession(t)

	if _, err := s.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("fresh store: want ErrNoSession, got %v", err)
	}

	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("roundtrip: want %+v, got %+v", want, got)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("after clear: want ErrNoSession, got %v", err)
	}
	// clearing twice is fine
	if err := s.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestStore_SaveRejectsIncompleteSession(t *testing.T) {
	s := testStore(t)

	if err := s.Save(model.Session{Token: "tok"}); err == nil {
		t.Fatalf("want error on session without user")
	}
	if err := s.Save(model.Session{User: testSession(t).User}); err == nil {
		t.Fatalf("want error on session without token")
	}
}

func TestStore_LoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	s := NewStore()

	if err := os.MkdirAll(filepath.Join(dir, "mycarexpenses"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mycarexpenses", "session.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(); err == nil {
		t.Fatalf("want error on corrupt session file")
	}
}

func TestStore_RecordsTokenExpiry(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	s := NewStore()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	sess := testSession(t)
	sess.Token = token
	if err := s.Save(sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "mycarexpenses", "session.json"))
	if err != nil {
		t.Fatal(err)
	}
	var sf struct {
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.Unmarshal(b, &sf); err != nil {
		t.Fatal(err)
	}
	if !sf.ExpiresAt.Equal(exp) {
		t.Fatalf("expires_at: want %v, got %v", exp, sf.ExpiresAt)
	}
}
