// Package session persists the authenticated session between CLI runs.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gotovkk/MyCarExpenses/internal/model"
)

// ErrNoSession is returned by Load when no stored session exists.
var ErrNoSession = errors.New("no stored session")

type sessionFile struct {
	Token     string     `json:"token"`
	User      model.User `json:"user"`
	ExpiresAt time.Time  `json:"expires_at,omitempty"`
}

// Store reads and writes the session file under the user config dir.
type Store struct {
	dir string
}

// NewStore resolves the config dir from XDG_CONFIG_HOME with a ~/.config
// fallback.
func NewStore() *Store {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return &Store{dir: filepath.Join(v, "mycarexpenses")}
	}
	home, _ := os.UserHomeDir()
	return &Store{dir: filepath.Join(home, ".config", "mycarexpenses")}
}

func (s *Store) path() string { return filepath.Join(s.dir, "session.json") }

// Save writes the session to disk, owner-readable only.
func (s *Store) Save(sess model.Session) error {
	if !sess.Valid() {
		return errors.New("refusing to save incomplete session")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(sessionFile{
		Token:     sess.Token,
		User:      sess.User,
		ExpiresAt: tokenExpiry(sess.Token),
	})
}

// Load reads the stored session. Expiry is not enforced here: the server is
// the authority, and a stale token surfaces as 401 on first use.
func (s *Store) Load() (model.Session, error) {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return model.Session{}, ErrNoSession
		}
		return model.Session{}, err
	}
	var sf sessionFile
	if err := json.Unmarshal(b, &sf); err != nil {
		return model.Session{}, err
	}
	sess := model.Session{Token: sf.Token, User: sf.User}
	if !sess.Valid() {
		return model.Session{}, ErrNoSession
	}
	return sess, nil
}

// Clear removes the session file. Missing file is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// tokenExpiry extracts the exp claim without verifying the signature.
// Diagnostic only, never used for auth decisions.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
