// Package session persists browser authentication state between runs.
// The cookie file lets subsequent runs (and the REST API clients) skip the
// login flow until the saved session ages past the expiry window.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// Session is the saved cookie set plus the moment it was captured.
type Session struct {
	Cookies   []*proto.NetworkCookie `json:"cookies"`
	Timestamp time.Time              `json:"timestamp"`
}

// Params converts saved cookies into the parameter form the browser accepts
// when restoring a session.
func (s *Session) Params() []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
			Expires:  c.Expires,
		})
	}
	return params
}

// CookieMap flattens the session to name→value pairs for the HTTP API
// clients.
func (s *Session) CookieMap() map[string]string {
	m := make(map[string]string, len(s.Cookies))
	for _, c := range s.Cookies {
		m[c.Name] = c.Value
	}
	return m
}

// Store reads and writes the cookie file with an expiry policy.
type Store struct {
	path   string
	expiry time.Duration
	logger *slog.Logger
}

func NewStore(path string, expiry time.Duration, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		expiry: expiry,
		logger: logger.With("component", "session_store"),
	}
}

// Load returns the saved session, or (nil, nil) when no usable session
// exists: missing file, unparsable content, and expiry all collapse to
// "absent" because every one of them means a fresh login is needed.
func (st *Store) Load() (*Session, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cookie file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		st.logger.Warn("cookie file unparsable, ignoring", "path", st.path, "error", err)
		return nil, nil
	}

	age := time.Since(sess.Timestamp)
	if age > st.expiry {
		st.logger.Info("saved session expired",
			"age", age.Round(time.Hour),
			"expiry", st.expiry,
		)
		return nil, nil
	}

	st.logger.Info("session restored from cookie file",
		"cookies", len(sess.Cookies),
		"age", age.Round(time.Minute),
	)
	return &sess, nil
}

// Save writes the session atomically (temp file + rename) so a crash cannot
// leave a truncated cookie file behind.
func (st *Store) Save(cookies []*proto.NetworkCookie) error {
	sess := Session{Cookies: cookies, Timestamp: time.Now()}

	data, err := json.MarshalIndent(&sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	dir := filepath.Dir(st.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cookie dir: %w", err)
		}
	}

	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	if err := os.Rename(tmp, st.path); err != nil {
		return fmt.Errorf("replace cookie file: %w", err)
	}

	st.logger.Info("session saved", "path", st.path, "cookies", len(cookies))
	return nil
}

// Clear removes the cookie file. Used when a restored session turns out to
// be invalid on the site despite passing the expiry check.
func (st *Store) Clear() error {
	err := os.Remove(st.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cookie file: %w", err)
	}
	return nil
}
