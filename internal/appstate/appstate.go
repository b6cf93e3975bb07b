// Package appstate is the application context handed to every view: the
// signed-in user, the theme preference and the install prompt marker, all
// kept in a durable settings store.
package appstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/tgienger/synergy/internal/models"
)

// Storage keys
const (
	KeyAuth            = "synergy-auth"
	KeyUser            = "synergy-user"
	KeyTheme           = "synergy-theme"
	KeyPromptDismissed = "pwa-prompt-dismissed"
	KeyLastProject     = "synergy-last-project"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

var ErrUnknownTheme = errors.New("unknown theme")

func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownTheme)
}

// Store is a string key/value store. Missing keys read as "".
type Store interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// Context reads and writes session state through a Store
type Context struct {
	store     Store
	sessionID string
	fallback  Theme
}

// New creates a context for one run of the program. sessionID scopes the
// install prompt dismissal; fallback is the theme used before the user
// picks one.
func New(store Store, sessionID string, fallback Theme) *Context {
	if fallback == "" {
		fallback = ThemeDark
	}
	return &Context{store: store, sessionID: sessionID, fallback: fallback}
}

func (c *Context) SessionID() string { return c.sessionID }

// Authenticated reports whether a user is signed in. Storage errors read
// as signed out.
func (c *Context) Authenticated() bool {
	v, err := c.store.GetSetting(KeyAuth)
	return err == nil && v == "true"
}

// User returns the stored profile of the signed-in user
func (c *Context) User() (models.User, bool) {
	if !c.Authenticated() {
		return models.User{}, false
	}
	raw, err := c.store.GetSetting(KeyUser)
	if err != nil || raw == "" {
		return models.User{}, false
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return models.User{}, false
	}
	return u, true
}

// SignIn stores the user profile and sets the session flag. If the flag
// can't be written the previous profile is put back.
func (c *Context) SignIn(u models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	prev, err := c.store.GetSetting(KeyUser)
	if err != nil {
		return fmt.Errorf("read user: %w", err)
	}
	if err := c.store.SetSetting(KeyUser, string(raw)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	if err := c.store.SetSetting(KeyAuth, "true"); err != nil {
		if rbErr := c.restoreUser(prev); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
		return fmt.Errorf("store auth flag: %w", err)
	}
	return nil
}

func (c *Context) restoreUser(prev string) error {
	if prev == "" {
		return c.store.DeleteSetting(KeyUser)
	}
	return c.store.SetSetting(KeyUser, prev)
}

// UpdateUser rewrites the stored profile without touching the session flag
func (c *Context) UpdateUser(u models.User) error {
	if !c.Authenticated() {
		return nil
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.store.SetSetting(KeyUser, string(raw))
}

func (c *Context) SignOut() error {
	if err := c.store.DeleteSetting(KeyAuth); err != nil {
		return err
	}
	return c.store.DeleteSetting(KeyUser)
}

// Theme returns the stored theme or the fallback
func (c *Context) Theme() Theme {
	v, err := c.store.GetSetting(KeyTheme)
	if err != nil {
		return c.fallback
	}
	t, err := ParseTheme(v)
	if err != nil {
		return c.fallback
	}
	return t
}

func (c *Context) SetTheme(t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return c.store.SetSetting(KeyTheme, string(t))
}

// ToggleTheme switches between dark and light and returns the new theme
func (c *Context) ToggleTheme() (Theme, error) {
	next := ThemeLight
	if c.Theme() == ThemeLight {
		next = ThemeDark
	}
	return next, c.SetTheme(next)
}

// PromptDismissed reports whether the install prompt was dismissed during
// this session
func (c *Context) PromptDismissed() bool {
	v, err := c.store.GetSetting(KeyPromptDismissed)
	return err == nil && v != "" && v == c.sessionID
}

func (c *Context) DismissPrompt() error {
	return c.store.SetSetting(KeyPromptDismissed, c.sessionID)
}

// LastProject is the project opened most recently, or ""
func (c *Context) LastProject() string {
	v, err := c.store.GetSetting(KeyLastProject)
	if err != nil {
		return ""
	}
	return v
}

func (c *Context) SetLastProject(id string) error {
	if id == "" {
		return c.store.DeleteSetting(KeyLastProject)
	}
	return c.store.SetSetting(KeyLastProject, id)
}

// MemoryStore is a Store kept in a map
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

func (s *MemoryStore) GetSetting(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

func (s *MemoryStore) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryStore) DeleteSetting(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
