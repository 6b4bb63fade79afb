// Package session tracks who is logged in. The store is shared between the
// UI goroutine and the commands that run gateway calls, so every access goes
// through its mutex.
package session

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/models"
)

// Marker is the durable "a session exists" flag. It holds no credential;
// ClearSession also forgets whatever credential the backend stored.
type Marker interface {
	HasSession() (bool, error)
	SetSession() error
	ClearSession() error
}

// Store holds the current user
type Store struct {
	gw     gateway.Gateway
	marker Marker
	log    *log.Logger

	mu      sync.RWMutex
	user    *models.User
	loading bool
}

// New returns a store that reports IsLoading until Rehydrate finishes
func New(gw gateway.Gateway, marker Marker, logger *log.Logger) *Store {
	return &Store{gw: gw, marker: marker, log: logger, loading: true}
}

// Login validates the credentials and, on success, loads the user and
// persists the marker. A rejected login or a transport error leaves the
// state unchanged.
func (s *Store) Login(ctx context.Context, username, password string) (bool, error) {
	ok, err := s.gw.ValidateCredentials(ctx, username, password)
	if err != nil {
		return false, fmt.Errorf("validate credentials: %w", err)
	}
	if !ok {
		s.log.WithField("username", username).Info("login rejected")
		return false, nil
	}

	user, err := s.gw.CurrentUser(ctx)
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	if err := s.marker.SetSession(); err != nil {
		return false, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.log.WithField("username", user.Username).Info("logged in")
	return true, nil
}

// Logout clears the user and the marker. There is no server round-trip.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.marker.ClearSession(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.Info("logged out")
	return nil
}

// Rehydrate restores the user when the marker is present. A failed fetch is
// logged and leaves the user unset; the marker stays so the next start
// tries again.
func (s *Store) Rehydrate(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	has, err := s.marker.HasSession()
	if err != nil {
		s.setUser(nil)
		return fmt.Errorf("read session marker: %w", err)
	}
	if !has {
		s.setUser(nil)
		return nil
	}

	user, err := s.gw.CurrentUser(ctx)
	if err != nil {
		s.log.WithError(err).Warn("session rehydrate failed")
		s.setUser(nil)
		return nil
	}
	s.setUser(user)
	s.log.WithField("username", user.Username).Debug("session rehydrated")
	return nil
}

// SetUser replaces the cached user, e.g. after a profile edit
func (s *Store) SetUser(u *models.User) {
	s.setUser(u)
}

func (s *Store) setUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// User returns a copy of the current user, or nil
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// MemoryMarker is a Marker that lives only as long as the process
type MemoryMarker struct {
	mu  sync.Mutex
	set bool
}

func (m *MemoryMarker) HasSession() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set, nil
}

func (m *MemoryMarker) SetSession() error {
	m.mu.Lock()
	m.set = true
	m.mu.Unlock()
	return nil
}

func (m *MemoryMarker) ClearSession() error {
	m.mu.Lock()
	m.set = false
	m.mu.Unlock()
	return nil
}
