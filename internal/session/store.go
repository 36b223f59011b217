// Package session holds the dashboard's single, process-wide session.
//
// The Store is the only place the session is mutated: Login and Logout are
// its two transitions, and every other component reads a snapshot or
// subscribes for changes. The session is mirrored to durable storage under
// two keys so it survives restarts, and the bare token under its own key is
// what the gateway client reads on every request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"kyri56xcaesar/pms-dashboard/internal/storage"
)

const (
	TokenKey   = "access_token"
	SessionKey = "session"
)

var ErrEmptyToken = errors.New("session: empty token")

// Credentials is the already-decoded input of a login.
type Credentials struct {
	Username string
	Role     Role
	Token    string
	User     *User
}

// Store serializes Login and Logout on writeMu, which is held across the
// storage calls. mu only guards state, so Snapshot never waits on storage.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   Session
	storage storage.Storage
	log     zerolog.Logger

	subsMu sync.Mutex
	subs   map[int]func(Session)
	nextID int
}

// New returns a store rehydrated from st. Missing or unreadable data leaves
// the store Anonymous.
func New(ctx context.Context, st storage.Storage, log zerolog.Logger) *Store {
	s := &Store{
		storage: st,
		log:     log,
		subs:    make(map[int]func(Session)),
	}
	s.state = s.rehydrate(ctx)

	return s
}

func (s *Store) rehydrate(ctx context.Context) Session {
	raw, ok, err := s.storage.Get(ctx, SessionKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not read stored session, starting anonymous")
		return Anonymous()
	}
	if !ok {
		return Anonymous()
	}

	var snap Session
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.log.Warn().Err(err).Msg("stored session is corrupt, starting anonymous")
		return Anonymous()
	}
	if !snap.valid() {
		return Anonymous()
	}

	tok, ok, err := s.storage.Get(ctx, TokenKey)
	if err != nil || !ok || tok == "" {
		s.log.Info().Msg("stored session has no token, starting anonymous")
		return Anonymous()
	}
	// the bare token is the one requests use; keep the snapshot in line
	snap.Token = tok

	s.log.Debug().Str("user", snap.Username()).Str("role", string(snap.Role)).Msg("session rehydrated")

	return snap
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.clone()
}

// AccessToken reads the bare token from durable storage. Storage errors
// read as "no token".
func (s *Store) AccessToken(ctx context.Context) string {
	tok, ok, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not read access token")
		return ""
	}
	if !ok {
		return ""
	}

	return tok
}

// Login moves the store to Authenticated. The snapshot and the bare token
// are persisted first; the in-memory state only changes once both writes
// succeeded.
func (s *Store) Login(ctx context.Context, c Credentials) error {
	if c.Token == "" {
		return ErrEmptyToken
	}

	user := c.User
	if user == nil {
		user = &User{Username: c.Username}
	} else if user.Username == "" {
		u := *user
		u.Username = c.Username
		user = &u
	}

	next := Session{
		IsAuthenticated: true,
		User:            user,
		Role:            c.Role,
		Token:           c.Token,
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.storage.Set(ctx, SessionKey, string(raw)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if err := s.storage.Set(ctx, TokenKey, c.Token); err != nil {
		err = fmt.Errorf("persist token: %w", err)
		if rerr := s.storage.Remove(ctx, SessionKey); rerr != nil {
			err = errors.Join(err, fmt.Errorf("roll back session: %w", rerr))
		}
		return err
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	s.log.Info().Str("user", next.Username()).Str("role", string(next.Role)).Msg("logged in")
	s.notify(next.clone())

	return nil
}

// Logout clears the session and both storage keys. The in-memory state is
// cleared even if storage fails; the storage errors are returned joined.
func (s *Store) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	errSession := s.storage.Remove(ctx, SessionKey)
	errToken := s.storage.Remove(ctx, TokenKey)

	s.mu.Lock()
	prev := s.state
	s.state = Anonymous()
	s.mu.Unlock()

	if prev.IsAuthenticated {
		s.log.Info().Str("user", prev.Username()).Msg("logged out")
	}
	s.notify(Anonymous())

	return errors.Join(errSession, errToken)
}

// Subscribe registers fn to be called after every transition with the new
// session. The returned func unregisters it. fn runs while the transition
// still holds the write lock, so it must not call Login or Logout.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(snap Session) {
	s.subsMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}
