package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyri56xcaesar/pms-dashboard/internal/storage"
)

func newStore(t *testing.T, st storage.Storage) *Store {
	t.Helper()
	if st == nil {
		st = storage.NewMemoryStorage()
	}

	return New(context.Background(), st, zerolog.Nop())
}

func TestStore_StartsAnonymous(t *testing.T) {
	s := newStore(t, nil)

	assert.Equal(t, Anonymous(), s.Snapshot())
	assert.Empty(t, s.AccessToken(context.Background()))
}

func TestStore_LoginLogoutRoundTrip(t *testing.T) {
	ctx := context.Background()

	inputs := []Credentials{
		{Username: "alice", Role: RoleProjectManager, Token: "h.p.s"},
		{Username: "bob", Role: RoleTeamLead, Token: "x.y.z", User: &User{ID: "42"}},
		{Username: "carol", Role: RoleDeveloper, Token: "t", User: &User{ID: "7", Username: "carol@pms.io"}},
		{Username: "", Role: "", Token: "only-token"},
	}

	for _, in := range inputs {
		st := storage.NewMemoryStorage()
		s := newStore(t, st)

		require.NoError(t, s.Login(ctx, in))
		snap := s.Snapshot()
		assert.True(t, snap.IsAuthenticated)
		assert.Equal(t, in.Role, snap.Role)
		assert.Equal(t, in.Token, snap.Token)
		assert.Equal(t, in.Token, s.AccessToken(ctx))

		require.NoError(t, s.Logout(ctx))
		assert.Equal(t, Anonymous(), s.Snapshot())

		_, ok, _ := st.Get(ctx, TokenKey)
		assert.False(t, ok)
		_, ok, _ = st.Get(ctx, SessionKey)
		assert.False(t, ok)
	}
}

func TestStore_LoginRejectsEmptyToken(t *testing.T) {
	s := newStore(t, nil)

	err := s.Login(context.Background(), Credentials{Username: "alice", Role: RoleTeamLead})
	assert.ErrorIs(t, err, ErrEmptyToken)
	assert.False(t, s.Snapshot().IsAuthenticated)
}

func TestStore_RehydratesFromStorage(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()

	first := newStore(t, st)
	require.NoError(t, first.Login(ctx, Credentials{
		Username: "alice",
		Role:     RoleProjectManager,
		Token:    "h.p.s",
		User:     &User{ID: "u-1"},
	}))

	second := newStore(t, st)
	snap := second.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, RoleProjectManager, snap.Role)
	assert.Equal(t, "h.p.s", snap.Token)
	require.NotNil(t, snap.User)
	assert.Equal(t, User{ID: "u-1", Username: "alice"}, *snap.User)
}

func TestStore_RehydrationFallsBackToAnonymous(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		session string
		token   string
	}{
		{name: "corrupt json", session: "{not json", token: "t"},
		{name: "not authenticated", session: `{"isAuthenticated":false,"token":"t"}`, token: "t"},
		{name: "snapshot without token", session: `{"isAuthenticated":true,"role":"team_lead"}`, token: "t"},
		{name: "bare token missing", session: `{"isAuthenticated":true,"role":"team_lead","token":"t"}`},
		{name: "wrong shape", session: `["isAuthenticated"]`, token: "t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := storage.NewMemoryStorage()
			require.NoError(t, st.Set(ctx, SessionKey, tt.session))
			if tt.token != "" {
				require.NoError(t, st.Set(ctx, TokenKey, tt.token))
			}

			assert.Equal(t, Anonymous(), newStore(t, st).Snapshot())
		})
	}
}

type failingStorage struct {
	*storage.MemoryStorage
	failKey    string
	failRemove bool
}

func (f failingStorage) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return errors.New("disk gone")
	}

	return f.MemoryStorage.Remove(ctx, key)
}

func (f failingStorage) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}

	return f.MemoryStorage.Set(ctx, key, value)
}

func TestStore_LoginKeepsStateWhenPersistFails(t *testing.T) {
	ctx := context.Background()

	for _, key := range []string{SessionKey, TokenKey} {
		t.Run(key, func(t *testing.T) {
			st := failingStorage{MemoryStorage: storage.NewMemoryStorage(), failKey: key}
			s := newStore(t, st)

			err := s.Login(ctx, Credentials{Username: "alice", Role: RoleTeamLead, Token: "t"})
			require.Error(t, err)
			assert.Equal(t, Anonymous(), s.Snapshot())

			_, ok, _ := st.Get(ctx, SessionKey)
			assert.False(t, ok)
		})
	}
}

func TestStore_LoginReportsFailedRollback(t *testing.T) {
	st := failingStorage{MemoryStorage: storage.NewMemoryStorage(), failKey: TokenKey, failRemove: true}
	s := newStore(t, st)

	err := s.Login(context.Background(), Credentials{Username: "alice", Role: RoleTeamLead, Token: "t"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "persist token")
	assert.ErrorContains(t, err, "roll back session")
	assert.Equal(t, Anonymous(), s.Snapshot())
}

// slowStorage parks every Set until release is closed.
type slowStorage struct {
	*storage.MemoryStorage
	entered chan struct{}
	release chan struct{}
}

func (s slowStorage) Set(ctx context.Context, key, value string) error {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.release

	return s.MemoryStorage.Set(ctx, key, value)
}

func TestStore_SnapshotDoesNotWaitOnStorage(t *testing.T) {
	st := slowStorage{
		MemoryStorage: storage.NewMemoryStorage(),
		entered:       make(chan struct{}, 1),
		release:       make(chan struct{}),
	}
	s := newStore(t, st)

	done := make(chan error, 1)
	go func() {
		done <- s.Login(context.Background(), Credentials{Username: "alice", Role: RoleTeamLead, Token: "t"})
	}()
	<-st.entered

	read := make(chan Session, 1)
	go func() { read <- s.Snapshot() }()

	select {
	case snap := <-read:
		assert.False(t, snap.IsAuthenticated)
	case <-time.After(time.Second):
		t.Fatal("Snapshot blocked behind a storage write")
	}

	close(st.release)
	require.NoError(t, <-done)
	assert.True(t, s.Snapshot().IsAuthenticated)
}

func TestStore_SubscribersSeeTransitions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	var seen []bool
	unsubscribe := s.Subscribe(func(snap Session) {
		seen = append(seen, snap.IsAuthenticated)
	})

	require.NoError(t, s.Login(ctx, Credentials{Username: "alice", Role: RoleTeamLead, Token: "t"}))
	require.NoError(t, s.Logout(ctx))
	unsubscribe()
	require.NoError(t, s.Login(ctx, Credentials{Username: "alice", Role: RoleTeamLead, Token: "t"}))

	assert.Equal(t, []bool{true, false}, seen)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)
	require.NoError(t, s.Login(ctx, Credentials{Username: "alice", Token: "t", User: &User{ID: "1"}}))

	snap := s.Snapshot()
	snap.User.Username = "mallory"

	assert.Equal(t, "alice", s.Snapshot().Username())
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleProjectManager, ParseRole(" Project_Manager "))
	assert.True(t, ParseRole("developer").IsMember())
	assert.True(t, ParseRole("team_member").IsMember())
	assert.False(t, ParseRole("team_lead").IsMember())
	assert.False(t, ParseRole("janitor").Known())
}
