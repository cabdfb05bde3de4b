package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univexams/exam-portal/internal/core/domain"
	"github.com/univexams/exam-portal/internal/core/ports"
)

type stubSessionStore struct {
	sessions  map[string]domain.Session
	saveErr   error
	getErr    error
	deleteErr error
	deleted   []string
	// afterGet runs once, after the next Get has loaded its record.
	afterGet func(id string)
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, sess *domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if hook := s.afterGet; hook != nil {
		s.afterGet = nil
		hook(id)
	}
	return &sess, nil
}

func (s *stubSessionStore) Update(_ context.Context, sess *domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if _, ok := s.sessions[sess.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	delete(s.sessions, id)
	return nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *recordingAudit) Record(e domain.AuthEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingAudit) kinds() []domain.AuthEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type sessionFixture struct {
	clock *fakeClock
	dir   *stubDirectory
	store *stubSessionStore
	audit *recordingAudit
	svc   ports.SessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		clock: &fakeClock{t: t0},
		dir: newStubDirectory(t, aliceRecord(t), &domain.UserRecord{
			ID:             "7",
			Username:       "carol",
			Role:           domain.RoleProfessor,
			LinkedEntityID: "P-12",
			PasswordHash:   hashSecret(t, "s3cret"),
		}),
		store: newStubSessionStore(),
		audit: &recordingAudit{},
	}
	authority := newTestAuthority(f.dir, f.clock)
	f.svc = NewSessionService(authority, f.store, f.audit, time.Hour, zerolog.Nop())
	return f
}

func TestSessionService_Login_Success(t *testing.T) {
	f := newSessionFixture(t)

	sess, err := f.svc.Login(context.Background(), "", "alice", "correct horse")
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "alice", sess.Identity.Username)
	assert.Contains(t, f.store.sessions, sess.ID)
	assert.Equal(t, []domain.AuthEventKind{domain.EventLoginSucceeded}, f.audit.kinds())
}

func TestSessionService_Login_ReplacesPriorSession(t *testing.T) {
	f := newSessionFixture(t)

	first, err := f.svc.Login(context.Background(), "", "alice", "correct horse")
	require.NoError(t, err)

	second, err := f.svc.Login(context.Background(), first.ID, "carol", "s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotContains(t, f.store.sessions, first.ID)
	assert.Equal(t, domain.RoleProfessor, f.store.sessions[second.ID].Identity.Role)

	_, err = f.svc.Guard(context.Background(), first.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSessionService_Login_Rejected(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.svc.Login(context.Background(), "", "alice", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	_, err = f.svc.Login(context.Background(), "", "ghost", "nope")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.Empty(t, f.store.sessions)
	require.Len(t, f.audit.events, 2)
	assert.Equal(t, "invalid_credential", f.audit.events[0].Reason)
	assert.Equal(t, "not_found", f.audit.events[1].Reason)
}

func TestSessionService_Login_FailedAttemptKeepsPriorSession(t *testing.T) {
	f := newSessionFixture(t)

	first, err := f.svc.Login(context.Background(), "", "alice", "correct horse")
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), first.ID, "alice", "wrong")
	require.Error(t, err)
	assert.Contains(t, f.store.sessions, first.ID)
}

func TestSessionService_Login_DirectoryUnavailable(t *testing.T) {
	f := newSessionFixture(t)
	f.dir.err = errors.New("dial tcp: i/o timeout")

	_, err := f.svc.Login(context.Background(), "", "alice", "correct horse")
	assert.ErrorIs(t, err, domain.ErrDirectoryUnavailable)
	assert.Equal(t, []domain.AuthEventKind{domain.EventDirectoryUnavailable}, f.audit.kinds())
}

func TestSessionService_Login_StoreFailure(t *testing.T) {
	f := newSessionFixture(t)
	f.store.saveErr = errors.New("redis down")

	_, err := f.svc.Login(context.Background(), "", "alice", "correct horse")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestSessionService_Guard_TouchesLiveSession(t *testing.T) {
	f := newSessionFixture(t)
	sess, err := f.svc.Login(context.Background(), "", "alice", "correct horse")
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	got, err := f.svc.Guard(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(30*time.Minute), got.LastActivity)
	assert.Equal(t, t0.Add(30*time.Minute), f.store.sessions[sess.ID].LastActivity)
	assert.Equal(t, t0, f.store.sessions[sess.ID].LoginTime)
}

func TestSessionService_Guard_ExpiresIdleSession(t *testing.T) {
	f := newSessionFixture(t)
	sess, err := f.svc.Login(context.Background(), "", "alice", "correct horse")
	require.NoError(t, err)

	f.clock.Advance(61 * time.Minute)
	_, err = f.svc.Guard(context.Background(), sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.NotContains(t, f.store.sessions, sess.ID)
	assert.Equal(t, []domain.AuthEventKind{domain.EventLoginSucceeded, domain.EventSessionExpired}, f.audit.kinds())

	// Expired is not a resting state: the context is back to anonymous.
	_, err = f.svc.Guard(context.Background(), sess.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSessionService_Guard_LogoutDuringGuardIsKept(t *testing.T) {
	f := newSessionFixture(t)
	sess, err := f.svc.Login(context.Background(), "", "alice", "correct horse")
	require.NoError(t, err)

	// A second request with the same token logs out while this guard is
	// between its load and its activity write.
	f.store.afterGet = func(id string) {
		require.NoError(t, f.svc.Logout(context.Background(), id))
	}

	_, err = f.svc.Guard(context.Background(), sess.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.NotContains(t, f.store.sessions, sess.ID)

	_, err = f.svc.Guard(context.Background(), sess.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSessionService_Guard_UpdateFault(t *testing.T) {
	f := newSessionFixture(t)
	sess, err := f.svc.Login(context.Background(), "", "alice", "correct horse")
	require.NoError(t, err)

	f.store.saveErr = errors.New("redis down")
	_, err = f.svc.Guard(context.Background(), sess.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSessionService_Guard_UnknownOrEmpty(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.svc.Guard(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	_, err = f.svc.Guard(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSessionService_Guard_StoreFault(t *testing.T) {
	f := newSessionFixture(t)
	f.store.getErr = errors.New("redis down")

	_, err := f.svc.Guard(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSessionService_Logout(t *testing.T) {
	f := newSessionFixture(t)
	sess, err := f.svc.Login(context.Background(), "", "carol", "s3cret")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), sess.ID))
	assert.NotContains(t, f.store.sessions, sess.ID)

	_, err = f.svc.Guard(context.Background(), sess.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	// Idempotent.
	require.NoError(t, f.svc.Logout(context.Background(), sess.ID))
	require.NoError(t, f.svc.Logout(context.Background(), ""))

	assert.Equal(t, []domain.AuthEventKind{domain.EventLoginSucceeded, domain.EventLogout}, f.audit.kinds())
	assert.Equal(t, domain.RoleProfessor, f.audit.events[1].Role)
}

func TestSessionService_SessionsAreIsolated(t *testing.T) {
	f := newSessionFixture(t)
	a, err := f.svc.Login(context.Background(), "", "alice", "correct horse")
	require.NoError(t, err)
	c, err := f.svc.Login(context.Background(), "", "carol", "s3cret")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), a.ID))

	got, err := f.svc.Guard(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Identity.Username)
}
