package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/univexams/exam-portal/internal/api/metrics"
	"github.com/univexams/exam-portal/internal/core/domain"
	"github.com/univexams/exam-portal/internal/core/ports"
)

type sessionService struct {
	authority   *Authority
	store       ports.SessionStore
	audit       ports.AuditSink
	idleTimeout time.Duration
	log         zerolog.Logger
}

// NewSessionService returns a SessionService that keeps sessions in store.
// A nil audit sink disables the audit trail.
func NewSessionService(
	authority *Authority,
	store ports.SessionStore,
	audit ports.AuditSink,
	idleTimeout time.Duration,
	log zerolog.Logger,
) ports.SessionService {
	if idleTimeout <= 0 {
		idleTimeout = domain.DefaultIdleTimeout
	}
	if audit == nil {
		audit = nopAudit{}
	}
	return &sessionService{
		authority:   authority,
		store:       store,
		audit:       audit,
		idleTimeout: idleTimeout,
		log:         log,
	}
}

func (s *sessionService) Login(ctx context.Context, priorSessionID, username, secret string) (*domain.Session, error) {
	start := time.Now()
	identity, err := s.authority.Authenticate(ctx, username, secret)
	metrics.AuthenticationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.rejectLogin(username, err)
		return nil, err
	}

	session := s.authority.EstablishSession(identity)
	if err := s.store.Save(ctx, session); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("login: save session: %w", err)
	}

	if priorSessionID != "" && priorSessionID != session.ID {
		if err := s.store.Delete(ctx, priorSessionID); err != nil {
			s.log.Warn().Err(err).Str("session_id", priorSessionID).Msg("failed to discard prior session")
		}
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().
		Str("username", identity.Username).
		Str("role", string(identity.Role)).
		Str("session_id", session.ID).
		Msg("login succeeded")
	s.audit.Record(domain.AuthEvent{
		Kind:       domain.EventLoginSucceeded,
		Username:   identity.Username,
		Role:       identity.Role,
		SessionID:  session.ID,
		OccurredAt: start.UTC(),
	})

	return session, nil
}

// rejectLogin logs and audits the real failure reason. Callers only ever show
// the user a generic message for credential failures.
func (s *sessionService) rejectLogin(username string, err error) {
	var failure *domain.AuthFailure
	reason := "unknown"
	if errors.As(err, &failure) {
		reason = failure.Kind.String()
	}
	metrics.LoginAttemptsTotal.WithLabelValues(reason).Inc()

	event := domain.AuthEvent{
		Kind:       domain.EventLoginRejected,
		Username:   username,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	if errors.Is(err, domain.ErrDirectoryUnavailable) {
		event.Kind = domain.EventDirectoryUnavailable
		s.log.Error().Err(err).Str("username", username).Msg("login failed: directory unavailable")
	} else {
		s.log.Warn().Str("username", username).Str("reason", reason).Msg("login rejected")
	}
	s.audit.Record(event)
}

func (s *sessionService) Guard(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, &domain.SessionError{Kind: domain.SessionNotAuthenticated}
	}

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, &domain.SessionError{Kind: domain.SessionNotAuthenticated}
		}
		return nil, fmt.Errorf("guard: load session: %w", err)
	}

	if s.authority.IsExpired(session, s.idleTimeout) {
		s.expire(ctx, sessionID, session)
		return nil, &domain.SessionError{Kind: domain.SessionExpired}
	}

	s.authority.Touch(session)
	if err := s.store.Update(ctx, session); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			// Logged out or replaced since the load above.
			return nil, &domain.SessionError{Kind: domain.SessionNotAuthenticated}
		}
		return nil, fmt.Errorf("guard: update session: %w", err)
	}
	return session, nil
}

func (s *sessionService) expire(ctx context.Context, sessionID string, session *domain.Session) {
	event := domain.AuthEvent{
		Kind:       domain.EventSessionExpired,
		SessionID:  sessionID,
		OccurredAt: time.Now().UTC(),
	}
	if session.Identity != nil {
		event.Username = session.Identity.Username
		event.Role = session.Identity.Role
	}

	s.authority.Terminate(session)
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to delete expired session")
	}

	metrics.SessionsTerminatedTotal.WithLabelValues("expired").Inc()
	s.log.Info().Str("session_id", sessionID).Str("username", event.Username).Msg("session expired")
	s.audit.Record(event)
}

func (s *sessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("logout: load session: %w", err)
	}

	event := domain.AuthEvent{
		Kind:       domain.EventLogout,
		SessionID:  sessionID,
		OccurredAt: time.Now().UTC(),
	}
	username := "unknown"
	if session.Identity != nil {
		username = session.Identity.Username
		event.Username = username
		event.Role = session.Identity.Role
	}

	s.authority.Terminate(session)
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: delete session: %w", err)
	}

	metrics.SessionsTerminatedTotal.WithLabelValues("logout").Inc()
	s.log.Info().Str("username", username).Str("session_id", sessionID).Msg("logout")
	s.audit.Record(event)
	return nil
}

type nopAudit struct{}

func (nopAudit) Record(domain.AuthEvent) {}
