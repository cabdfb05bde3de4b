package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/univexams/exam-portal/internal/core/domain"
	"github.com/univexams/exam-portal/internal/core/ports"
)

const defaultSessionPrefix = "session:"

// SessionStore keeps one JSON-encoded session per key, key format
// session:<id>. Each Save refreshes the key TTL, so a record outlives its
// last activity by ttl at most.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client redis.UniversalClient, ttl time.Duration) *SessionStore {
	return NewSessionStoreWithPrefix(client, defaultSessionPrefix, ttl)
}

// NewSessionStoreWithPrefix creates a SessionStore with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = domain.DefaultIdleTimeout
	}
	return &SessionStore{client: client, prefix: prefix, ttl: ttl}
}

// sessionRecord is the stored form. The linked entity is flattened to its ID
// and rebuilt from the role on load.
type sessionRecord struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Username       string      `json:"username"`
	Role           domain.Role `json:"role"`
	LinkedEntityID string      `json:"linked_entity_id"`
	DisplayName    string      `json:"display_name"`
	Authenticated  bool        `json:"authenticated"`
	LoginTime      time.Time   `json:"login_time"`
	LastActivity   time.Time   `json:"last_activity"`
}

func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	data, err := encodeSession(sess)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Update rewrites the session with SET XX, so a key removed by a concurrent
// logout stays removed.
func (s *SessionStore) Update(ctx context.Context, sess *domain.Session) error {
	data, err := encodeSession(sess)
	if err != nil {
		return err
	}
	ok, err := s.client.SetXX(ctx, s.key(sess.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis set xx: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func encodeSession(sess *domain.Session) ([]byte, error) {
	if sess == nil || sess.ID == "" {
		return nil, errors.New("session ID cannot be empty")
	}
	if sess.Identity == nil {
		return nil, errors.New("session has no identity")
	}

	rec := sessionRecord{
		ID:            sess.ID,
		UserID:        sess.Identity.ID,
		Username:      sess.Identity.Username,
		Role:          sess.Identity.Role,
		DisplayName:   sess.Identity.DisplayName,
		Authenticated: sess.Authenticated,
		LoginTime:     sess.LoginTime,
		LastActivity:  sess.LastActivity,
	}
	if sess.Identity.LinkedEntity != nil {
		rec.LinkedEntityID = sess.Identity.LinkedEntity.EntityID()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	entity, err := domain.NewLinkedEntity(rec.Role, rec.LinkedEntityID)
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}

	return &domain.Session{
		ID: rec.ID,
		Identity: &domain.UserIdentity{
			ID:           rec.UserID,
			Username:     rec.Username,
			Role:         rec.Role,
			LinkedEntity: entity,
			DisplayName:  rec.DisplayName,
		},
		Authenticated: rec.Authenticated,
		LoginTime:     rec.LoginTime,
		LastActivity:  rec.LastActivity,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *SessionStore) key(id string) string {
	return s.prefix + id
}
