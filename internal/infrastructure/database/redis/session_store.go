package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/pkg/errors"
)

// SessionStore keeps session records as JSON strings under <prefix>session:<id>
// with a TTL matching the workspace TTL.
type SessionStore struct {
	client *Client
	logger logging.Logger
	prefix string
	ttl    time.Duration
}

var _ structure.SessionRepository = (*SessionStore)(nil)

type SessionStoreOption func(*SessionStore)

func WithPrefix(prefix string) SessionStoreOption {
	return func(s *SessionStore) {
		s.prefix = prefix
	}
}

func WithTTL(ttl time.Duration) SessionStoreOption {
	return func(s *SessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewSessionStore(client *Client, log logging.Logger, opts ...SessionStoreOption) *SessionStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &SessionStore{
		client: client,
		logger: log.Named("session_store"),
		prefix: "cdforge:",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) key(id string) string {
	return s.prefix + "session:" + id
}

func (s *SessionStore) Save(ctx context.Context, sess *structure.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode session")
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		s.logger.Error("session save failed", logging.String(logging.FieldSessionID, sess.ID), logging.Err(err))
		return errors.Wrap(err, errors.CodeCacheError, "failed to save session")
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*structure.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, errors.New(errors.CodeSessionNotFound, "session not found").WithDetail(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "failed to load session")
	}
	var sess structure.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode session")
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "failed to delete session")
	}
	if n == 0 {
		return errors.New(errors.CodeSessionNotFound, "session not found").WithDetail(id)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.CodeServiceUnavailable, "redis unavailable")
	}
	return nil
}

//Personal.AI order the ending
