package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/internal/session"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "interview:session:"
	submitKeyPrefix  = "interview:submit:"

	snapshotVersion  = 1
	maxUpdateRetries = 10
)

var ErrSnapshotConflict = errors.New("session snapshot changed concurrently")

type sessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionStore(client *redis.Client, ttl time.Duration) domain.SessionStore {
	return &sessionStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func sessionKey(userID uuid.UUID) string {
	return sessionKeyPrefix + userID.String()
}

func (s *sessionStore) Load(ctx context.Context, userID uuid.UUID) (*domain.Snapshot, error) {
	return s.read(ctx, s.client, sessionKey(userID))
}

func (s *sessionStore) Save(ctx context.Context, userID uuid.UUID, sess *domain.InterviewSession) (*domain.Snapshot, error) {
	return s.Update(ctx, userID, func(current *domain.InterviewSession) error {
		*current = *sess
		return nil
	})
}

// Update applies fn to the stored session inside a WATCH transaction.
// fn may run more than once and must not have side effects.
func (s *sessionStore) Update(ctx context.Context, userID uuid.UUID, fn func(*domain.InterviewSession) error) (*domain.Snapshot, error) {
	key := sessionKey(userID)
	var result *domain.Snapshot

	txf := func(tx *redis.Tx) error {
		current, err := s.read(ctx, tx, key)
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			current = &domain.Snapshot{Version: snapshotVersion, Session: session.New()}
		} else if err != nil {
			return err
		}

		next := current.Session
		if err := fn(&next); err != nil {
			return err
		}

		snap := domain.Snapshot{
			Version:  snapshotVersion,
			Revision: current.Revision + 1,
			SavedAt:  s.now().UTC(),
			Session:  next,
		}
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to encode session snapshot: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			result = &snap
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrSnapshotConflict
}

func (s *sessionStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, sessionKey(userID)).Err()
}

func (s *sessionStore) read(ctx context.Context, c redis.Cmdable, key string) (*domain.Snapshot, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read session snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, domain.ErrSnapshotNotFound
	}
	return &snap, nil
}

type submissionGuard struct {
	cache domain.CacheRepository
	ttl   time.Duration
}

// NewSubmissionGuard allows one in-flight submission per user and question.
func NewSubmissionGuard(cache domain.CacheRepository, ttl time.Duration) domain.SubmissionGuard {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &submissionGuard{cache: cache, ttl: ttl}
}

func submitKey(userID uuid.UUID, questionIndex int) string {
	return fmt.Sprintf("%s%s:%d", submitKeyPrefix, userID.String(), questionIndex)
}

func (g *submissionGuard) Acquire(ctx context.Context, userID uuid.UUID, questionIndex int) (bool, error) {
	return g.cache.SetNX(ctx, submitKey(userID, questionIndex), time.Now().Unix(), g.ttl)
}

func (g *submissionGuard) Release(ctx context.Context, userID uuid.UUID, questionIndex int) error {
	return g.cache.Delete(ctx, submitKey(userID, questionIndex))
}

func (g *submissionGuard) Held(ctx context.Context, userID uuid.UUID, questionIndex int) (bool, error) {
	return g.cache.Exists(ctx, submitKey(userID, questionIndex))
}

func (g *submissionGuard) ReleaseAll(ctx context.Context, userID uuid.UUID) error {
	return g.cache.DeleteByPattern(ctx, submitKeyPrefix+userID.String()+":*")
}
