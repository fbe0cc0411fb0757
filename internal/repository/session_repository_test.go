package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestSessionStoreLoadMissing(t *testing.T) {
	client, _ := setupRedis(t)
	store := NewSessionStore(client, time.Hour)

	_, err := store.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestSessionStoreUpdateStartsFromDefault(t *testing.T) {
	client, mr := setupRedis(t)
	store := NewSessionStore(client, time.Hour)
	userID := uuid.New()

	snap, err := store.Update(context.Background(), userID, func(s *domain.InterviewSession) error {
		assert.Equal(t, domain.SessionStatusNotStarted, s.Status)
		s.JobRole = domain.JobRoleBackend
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Revision)
	assert.Equal(t, 1, snap.Version)

	loaded, err := store.Load(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobRoleBackend, loaded.Session.JobRole)
	assert.Equal(t, time.Hour, mr.TTL("interview:session:"+userID.String()))
}

func TestSessionStoreRoundTripsAnswers(t *testing.T) {
	client, _ := setupRedis(t)
	store := NewSessionStore(client, 0)
	userID := uuid.New()

	_, err := store.Update(context.Background(), userID, func(s *domain.InterviewSession) error {
		s.Status = domain.SessionStatusActive
		s.Answers[0] = "answer"
		s.Scores[0] = 7
		return nil
	})
	require.NoError(t, err)

	snap, err := store.Load(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "answer", snap.Session.Answers[0])
	assert.Equal(t, 7, snap.Session.Scores[0])
}

func TestSessionStoreFailedUpdateKeepsSnapshot(t *testing.T) {
	client, _ := setupRedis(t)
	store := NewSessionStore(client, 0)
	userID := uuid.New()
	ctx := context.Background()

	_, err := store.Update(ctx, userID, func(s *domain.InterviewSession) error {
		s.JobRole = domain.JobRoleFrontend
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = store.Update(ctx, userID, func(s *domain.InterviewSession) error {
		s.JobRole = domain.JobRoleDevOps
		return boom
	})
	assert.ErrorIs(t, err, boom)

	snap, err := store.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobRoleFrontend, snap.Session.JobRole)
	assert.Equal(t, int64(1), snap.Revision)
}

func TestSessionStoreVersionMismatchIsNotFound(t *testing.T) {
	client, mr := setupRedis(t)
	store := NewSessionStore(client, 0)
	userID := uuid.New()

	require.NoError(t, mr.Set("interview:session:"+userID.String(), `{"version":0,"session":{"status":"active"}}`))

	_, err := store.Load(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestSessionStoreDelete(t *testing.T) {
	client, _ := setupRedis(t)
	store := NewSessionStore(client, 0)
	userID := uuid.New()
	ctx := context.Background()

	_, err := store.Save(ctx, userID, &domain.InterviewSession{Status: domain.SessionStatusReadyToStart})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, userID))

	_, err = store.Load(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestSubmissionGuard(t *testing.T) {
	client, mr := setupRedis(t)
	guard := NewSubmissionGuard(NewCacheRepository(client), time.Minute)
	userID := uuid.New()
	ctx := context.Background()

	ok, err := guard.Acquire(ctx, userID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.Acquire(ctx, userID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	held, err := guard.Held(ctx, userID, 2)
	require.NoError(t, err)
	assert.True(t, held)

	held, err = guard.Held(ctx, userID, 3)
	require.NoError(t, err)
	assert.False(t, held)

	require.NoError(t, guard.Release(ctx, userID, 2))
	ok, err = guard.Acquire(ctx, userID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	held, err = guard.Held(ctx, userID, 2)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestSubmissionGuardReleaseAll(t *testing.T) {
	client, _ := setupRedis(t)
	guard := NewSubmissionGuard(NewCacheRepository(client), time.Minute)
	userID := uuid.New()
	other := uuid.New()
	ctx := context.Background()

	for _, idx := range []int{0, 1} {
		_, err := guard.Acquire(ctx, userID, idx)
		require.NoError(t, err)
	}
	_, err := guard.Acquire(ctx, other, 0)
	require.NoError(t, err)

	require.NoError(t, guard.ReleaseAll(ctx, userID))

	held, _ := guard.Held(ctx, userID, 1)
	assert.False(t, held)
	held, _ = guard.Held(ctx, other, 0)
	assert.True(t, held)
}
