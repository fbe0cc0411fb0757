package service

import (
	"context"
	"testing"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/internal/repository"
	"github.com/raflytch/interview-assistant/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateToken(t *testing.T) {
	manager := jwt.NewJWTManager("secret", 1)
	svc := NewAuthService(manager, nil)
	userID := uuid.New()

	token, err := manager.Generate(userID, "ada@example.com", string(domain.RoleInterviewer))
	require.NoError(t, err)

	user, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: userID, Email: "ada@example.com", Role: domain.RoleInterviewer}, user)

	token, err = manager.Generate(userID, "ada@example.com", "")
	require.NoError(t, err)
	user, err = svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCandidate, user.Role)
}

func TestValidateTokenRejections(t *testing.T) {
	manager := jwt.NewJWTManager("secret", 1)
	ctx := context.Background()

	_, err := NewAuthService(manager, nil).ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	token, err := manager.Generate(uuid.New(), "root@example.com", "admin")
	require.NoError(t, err)
	_, err = NewAuthService(manager, nil).ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = NewAuthService(jwt.NewJWTManager("other", 1), nil).ValidateToken(ctx, token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestValidateTokenRevoked(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := repository.NewCacheRepository(client)

	manager := jwt.NewJWTManager("secret", 1)
	svc := NewAuthService(manager, cache)
	token, err := manager.Generate(uuid.New(), "ada@example.com", string(domain.RoleCandidate))
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	require.NoError(t, cache.Set(context.Background(), revokedTokenPrefix+claims.ID, true, time.Hour))

	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
