package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/pkg/jwt"
)

var (
	ErrTokenRevoked = errors.New("token has been revoked")
	ErrUnknownRole  = errors.New("token carries an unknown role")
)

const revokedTokenPrefix = "auth:revoked:"

type authService struct {
	jwtManager *jwt.JWTManager
	cacheRepo  domain.CacheRepository
}

// NewAuthService validates bearer tokens issued by the identity provider.
// cacheRepo holds revoked token ids and may be nil.
func NewAuthService(jwtManager *jwt.JWTManager, cacheRepo domain.CacheRepository) domain.AuthService {
	return &authService{
		jwtManager: jwtManager,
		cacheRepo:  cacheRepo,
	}
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.jwtManager.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	role := domain.Role(claims.Role)
	if role == "" {
		role = domain.RoleCandidate
	}
	if role != domain.RoleCandidate && role != domain.RoleInterviewer {
		return nil, ErrUnknownRole
	}

	if s.cacheRepo != nil && claims.ID != "" {
		revoked, err := s.cacheRepo.Exists(ctx, fmt.Sprintf("%s%s", revokedTokenPrefix, claims.ID))
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return &domain.User{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  role,
	}, nil
}
