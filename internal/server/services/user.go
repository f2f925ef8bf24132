// Package services contains server-side business logic: account
// registration and login, and accepting uploaded vector batches.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkuznecovs/healthmon/internal/common"
	"github.com/mkuznecovs/healthmon/internal/server/auth"
	"github.com/mkuznecovs/healthmon/internal/server/config"
	"github.com/mkuznecovs/healthmon/internal/server/models"
	"github.com/mkuznecovs/healthmon/internal/server/repositories/repomanager"
	"github.com/mkuznecovs/healthmon/internal/shared"
)

// UserService handles registration, login, and access token issuance
// and verification.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new free-tier account and returns an access token
// for it. A taken username or email yields shared.ErrorLoginAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		UserType:     common.UserTypeFree,
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, shared.ErrorLoginAlreadyExists) {
			return "", err
		}
		return "", fmt.Errorf("error creating user: %v", err)
	}

	return auth.GenerateToken(u.ID, s.jwtSecret, s.tokenValidityDuration)
}

// Login verifies the credentials and returns an access token. A missing
// account and a wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return "", shared.ErrorInvalidLoginPassword
		}
		return "", fmt.Errorf("error searching user: %v", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", shared.ErrorInvalidLoginPassword
	}

	return auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
}

// GetByID returns the account for the given id.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.FindByID(ctx, id)
}

// VerifyToken returns the account id carried by a valid access token.
func (s *UserService) VerifyToken(tokenString string) (int64, error) {
	return auth.GetUserIDFromToken(tokenString, s.jwtSecret)
}

// IsPremium reports whether the account currently holds an active
// premium subscription. A nil SubscriptionEnd means the subscription
// does not expire.
func IsPremium(u *models.User) bool {
	if u.UserType != common.UserTypePremium {
		return false
	}
	return u.SubscriptionEnd == nil || u.SubscriptionEnd.After(time.Now())
}
