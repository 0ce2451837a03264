// Package service contains application services behind the HTTP API.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/gotovkk/MyCarExpenses/internal/crypto"
	"github.com/gotovkk/MyCarExpenses/internal/errs"
	"github.com/gotovkk/MyCarExpenses/internal/limiter"
	"github.com/gotovkk/MyCarExpenses/internal/model"
	"github.com/gotovkk/MyCarExpenses/internal/repository"
)

// AuthService defines account registration and login.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, username, email, password string) (model.User, error)
	// LoginWithIP applies rate-limiting, authenticates the user and issues
	// a bearer token.
	LoginWithIP(ctx context.Context, email, password, ip string) (token string, user model.User, err error)
	// ParseToken verifies a bearer token and returns the authenticated user id.
	ParseToken(token string) (uuid.UUID, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// Register creates a new user record.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return model.User{}, fmt.Errorf("%w: username, email and password are required", errs.ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return model.User{}, fmt.Errorf("%w: malformed email", errs.ErrInvalidInput)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return model.User{}, err
	}
	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := &repository.StoredUser{
		User:         model.User{ID: uid, Username: username, Email: email},
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return model.User{}, err
	}
	return u.User, nil
}

// LoginWithIP authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (string, model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return "", model.User{}, err
	}
	if !allowed {
		return "", model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword(password, u.PasswordHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return "", model.User{}, errs.ErrRateLimited
		}
		// hide existence of the account on wrong password
		return "", model.User{}, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email, ipHash)

	token, err := s.issueAccessToken(u.ID)
	if err != nil {
		return "", model.User{}, err
	}
	return token, u.User, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.signKey)
}

// ParseToken verifies signature and expiry and extracts the subject user id.
func (s *AuthServiceImpl) ParseToken(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.signKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, errs.ErrUnauthorized
	}
	uid, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, errs.ErrUnauthorized
	}
	return uid, nil
}
