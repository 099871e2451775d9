// Package service provides the task service's business logic, delegating
// persistence to repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/GophTasks/internal/models"
	"github.com/atinyakov/GophTasks/internal/repository"
)

var (
	// ErrInvalidInput is returned for requests that fail validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned when the username or password is wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for bearer tokens that fail verification.
	ErrInvalidToken = errors.New("invalid token")
)

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// CreateUser stores a new account. It returns repository.ErrUserExists
	// if the username is taken.
	CreateUser(ctx context.Context, username string, passwordHash []byte) (models.User, error)
	// GetUserByUsername returns repository.ErrNotFound for unknown users.
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Claims is the payload of an issued access token. The subject is the
// user id in decimal.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService registers accounts and issues and verifies HS256 access tokens.
type AuthService struct {
	repo   UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService constructs an AuthService. secret signs the tokens, which
// expire after ttl.
func NewAuthService(repo UserRepository, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{repo: repo, secret: secret, ttl: ttl, now: time.Now}
}

// SignUp registers username with a bcrypt hash of password.
func (s *AuthService) SignUp(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.repo.CreateUser(ctx, username, hash); err != nil {
		return err
	}
	return nil
}

// SignIn checks the password and returns a signed access token.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *AuthService) issue(u models.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ParseToken verifies token and returns the identity it was issued for.
func (s *AuthService) ParseToken(token string) (models.User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return models.User{ID: id, Username: claims.Username}, nil
}
