package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"practice-api/internal/db"
	"practice-api/internal/models"
)

type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string, role models.Role) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswords(hashedPassword, password string) bool
}

type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates a user and signs a token for it. An empty role means
// models.RoleUser.
func (s *AuthService) Register(ctx context.Context, email, password string, role models.Role) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, BadRequest("Email and password required")
	}
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, BadRequest("Invalid role")
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, Conflict("User already exists")
	case !errors.Is(err, db.ErrNotFound):
		return nil, Internal(err)
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, Internal(err)
	}

	user, err := s.users.CreateUser(ctx, email, hash, role)
	if errors.Is(err, db.ErrDuplicate) {
		// lost a race with a concurrent registration
		return nil, Conflict("User already exists")
	}
	if err != nil {
		return nil, Internal(err)
	}

	return s.issue(user)
}

// Login never tells an unknown email apart from a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, db.ErrNotFound) {
		return nil, Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, Internal(err)
	}

	if !s.hasher.ComparePasswords(user.PasswordHash, password) {
		return nil, Unauthorized("Invalid credentials")
	}

	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, NotFound("User not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, Internal(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
