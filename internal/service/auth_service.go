// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/auth"
	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/util"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	User  domain.Profile `json:"user"`
	Token string         `json:"token"`
}

// AuthService defines the interface for account and credential business logic.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	// Authenticate resolves a bearer token to the id of an existing user.
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Register creates an account and signs the new user in.
func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", util.ErrInvalidInput)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", util.ErrInvalidInput, maxPasswordBytes)
	}

	_, err := s.userRepo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("register: email %q: %w", email, util.ErrDuplicateEntry)
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("register: failed to check existing user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := domain.NewUser(name, email, hash)
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("register: failed to create user: %w", err)
	}

	return s.signIn(user)
}

// Login checks credentials. An unknown email and a wrong password are indistinguishable.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: failed to get user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	return s.signIn(user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("me: failed to get user %s: %w", userID, err)
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return uuid.Nil, err
	}

	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return uuid.Nil, fmt.Errorf("%w: user no longer exists", util.ErrUnauthorized)
		}
		return uuid.Nil, fmt.Errorf("authenticate: failed to get user %s: %w", userID, err)
	}
	return userID, nil
}

func (s *authService) signIn(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user.Profile(), Token: token}, nil
}
