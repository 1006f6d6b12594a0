package service

import (
	"alcyxob/fittracker/internal/auth"
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
)

const MinPasswordLength = 6

type AuthService interface {
	// Register creates the user and returns it with a fresh token.
	Register(ctx context.Context, in RegisterInput) (user *domain.User, token string, err error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// Authenticate resolves a bearer token to its (still existing) user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	// ParseToken verifies a token without touching storage.
	ParseToken(token string) (userID string, err error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Weight   *float64
	Height   *float64
	Age      *int
}

// authService implements the AuthService interface.
type authService struct {
	store  repository.Store
	tokens *auth.TokenManager
}

func NewAuthService(store repository.Store, tokens *auth.TokenManager) AuthService {
	return &authService{
		store:  store,
		tokens: tokens,
	}
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return validationError("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Register handles new user registration.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, "", validationError("name and email cannot be empty")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, "", err
	}
	if err := validateBody(in.Weight, in.Height, in.Age); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Weight:       in.Weight,
		Height:       in.Height,
		Age:          in.Age,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials. Unknown email and wrong password fail the same way.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, fmt.Errorf("get user by email: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) ParseToken(token string) (string, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return "", newError(ErrUnauthorized, "token has expired")
		}
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
