package services

import (
	"fmt"

	"github.com/Mohammad-Harkous/chat-app/auth"
	"github.com/Mohammad-Harkous/chat-app/domain"
	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
	"github.com/Mohammad-Harkous/chat-app/repositories"
)

type IAuthService interface {
	Register(username, email, password string) (domain.Profile, error)
	Login(email, password string) (domain.Profile, Token, error)
}

type AuthService struct {
	users  repositories.IUserRepository
	tokens *auth.TokenService
}

type Token string

func NewAuthService(users repositories.IUserRepository, tokens *auth.TokenService) IAuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(username, email, password string) (domain.Profile, error) {
	// Validate business rules before any expensive cryptographic operation.
	if err := auth.ValidateRegister(auth.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}); err != nil {
		return domain.Profile{}, err
	}

	// Hashing happens here so the repository never sees a plain password.
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.users.Create(username, email, hashed)
	if err != nil {
		return domain.Profile{}, err // propagates ErrUserAlreadyExists
	}
	return user.Profile(), nil
}

func (s *AuthService) Login(email, password string) (domain.Profile, Token, error) {
	if err := auth.ValidateLogin(auth.LoginRequest{Email: email, Password: password}); err != nil {
		return domain.Profile{}, "", err
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks.
		return domain.Profile{}, "", apperrors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.Profile{}, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return domain.Profile{}, "", apperrors.ErrTokenGeneration
	}
	return user.Profile(), Token(token), nil
}
