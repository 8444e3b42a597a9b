package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Mohammad-Harkous/chat-app/domain"
	"github.com/Mohammad-Harkous/chat-app/repositories"
)

// IDirectoryService is the read side of the identity directory: profile
// lookups and substring search. Absence surfaces as ErrNotFound, never a
// panic or a nil profile.
type IDirectoryService interface {
	FindByID(id uuid.UUID) (domain.Profile, error)
	FindByEmail(email string) (domain.Profile, error)
	Search(ctx context.Context, query string, excludingUserID uuid.UUID) ([]domain.Profile, error)
}

type DirectoryService struct {
	users repositories.IUserRepository
}

func NewDirectoryService(users repositories.IUserRepository) IDirectoryService {
	return &DirectoryService{users: users}
}

func (s *DirectoryService) FindByID(id uuid.UUID) (domain.Profile, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

func (s *DirectoryService) FindByEmail(email string) (domain.Profile, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

func (s *DirectoryService) Search(ctx context.Context, query string, excludingUserID uuid.UUID) ([]domain.Profile, error) {
	users, err := s.users.Search(ctx, query, excludingUserID)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u repositories.User, _ int) domain.Profile {
		return u.Profile()
	}), nil
}
