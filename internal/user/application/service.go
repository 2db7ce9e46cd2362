// Package application coordinates user use cases over the domain ports.
package application

import (
	"context"
	"time"

	"github.com/wyfcoding/shopbackoffice/internal/user/domain"
	"github.com/wyfcoding/shopbackoffice/pkg/logger"
)

type CreateUserCommand struct {
	Username string
	Email    string
}

type UpdateUserCommand struct {
	ID       uint
	Username string
	Email    string
}

type UserApplicationService struct {
	repo      domain.UserRepository
	publisher domain.EventPublisher
}

func NewUserApplicationService(repo domain.UserRepository, publisher domain.EventPublisher) *UserApplicationService {
	return &UserApplicationService{repo: repo, publisher: publisher}
}

func (s *UserApplicationService) CreateUser(ctx context.Context, cmd CreateUserCommand) (uint, error) {
	user, err := domain.NewUser(cmd.Username, cmd.Email)
	if err != nil {
		return 0, err
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return 0, err
	}

	event := domain.UserCreatedEvent{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicUserCreated, user.Username, event); err != nil {
		logger.Warn(ctx, "failed to publish user created event", "user_id", user.ID, "error", err)
	}

	return user.ID, nil
}

func (s *UserApplicationService) UpdateUser(ctx context.Context, cmd UpdateUserCommand) error {
	user, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return err
	}

	user.Username = cmd.Username
	user.Email = cmd.Email
	if err := user.Validate(); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return err
	}

	event := domain.UserUpdatedEvent{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicUserUpdated, user.Username, event); err != nil {
		logger.Warn(ctx, "failed to publish user updated event", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *UserApplicationService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserApplicationService) ListUsers(ctx context.Context, page, size int) ([]*domain.User, int64, error) {
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, offset, size)
}

// DeleteUser removes the account; the database cascade takes the user's
// orders and their line items with it.
func (s *UserApplicationService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	event := domain.UserDeletedEvent{
		UserID:    user.ID,
		Username:  user.Username,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicUserDeleted, user.Username, event); err != nil {
		logger.Warn(ctx, "failed to publish user deleted event", "user_id", user.ID, "error", err)
	}
	return nil
}
