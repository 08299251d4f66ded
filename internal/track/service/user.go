package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/store"
	"github.com/tally-team/tally/pkg/idx"
	"github.com/tally-team/tally/pkg/slogx"
)

var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidName  = errors.New("invalid name")
	ErrUserNotFound = errors.New("user not found")
)

type UserService struct {
	Store store.Store
}

// Register ensures a local profile exists for an authenticated subject.
// Called on first contact after identity provider login; subsequent calls
// refresh the display name if the provider changed it.
func (s *UserService) Register(ctx context.Context, subject, email, name string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, ErrInvalidEmail
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, ErrInvalidName
	}

	// 1. Existing profile: refresh the name if it drifted.
	existing, err := s.Store.Users().GetUserBySubject(ctx, subject)
	if err == nil {
		if existing.Name != name {
			if err := s.Store.Users().UpdateUserName(ctx, existing.ID, name); err != nil {
				log.Error("failed to refresh user name", slog.Any("error", err))
				return domain.User{}, err
			}
			existing.Name = name
		}
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to look up user", slog.Any("error", err))
		return domain.User{}, err
	}

	// 2. First contact: create the profile.
	now := time.Now().UTC()
	u := domain.User{
		ID:        idx.New().String(),
		Subject:   subject,
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		// Raced by a parallel first-contact request for the same subject.
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.Store.Users().GetUserBySubject(ctx, subject)
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("registered user",
		slog.String("user_id", u.ID),
		slog.String("email", u.Email),
	)
	return u, nil
}

// Get returns a user profile by id.
func (s *UserService) Get(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// GetBySubject returns the profile backing an authenticated subject.
func (s *UserService) GetBySubject(ctx context.Context, subject string) (domain.User, error) {
	u, err := s.Store.Users().GetUserBySubject(ctx, subject)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}
