package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/AdamBeresnev/tourny-app/internal/store"
	users "github.com/AdamBeresnev/tourny-app/internal/user"
	"github.com/AdamBeresnev/tourny-app/internal/utils"
	"github.com/google/uuid"
	"github.com/markbates/goth"
)

type UserService struct {
	store *store.UserStore
}

func NewUserService(store *store.UserStore) *UserService {
	return &UserService{store: store}
}

func displayName(gothUser goth.User) string {
	switch {
	case gothUser.NickName != "":
		return gothUser.NickName
	case gothUser.Name != "":
		return gothUser.Name
	default:
		return gothUser.Email
	}
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		name := displayName(gothUser)
		if utils.OrZero(user.AvatarURL) != gothUser.AvatarURL || user.Username != name {
			user.AvatarURL = utils.StringOrNil(gothUser.AvatarURL)
			user.Username = name
			if err := s.store.UpdateUserNameAndAvatar(ctx, user); err != nil {
				slog.Warn("failed to refresh user profile", "user_id", user.ID, "error", err)
			}
		}
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		newUser := &users.User{
			ID:         uuid.New(),
			Email:      gothUser.Email,
			Username:   displayName(gothUser),
			Provider:   utils.Ptr(gothUser.Provider),
			ProviderID: utils.Ptr(gothUser.UserID),
			AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
		}
		if err := s.store.CreateUser(ctx, newUser); err != nil {
			return nil, err
		}
		slog.Info("user created", "user_id", newUser.ID, "provider", gothUser.Provider)
		return newUser, nil
	}

	return nil, err
}

// EnsureGuestUser returns the shared guest account, creating it if the seed row is missing.
func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	user, err := s.store.GetUser(ctx, users.GuestID)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		guestUser := &users.User{
			ID:       users.GuestID,
			Email:    "guest@tourny.app",
			Username: "Guest User",
		}
		err := s.store.CreateUser(ctx, guestUser)
		return guestUser, err
	}
	return nil, err
}
