package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/tourny-app/internal/store"
	"github.com/AdamBeresnev/tourny-app/internal/testutil"
	users "github.com/AdamBeresnev/tourny-app/internal/user"
	"github.com/AdamBeresnev/tourny-app/internal/utils"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureGuestUser(t *testing.T) {
	database := testutil.SetupTestDB(t)
	userService := NewUserService(store.NewUserStore(database))
	ctx := context.Background()

	guest, err := userService.EnsureGuestUser(ctx)
	require.NoError(t, err)
	assert.True(t, guest.IsGuest())

	_, err = database.Exec("DELETE FROM users WHERE id = ?", users.GuestID)
	require.NoError(t, err)

	guest, err = userService.EnsureGuestUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, users.GuestID, guest.ID)
	assert.Equal(t, "Guest User", guest.Username)
}

func TestFindOrCreateUserByProvider(t *testing.T) {
	database := testutil.SetupTestDB(t)
	userStore := store.NewUserStore(database)
	userService := NewUserService(userStore)
	ctx := context.Background()

	gothUser := goth.User{
		Provider:  "discord",
		UserID:    "1234",
		Email:     "player@example.com",
		NickName:  "player1",
		AvatarURL: "https://cdn.example.com/a.png",
	}

	created, err := userService.FindOrCreateUserByProvider(ctx, gothUser)
	require.NoError(t, err)
	assert.Equal(t, "player1", created.Username)
	assert.Equal(t, "discord", utils.OrZero(created.Provider))

	gothUser.NickName = "player-one"
	gothUser.AvatarURL = ""
	found, err := userService.FindOrCreateUserByProvider(ctx, gothUser)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	stored, err := userStore.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "player-one", stored.Username)
	assert.Nil(t, stored.AvatarURL)
}
