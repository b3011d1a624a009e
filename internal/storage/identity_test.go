package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/liarparty/internal/crypto"
	"github.com/Seednode/liarparty/internal/storage"
)

func newUsers(t *testing.T) *storage.Users {
	t.Helper()

	return storage.NewUsers(openDB(t), crypto.NewArgon2idHasher(1, 8*1024, 32, 16, 1))
}

func TestUsers_RegisterAndLogin(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	created, err := users.Register(ctx, "alice", "hunter22", "Ally")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, "hunter22", created.PasswordHash)

	user, err := users.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "Ally", user.Nickname)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUsers_RegisterDuplicates(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	_, err := users.Register(ctx, "alice", "hunter22", "Ally")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		nickname string
		want     error
	}{
		{name: "username", username: "alice", nickname: "Other", want: storage.ErrDuplicateUsername},
		{name: "nickname", username: "bob", nickname: "Ally", want: storage.ErrDuplicateNickname},
		{name: "both reports username first", username: "alice", nickname: "Ally", want: storage.ErrDuplicateUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.Register(ctx, tt.username, "pw", tt.nickname)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUsers_LoginFailures(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	_, err := users.Register(ctx, "alice", "hunter22", "Ally")
	require.NoError(t, err)

	_, err = users.Login(ctx, "nobody", "hunter22")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = users.Login(ctx, "alice", "hunter23")
	assert.ErrorIs(t, err, storage.ErrBadPassword)
}
