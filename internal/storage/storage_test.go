package storage_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/liarparty/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open(context.Background(), ":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}
