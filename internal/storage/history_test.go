package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/liarparty/internal/game"
	"github.com/Seednode/liarparty/internal/storage"
)

func outcome(room string, at time.Time, winner game.Winner) game.Outcome {
	return game.Outcome{
		Room:     room,
		Theme:    "Animals",
		Keyword:  "Penguin",
		Winner:   winner,
		PlayedAt: at,
		Players: []game.Participant{
			{Nickname: "Ally", Won: winner == game.WinnerCitizen},
			{Nickname: "Bo", IsLiar: true, Won: winner == game.WinnerLiar},
		},
	}
}

func TestHistory_SaveAndRecent(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	_, err := db.SaveOutcome(ctx, outcome("den", base, game.WinnerCitizen))
	require.NoError(t, err)
	_, err = db.SaveOutcome(ctx, outcome("attic", base.Add(time.Minute), game.WinnerLiar))
	require.NoError(t, err)

	games, err := db.RecentGames(ctx, 10)
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, "attic", games[0].Room)
	assert.Equal(t, "LIAR", games[0].Winner)
	assert.True(t, games[0].PlayedAt.Equal(base.Add(time.Minute)))
	assert.Equal(t, []storage.Result{
		{GameID: games[0].ID, Nickname: "Ally"},
		{GameID: games[0].ID, Nickname: "Bo", IsLiar: true, Won: true},
	}, games[0].Players)

	assert.Equal(t, "den", games[1].Room)
	assert.Equal(t, "CITIZEN", games[1].Winner)
	assert.Len(t, games[1].Players, 2)

	games, err = db.RecentGames(ctx, 1)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "attic", games[0].Room)
}

func TestHistory_Empty(t *testing.T) {
	games, err := openDB(t).RecentGames(context.Background(), 0)

	require.NoError(t, err)
	assert.NotNil(t, games)
	assert.Empty(t, games)
}

func TestRecorder_WritesQueuedRounds(t *testing.T) {
	db := openDB(t)
	rec := storage.NewRecorder(db, 8, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(ctx)
		close(done)
	}()

	rec.Record(outcome("den", time.Now(), game.WinnerLiar))

	require.Eventually(t, func() bool {
		games, err := db.RecentGames(context.Background(), 10)
		return err == nil && len(games) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

type fakeSaver struct {
	mu    sync.Mutex
	saved []string
	fail  bool
}

func (s *fakeSaver) SaveOutcome(_ context.Context, o game.Outcome) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return 0, errors.New("disk full")
	}
	s.saved = append(s.saved, o.Room)
	return int64(len(s.saved)), nil
}

func TestRecorder_FullQueueDrops(t *testing.T) {
	saver := &fakeSaver{}
	rec := storage.NewRecorder(saver, 2, zerolog.Nop())

	// not running yet, so the queue fills
	rec.Record(outcome("a", time.Now(), game.WinnerLiar))
	rec.Record(outcome("b", time.Now(), game.WinnerLiar))
	rec.Record(outcome("c", time.Now(), game.WinnerLiar))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	assert.ElementsMatch(t, []string{"a", "b"}, saver.saved)
}

func TestRecorder_SaveErrorIsNotFatal(t *testing.T) {
	saver := &fakeSaver{fail: true}
	rec := storage.NewRecorder(saver, 2, zerolog.Nop())

	rec.Record(outcome("a", time.Now(), game.WinnerLiar))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NotPanics(t, func() { rec.Run(ctx) })
	assert.Empty(t, saver.saved)
}
