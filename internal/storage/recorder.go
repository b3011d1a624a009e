/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Seednode/liarparty/internal/game"
)

const flushTimeout = 5 * time.Second

// OutcomeSaver persists finished rounds.
type OutcomeSaver interface {
	SaveOutcome(ctx context.Context, o game.Outcome) (int64, error)
}

// Recorder queues finished rounds and writes them from its own goroutine.
type Recorder struct {
	saver OutcomeSaver
	queue chan game.Outcome
	log   zerolog.Logger
}

func NewRecorder(saver OutcomeSaver, size int, logger zerolog.Logger) *Recorder {
	if size < 1 {
		size = 1
	}
	return &Recorder{
		saver: saver,
		queue: make(chan game.Outcome, size),
		log:   logger.With().Str("module", "history").Logger(),
	}
}

// Record enqueues o. A full queue drops it.
func (r *Recorder) Record(o game.Outcome) {
	select {
	case r.queue <- o:
	default:
		r.log.Warn().Str("room", o.Room).Msg("history queue full, dropping round")
	}
}

// Run writes queued rounds until ctx is canceled, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case o := <-r.queue:
			r.save(ctx, o)
		case <-ctx.Done():
			r.flush()
			return
		}
	}
}

func (r *Recorder) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	for {
		select {
		case o := <-r.queue:
			r.save(ctx, o)
		default:
			return
		}
	}
}

func (r *Recorder) save(ctx context.Context, o game.Outcome) {
	id, err := r.saver.SaveOutcome(ctx, o)
	if err != nil {
		r.log.Error().Err(err).Str("room", o.Room).Msg("could not save round")
		return
	}

	r.log.Debug().Int64("game", id).Str("room", o.Room).Str("winner", string(o.Winner)).Msg("round saved")
}
