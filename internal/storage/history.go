/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Seednode/liarparty/internal/game"
)

const maxHistory = 100

// Game is one finished round as stored.
type Game struct {
	ID       int64     `db:"id" json:"id"`
	PlayedAt time.Time `db:"played_at" json:"played_at"`
	Room     string    `db:"room" json:"room"`
	Theme    string    `db:"theme" json:"theme"`
	Keyword  string    `db:"keyword" json:"keyword"`
	Winner   string    `db:"winner_role" json:"winner"`
	Players  []Result  `db:"-" json:"players"`
}

// Result is one participant of a stored round.
type Result struct {
	GameID   int64  `db:"game_id" json:"-"`
	Nickname string `db:"nickname" json:"nickname"`
	IsLiar   bool   `db:"is_liar" json:"is_liar"`
	Won      bool   `db:"is_win" json:"won"`
}

// SaveOutcome stores a finished round and its participants in one transaction.
func (d *DB) SaveOutcome(ctx context.Context, o game.Outcome) (int64, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, unexpected(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO game_history (played_at, room, theme, keyword, winner_role)
		VALUES (?, ?, ?, ?, ?)`,
		o.PlayedAt.UTC(), o.Room, o.Theme, o.Keyword, string(o.Winner))
	if err != nil {
		return 0, unexpected(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, unexpected(err)
	}

	for _, p := range o.Players {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO game_results (game_id, nickname, is_liar, is_win)
			VALUES (?, ?, ?, ?)`,
			id, p.Nickname, p.IsLiar, p.Won)
		if err != nil {
			return 0, unexpected(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, unexpected(err)
	}
	return id, nil
}

// RecentGames returns up to limit rounds, newest first, with their participants.
func (d *DB) RecentGames(ctx context.Context, limit int) ([]Game, error) {
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}

	games := []Game{}
	err := d.db.SelectContext(ctx, &games, `
		SELECT id, played_at, room, theme, keyword, winner_role
		FROM game_history
		ORDER BY played_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, unexpected(err)
	}
	if len(games) == 0 {
		return games, nil
	}

	ids := make([]int64, len(games))
	byID := make(map[int64]int, len(games))
	for i, g := range games {
		ids[i] = g.ID
		byID[g.ID] = i
	}

	query, args, err := sqlx.In(`
		SELECT game_id, nickname, is_liar, is_win
		FROM game_results
		WHERE game_id IN (?)
		ORDER BY id`, ids)
	if err != nil {
		return nil, unexpected(err)
	}

	var results []Result
	if err := d.db.SelectContext(ctx, &results, d.db.Rebind(query), args...); err != nil {
		return nil, unexpected(err)
	}

	for _, r := range results {
		g := &games[byID[r.GameID]]
		g.Players = append(g.Players, r)
	}

	return games, nil
}
