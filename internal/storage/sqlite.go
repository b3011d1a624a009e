/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	nickname TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS themes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	theme_name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS keywords (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	theme_id INTEGER NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
	word TEXT NOT NULL,
	UNIQUE(theme_id, word)
);
CREATE TABLE IF NOT EXISTS game_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	played_at TIMESTAMP NOT NULL,
	room TEXT NOT NULL,
	theme TEXT NOT NULL,
	keyword TEXT NOT NULL,
	winner_role TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS game_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id INTEGER NOT NULL REFERENCES game_history(id) ON DELETE CASCADE,
	nickname TEXT NOT NULL,
	is_liar INTEGER NOT NULL,
	is_win INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_results_game ON game_results(game_id);
`

// defaultCorpus is loaded into an empty database.
var defaultCorpus = []struct {
	theme string
	words []string
}{
	{
		theme: "Food",
		words: []string{"Kimchi stew", "Fried chicken", "Sweet and sour pork", "Bibimbap", "Sushi", "Hamburger", "Ramen", "Pizza", "Tteokbokki", "Pork belly"},
	},
	{
		theme: "Animals",
		words: []string{"Lion", "Tiger", "Giraffe", "Elephant", "Penguin", "Eagle", "Panda", "Puppy", "Cat", "Rabbit"},
	},
	{
		theme: "Jobs",
		words: []string{"Developer", "Doctor", "Police officer", "Firefighter", "Teacher", "Chef", "Lawyer", "Entertainer", "Athlete", "President"},
	},
}

// DB is the SQLite store behind identities, the keyword corpus and game history.
type DB struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// Open connects to the SQLite database at path, creates the schema and seeds
// the corpus if it is empty. ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string, logger zerolog.Logger) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn(path))
	if err != nil {
		return nil, unexpected(err)
	}

	// sqlite serializes writers; one connection also keeps :memory: alive
	db.SetMaxOpenConns(1)

	d := &DB{
		db:  db,
		log: logger.With().Str("module", "storage").Logger(),
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, unexpected(err)
	}

	if err := d.seed(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return unexpected(err)
	}
	return nil
}

func (d *DB) seed(ctx context.Context) error {
	var themes int
	if err := d.db.GetContext(ctx, &themes, `SELECT COUNT(*) FROM themes`); err != nil {
		return unexpected(err)
	}
	if themes > 0 {
		return nil
	}

	for _, group := range defaultCorpus {
		if err := d.AddKeywords(ctx, group.theme, group.words...); err != nil {
			return err
		}
	}

	d.log.Info().Int("themes", len(defaultCorpus)).Msg("seeded keyword corpus")
	return nil
}
