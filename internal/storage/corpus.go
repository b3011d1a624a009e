/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"database/sql"
	"errors"
)

// AddKeywords adds words to theme, creating the theme if needed. Words
// already present are skipped.
func (d *DB) AddKeywords(ctx context.Context, theme string, words ...string) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return unexpected(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO themes (theme_name) VALUES (?)`, theme); err != nil {
		return unexpected(err)
	}

	var themeID int64
	if err := tx.GetContext(ctx, &themeID, `SELECT id FROM themes WHERE theme_name = ?`, theme); err != nil {
		return unexpected(err)
	}

	for _, w := range words {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO keywords (theme_id, word) VALUES (?, ?)`, themeID, w); err != nil {
			return unexpected(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unexpected(err)
	}
	return nil
}

// RandomThemeWithKeyword picks a theme uniformly among those with keywords,
// then one of its keywords.
func (d *DB) RandomThemeWithKeyword(ctx context.Context) (string, string, error) {
	var row struct {
		Theme string `db:"theme_name"`
		Word  string `db:"word"`
	}

	err := d.db.GetContext(ctx, &row, `
		SELECT t.theme_name, k.word
		FROM keywords k
			JOIN themes t ON t.id = k.theme_id
		WHERE k.theme_id = (
			SELECT theme_id FROM keywords GROUP BY theme_id ORDER BY RANDOM() LIMIT 1
		)
		ORDER BY RANDOM()
		LIMIT 1`)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", "", ErrEmptyCorpus
	case err != nil:
		return "", "", unexpected(err)
	}

	return row.Theme, row.Word, nil
}

// Themes lists every theme name with the number of keywords it holds.
func (d *DB) Themes(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Theme string `db:"theme_name"`
		Count int    `db:"words"`
	}

	err := d.db.SelectContext(ctx, &rows, `
		SELECT t.theme_name, COUNT(k.id) AS words
		FROM themes t
			LEFT JOIN keywords k ON k.theme_id = t.id
		GROUP BY t.id`)
	if err != nil {
		return nil, unexpected(err)
	}

	themes := make(map[string]int, len(rows))
	for _, r := range rows {
		themes[r.Theme] = r.Count
	}
	return themes, nil
}
