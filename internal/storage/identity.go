/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Hasher turns passwords into storable hashes and checks them.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Nickname     string    `db:"nickname"`
	CreatedAt    time.Time `db:"created_at"`
}

// Users registers and authenticates accounts.
type Users struct {
	db     *DB
	hasher Hasher
}

func NewUsers(db *DB, hasher Hasher) *Users {
	return &Users{db: db, hasher: hasher}
}

// Register creates an account. The username is checked before the nickname.
func (u *Users) Register(ctx context.Context, username, password, nickname string) (User, error) {
	taken, err := u.exists(ctx, "username", username)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, ErrDuplicateUsername
	}

	taken, err = u.exists(ctx, "nickname", nickname)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, ErrDuplicateNickname
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}

	user := User{
		Username:     username,
		PasswordHash: hash,
		Nickname:     nickname,
		CreatedAt:    time.Now().UTC(),
	}

	res, err := u.db.db.NamedExecContext(ctx, `
		INSERT INTO users (username, password_hash, nickname, created_at)
		VALUES (:username, :password_hash, :nickname, :created_at)`, user)
	if err != nil {
		return User{}, uniqueViolation(err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return User{}, unexpected(err)
	}
	return user, nil
}

// Login checks password against the stored hash of username.
func (u *Users) Login(ctx context.Context, username, password string) (User, error) {
	var user User

	err := u.db.db.GetContext(ctx, &user, `
		SELECT id, username, password_hash, nickname, created_at
		FROM users
		WHERE username = ?`, username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return User{}, ErrUserNotFound
	case err != nil:
		return User{}, unexpected(err)
	}

	match, err := u.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return User{}, err
	}
	if !match {
		return User{}, ErrBadPassword
	}
	return user, nil
}

func (u *Users) exists(ctx context.Context, column, value string) (bool, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE %s = ?`, column)
	if err := u.db.db.GetContext(ctx, &n, query, value); err != nil {
		return false, unexpected(err)
	}
	return n > 0, nil
}

// uniqueViolation maps a lost insert race onto the matching duplicate error.
func uniqueViolation(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		if strings.Contains(sqliteErr.Error(), "users.nickname") {
			return ErrDuplicateNickname
		}
		return ErrDuplicateUsername
	}
	return unexpected(err)
}
