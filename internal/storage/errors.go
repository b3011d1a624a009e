/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrDuplicateUsername  = errors.New("username is already taken")
	ErrDuplicateNickname  = errors.New("nickname is already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrBadPassword        = errors.New("wrong password")
	ErrEmptyCorpus        = errors.New("no theme has any keywords")
	ErrUnexpectedDatabase = errors.New("unexpected database error")
)

// unexpected wraps err in ErrUnexpectedDatabase, leaving context errors untouched.
func unexpected(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
}
