/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package crypto

import "errors"

var (
	ErrHashFailed     = errors.New("could not hash password")
	ErrMalformedHash  = errors.New("stored password hash is malformed")
	ErrExpiredToken   = errors.New("token has expired")
	ErrInvalidToken   = errors.New("token is invalid")
	ErrSigningFailed  = errors.New("could not sign token")
	ErrMissingSubject = errors.New("token has no subject")
)
