/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Seednode/liarparty/internal/crypto"
	"github.com/Seednode/liarparty/internal/storage"
)

var (
	ErrBadRequest         = errors.New("malformed request")
	ErrMissingCredentials = errors.New("username, password and nickname are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRoomNotFound       = errors.New("room not found")
)

func newLogger(cfg *Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level := zerolog.InfoLevel
	if cfg.verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: logDate}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// statusFor maps an error from the service layer onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrDuplicateUsername), errors.Is(err, storage.ErrDuplicateNickname):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, crypto.ErrExpiredToken),
		errors.Is(err, crypto.ErrInvalidToken),
		errors.Is(err, crypto.ErrMissingSubject):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRoomNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends err as a JSON body. Server errors hide their detail.
func writeError(cfg *Config, w http.ResponseWriter, err error) {
	status := statusFor(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "an error has occurred, please try again"
	}

	writeJSON(cfg, w, status, map[string]string{"error": msg})
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, body any) int {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":"an error has occurred, please try again"}`)
	}
	data = append(data, '\n')

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	written, _ := w.Write(data)
	return written
}

// logServe records a served request at debug level.
func logServe(log zerolog.Logger, what string, r *http.Request, written int, start time.Time) {
	log.Debug().
		Str("page", what).
		Str("size", humanReadableSize(int64(written))).
		Str("ip", realIP(r)).
		Dur("took", time.Since(start).Round(time.Microsecond)).
		Msg("served")
}
