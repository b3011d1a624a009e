/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/Seednode/liarparty/internal/storage"
)

const (
	maxBodySize    = 4096
	maxUsername    = 32
	maxNickname    = 20
	maxPassword    = 128
	defaultHistory = 20
)

// Accounts registers and authenticates users.
type Accounts interface {
	Register(ctx context.Context, username, password, nickname string) (storage.User, error)
	Login(ctx context.Context, username, password string) (storage.User, error)
}

type TokenIssuer interface {
	Issue(username, nickname string, now time.Time) (string, error)
}

type HistoryReader interface {
	RecentGames(ctx context.Context, limit int) ([]storage.Game, error)
}

type authServer struct {
	cfg      *Config
	accounts Accounts
	tokens   TokenIssuer
	history  HistoryReader
	log      zerolog.Logger
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname,omitempty"`
}

type sessionResponse struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Token    string `json:"token,omitempty"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	var c credentials

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&c); err != nil {
		return credentials{}, ErrBadRequest
	}

	c.Username = strings.TrimSpace(c.Username)
	c.Nickname = strings.TrimSpace(c.Nickname)
	return c, nil
}

func (s *authServer) serveRegister() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		start := time.Now()

		c, err := decodeCredentials(w, r)
		if err != nil {
			writeError(s.cfg, w, err)
			return
		}

		if c.Username == "" || c.Password == "" || c.Nickname == "" ||
			utf8.RuneCountInString(c.Username) > maxUsername ||
			utf8.RuneCountInString(c.Nickname) > maxNickname ||
			len(c.Password) > maxPassword {
			writeError(s.cfg, w, ErrMissingCredentials)
			return
		}

		user, err := s.accounts.Register(r.Context(), c.Username, c.Password, c.Nickname)
		if err != nil {
			s.logFailure(err, "register")
			writeError(s.cfg, w, err)
			return
		}

		s.log.Info().Str("username", user.Username).Msg("user registered")

		written := writeJSON(s.cfg, w, http.StatusCreated, sessionResponse{
			Username: user.Username,
			Nickname: user.Nickname,
		})

		logServe(s.log, "register", r, written, start)
	}
}

func (s *authServer) serveLogin() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		start := time.Now()

		c, err := decodeCredentials(w, r)
		if err != nil {
			writeError(s.cfg, w, err)
			return
		}

		user, err := s.accounts.Login(r.Context(), c.Username, c.Password)
		switch {
		case errors.Is(err, storage.ErrUserNotFound), errors.Is(err, storage.ErrBadPassword):
			writeError(s.cfg, w, ErrInvalidCredentials)
			return
		case err != nil:
			s.logFailure(err, "login")
			writeError(s.cfg, w, err)
			return
		}

		token, err := s.tokens.Issue(user.Username, user.Nickname, time.Now())
		if err != nil {
			s.logFailure(err, "login")
			writeError(s.cfg, w, err)
			return
		}

		written := writeJSON(s.cfg, w, http.StatusOK, sessionResponse{
			Username: user.Username,
			Nickname: user.Nickname,
			Token:    token,
		})

		logServe(s.log, "login", r, written, start)
	}
}

func (s *authServer) serveHistory() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		start := time.Now()

		limit := defaultHistory
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(s.cfg, w, ErrBadRequest)
				return
			}
			limit = n
		}

		games, err := s.history.RecentGames(r.Context(), limit)
		if err != nil {
			s.logFailure(err, "history")
			writeError(s.cfg, w, err)
			return
		}

		written := writeJSON(s.cfg, w, http.StatusOK, games)

		logServe(s.log, "history", r, written, start)
	}
}

func (s *authServer) logFailure(err error, what string) {
	if statusFor(err) == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("page", what).Msg("request failed")
	}
}

func registerAccounts(s *authServer, mux *httprouter.Router) {
	prefix := s.cfg.prefix

	mux.POST(prefix+"/api/register", s.serveRegister())
	mux.POST(prefix+"/api/login", s.serveLogin())
	mux.GET(prefix+"/api/history", s.serveHistory())
}
