package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/liarparty/internal/storage"
)

type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) Register(ctx context.Context, username, password, nickname string) (storage.User, error) {
	args := m.Called(ctx, username, password, nickname)
	return args.Get(0).(storage.User), args.Error(1)
}

func (m *MockAccounts) Login(ctx context.Context, username, password string) (storage.User, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(storage.User), args.Error(1)
}

type MockTokens struct {
	mock.Mock
}

func (m *MockTokens) Issue(username, nickname string, now time.Time) (string, error) {
	args := m.Called(username, nickname, now)
	return args.String(0), args.Error(1)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) RecentGames(ctx context.Context, limit int) ([]storage.Game, error) {
	args := m.Called(ctx, limit)
	games, _ := args.Get(0).([]storage.Game)
	return games, args.Error(1)
}

func newAuthRouter(accounts *MockAccounts, tokens *MockTokens, history *MockHistory) *httprouter.Router {
	mux := httprouter.New()
	registerAccounts(&authServer{
		cfg:      testConfig(),
		accounts: accounts,
		tokens:   tokens,
		history:  history,
		log:      zerolog.Nop(),
	}, mux)
	return mux
}

func TestRegisterHandler(t *testing.T) {
	t.Parallel()

	ally := storage.User{ID: 1, Username: "alice", Nickname: "Ally"}

	testCases := []struct {
		description  string
		body         string
		setupMocks   func(m *MockAccounts)
		expectedCode int
		expectedBody string
	}{
		{
			description: "created",
			body:        `{"username":" alice ","password":"hunter22","nickname":"Ally"}`,
			setupMocks: func(m *MockAccounts) {
				m.On("Register", mock.Anything, "alice", "hunter22", "Ally").Return(ally, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: `{"username":"alice","nickname":"Ally"}`,
		},
		{
			description: "username taken",
			body:        `{"username":"alice","password":"hunter22","nickname":"Ally"}`,
			setupMocks: func(m *MockAccounts) {
				m.On("Register", mock.Anything, "alice", "hunter22", "Ally").Return(storage.User{}, storage.ErrDuplicateUsername)
			},
			expectedCode: http.StatusConflict,
			expectedBody: `{"error":"username is already taken"}`,
		},
		{
			description: "nickname taken",
			body:        `{"username":"alice","password":"hunter22","nickname":"Ally"}`,
			setupMocks: func(m *MockAccounts) {
				m.On("Register", mock.Anything, "alice", "hunter22", "Ally").Return(storage.User{}, storage.ErrDuplicateNickname)
			},
			expectedCode: http.StatusConflict,
			expectedBody: `{"error":"nickname is already taken"}`,
		},
		{
			description:  "missing nickname",
			body:         `{"username":"alice","password":"hunter22"}`,
			setupMocks:   func(m *MockAccounts) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"username, password and nickname are required"}`,
		},
		{
			description:  "nickname too long",
			body:         `{"username":"alice","password":"hunter22","nickname":"` + strings.Repeat("n", maxNickname+1) + `"}`,
			setupMocks:   func(m *MockAccounts) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"username, password and nickname are required"}`,
		},
		{
			description:  "non json request",
			body:         `{`,
			setupMocks:   func(m *MockAccounts) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"malformed request"}`,
		},
		{
			description: "database failure is hidden",
			body:        `{"username":"alice","password":"hunter22","nickname":"Ally"}`,
			setupMocks: func(m *MockAccounts) {
				m.On("Register", mock.Anything, "alice", "hunter22", "Ally").
					Return(storage.User{}, errors.Join(storage.ErrUnexpectedDatabase, errors.New("disk I/O error")))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"an error has occurred, please try again"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			accounts := &MockAccounts{}
			tc.setupMocks(accounts)
			mux := newAuthRouter(accounts, &MockTokens{}, &MockHistory{})

			req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
			accounts.AssertExpectations(t)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	ally := storage.User{ID: 1, Username: "alice", Nickname: "Ally"}

	testCases := []struct {
		description  string
		body         string
		setupMocks   func(a *MockAccounts, tk *MockTokens)
		expectedCode int
		expectedBody string
	}{
		{
			description: "success",
			body:        `{"username":"alice","password":"hunter22"}`,
			setupMocks: func(a *MockAccounts, tk *MockTokens) {
				a.On("Login", mock.Anything, "alice", "hunter22").Return(ally, nil)
				tk.On("Issue", "alice", "Ally", mock.Anything).Return("tokenhaha", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"username":"alice","nickname":"Ally","token":"tokenhaha"}`,
		},
		{
			description: "unknown user",
			body:        `{"username":"bob","password":"hunter22"}`,
			setupMocks: func(a *MockAccounts, tk *MockTokens) {
				a.On("Login", mock.Anything, "bob", "hunter22").Return(storage.User{}, storage.ErrUserNotFound)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error":"invalid username or password"}`,
		},
		{
			description: "wrong password",
			body:        `{"username":"alice","password":"nope"}`,
			setupMocks: func(a *MockAccounts, tk *MockTokens) {
				a.On("Login", mock.Anything, "alice", "nope").Return(storage.User{}, storage.ErrBadPassword)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error":"invalid username or password"}`,
		},
		{
			description: "signing failure",
			body:        `{"username":"alice","password":"hunter22"}`,
			setupMocks: func(a *MockAccounts, tk *MockTokens) {
				a.On("Login", mock.Anything, "alice", "hunter22").Return(ally, nil)
				tk.On("Issue", "alice", "Ally", mock.Anything).Return("", errors.New("no key"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"an error has occurred, please try again"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			accounts, tokens := &MockAccounts{}, &MockTokens{}
			tc.setupMocks(accounts, tokens)
			mux := newAuthRouter(accounts, tokens, &MockHistory{})

			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
			accounts.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}

func TestHistoryHandler(t *testing.T) {
	history := &MockHistory{}
	history.On("RecentGames", mock.Anything, defaultHistory).Return([]storage.Game{{ID: 7, Room: "den", Winner: "LIAR"}}, nil).Once()
	history.On("RecentGames", mock.Anything, 5).Return([]storage.Game{}, nil).Once()

	mux := newAuthRouter(&MockAccounts{}, &MockTokens{}, history)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"room":"den"`)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	history.AssertExpectations(t)
}
