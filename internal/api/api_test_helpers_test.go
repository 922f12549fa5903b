package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/cardledger/internal/api/middleware"
	"github.com/phrazzld/cardledger/internal/config"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	"github.com/phrazzld/cardledger/internal/platform/memory"
	"github.com/phrazzld/cardledger/internal/service"
	"github.com/phrazzld/cardledger/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-that-is-at-least-32-chars"

type testServer struct {
	router   http.Handler
	accounts *memory.MemoryAccountStore
	sessions *service.SessionRegistry
}

// newTestServer wires the real handlers over an in-memory store.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log, _ := logger.NewTestLogger()
	accounts := memory.NewMemoryAccountStore(log)
	newLedger := func() service.LedgerService {
		return service.NewLedgerService(accounts, nil, log)
	}
	sessions := service.NewSessionRegistry(newLedger, log)

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            testJWTSecret,
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	RegisterRoutes(r,
		NewAccountHandler(newLedger(), log),
		NewSessionHandler(sessions, jwtService, log),
		middleware.NewAuthMiddleware(jwtService, sessions),
	)

	return &testServer{router: r, accounts: accounts, sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// createAccount issues a card through the API.
func (s *testServer) createAccount(t *testing.T) CreateAccountResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/accounts", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp CreateAccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// login opens a session and returns its token.
func (s *testServer) login(t *testing.T, card CreateAccountResponse) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/sessions", "", LoginRequest{CardNumber: card.CardNumber, PIN: card.PIN})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// deposit adds income through the API.
func (s *testServer) deposit(t *testing.T, token string, amount int64) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/session/deposits", token, DepositRequest{Amount: amount})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (s *testServer) balance(t *testing.T, token string) int64 {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/session/balance", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Balance
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error   string `json:"error"`
		TraceID string `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error
}
