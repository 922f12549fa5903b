package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/mocks"
	"github.com/phrazzld/cardledger/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountHandlerPanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { NewAccountHandler(nil, slog.Default()) })
	assert.Panics(t, func() { NewAccountHandler(&mocks.MockLedgerService{}, nil) })
}

func TestCreateAccountEndpoint(t *testing.T) {
	s := newTestServer(t)

	first := s.createAccount(t)
	second := s.createAccount(t)

	assert.True(t, domain.IsValidNumber(first.CardNumber))
	assert.Len(t, first.PIN, 4)
	assert.Zero(t, first.Balance)
	assert.NotEqual(t, first.CardNumber, second.CardNumber)
	assert.Equal(t, "400000", first.CardNumber[:6])
}

func TestCreateAccountEndpointStorageFailure(t *testing.T) {
	ledger := &mocks.MockLedgerService{
		Err: store.NewStoreError("sequence", "next", "sequence unavailable", store.ErrUnavailable),
	}
	r := chi.NewRouter()
	r.Post("/api/accounts", NewAccountHandler(ledger, slog.Default()).CreateAccount)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/accounts", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Failed to create account", decodeError(t, rec))
}

func TestGetCardEndpoint(t *testing.T) {
	s := newTestServer(t)
	card := s.createAccount(t)

	unknown, err := domain.NewCardNumber(999999999)
	require.NoError(t, err)

	mistyped := []byte(card.CardNumber)
	mistyped[15] = '0' + (mistyped[15]-'0'+1)%10

	tests := []struct {
		name   string
		number string
		want   CardInfoResponse
	}{
		{
			name:   "issued card",
			number: card.CardNumber,
			want: CardInfoResponse{
				CardNumber: domain.MaskCardNumber(card.CardNumber),
				Valid:      true,
				Exists:     true,
				Industry:   string(domain.IndustryBanking),
				Brand:      string(domain.BrandVisa),
			},
		},
		{
			name:   "valid but never issued",
			number: unknown.String(),
			want: CardInfoResponse{
				CardNumber: "400000******9991",
				Valid:      true,
				Industry:   string(domain.IndustryBanking),
				Brand:      string(domain.BrandVisa),
			},
		},
		{
			name:   "wrong check digit",
			number: string(mistyped),
			want: CardInfoResponse{
				CardNumber: domain.MaskCardNumber(string(mistyped)),
				Industry:   string(domain.IndustryBanking),
				Brand:      string(domain.BrandVisa),
			},
		},
		{
			name:   "not a card number",
			number: "12ab",
			want:   CardInfoResponse{CardNumber: "****"},
		},
		{
			name:   "mastercard prefix",
			number: "5500000000000004",
			want: CardInfoResponse{
				CardNumber: "550000******0004",
				Valid:      true,
				Industry:   string(domain.IndustryBanking),
				Brand:      string(domain.BrandMastercard),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/cards/"+tc.number, "", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got CardInfoResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetCardEndpointLookupFailure(t *testing.T) {
	ledger := &mocks.MockLedgerService{Err: errors.New("boom")}
	r := chi.NewRouter()
	r.Get("/api/cards/{number}", NewAccountHandler(ledger, slog.Default()).GetCard)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cards/4000000000000010", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to look up card", decodeError(t, rec))
}
