package api

// CreateAccountResponse is returned once, when a card is issued. It is the
// only response that carries the PIN.
type CreateAccountResponse struct {
	CardNumber string `json:"card_number"`
	PIN        string `json:"pin"`
	Balance    int64  `json:"balance"`
}

// LoginRequest defines the payload for opening a session. Format problems in
// either field are reported as wrong credentials, not validation errors.
type LoginRequest struct {
	CardNumber string `json:"card_number" validate:"required"`
	PIN        string `json:"pin"         validate:"required"`
}

// SessionResponse carries the bearer token for a new session.
type SessionResponse struct {
	Token      string `json:"token"`
	CardNumber string `json:"card_number"`
}

// BalanceResponse reports the session account's balance.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// DepositRequest defines the payload for adding income to the session account.
type DepositRequest struct {
	Amount int64 `json:"amount" validate:"gte=0"`
}

// DepositResponse confirms a deposit and reports the new balance.
type DepositResponse struct {
	Message string `json:"message"`
	Balance int64  `json:"balance"`
}

// TransferRequest defines the payload for moving money to another card.
type TransferRequest struct {
	CardNumber string `json:"card_number" validate:"required"`
	Amount     int64  `json:"amount"      validate:"gte=0"`
}

// TransferResponse reports a transfer that went through and the new balance.
type TransferResponse struct {
	Outcome string `json:"outcome"`
	Message string `json:"message"`
	Balance int64  `json:"balance"`
}

// CardInfoResponse describes a card number without requiring a session.
type CardInfoResponse struct {
	CardNumber string `json:"card_number"`
	Valid      bool   `json:"valid"`
	Exists     bool   `json:"exists"`
	Industry   string `json:"industry,omitempty"`
	Brand      string `json:"brand,omitempty"`
}
