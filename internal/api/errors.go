package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/cardledger/internal/api/shared"
	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/service"
	"github.com/phrazzld/cardledger/internal/service/auth"
	"github.com/phrazzld/cardledger/internal/store"
)

// Client-facing messages shared with the interactive CLI.
const (
	MsgWrongCredentials  = "Wrong card number or PIN!"
	MsgMistypedCard      = "Probably you made a mistake in the card number. Please try again!"
	MsgNoSuchCard        = "Such a card does not exist."
	MsgNotEnoughMoney    = "Not enough money!"
	MsgSessionGone       = "Session expired or logged out"
	MsgUnexpected        = "An unexpected error occurred"
	MsgAccountClosed     = "The account has been closed!"
	MsgLoggedOut         = "You have successfully logged out!"
	MsgIncomeAdded       = "Income was added!"
	MsgTransferSucceeded = "Success!"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing the error itself.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrNoActiveSession),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, domain.ErrMalformedCardNumber),
		errors.Is(err, domain.ErrInvalidIndustryCode),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPIN),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrNegativeBalance):
		return http.StatusUnprocessableEntity

	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpected
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return MsgWrongCredentials

	case errors.Is(err, service.ErrNoActiveSession),
		errors.Is(err, service.ErrSessionNotFound):
		return MsgSessionGone

	case errors.Is(err, store.ErrAccountNotFound):
		return MsgNoSuchCard

	case errors.Is(err, store.ErrDuplicateAccount):
		return "Account already exists"

	case errors.Is(err, store.ErrConflict):
		return "The account was changed concurrently, please retry"

	case errors.Is(err, domain.ErrMalformedCardNumber),
		errors.Is(err, domain.ErrInvalidIndustryCode):
		return MsgMistypedCard

	case errors.Is(err, domain.ErrInvalidAmount):
		return "Amount must not be negative"

	case errors.Is(err, domain.ErrNegativeBalance):
		return MsgNotEnoughMoney

	case errors.Is(err, store.ErrUnavailable):
		return "Storage is temporarily unavailable"

	default:
		return MsgUnexpected
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted error. A non-empty message replaces the mapped one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns validator failures into a short message
// naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("Invalid %s: %s", verrs[0].Field(), getValidationTagMessage(verrs[0].Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "gte", "min":
		return "must not be negative"
	case "len":
		return "wrong length"
	case "numeric":
		return "must contain only digits"
	default:
		return "validation failed"
	}
}
