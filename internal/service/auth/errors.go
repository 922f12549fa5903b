package auth

import "errors"

// Token validation failures. Callers match them with errors.Is; the
// middleware maps every one of them to 401.
var (
	ErrInvalidToken     = errors.New("session token is malformed or has a bad signature")
	ErrExpiredToken     = errors.New("session token expired")
	ErrTokenNotYetValid = errors.New("session token used before its not-before time")
	ErrMissingToken     = errors.New("session token missing")
)
