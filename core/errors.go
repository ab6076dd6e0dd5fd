package core

import "errors"

var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenInvalidated = errors.New("token has been invalidated")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidChallenge = errors.New("invalid or expired challenge")
	ErrInvalidAddress   = errors.New("invalid ethereum address")
	ErrDIDNotFound      = errors.New("did not found")
	ErrDIDExists        = errors.New("did already registered")
	ErrDIDDeactivated   = errors.New("did has been deactivated")
	ErrRecordNotFound   = errors.New("record not found")
	ErrConsentNotFound  = errors.New("consent not found")
	ErrUnknownContract  = errors.New("unknown contract name")
	ErrInsufficientRole = errors.New("insufficient role")
)
