package apperrors

import (
	"errors"
)

var (
	// Token could not be decoded. Never surfaced past the expiry policy: it means "expired"
	ErrMalformedToken = errors.New("malformed token")

	ErrRefreshTokenMissing = errors.New("refresh token is missing")
	ErrRefreshTokenExpired = errors.New("refresh token is expired")

	// Remote authority refused the exchange (any non-success response)
	ErrRemoteRejected = errors.New("remote authority rejected refresh")
	// Remote authority could not be reached (transport error, timeout)
	ErrRemoteUnavailable = errors.New("remote authority unavailable")

	// Waiter gave up before the running refresh finished. Session is left untouched
	ErrWaitTimedOut = errors.New("wait for running refresh timed out")

	ErrStoreNotInitialized = errors.New("credential store is not initialized")
)
