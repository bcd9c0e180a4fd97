package session

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrTokenMalformed is returned when the persisted token cannot be decoded.
// It is fatal to the session: the monitor clears all state and forces logout.
var ErrTokenMalformed = errors.New("token is malformed")

// ErrNoSession is returned when an operation needs a persisted token and none
// is present.
var ErrNoSession = errors.New("no active session")

// ErrRequestInFlight is returned when a submit is attempted while a previous
// one has not settled yet. The UI disables the trigger; this is the backstop.
var ErrRequestInFlight = goerrors.New("a request is already in flight", goerrors.CategoryConflict).
	WithTextCode("REQUEST_IN_FLIGHT").
	WithCode(goerrors.CodeConflict)

// ErrInvalidTransition is returned when a flow step change is not one of the
// allowed edges.
var ErrInvalidTransition = goerrors.New("invalid flow state transition", goerrors.CategoryValidation).
	WithTextCode("INVALID_FLOW_TRANSITION").
	WithCode(goerrors.CodeBadRequest)

// ErrPasswordMismatch is the local precondition failure for the password and
// register forms. No request is sent when it fires.
var ErrPasswordMismatch = goerrors.New("passwords do not match", goerrors.CategoryValidation).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(goerrors.CodeBadRequest)

// APIError is a non-2xx response from the backend, carrying the detail
// message when the body provided one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// IsMalformedTokenError will check for decode failures on persisted tokens.
func IsMalformedTokenError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) ||
		strings.Contains(err.Error(), "token is malformed")
}
