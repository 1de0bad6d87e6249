package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes callers can branch on. Nothing beyond these codes and
// their messages ever crosses the service boundary.
const (
	CodeInvalidCredentials    = "invalid_credentials"
	CodeInvalidExternalToken  = "invalid_external_token"
	CodeDuplicateEmail        = "duplicate_email"
	CodeDuplicateHandle       = "duplicate_handle"
	CodeProviderAlreadyLinked = "provider_already_linked"
	CodeLastAuthMethod        = "last_auth_method"
	CodeAccountNotFound       = "account_not_found"
	CodeInvalidRequest        = "invalid_request"
	CodeInternal              = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From unwraps err down to the first *Error, or nil when there is none.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

func Is(err error, code string) bool {
	ae := From(err)
	return ae != nil && ae.Code == code
}

// Wrong email, wrong password and SSO-only accounts all collapse into this
// one failure so callers cannot probe which emails have accounts.
func InvalidCredentials() *Error {
	return New(http.StatusUnauthorized, CodeInvalidCredentials, errors.New("invalid credentials"))
}

func InvalidExternalToken(provider string) *Error {
	return New(http.StatusUnauthorized, CodeInvalidExternalToken, fmt.Errorf("invalid %s token", provider))
}

func DuplicateEmail() *Error {
	return New(http.StatusConflict, CodeDuplicateEmail, errors.New("email already exists"))
}

func DuplicateHandle() *Error {
	return New(http.StatusConflict, CodeDuplicateHandle, errors.New("handle already exists"))
}

func ProviderAlreadyLinked(provider string) *Error {
	return New(http.StatusConflict, CodeProviderAlreadyLinked, fmt.Errorf("%s account already linked to this user", provider))
}

func LastAuthMethod() *Error {
	return New(http.StatusConflict, CodeLastAuthMethod, errors.New("cannot unlink the only authentication method"))
}

func AccountNotFound() *Error {
	return New(http.StatusNotFound, CodeAccountNotFound, errors.New("account not found"))
}

func InvalidRequest(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidRequest, err)
}
