package domain

import (
	"errors"
	"fmt"
)

// ErrKind groups errors by how the HTTP layer reports them.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"
	KindAuth           ErrKind = "auth"
	KindForbidden      ErrKind = "forbidden"
	KindNotFound       ErrKind = "not_found"
	KindConflict       ErrKind = "conflict"
	KindBusiness       ErrKind = "business"
	KindRateLimited    ErrKind = "rate_limited"
	KindUpstream       ErrKind = "upstream"
	KindInfrastructure ErrKind = "infrastructure"
	KindInternal       ErrKind = "internal"
)

// Error is what every layer returns for failures a member can see.
// Code is part of the API contract; Message is safe to show; Cause is only logged.
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	s := string(e.Kind) + " (" + e.Code + "): " + e.Message
	if e.Cause == nil {
		return s
	}
	return s + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// With sets one meta entry and returns e for chaining.
func (e *Error) With(key, value string) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]string, 2)
	}
	e.Meta[key] = value
	return e
}

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	e := New(kind, code, msg)
	e.Cause = cause
	return e
}

// WithMeta replaces the whole meta map.
func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func as(err error) (*Error, bool) {
	var de *Error
	ok := errors.As(err, &de)
	return de, ok
}

// Is reports whether err carries a domain error with the given code.
func Is(err error, code string) bool {
	de, ok := as(err)
	return ok && de.Code == code
}

// KindOf returns the kind of a domain error, or KindInternal for anything else.
func KindOf(err error) ErrKind {
	if de, ok := as(err); ok {
		return de.Kind
	}
	return KindInternal
}

func MessageOf(err error) string {
	if de, ok := as(err); ok {
		return de.Message
	}
	return "unexpected error occurred"
}

// request input

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return New(KindValidation, "missing_field", "missing required field").With("field", field)
}

func ErrInvalidField(field, reason string) *Error {
	return New(KindValidation, "invalid_field", "invalid field").
		With("field", field).
		With("reason", reason)
}

func ErrWeakPassword(reason string) *Error {
	return New(KindValidation, "weak_password", "password does not meet requirements").With("reason", reason)
}

func ErrPasswordsMismatch() *Error {
	return New(KindValidation, "passwords_mismatch", "passwords do not match")
}

func ErrCurrentPasswordRequired() *Error {
	return New(KindValidation, "current_password_required", "current password required").
		With("field", "current_password")
}

// sign-in and sessions

func ErrInvalidCredentials() *Error {
	return New(KindAuth, "invalid_credentials", "invalid member number or password")
}

func ErrSessionMissing() *Error {
	return New(KindAuth, "session_missing", "no session provided")
}

func ErrSessionInvalid() *Error {
	return New(KindAuth, "session_invalid", "invalid or expired session")
}

func ErrSessionNotEstablished(cause error) *Error {
	return Wrap(KindAuth, "session_not_established", "failed to establish session", cause)
}

func ErrTokenInvalid() *Error {
	return New(KindAuth, "token_invalid", "invalid token")
}

func ErrTokenExpired() *Error {
	return New(KindAuth, "token_expired", "token is expired")
}

// dashboard access

func ErrForbidden() *Error {
	return New(KindForbidden, "forbidden", "forbidden")
}

func ErrInsufficientRole(required string) *Error {
	return New(KindForbidden, "insufficient_role", "insufficient role").With("required", required)
}

func ErrOriginRejected(reason string) *Error {
	return New(KindForbidden, "csrf_rejected", "cross-origin request not allowed").With("reason", reason)
}

func ErrTabNotAllowed(tab string) *Error {
	return New(KindForbidden, "tab_not_allowed", "access to this section is not allowed").With("tab", tab)
}

// ErrMemberNotFound mirrors the wording members see on the login screen.
func ErrMemberNotFound(memberNumber string) *Error {
	msg := fmt.Sprintf("Member %s not found in our records. Please check your member number or contact support.", memberNumber)
	return New(KindNotFound, "member_not_found", msg).With("member_number", memberNumber)
}

func ErrCollectorNotFound() *Error {
	return New(KindNotFound, "collector_not_found", "collector not found")
}

func ErrChangeInProgress() *Error {
	return New(KindConflict, "change_in_progress", "a password change is already in progress")
}

func ErrAccountCreateFailed(cause error) *Error {
	return Wrap(KindConflict, "account_create_failed", "Failed to create user account", cause)
}

// password change outcomes

// ErrCurrentPasswordIncorrect is what members see when the backend rejects
// the current password, whichever way it phrased the rejection.
func ErrCurrentPasswordIncorrect(cause error) *Error {
	return Wrap(KindBusiness, "current_password_incorrect", "current password incorrect", cause)
}

func ErrRemote(cause error) *Error {
	return Wrap(KindUpstream, "remote_error", "password change request failed", cause)
}

func ErrProtocol(cause error) *Error {
	return Wrap(KindUpstream, "protocol_error", "unexpected server response", cause)
}

// ErrBusiness carries a rejection reported by the backend in its own words.
// code is the backend's code when it sent one.
func ErrBusiness(code, msg string) *Error {
	if code == "" {
		code = "business_error"
	}
	if msg == "" {
		msg = "failed to change password"
	}
	return New(KindBusiness, code, msg)
}

func ErrUnexpected(cause error) *Error {
	return Wrap(KindInternal, "unexpected_error", "unexpected error occurred", cause)
}

func ErrRateLimited(scope string) *Error {
	return New(KindRateLimited, "rate_limited", "too many requests").With("scope", scope)
}

// backing services

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrRedisUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "redis_unavailable", "cache unavailable", cause)
}

func ErrRabbitUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "rabbit_unavailable", "message broker unavailable", cause)
}

func ErrCredentialStoreUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "credstore_unavailable", "authentication backend unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, "random_failed", "random generation failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
