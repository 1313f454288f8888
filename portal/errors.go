package portal

import "errors"

// Kind classifies user-facing failures.
type Kind string

const (
	// KindValidation is a bad form value. Reported inline, never fatal.
	KindValidation Kind = "validation"
	// KindPermission is an action the current session may not perform.
	KindPermission Kind = "permission"
	// KindAuth is a credential mismatch at login.
	KindAuth Kind = "auth"
)

// Error is returned by App operations for expected, user-caused failures.
// Storage failures never surface here; see storage.Error.
type Error struct {
	Kind    Kind
	Message string
	// Fields maps a form field to its problem, for validation errors.
	Fields map[string]string
}

func (e *Error) Error() string { return e.Message }

func newValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func newPermissionError(msg string) *Error {
	return &Error{Kind: KindPermission, Message: msg}
}

func newAuthError(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

// ErrStaleUpload completes an upload whose result no longer applies when its
// read finishes: a newer selection replaced it, or the uploader lost access.
var ErrStaleUpload = errors.New("upload discarded")

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func IsValidation(err error) bool { return isKind(err, KindValidation) }
func IsPermission(err error) bool { return isKind(err, KindPermission) }
func IsAuth(err error) bool       { return isKind(err, KindAuth) }
