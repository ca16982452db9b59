package sdk

import (
	"errors"
	"fmt"
)

// Database error codes
const (
	DatabasePermissionDenied = "permission_denied"
	DatabaseDisconnected     = "disconnected"
	DatabaseUnavailable      = "unavailable"
	DatabaseNetworkError     = "network_error"
	DatabaseWriteCanceled    = "write_canceled"
	DatabaseInvalidToken     = "invalid_token"
	DatabaseUnknown          = "unknown_error"
)

// Auth error codes
const (
	AuthUserDisabled               = "user-disabled"
	AuthUserNotFound               = "user-not-found"
	AuthInvalidEmail               = "invalid-email"
	AuthWrongPassword              = "wrong-password"
	AuthWeakPassword               = "weak-password"
	AuthEmailAlreadyInUse          = "email-already-in-use"
	AuthRequiresRecentLogin        = "requires-recent-login"
	AuthCredentialAlreadyInUse     = "credential-already-in-use"
	AuthInvalidCredential          = "invalid-credential"
	AuthInvalidCustomToken         = "invalid-custom-token"
	AuthCustomTokenMismatch        = "custom-token-mismatch"
	AuthInvalidAPIKey              = "invalid-api-key"
	AuthInvalidUserToken           = "invalid-user-token"
	AuthUserTokenExpired           = "user-token-expired"
	AuthNetworkRequestFailed       = "network-request-failed"
	AuthTooManyRequests            = "too-many-requests"
	AuthOperationNotAllowed        = "operation-not-allowed"
	AuthAccountExistsWithDifferent = "account-exists-with-different-credential"
	AuthProviderAlreadyLinked      = "provider-already-linked"
	AuthNoSuchProvider             = "no-such-provider"
	AuthNoCurrentUser              = "no-current-user"
	AuthInternalError              = "internal-error"
)

// ErrNoCurrentUser is returned by user operations when nobody is signed in
var ErrNoCurrentUser = &AuthError{Code: AuthNoCurrentUser, Message: "no user is signed in"}

// DatabaseError represents realtime database failure
type DatabaseError struct {
	Code    string
	Message string
	Details string
}

func (e *DatabaseError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("database: %v: %v (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("database: %v: %v", e.Code, e.Message)
}

// NewDatabaseError creates database error
func NewDatabaseError(code, message string) *DatabaseError {
	return &DatabaseError{Code: code, Message: message}
}

// AuthError represents authentication failure
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %v: %v", e.Code, e.Message)
}

// NewAuthError creates auth error
func NewAuthError(code, message string) *AuthError {
	return &AuthError{Code: code, Message: message}
}

// QueryError represents invalid query construction
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string {
	return "query: " + e.Message
}

// IsPermissionDenied returns true if err is a permission denied database error
func IsPermissionDenied(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr) && dbErr.Code == DatabasePermissionDenied
}
