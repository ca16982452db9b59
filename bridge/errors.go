package bridge

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

// Error codes surfaced to the scripting layer
const (
	CodeInvalidQuery           = "invalid_query"
	CodeInvalidQueryParameters = "invalid_query_parameters"
	CodeSnapshotNotFound       = "snapshot_not_found"
	CodeUnknownEvent           = "unknown_event"
	CodeAppNotFound            = "app_not_found"
	CodeAppInitializeFailure   = "app_initialize_failure"
	CodeUserNotLoggedIn        = "user_not_logged_in"
	CodeCredentialNotFound     = "auth/credential-not-found"
	CodeInvalidArguments       = "invalid_arguments"
	CodeUnknownModule          = "unknown_module"
	CodeUnknownMethod          = "unknown_method"
	CodeUnknownError           = "unknown_error"

	authCodePrefix     = "auth/"
	databaseCodePrefix = "database/"
)

func bridgeError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return goerrors.New(message, category).WithTextCode(textCode)
}

// InvalidQuery reports unknown query operation
func InvalidQuery(op string) error {
	return bridgeError(fmt.Sprintf("Unknown query function '%v'", op), goerrors.CategoryBadInput, CodeInvalidQuery)
}

// InvalidQueryParameters reports wrong query operation arity or argument type
func InvalidQueryParameters(format string, args ...interface{}) error {
	return bridgeError(fmt.Sprintf(format, args...), goerrors.CategoryBadInput, CodeInvalidQueryParameters)
}

// SnapshotNotFound reports snapshot handle miss
func SnapshotNotFound() error {
	return bridgeError("Snapshot not found; it may have been released.", goerrors.CategoryNotFound, CodeSnapshotNotFound)
}

// UnknownEvent reports unrecognised event kind
func UnknownEvent(name string) error {
	return bridgeError("Unknown event type "+name, goerrors.CategoryBadInput, CodeUnknownEvent)
}

// AppNotFound reports app lookup miss
func AppNotFound(name string) error {
	return bridgeError(fmt.Sprintf("No app with name %v found", name), goerrors.CategoryNotFound, CodeAppNotFound)
}

// AppInitializeFailure reports app initialisation failure
func AppInitializeFailure(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, "App initialization failed").WithTextCode(CodeAppInitializeFailure)
}

// UserNotLoggedIn reports user operation without signed in user
func UserNotLoggedIn() error {
	return bridgeError("User not logged in", goerrors.CategoryAuth, CodeUserNotLoggedIn)
}

// CredentialNotFound reports credential handle miss
func CredentialNotFound() error {
	return bridgeError("Credential not found", goerrors.CategoryNotFound, CodeCredentialNotFound)
}

// InvalidArguments reports malformed call arguments
func InvalidArguments(format string, args ...interface{}) error {
	return bridgeError(fmt.Sprintf(format, args...), goerrors.CategoryValidation, CodeInvalidArguments)
}

// Rejection represents failure delivered to the scripting layer
type Rejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r *Rejection) Error() string {
	return r.Code + ": " + r.Message
}

var mappers = []goerrors.ErrorMapper{
	mapAuthError,
	mapDatabaseError,
	mapQueryError,
	mapValueError,
	mapUnknownError,
}

// Reject maps any error onto the bridge error taxonomy
func Reject(err error) *Rejection {
	if err == nil {
		return nil
	}
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection
	}
	mapped := goerrors.MapToError(err, mappers)
	code := mapped.TextCode
	if code == "" {
		code = CodeUnknownError
	}
	return &Rejection{Code: code, Message: mapped.Message}
}

func mapAuthError(err error) *goerrors.Error {
	var authErr *sdk.AuthError
	if !errors.As(err, &authErr) {
		return nil
	}
	if authErr.Code == sdk.AuthNoCurrentUser {
		return goerrors.Wrap(err, goerrors.CategoryAuth, "User not logged in").WithTextCode(CodeUserNotLoggedIn)
	}
	return goerrors.Wrap(err, goerrors.CategoryAuth, authErr.Message).WithTextCode(authCodePrefix + authErr.Code)
}

func mapDatabaseError(err error) *goerrors.Error {
	var dbErr *sdk.DatabaseError
	if !errors.As(err, &dbErr) {
		return nil
	}
	ret := goerrors.Wrap(err, goerrors.CategoryExternal, dbErr.Message).WithTextCode(databaseCodePrefix + dbErr.Code)
	if dbErr.Details != "" {
		ret = ret.WithMetadata(map[string]any{"details": dbErr.Details})
	}
	return ret
}

func mapQueryError(err error) *goerrors.Error {
	var queryErr *sdk.QueryError
	if !errors.As(err, &queryErr) {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryBadInput, queryErr.Message).WithTextCode(CodeInvalidQueryParameters)
}

func mapValueError(err error) *goerrors.Error {
	if !errors.Is(err, shared.ErrUnsupportedValue) {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).WithTextCode(CodeInvalidArguments)
}

func mapUnknownError(err error) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()).WithTextCode(CodeUnknownError)
}
