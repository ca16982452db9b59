package identity

import (
	"encoding/json"
	"errors"
	"net"
	"strings"

	"github.com/viant/firebridge/sdk"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// reasons maps server error messages to auth error codes
var reasons = map[string]string{
	"EMAIL_NOT_FOUND":                  sdk.AuthUserNotFound,
	"USER_NOT_FOUND":                   sdk.AuthUserNotFound,
	"INVALID_PASSWORD":                 sdk.AuthWrongPassword,
	"MISSING_PASSWORD":                 sdk.AuthWrongPassword,
	"USER_DISABLED":                    sdk.AuthUserDisabled,
	"EMAIL_EXISTS":                     sdk.AuthEmailAlreadyInUse,
	"WEAK_PASSWORD":                    sdk.AuthWeakPassword,
	"INVALID_EMAIL":                    sdk.AuthInvalidEmail,
	"MISSING_EMAIL":                    sdk.AuthInvalidEmail,
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN":   sdk.AuthRequiresRecentLogin,
	"INVALID_ID_TOKEN":                 sdk.AuthInvalidUserToken,
	"TOKEN_EXPIRED":                    sdk.AuthUserTokenExpired,
	"INVALID_REFRESH_TOKEN":            sdk.AuthInvalidUserToken,
	"INVALID_CUSTOM_TOKEN":             sdk.AuthInvalidCustomToken,
	"CREDENTIAL_MISMATCH":              sdk.AuthCustomTokenMismatch,
	"INVALID_IDP_RESPONSE":             sdk.AuthInvalidCredential,
	"FEDERATED_USER_ID_ALREADY_LINKED": sdk.AuthCredentialAlreadyInUse,
	"EMAIL_CHANGE_NEEDS_VERIFICATION":  sdk.AuthOperationNotAllowed,
	"OPERATION_NOT_ALLOWED":            sdk.AuthOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":          sdk.AuthOperationNotAllowed,
	"TOO_MANY_ATTEMPTS_TRY_LATER":      sdk.AuthTooManyRequests,
	"PROVIDER_ALREADY_LINKED":          sdk.AuthProviderAlreadyLinked,
	"NO_SUCH_PROVIDER":                 sdk.AuthNoSuchProvider,
	"INVALID_API_KEY":                  sdk.AuthInvalidAPIKey,
	"API_KEY_INVALID":                  sdk.AuthInvalidAPIKey,
}

// authError converts identity toolkit or token endpoint error into *sdk.AuthError
func authError(err error) error {
	if err == nil {
		return nil
	}
	var authErr *sdk.AuthError
	if errors.As(err, &authErr) {
		return err
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		for _, item := range apiErr.Errors {
			if message == "" {
				message = item.Message
			}
		}
		return reasonError(message)
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		body := struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}{}
		if json.Unmarshal(retrieveErr.Body, &body) == nil && body.Error.Message != "" {
			return reasonError(body.Error.Message)
		}
		if retrieveErr.ErrorCode != "" {
			return reasonError(strings.ToUpper(retrieveErr.ErrorCode))
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return sdk.NewAuthError(sdk.AuthNetworkRequestFailed, err.Error())
	}
	return sdk.NewAuthError(sdk.AuthInternalError, err.Error())
}

// reasonError maps messages like "WEAK_PASSWORD : Password should be at least 6 characters"
func reasonError(message string) error {
	reason := message
	detail := message
	if index := strings.Index(message, " : "); index != -1 {
		reason = message[:index]
		detail = message[index+3:]
	}
	reason = strings.TrimSpace(reason)
	if strings.HasPrefix(reason, "API key not valid") {
		return sdk.NewAuthError(sdk.AuthInvalidAPIKey, message)
	}
	if code, ok := reasons[reason]; ok {
		return sdk.NewAuthError(code, detail)
	}
	return sdk.NewAuthError(sdk.AuthInternalError, message)
}
