package identity

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/firebridge/sdk"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestAuthError(t *testing.T) {
	var testCases = []struct {
		description   string
		err           error
		expectCode    string
		expectMessage string
	}{
		{description: "api reason", err: &googleapi.Error{Code: 400, Message: "EMAIL_NOT_FOUND"}, expectCode: sdk.AuthUserNotFound},
		{description: "reason with detail", err: &googleapi.Error{Code: 400, Message: "WEAK_PASSWORD : Password should be at least 6 characters"}, expectCode: sdk.AuthWeakPassword, expectMessage: "Password should be at least 6 characters"},
		{description: "reason in items", err: &googleapi.Error{Code: 400, Errors: []googleapi.ErrorItem{{Message: "USER_DISABLED"}}}, expectCode: sdk.AuthUserDisabled},
		{description: "api key", err: &googleapi.Error{Code: 400, Message: "API key not valid. Please pass a valid API key."}, expectCode: sdk.AuthInvalidAPIKey},
		{description: "unknown reason", err: &googleapi.Error{Code: 400, Message: "SOMETHING_ELSE"}, expectCode: sdk.AuthInternalError},
		{description: "token endpoint", err: &oauth2.RetrieveError{Body: []byte(`{"error":{"message":"TOKEN_EXPIRED"}}`)}, expectCode: sdk.AuthUserTokenExpired},
		{description: "token endpoint code", err: &oauth2.RetrieveError{ErrorCode: "invalid_refresh_token"}, expectCode: sdk.AuthInvalidUserToken},
		{description: "network", err: &net.DNSError{Err: "no such host", Name: "example.invalid"}, expectCode: sdk.AuthNetworkRequestFailed},
		{description: "auth error", err: sdk.ErrNoCurrentUser, expectCode: sdk.AuthNoCurrentUser},
		{description: "other", err: errors.New("boom"), expectCode: sdk.AuthInternalError, expectMessage: "boom"},
	}
	for _, testCase := range testCases {
		err := authError(testCase.err)
		var authErr *sdk.AuthError
		if !assert.True(t, errors.As(err, &authErr), testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expectCode, authErr.Code, testCase.description)
		if testCase.expectMessage != "" {
			assert.Equal(t, testCase.expectMessage, authErr.Message, testCase.description)
		}
	}
	assert.Nil(t, authError(nil))
}

func TestPostBody(t *testing.T) {
	var testCases = []struct {
		description string
		credential  *sdk.Credential
		expect      string
		expectErr   bool
	}{
		{description: "google id token", credential: &sdk.Credential{Provider: sdk.ProviderGoogle, IDToken: "g1"}, expect: "id_token=g1&providerId=google.com"},
		{description: "facebook", credential: &sdk.Credential{Provider: sdk.ProviderFacebook, AccessToken: "f1"}, expect: "access_token=f1&providerId=facebook.com"},
		{description: "twitter", credential: &sdk.Credential{Provider: sdk.ProviderTwitter, AccessToken: "t1", Secret: "s1"}, expect: "access_token=t1&oauth_token_secret=s1&providerId=twitter.com"},
		{description: "missing token", credential: &sdk.Credential{Provider: sdk.ProviderGithub}, expectErr: true},
		{description: "unknown provider", credential: &sdk.Credential{Provider: "example.com", AccessToken: "x"}, expectErr: true},
		{description: "nil", expectErr: true},
	}
	for _, testCase := range testCases {
		actual, err := postBody(testCase.credential)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}
