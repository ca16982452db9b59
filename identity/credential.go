package identity

import (
	"net/url"

	"github.com/viant/firebridge/sdk"
)

// postBody encodes identity provider credential the way verifyAssertion expects it
func postBody(credential *sdk.Credential) (string, error) {
	if credential == nil {
		return "", sdk.NewAuthError(sdk.AuthInvalidCredential, "The supplied auth credential is malformed or has expired.")
	}
	values := url.Values{}
	values.Set("providerId", credential.Provider)
	switch credential.Provider {
	case sdk.ProviderGoogle:
		if credential.IDToken != "" {
			values.Set("id_token", credential.IDToken)
		}
		if credential.AccessToken != "" {
			values.Set("access_token", credential.AccessToken)
		}
	case sdk.ProviderFacebook, sdk.ProviderGithub:
		values.Set("access_token", credential.AccessToken)
	case sdk.ProviderTwitter:
		values.Set("access_token", credential.AccessToken)
		values.Set("oauth_token_secret", credential.Secret)
	default:
		return "", sdk.NewAuthError(sdk.AuthInvalidCredential, "unsupported provider: "+credential.Provider)
	}
	if values.Get("id_token") == "" && values.Get("access_token") == "" {
		return "", sdk.NewAuthError(sdk.AuthInvalidCredential, "The supplied auth credential is malformed or has expired.")
	}
	return values.Encode(), nil
}
