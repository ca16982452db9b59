package identity

import (
	"context"
	"net/url"

	"github.com/viant/firebridge/sdk"
	"golang.org/x/oauth2"
)

// refresh exchanges refresh token of the session for a new id token
func (a *Auth) refresh(ctx context.Context, current *session) (string, error) {
	if current.token.RefreshToken == "" {
		return "", sdk.NewAuthError(sdk.AuthUserTokenExpired, "The user's credential is no longer valid. The user must sign in again.")
	}
	config := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  a.tokenURL + "?key=" + url.QueryEscape(a.apiKey),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	token, err := config.TokenSource(ctx, &oauth2.Token{RefreshToken: current.token.RefreshToken}).Token()
	if err != nil {
		return "", authError(err)
	}
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		idToken = token.AccessToken
	}
	a.update(current.user.UID, &oauth2.Token{AccessToken: idToken, RefreshToken: token.RefreshToken, Expiry: token.Expiry}, nil)
	a.logger.Debug().Str("uid", current.user.UID).Msg("token refreshed")
	return idToken, nil
}
