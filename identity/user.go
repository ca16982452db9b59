package identity

import (
	"context"

	"github.com/viant/firebridge/sdk"
	"golang.org/x/oauth2"
	"google.golang.org/api/identitytoolkit/v3"
)

const (
	attributeDisplayName = "DISPLAY_NAME"
	attributePhotoURL    = "PHOTO_URL"
)

// withCurrent returns current session or no current user error
func (a *Auth) withCurrent() (*session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil, sdk.ErrNoCurrentUser
	}
	ret := *a.current
	return &ret, nil
}

// idToken returns a valid id token of the current user, refreshing it when expired
func (a *Auth) idToken(ctx context.Context) (*session, string, error) {
	current, err := a.withCurrent()
	if err != nil {
		return nil, "", err
	}
	if current.token.Valid() {
		return current, current.token.AccessToken, nil
	}
	token, err := a.refresh(ctx, current)
	if err != nil {
		return nil, "", err
	}
	return current, token, nil
}

// update replaces tokens and user of the current session if uid still matches
func (a *Auth) update(uid string, token *oauth2.Token, user *sdk.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil || a.current.user.UID != uid {
		return
	}
	updated := &session{user: a.current.user, token: a.current.token}
	if token != nil {
		updated.token = token
	}
	if user != nil {
		updated.user = user
	}
	a.current = updated
}

func (a *Auth) SendEmailVerification(ctx context.Context) error {
	_, idToken, err := a.idToken(ctx)
	if err != nil {
		return err
	}
	_, err = a.relyingparty().GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "VERIFY_EMAIL",
		IdToken:     idToken,
	}).Context(ctx).Do()
	return authError(err)
}

func (a *Auth) DeleteUser(ctx context.Context) error {
	current, idToken, err := a.idToken(ctx)
	if err != nil {
		return err
	}
	if _, err = a.relyingparty().DeleteAccount(&identitytoolkit.IdentitytoolkitRelyingpartyDeleteAccountRequest{
		IdToken: idToken,
	}).Context(ctx).Do(); err != nil {
		return authError(err)
	}
	a.mu.Lock()
	deleted := a.current != nil && a.current.user.UID == current.user.UID
	if deleted {
		a.current = nil
	}
	a.mu.Unlock()
	if deleted {
		a.listeners.Notify(nil)
	}
	return nil
}

func (a *Auth) Token(ctx context.Context, forceRefresh bool) (string, error) {
	if !forceRefresh {
		_, token, err := a.idToken(ctx)
		return token, err
	}
	current, err := a.withCurrent()
	if err != nil {
		return "", err
	}
	return a.refresh(ctx, current)
}

func (a *Auth) Link(ctx context.Context, credential *sdk.Credential) (*sdk.User, error) {
	current, idToken, err := a.idToken(ctx)
	if err != nil {
		return nil, err
	}
	if credential != nil && credential.Provider == sdk.ProviderPassword {
		resp, err := a.relyingparty().SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
			IdToken:           idToken,
			Email:             credential.Email,
			Password:          credential.Password,
			ReturnSecureToken: true,
		}).Context(ctx).Do()
		if err != nil {
			return nil, authError(err)
		}
		return a.reloaded(ctx, current, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
	}
	resp, err := a.assert(ctx, credential, idToken)
	if err != nil {
		return nil, err
	}
	return a.reloaded(ctx, current, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
}

// reloaded stores tokens issued by an account change and reloads the user
func (a *Auth) reloaded(ctx context.Context, current *session, idToken, refreshToken string, expiresIn int64) (*sdk.User, error) {
	if idToken != "" {
		if refreshToken == "" {
			refreshToken = current.token.RefreshToken
		}
		a.update(current.user.UID, newToken(idToken, refreshToken, expiresIn), nil)
	}
	return a.Reload(ctx)
}

func (a *Auth) Reauthenticate(ctx context.Context, credential *sdk.Credential) error {
	current, err := a.withCurrent()
	if err != nil {
		return err
	}
	var localID, idToken, refreshToken string
	var expiresIn int64
	if credential != nil && credential.Provider == sdk.ProviderPassword {
		resp, err := a.relyingparty().VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
			Email:             credential.Email,
			Password:          credential.Password,
			ReturnSecureToken: true,
		}).Context(ctx).Do()
		if err != nil {
			return authError(err)
		}
		localID, idToken, refreshToken, expiresIn = resp.LocalId, resp.IdToken, resp.RefreshToken, resp.ExpiresIn
	} else {
		resp, err := a.assert(ctx, credential, "")
		if err != nil {
			return err
		}
		localID, idToken, refreshToken, expiresIn = resp.LocalId, resp.IdToken, resp.RefreshToken, resp.ExpiresIn
	}
	if localID != current.user.UID {
		return sdk.NewAuthError("user-mismatch", "The supplied credentials do not correspond to the previously signed in user.")
	}
	a.update(current.user.UID, newToken(idToken, refreshToken, expiresIn), nil)
	return nil
}

func (a *Auth) Reload(ctx context.Context) (*sdk.User, error) {
	current, idToken, err := a.idToken(ctx)
	if err != nil {
		return nil, err
	}
	user, err := a.lookup(ctx, idToken)
	if err != nil {
		return nil, err
	}
	a.update(current.user.UID, nil, user)
	ret := *user
	return &ret, nil
}

func (a *Auth) Unlink(ctx context.Context, providerID string) (*sdk.User, error) {
	current, idToken, err := a.idToken(ctx)
	if err != nil {
		return nil, err
	}
	linked := false
	for _, candidate := range current.user.Providers {
		if candidate == providerID {
			linked = true
		}
	}
	if !linked {
		return nil, sdk.NewAuthError(sdk.AuthNoSuchProvider, "User was not linked to an account with the given provider.")
	}
	if _, err = a.relyingparty().SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		IdToken:        idToken,
		DeleteProvider: []string{providerID},
	}).Context(ctx).Do(); err != nil {
		return nil, authError(err)
	}
	return a.Reload(ctx)
}

func (a *Auth) UpdateEmail(ctx context.Context, email string) error {
	return a.setAccountInfo(ctx, &identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{Email: email})
}

func (a *Auth) UpdatePassword(ctx context.Context, password string) error {
	return a.setAccountInfo(ctx, &identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{Password: password})
}

func (a *Auth) UpdateProfile(ctx context.Context, profile sdk.Profile) error {
	request := &identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{}
	if profile.DisplayName != nil {
		if *profile.DisplayName == "" {
			request.DeleteAttribute = append(request.DeleteAttribute, attributeDisplayName)
		} else {
			request.DisplayName = *profile.DisplayName
		}
	}
	if profile.PhotoURL != nil {
		if *profile.PhotoURL == "" {
			request.DeleteAttribute = append(request.DeleteAttribute, attributePhotoURL)
		} else {
			request.PhotoUrl = *profile.PhotoURL
		}
	}
	return a.setAccountInfo(ctx, request)
}

func (a *Auth) setAccountInfo(ctx context.Context, request *identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest) error {
	current, idToken, err := a.idToken(ctx)
	if err != nil {
		return err
	}
	request.IdToken = idToken
	request.ReturnSecureToken = true
	resp, err := a.relyingparty().SetAccountInfo(request).Context(ctx).Do()
	if err != nil {
		return authError(err)
	}
	_, err = a.reloaded(ctx, current, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
	return err
}
