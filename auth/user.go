package auth

import "github.com/viant/firebridge/sdk"

// UserInfo describes a user to the scripting layer
type UserInfo struct {
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	PhotoURL      string `json:"photoURL,omitempty"`
	IsAnonymous   bool   `json:"isAnonymous"`
	EmailVerified bool   `json:"emailVerified"`
	ProviderID    string `json:"providerId"`
}

// AuthState represents authStateDidChange payload, User is false when signed out
type AuthState struct {
	App  string      `json:"app"`
	User interface{} `json:"user"`
}

func describeUser(user *sdk.User) *UserInfo {
	if user == nil {
		return nil
	}
	return &UserInfo{
		UID:           user.UID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		PhotoURL:      user.PhotoURL,
		IsAnonymous:   user.IsAnonymous,
		EmailVerified: user.EmailVerified,
		ProviderID:    user.ProviderID,
	}
}
