package identity

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
)

type fakeAccount struct {
	localID     string
	email       string
	password    string
	displayName string
	photoURL    string
	disabled    bool
	providers   map[string]string
}

// fakeIdentity emulates relyingparty and secure token endpoints
type fakeIdentity struct {
	mu            sync.Mutex
	server        *httptest.Server
	accounts      map[string]*fakeAccount
	idTokens      map[string]string
	refreshTokens map[string]string
	customTokens  map[string]string
	seq           int
	refreshed     int
	recentLogin   bool
	sent          []string
}

func newFakeIdentity() *fakeIdentity {
	ret := &fakeIdentity{
		accounts:      map[string]*fakeAccount{},
		idTokens:      map[string]string{},
		refreshTokens: map[string]string{},
		customTokens:  map[string]string{},
	}
	ret.server = httptest.NewServer(http.HandlerFunc(ret.handle))
	return ret
}

func (f *fakeIdentity) close() { f.server.Close() }

func (f *fakeIdentity) addUser(email, password string) *fakeAccount {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc := f.newAccount()
	acc.email = email
	acc.password = password
	acc.providers["password"] = email
	return acc
}

func (f *fakeIdentity) newAccount() *fakeAccount {
	f.seq++
	acc := &fakeAccount{localID: fmt.Sprintf("uid-%d", f.seq), providers: map[string]string{}}
	f.accounts[acc.localID] = acc
	return acc
}

func (f *fakeIdentity) byEmail(email string) *fakeAccount {
	for _, acc := range f.accounts {
		if acc.email == email {
			return acc
		}
	}
	return nil
}

func (f *fakeIdentity) byProvider(provider, id string) *fakeAccount {
	for _, acc := range f.accounts {
		if acc.providers[provider] == id {
			return acc
		}
	}
	return nil
}

func (f *fakeIdentity) issue(acc *fakeAccount) map[string]interface{} {
	f.seq++
	idToken := fmt.Sprintf("id-%d", f.seq)
	refreshToken := fmt.Sprintf("refresh-%d", f.seq)
	f.idTokens[idToken] = acc.localID
	f.refreshTokens[refreshToken] = acc.localID
	return map[string]interface{}{
		"localId":      acc.localID,
		"email":        acc.email,
		"idToken":      idToken,
		"refreshToken": refreshToken,
		"expiresIn":    "3600",
	}
}

func (f *fakeIdentity) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	if name == "token" {
		f.token(w, r)
		return
	}
	request := map[string]interface{}{}
	_ = json.NewDecoder(r.Body).Decode(&request)
	text := func(key string) string {
		ret, _ := request[key].(string)
		return ret
	}
	current := func() (*fakeAccount, string) {
		localID, ok := f.idTokens[text("idToken")]
		if !ok {
			return nil, "INVALID_ID_TOKEN"
		}
		return f.accounts[localID], ""
	}
	var response map[string]interface{}
	reason := ""
	switch name {
	case "verifyPassword":
		acc := f.byEmail(text("email"))
		switch {
		case acc == nil:
			reason = "EMAIL_NOT_FOUND"
		case acc.disabled:
			reason = "USER_DISABLED"
		case acc.password != text("password"):
			reason = "INVALID_PASSWORD"
		default:
			response = f.issue(acc)
		}
	case "signupNewUser":
		email := text("email")
		switch {
		case email != "" && f.byEmail(email) != nil:
			reason = "EMAIL_EXISTS"
		case email != "" && len(text("password")) < 6:
			reason = "WEAK_PASSWORD : Password should be at least 6 characters"
		default:
			acc := f.newAccount()
			if email != "" {
				acc.email = email
				acc.password = text("password")
				acc.providers["password"] = email
			}
			response = f.issue(acc)
		}
	case "getAccountInfo":
		acc, failure := current()
		if reason = failure; acc != nil {
			var providers []map[string]interface{}
			for _, provider := range providerIDs(acc) {
				providers = append(providers, map[string]interface{}{"providerId": provider})
			}
			response = map[string]interface{}{"users": []map[string]interface{}{{
				"localId":          acc.localID,
				"email":            acc.email,
				"displayName":      acc.displayName,
				"photoUrl":         acc.photoURL,
				"providerUserInfo": providers,
			}}}
		}
	case "getOobConfirmationCode":
		if text("requestType") == "PASSWORD_RESET" {
			if f.byEmail(text("email")) == nil {
				reason = "EMAIL_NOT_FOUND"
				break
			}
			f.sent = append(f.sent, "reset:"+text("email"))
		} else {
			acc, failure := current()
			if reason = failure; acc != nil {
				f.sent = append(f.sent, "verify:"+acc.email)
			}
		}
		response = map[string]interface{}{"email": text("email")}
	case "createAuthUri":
		var providers []string
		if acc := f.byEmail(text("identifier")); acc != nil {
			providers = providerIDs(acc)
		}
		response = map[string]interface{}{"allProviders": providers, "registered": len(providers) > 0}
	case "setAccountInfo":
		acc, failure := current()
		if reason = failure; acc == nil {
			break
		}
		if f.recentLogin && (text("password") != "" || text("email") != "") {
			reason = "CREDENTIAL_TOO_OLD_LOGIN_AGAIN"
			break
		}
		if password := text("password"); password != "" {
			if len(password) < 6 {
				reason = "WEAK_PASSWORD : Password should be at least 6 characters"
				break
			}
			acc.password = password
		}
		if email := text("email"); email != "" {
			acc.email = email
		}
		if acc.password != "" {
			acc.providers["password"] = acc.email
		}
		if value, ok := request["displayName"]; ok {
			acc.displayName = value.(string)
		}
		if value, ok := request["photoUrl"]; ok {
			acc.photoURL = value.(string)
		}
		for _, item := range list(request["deleteAttribute"]) {
			switch item {
			case "DISPLAY_NAME":
				acc.displayName = ""
			case "PHOTO_URL":
				acc.photoURL = ""
			}
		}
		for _, item := range list(request["deleteProvider"]) {
			delete(acc.providers, item)
		}
		response = f.issue(acc)
	case "deleteAccount":
		acc, failure := current()
		if reason = failure; acc != nil {
			if f.recentLogin {
				reason = "CREDENTIAL_TOO_OLD_LOGIN_AGAIN"
				break
			}
			delete(f.accounts, acc.localID)
			response = map[string]interface{}{}
		}
	case "verifyCustomToken":
		uid, ok := f.customTokens[text("token")]
		if !ok {
			reason = "INVALID_CUSTOM_TOKEN"
			break
		}
		acc, ok := f.accounts[uid]
		if !ok {
			acc = &fakeAccount{localID: uid, providers: map[string]string{}}
			f.accounts[uid] = acc
		}
		response = f.issue(acc)
		delete(response, "localId")
	case "verifyAssertion":
		values, _ := url.ParseQuery(text("postBody"))
		provider := values.Get("providerId")
		federated := values.Get("id_token") + values.Get("access_token")
		owner := f.byProvider(provider, federated)
		if text("idToken") != "" {
			acc, failure := current()
			if reason = failure; acc == nil {
				break
			}
			if owner != nil && owner != acc {
				reason = "FEDERATED_USER_ID_ALREADY_LINKED"
				break
			}
			acc.providers[provider] = federated
			response = f.issue(acc)
			break
		}
		if owner == nil {
			owner = f.newAccount()
			owner.providers[provider] = federated
		}
		f.recentLogin = false
		response = f.issue(owner)
	default:
		http.NotFound(w, r)
		return
	}
	if name == "verifyPassword" && reason == "" {
		f.recentLogin = false
	}
	w.Header().Set("Content-Type", "application/json")
	if reason != "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": map[string]interface{}{
			"code":    400,
			"message": reason,
			"errors":  []map[string]interface{}{{"message": reason, "domain": "global", "reason": "invalid"}},
		}})
		return
	}
	_ = json.NewEncoder(w).Encode(response)
}

func (f *fakeIdentity) token(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	w.Header().Set("Content-Type", "application/json")
	localID, ok := f.refreshTokens[r.PostForm.Get("refresh_token")]
	if r.PostForm.Get("grant_type") != "refresh_token" || !ok {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_REFRESH_TOKEN","status":"INVALID_ARGUMENT"}}`))
		return
	}
	f.refreshed++
	issued := f.issue(f.accounts[localID])
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token":  issued["idToken"],
		"id_token":      issued["idToken"],
		"refresh_token": issued["refreshToken"],
		"expires_in":    "3600",
		"token_type":    "Bearer",
		"user_id":       localID,
	})
}

func providerIDs(acc *fakeAccount) []string {
	var ret []string
	for provider := range acc.providers {
		ret = append(ret, provider)
	}
	sort.Strings(ret)
	return ret
}

func list(value interface{}) []string {
	items, _ := value.([]interface{})
	var ret []string
	for _, item := range items {
		ret = append(ret, fmt.Sprint(item))
	}
	return ret
}
