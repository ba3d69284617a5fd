package commerce

import (
	"context"
	"net/http"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/api"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/auth"
)

type UserAPI struct {
	client *api.Client
}

func NewUserAPI(client *api.Client) *UserAPI {
	return &UserAPI{client: client}
}

func (a *UserAPI) Me(ctx context.Context) (*User, error) {
	var user User
	err := a.client.Do(ctx, api.Request{
		Resource: "users.me",
		Method:   http.MethodGet,
		Path:     "/api/users/me",
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type AuthAPI struct {
	client *api.Client
}

func NewAuthAPI(client *api.Client) *AuthAPI {
	return &AuthAPI{client: client}
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

func (a *AuthAPI) Login(ctx context.Context, email, password string) (auth.TokenPair, *User, error) {
	var out loginResponse
	err := a.client.Do(ctx, api.Request{
		Resource: "auth.login",
		Method:   http.MethodPost,
		Path:     "/api/auth/login",
		Body:     map[string]string{"email": email, "password": password},
		NoAuth:   true,
	}, &out)
	if err != nil {
		return auth.TokenPair{}, nil, err
	}
	return auth.TokenPair{Access: out.AccessToken, Refresh: out.RefreshToken}, &out.User, nil
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.client.Do(ctx, api.Request{
		Resource: "auth.logout",
		Method:   http.MethodPost,
		Path:     "/api/auth/logout",
	}, nil)
}
