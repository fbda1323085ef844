package gateway

import (
	"context"
	"net/http"

	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

type AuthGateway struct {
	client *Client
}

func NewAuthGateway(client *Client) *AuthGateway {
	return &AuthGateway{client: client}
}

type LoginResult struct {
	AccessToken string
	TokenType   string
	User        *model.AuthUser
}

type loginRequest struct {
	Email      string `json:"email"`
	MotDePasse string `json:"mot_de_passe"`
}

type authUserDTO struct {
	ID       flexID `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
}

func (d authUserDTO) toModel() model.AuthUser {
	name := d.Username
	if name == "" {
		name = userDTO{Nom: d.Nom, Prenom: d.Prenom, Email: d.Email}.displayName()
	}
	return model.AuthUser{ID: string(d.ID), Username: name, Email: d.Email}
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *authUserDTO `json:"user"`
}

// Login exchanges credentials for a bearer token. A rejected login does not
// fire the unauthorized hook.
func (g *AuthGateway) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out loginResponse
	err := g.client.do(ctx, request{
		method:    http.MethodPost,
		path:      "/login",
		body:      loginRequest{Email: email, MotDePasse: password},
		out:       &out,
		anonymous: true,
	})
	if err != nil {
		return LoginResult{}, err
	}

	res := LoginResult{AccessToken: out.AccessToken, TokenType: out.TokenType}
	if out.User != nil {
		u := out.User.toModel()
		res.User = &u
	}
	return res, nil
}

func (g *AuthGateway) Me(ctx context.Context) (model.AuthUser, error) {
	var out authUserDTO
	if err := g.client.do(ctx, request{method: http.MethodGet, path: "/users/me", out: &out}); err != nil {
		return model.AuthUser{}, err
	}
	return out.toModel(), nil
}
