package upstream

import (
	"context"
	"errors"
	"net/http"

	"github.com/revelare/revelare-web/pkg/models"
)

func (c *Client) SignUp(ctx context.Context, in models.SignUpRequest) (*models.AuthResponse, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	var out models.AuthResponse
	err = c.do(ctx, request{
		endpoint:    "signup",
		method:      http.MethodPost,
		path:        "/api/signup",
		body:        body,
		contentType: "application/json",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn exchanges credentials for a token. Any rejection of the
// credentials, including a success status without a user, is reported as
// ErrInvalidCredentials.
func (c *Client) SignIn(ctx context.Context, in models.SignInRequest) (*models.AuthResponse, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	var out models.AuthResponse
	err = c.do(ctx, request{
		endpoint:    "signin",
		method:      http.MethodPost,
		path:        "/api/signin",
		body:        body,
		contentType: "application/json",
	}, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if out.Status != "success" || out.User == nil || out.Token == "" {
		return nil, ErrInvalidCredentials
	}
	return &out, nil
}

// GoogleAuth trades a verified Google identity for a Revelare token.
func (c *Client) GoogleAuth(ctx context.Context, in models.GoogleAuthRequest) (*models.AuthResponse, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	var out models.AuthResponse
	err = c.do(ctx, request{
		endpoint:    "google_auth",
		method:      http.MethodPost,
		path:        "/api/auth/google",
		body:        body,
		contentType: "application/json",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Status != "success" || out.User == nil || out.Token == "" {
		return nil, &APIError{Endpoint: "google_auth", Status: http.StatusBadGateway, Message: "incomplete auth response"}
	}
	return &out, nil
}
