package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/revelare/revelare-web/internal/guard"
	"github.com/revelare/revelare-web/pkg/config"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	stateCookie       = "revelare_oauth_state"
	msgGoogleFailed   = "Google sign-in failed. Please try again."
)

type Options struct {
	Google    config.Google
	PublicURL string
	// Endpoint and UserInfoURL default to Google's.
	Endpoint    *oauth2.Endpoint
	UserInfoURL string
	Logger      *logger.Logger
}

func (o Options) oauthConfig() *oauth2.Config {
	if !o.Google.Enabled() {
		return nil
	}
	ep := endpoints.Google
	if o.Endpoint != nil {
		ep = *o.Endpoint
	}
	return &oauth2.Config{
		ClientID:     o.Google.ClientID,
		ClientSecret: o.Google.ClientSecret,
		Endpoint:     ep,
		RedirectURL:  strings.TrimRight(o.PublicURL, "/") + "/auth/google/callback",
		Scopes:       []string{"openid", "email", "profile"},
	}
}

// GoogleStart redirects to the consent screen. The state and the callback
// travel in a short lived cookie.
func (h *Handler) GoogleStart(c *gin.Context) {
	if h.oauth == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "google sign-in is not configured"})
		return
	}
	state := uuid.NewString()
	callback := guard.SafeCallback(c.Query("callbackUrl"))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state+"|"+callback, 600, "/auth/google", "", false, true)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

type googleProfile struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleCallback verifies the state, fetches the Google profile and trades
// it for a Revelare account.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.oauth == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "google sign-in is not configured"})
		return
	}
	raw, err := c.Cookie(stateCookie)
	c.SetCookie(stateCookie, "", -1, "/auth/google", "", false, true)
	state, callback, _ := strings.Cut(raw, "|")
	if err != nil || state == "" || state != c.Query("state") {
		h.log.Warn("oauth_state_mismatch")
		h.renderSignIn(c, http.StatusBadRequest, "", "", msgGoogleFailed)
		return
	}
	callback = guard.SafeCallback(callback)
	if e := c.Query("error"); e != "" {
		h.log.Info("oauth_denied", "error", e)
		h.renderSignIn(c, http.StatusUnauthorized, "", callback, msgGoogleFailed)
		return
	}

	ctx := c.Request.Context()
	tok, err := h.oauth.Exchange(ctx, c.Query("code"))
	if err != nil {
		h.log.Warn("oauth_exchange_failed", "error", err.Error())
		h.renderSignIn(c, http.StatusBadGateway, "", callback, msgGoogleFailed)
		return
	}
	profile, err := h.fetchProfile(ctx, tok)
	if err != nil {
		h.log.Warn("oauth_profile_failed", "error", err.Error())
		h.renderSignIn(c, http.StatusBadGateway, "", callback, msgGoogleFailed)
		return
	}

	resp, err := h.api.GoogleAuth(ctx, models.GoogleAuthRequest{Email: profile.Email, Name: profile.Name})
	if err != nil {
		h.log.Warn("google_auth_failed", "email", profile.Email, "error", err.Error())
		h.renderSignIn(c, http.StatusBadGateway, profile.Email, callback, msgGoogleFailed)
		return
	}
	h.startSession(c, resp, callback)
}

func (h *Handler) fetchProfile(ctx context.Context, tok *oauth2.Token) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var p googleProfile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if p.Email == "" || !p.EmailVerified {
		return nil, errors.New("google account has no verified email")
	}
	return &p, nil
}
