// Package auth serves the credential pages: sign in, sign up, sign out and
// Google federation. Accounts live in the Revelare API; this package only
// turns its answers into sessions.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/guard"
	"github.com/revelare/revelare-web/internal/session"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/internal/web/view"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/models"
	"golang.org/x/oauth2"
)

const (
	msgInvalidCredentials = "Email or password is incorrect"
	msgSignInFailed       = "Sign in failed. Please try again."
	msgMissingFields      = "Please fill in all fields"
	msgInvalidEmail       = "Invalid email format"
	msgPasswordMismatch   = "Passwords do not match!"
	msgRegistered         = "Registration successful! Redirecting to sign in..."
	msgRegisterFailed     = "Registration failed. Please try again."
)

// Authenticator is the account part of the Revelare API.
type Authenticator interface {
	SignUp(ctx context.Context, in models.SignUpRequest) (*models.AuthResponse, error)
	SignIn(ctx context.Context, in models.SignInRequest) (*models.AuthResponse, error)
	GoogleAuth(ctx context.Context, in models.GoogleAuthRequest) (*models.AuthResponse, error)
}

type Handler struct {
	api         Authenticator
	sessions    *session.Manager
	oauth       *oauth2.Config
	userInfoURL string
	log         *logger.Logger
}

func NewHandler(api Authenticator, sessions *session.Manager, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}
	h := &Handler{
		api:         api,
		sessions:    sessions,
		userInfoURL: opts.UserInfoURL,
		log:         opts.Logger.WithContext("component", "auth"),
	}
	if h.userInfoURL == "" {
		h.userInfoURL = googleUserInfoURL
	}
	h.oauth = opts.oauthConfig()
	return h
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/signin", h.SignInPage)
	r.POST("/signin", h.SignIn)
	r.GET("/signup", h.SignUpPage)
	r.POST("/signup", h.SignUp)
	r.POST("/signout", h.SignOut)
	r.GET("/auth/google", h.GoogleStart)
	r.GET("/auth/google/callback", h.GoogleCallback)
}

func (h *Handler) googleURL(callback string) string {
	if h.oauth == nil {
		return ""
	}
	if callback == "" {
		return "/auth/google"
	}
	return "/auth/google?callbackUrl=" + url.QueryEscape(callback)
}

func (h *Handler) renderSignIn(c *gin.Context, status int, email, callback, errMsg string) {
	view.Render(c, status, "signin", gin.H{
		"Title":     "Sign in",
		"Email":     email,
		"Callback":  callback,
		"Error":     errMsg,
		"GoogleURL": h.googleURL(callback),
	})
}

func (h *Handler) SignInPage(c *gin.Context) {
	callback := guard.SafeCallback(c.Query("callbackUrl"))
	if u := guard.CurrentUser(c); u.IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, guard.LandingFor(u, callback))
		return
	}
	h.renderSignIn(c, http.StatusOK, "", callback, "")
}

// SignIn exchanges credentials for a session. Wrong credentials re-render
// the form without touching the session cookie.
func (h *Handler) SignIn(c *gin.Context) {
	callback := guard.SafeCallback(c.PostForm("callbackUrl"))
	var req models.SignInRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderSignIn(c, http.StatusBadRequest, req.Email, callback, msgMissingFields)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	resp, err := h.api.SignIn(c.Request.Context(), req)
	switch {
	case errors.Is(err, upstream.ErrInvalidCredentials):
		h.log.Info("signin_rejected", "email", req.Email)
		h.renderSignIn(c, http.StatusUnauthorized, req.Email, callback, msgInvalidCredentials)
		return
	case err != nil:
		h.log.Warn("signin_failed", "email", req.Email, "error", err.Error())
		h.renderSignIn(c, http.StatusBadGateway, req.Email, callback, msgSignInFailed)
		return
	}
	h.startSession(c, resp, callback)
}

func (h *Handler) startSession(c *gin.Context, resp *models.AuthResponse, callback string) {
	u := resp.Session()
	if err := h.sessions.SignIn(c, u); err != nil {
		h.log.Error("session_issue_failed", "user_id", u.ID, "error", err.Error())
		h.renderSignIn(c, http.StatusBadGateway, u.Email, callback, msgSignInFailed)
		return
	}
	c.Redirect(http.StatusSeeOther, guard.LandingFor(&u, callback))
}

func (h *Handler) renderSignUp(c *gin.Context, status int, name, email, errMsg string) {
	view.Render(c, status, "signup", gin.H{
		"Title": "Sign up",
		"Name":  name,
		"Email": email,
		"Error": errMsg,
	})
}

func (h *Handler) SignUpPage(c *gin.Context) {
	if u := guard.CurrentUser(c); u.IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, guard.LandingFor(u, ""))
		return
	}
	h.renderSignUp(c, http.StatusOK, "", "", "")
}

// SignUp registers an account and sends the visitor to sign in. The
// password confirmation is checked before any call.
func (h *Handler) SignUp(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	if c.PostForm("password") != c.PostForm("confirm_password") {
		h.renderSignUp(c, http.StatusUnprocessableEntity, name, email, msgPasswordMismatch)
		return
	}
	var req models.SignUpRequest
	if err := c.ShouldBind(&req); err != nil {
		msg := msgMissingFields
		if email != "" {
			if _, perr := mail.ParseAddress(email); perr != nil {
				msg = msgInvalidEmail
			}
		}
		h.renderSignUp(c, http.StatusUnprocessableEntity, name, email, msg)
		return
	}
	req.Name, req.Email = name, email

	if _, err := h.api.SignUp(c.Request.Context(), req); err != nil {
		h.log.Warn("signup_failed", "email", email, "error", err.Error())
		h.renderSignUp(c, http.StatusBadGateway, name, email, msgRegisterFailed)
		return
	}
	h.log.Info("signup_succeeded", "email", email)
	view.SetFlash(c, view.FlashSuccess, msgRegistered)
	c.Redirect(http.StatusSeeOther, guard.SignInPath)
}

func (h *Handler) SignOut(c *gin.Context) {
	h.sessions.Terminate(c, "signout")
	c.Redirect(http.StatusSeeOther, guard.SignInPath)
}
