package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/revelare/revelare-web/internal/guard"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/metrics"
	"github.com/revelare/revelare-web/pkg/models"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrRevoked        = errors.New("session revoked")
)

const claimsKey = "session_claims"

// Claims is the signed payload of the session cookie. The upstream access
// token travels sealed, never in clear.
type Claims struct {
	jwt.RegisteredClaims
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Sealed string `json:"tok"`
}

type Options struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	Revocations  RevocationStore
	Logger       *logger.Logger
}

// Manager owns the session cookie: issuing, verifying, refreshing and
// revoking it. It is created once per process.
type Manager struct {
	signKey    []byte
	sealer     *sealer
	ttl        time.Duration
	cookieName string
	secure     bool
	revoked    RevocationStore
	log        *logger.Logger
	now        func() time.Time
}

func NewManager(opts Options) (*Manager, error) {
	if len(opts.Secret) < 32 {
		return nil, errors.New("session secret must be at least 32 characters")
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "revelare_session"
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}
	signKey, err := deriveKey([]byte(opts.Secret), "session-sign")
	if err != nil {
		return nil, err
	}
	sealKey, err := deriveKey([]byte(opts.Secret), "access-token")
	if err != nil {
		return nil, err
	}
	s, err := newSealer(sealKey)
	if err != nil {
		return nil, err
	}
	return &Manager{
		signKey:    signKey,
		sealer:     s,
		ttl:        opts.TTL,
		cookieName: opts.CookieName,
		secure:     opts.CookieSecure,
		revoked:    opts.Revocations,
		log:        opts.Logger.WithContext("component", "session"),
		now:        time.Now,
	}, nil
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a new session token for u.
func (m *Manager) Issue(u models.SessionUser) (string, *Claims, error) {
	if u.ID == "" || u.AccessToken == "" {
		return "", nil, fmt.Errorf("%w: missing id or access token", ErrInvalidSession)
	}
	now := m.now()
	jti := uuid.NewString()
	sealed, err := m.sealer.seal(u.AccessToken, jti)
	if err != nil {
		return "", nil, fmt.Errorf("seal access token: %w", err)
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Issuer:    "revelare-web",
		},
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Sealed: sealed,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return token, claims, nil
}

// Parse verifies token and returns the principal it carries.
func (m *Manager) Parse(ctx context.Context, token string) (*models.SessionUser, *Claims, error) {
	claims := &Claims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.signKey, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	now := m.now()
	if !claims.VerifyExpiresAt(now, true) || !claims.VerifyNotBefore(now, false) {
		return nil, nil, fmt.Errorf("%w: expired", ErrInvalidSession)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, nil, ErrInvalidSession
	}
	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, nil, ErrRevoked
		}
	}
	access, err := m.sealer.open(claims.Sealed, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return &models.SessionUser{
		ID:          claims.Subject,
		Name:        claims.Name,
		Email:       claims.Email,
		Role:        claims.Role,
		AccessToken: access,
	}, claims, nil
}

// Revoke stops claims from being accepted again.
func (m *Manager) Revoke(ctx context.Context, claims *Claims, reason string) error {
	if claims == nil || m.revoked == nil {
		return nil
	}
	exp := m.now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return m.revoked.Revoke(ctx, claims.ID, claims.Subject, exp, reason)
}

// needsRefresh is true once half of the lifetime has passed.
func (m *Manager) needsRefresh(c *Claims) bool {
	if c.IssuedAt == nil {
		return true
	}
	return m.now().Sub(c.IssuedAt.Time) > m.ttl/2
}

func (m *Manager) setCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, maxAge, "/", "", m.secure, true)
}

// SignIn issues a session for u and sets the cookie.
func (m *Manager) SignIn(c *gin.Context, u models.SessionUser) error {
	token, claims, err := m.Issue(u)
	if err != nil {
		return err
	}
	m.setCookie(c, token, int(m.ttl.Seconds()))
	c.Set(guard.SessionKey, &u)
	c.Set(claimsKey, claims)
	metrics.RecordSessionEvent("signin")
	m.log.Info("session_started", "user_id", u.ID, "role", u.Role, "jti", claims.ID)
	return nil
}

// Terminate revokes the current session and clears the cookie. reason is
// "signout" or "unauthorized".
func (m *Manager) Terminate(c *gin.Context, reason string) {
	if claims := ClaimsFrom(c); claims != nil {
		if err := m.Revoke(c.Request.Context(), claims, reason); err != nil {
			m.log.Error("session_revoke_failed", "jti", claims.ID, "error", err.Error())
		}
		m.log.Info("session_terminated", "user_id", claims.Subject, "jti", claims.ID, "reason", reason)
	}
	m.setCookie(c, "", -1)
	c.Set(guard.SessionKey, nil)
	c.Set(claimsKey, nil)
	metrics.RecordSessionEvent(reason)
}

// Middleware loads the session from the cookie into the context, drops
// invalid cookies and re-issues the cookie after half its lifetime.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		u, claims, err := m.Parse(c.Request.Context(), token)
		if err != nil {
			m.log.Debug("session_rejected", "error", err.Error())
			m.setCookie(c, "", -1)
			c.Next()
			return
		}
		if m.needsRefresh(claims) {
			if fresh, freshClaims, err := m.Issue(*u); err == nil {
				if err := m.Revoke(c.Request.Context(), claims, "refresh"); err != nil {
					m.log.Warn("session_refresh_revoke_failed", "jti", claims.ID, "error", err.Error())
				}
				m.setCookie(c, fresh, int(m.ttl.Seconds()))
				claims = freshClaims
				metrics.RecordSessionEvent("refresh")
			}
		}
		c.Set(guard.SessionKey, u)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the verified claims of the request, or nil.
func ClaimsFrom(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	cl, _ := v.(*Claims)
	return cl
}
