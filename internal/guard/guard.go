// Package guard decides role based redirects for guarded paths.
package guard

import (
	"net/url"
	"strings"

	"github.com/revelare/revelare-web/pkg/models"
)

type State int

const (
	Anonymous State = iota
	AuthenticatedUser
	AuthenticatedAdmin
)

func (s State) String() string {
	switch s {
	case AuthenticatedUser:
		return "user"
	case AuthenticatedAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

const (
	SignInPath    = "/signin"
	DashboardPath = "/dashboard"
	HomePath      = "/"
)

// Action is the outcome of a guard decision.
type Action struct {
	Allow      bool
	RedirectTo string
}

func allow() Action { return Action{Allow: true} }

func redirect(to string) Action { return Action{RedirectTo: to} }

// StateOf maps a session to a guard state. Sessions without an access
// token are anonymous.
func StateOf(u *models.SessionUser) State {
	switch {
	case !u.IsAuthenticated():
		return Anonymous
	case u.IsAdmin():
		return AuthenticatedAdmin
	default:
		return AuthenticatedUser
	}
}

// Matches reports whether path is evaluated by the guard: home, /book and
// below, /dashboard and below.
func Matches(path string) bool {
	return path == HomePath || within(path, "/book") || IsDashboard(path)
}

func IsDashboard(path string) bool {
	return within(path, DashboardPath)
}

func within(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Decide is the routing rule. Admins are confined to the dashboard, users
// are kept out of it, anonymous visitors of the dashboard are sent to sign
// in with a callback to the page they asked for.
func Decide(path string, state State) Action {
	if !Matches(path) {
		return allow()
	}
	dashboard := IsDashboard(path)
	switch state {
	case AuthenticatedAdmin:
		if !dashboard {
			return redirect(DashboardPath)
		}
	case AuthenticatedUser:
		if dashboard {
			return redirect(HomePath)
		}
	default:
		if dashboard {
			return redirect(SignInURL(path))
		}
	}
	return allow()
}

// SignInURL is the sign-in page with a callback to path.
func SignInURL(callback string) string {
	if callback == "" || callback == HomePath {
		return SignInPath
	}
	return SignInPath + "?" + url.Values{"callbackUrl": {callback}}.Encode()
}

// SafeCallback accepts only local absolute paths as post sign-in targets.
func SafeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	return raw
}

// LandingFor is where a freshly signed-in principal goes.
func LandingFor(u *models.SessionUser, callback string) string {
	state := StateOf(u)
	if cb := SafeCallback(callback); cb != "" && Decide(pathOnly(cb), state).Allow {
		return cb
	}
	if state == AuthenticatedAdmin {
		return DashboardPath
	}
	return HomePath
}

func pathOnly(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}
