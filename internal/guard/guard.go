// Package guard decides whether the current session may open a page.
//
// It gates navigation only. Every data call made behind a page is checked
// again by the PMS API against the bearer token, so nothing here is a
// security boundary.
package guard

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"kyri56xcaesar/pms-dashboard/internal/session"
)

const (
	LoginPath   = "/login"
	DefaultPath = "/"

	// SessionKey is where Middleware leaves the session it checked.
	SessionKey = "pms.session"
)

// Rule is a page's requirement. With no roles it only needs a token.
type Rule struct {
	roles []session.Role
}

func RequireAuth() Rule { return Rule{} }

func RequireRole(allowed ...session.Role) Rule {
	return Rule{roles: allowed}
}

// Roles returns the allowed set, empty for RequireAuth.
func (r Rule) Roles() []session.Role { return r.roles }

type Decision struct {
	Allow    bool
	Redirect string
}

// Check applies the rule. A missing token sends the user to the login page
// carrying origin; a token with the wrong role sends them to the default
// page.
func (r Rule) Check(s session.Session, origin string) Decision {
	if s.Token == "" {
		return Decision{Redirect: loginRedirect(origin)}
	}

	if len(r.roles) > 0 && !hasAnyRole(s.Role, r.roles...) {
		return Decision{Redirect: DefaultPath}
	}

	return Decision{Allow: true}
}

func loginRedirect(origin string) string {
	if origin == "" || origin == LoginPath {
		return LoginPath
	}

	return LoginPath + "?from=" + url.QueryEscape(origin)
}

func hasAnyRole(role session.Role, anyOf ...session.Role) bool {
	for _, allowed := range anyOf {
		if role == allowed {
			return true
		}
	}

	return false
}

// SessionSource is read on every guarded request.
type SessionSource interface {
	Snapshot() session.Session
}

// Middleware enforces rule on a gin route group.
func Middleware(src SessionSource, rule Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := src.Snapshot()

		d := rule.Check(snap, c.Request.URL.RequestURI())
		if !d.Allow {
			c.Redirect(http.StatusSeeOther, d.Redirect)
			c.Abort()

			return
		}

		c.Set(SessionKey, snap)
		c.Next()
	}
}

// SessionFrom returns the session Middleware stored, or Anonymous.
func SessionFrom(c *gin.Context) session.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return session.Anonymous()
	}
	s, _ := v.(session.Session)

	return s
}

// LandingPath is where a role goes right after login.
func LandingPath(role session.Role) string {
	switch {
	case role == session.RoleProjectManager:
		return "/dashboard"
	case role == session.RoleTeamLead:
		return "/lead/teams"
	case role.IsMember():
		return "/my-tasks"
	default:
		return DefaultPath
	}
}

// SafeReturn reports whether from can be followed after login: a local path,
// never a scheme or another host.
func SafeReturn(from string) bool {
	if from == "" || from[0] != '/' || len(from) > 1 && (from[1] == '/' || from[1] == '\\') {
		return false
	}
	u, err := url.Parse(from)

	return err == nil && u.Scheme == "" && u.Host == ""
}
