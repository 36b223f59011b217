package session

import "strings"

type Role string

const (
	RoleProjectManager Role = "project_manager"
	RoleTeamLead       Role = "team_lead"
	RoleTeamMember     Role = "team_member"
	RoleDeveloper      Role = "developer"
	RoleSuperAdmin     Role = "super_admin"
)

// Roles lists every role the PMS API can put in a token.
var Roles = []Role{RoleProjectManager, RoleTeamLead, RoleTeamMember, RoleDeveloper, RoleSuperAdmin}

// ParseRole normalises a claim value. Unknown values are kept as-is so the
// guard can still refuse them explicitly.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

func (r Role) Known() bool {
	for _, k := range Roles {
		if r == k {
			return true
		}
	}

	return false
}

// IsMember reports whether the role gets the team member views. The PMS API
// guards its team-member namespace with "developer"; the dashboard also
// accepts "team_member".
func (r Role) IsMember() bool {
	return r == RoleTeamMember || r == RoleDeveloper
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Session is the client's view of who is logged in. Role and Token are empty
// when unset.
type Session struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	User            *User  `json:"user"`
	Role            Role   `json:"role"`
	Token           string `json:"token"`
}

// Anonymous is the logged-out state.
func Anonymous() Session {
	return Session{}
}

func (s Session) Username() string {
	if s.User == nil {
		return ""
	}

	return s.User.Username
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}

	return s
}

// valid is what rehydration accepts: an authenticated snapshot with a token.
func (s Session) valid() bool {
	return s.IsAuthenticated && s.Token != ""
}
