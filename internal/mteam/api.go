// Package mteam holds the team and team-member calls of the PMS API,
// grouped by the role namespace that exposes them.
//
// Each endpoint keeps its own envelope: some answer {"teams": [...]} or
// {"members": [...]}, some a bare object. Nothing here assumes uniformity.
package mteam

import (
	"context"
	"net/http"

	"kyri56xcaesar/pms-dashboard/internal/gateway"
)

const (
	ProjectManagerPrefix = "/project-manager"
	TeamLeadPrefix       = "/team-lead"
	TeamMemberPrefix     = "/team-member"

	resTeams   = "teams"
	resTeam    = "team"
	resMembers = "users"
	resMember  = "user"
)

// Doer performs one gateway call. *gateway.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, call gateway.Call, out any) error
}

// ProjectManagerAPI is the /project-manager namespace.
type ProjectManagerAPI struct {
	c Doer
}

func NewProjectManagerAPI(c Doer) ProjectManagerAPI { return ProjectManagerAPI{c: c} }

// Teams lists every team. GET /teams -> {"teams": [...]}
func (a ProjectManagerAPI) Teams(ctx context.Context) ([]Team, error) {
	var env teamsEnvelope
	err := a.c.Do(ctx, gateway.Call{
		Path:     ProjectManagerPrefix + "/teams",
		Resource: resTeams,
		Op:       gateway.OpFetch,
	}, &env)

	return orEmpty(env.Teams), err
}

func (a ProjectManagerAPI) CreateTeam(ctx context.Context, in TeamInput) error {
	return a.c.Do(ctx, gateway.Call{
		Method:   http.MethodPost,
		Path:     ProjectManagerPrefix + "/create-team",
		Body:     in,
		Resource: resTeam,
		Op:       gateway.OpCreate,
	}, nil)
}

func (a ProjectManagerAPI) UpdateTeam(ctx context.Context, id string, in TeamInput) error {
	return a.c.Do(ctx, gateway.Call{
		Method:     http.MethodPut,
		Path:       ProjectManagerPrefix + "/update-team/{id}",
		PathParams: map[string]string{"id": id},
		Body:       in,
		Resource:   resTeam,
		Op:         gateway.OpUpdate,
	}, nil)
}

func (a ProjectManagerAPI) DeleteTeam(ctx context.Context, id string) error {
	return a.c.Do(ctx, gateway.Call{
		Method:     http.MethodDelete,
		Path:       ProjectManagerPrefix + "/teams/{id}",
		PathParams: map[string]string{"id": id},
		Resource:   resTeam,
		Op:         gateway.OpDelete,
	}, nil)
}

// Members lists every user. GET /team-members -> {"members": [...]}
func (a ProjectManagerAPI) Members(ctx context.Context) ([]Member, error) {
	var env membersEnvelope
	err := a.c.Do(ctx, gateway.Call{
		Path:     ProjectManagerPrefix + "/team-members",
		Resource: resMembers,
		Op:       gateway.OpFetch,
	}, &env)

	return orEmpty(env.Members), err
}

// TeamWithMembers returns one team with its members resolved. The answer is
// the bare team object, not an envelope.
func (a ProjectManagerAPI) TeamWithMembers(ctx context.Context, teamID string) (Team, error) {
	var t Team
	err := a.c.Do(ctx, gateway.Call{
		Path:       ProjectManagerPrefix + "/team-members/{team_id}",
		PathParams: map[string]string{"team_id": teamID},
		Resource:   resMembers,
		Op:         gateway.OpFetch,
	}, &t)
	t.Members = orEmpty(t.Members)

	return t, err
}

// MembersByRole lists users holding role. -> {"members": [...]}
func (a ProjectManagerAPI) MembersByRole(ctx context.Context, role string) ([]Member, error) {
	var env membersEnvelope
	err := a.c.Do(ctx, gateway.Call{
		Path:       ProjectManagerPrefix + "/team-members-by-role/{role}",
		PathParams: map[string]string{"role": role},
		Resource:   resMembers,
		Op:         gateway.OpFetch,
	}, &env)

	return orEmpty(env.Members), err
}

func (a ProjectManagerAPI) CreateMember(ctx context.Context, in MemberInput) error {
	return a.c.Do(ctx, gateway.Call{
		Method:   http.MethodPost,
		Path:     ProjectManagerPrefix + "/team-member",
		Body:     in,
		Resource: resMember,
		Op:       gateway.OpCreate,
	}, nil)
}

func (a ProjectManagerAPI) UpdateMember(ctx context.Context, id string, in MemberInput) error {
	return a.c.Do(ctx, gateway.Call{
		Method:     http.MethodPut,
		Path:       ProjectManagerPrefix + "/users/{id}",
		PathParams: map[string]string{"id": id},
		Body:       in,
		Resource:   resMember,
		Op:         gateway.OpUpdate,
	}, nil)
}

func (a ProjectManagerAPI) DeleteMember(ctx context.Context, id string) error {
	return a.c.Do(ctx, gateway.Call{
		Method:     http.MethodDelete,
		Path:       ProjectManagerPrefix + "/users/{id}",
		PathParams: map[string]string{"id": id},
		Resource:   resMember,
		Op:         gateway.OpDelete,
	}, nil)
}

// AddTeamMembers puts memberIDs into the team and makes leadID its lead.
func (a ProjectManagerAPI) AddTeamMembers(ctx context.Context, teamID, leadID string, memberIDs []string) error {
	return a.c.Do(ctx, gateway.Call{
		Method:   http.MethodPost,
		Path:     ProjectManagerPrefix + "/add-team-members",
		Query:    map[string]string{"team_id": teamID, "team_lead_id": leadID},
		Body:     MemberIDs{MemberIDs: orEmpty(memberIDs)},
		Resource: resTeam,
		Op:       gateway.OpUpdate,
	}, nil)
}

func (a ProjectManagerAPI) RemoveTeamMembers(ctx context.Context, teamID string, memberIDs []string) error {
	return a.c.Do(ctx, gateway.Call{
		Method:   http.MethodPost,
		Path:     ProjectManagerPrefix + "/remove-team-members",
		Query:    map[string]string{"team_id": teamID},
		Body:     MemberIDs{MemberIDs: orEmpty(memberIDs)},
		Resource: resTeam,
		Op:       gateway.OpUpdate,
	}, nil)
}

// TeamLeadAPI is the /team-lead namespace. A lead sees only the teams it
// leads and has no endpoint listing every user.
type TeamLeadAPI struct {
	c Doer
}

func NewTeamLeadAPI(c Doer) TeamLeadAPI { return TeamLeadAPI{c: c} }

// Teams lists the teams led by the caller. -> {"teams": [...]}
func (a TeamLeadAPI) Teams(ctx context.Context) ([]Team, error) {
	var env teamsEnvelope
	err := a.c.Do(ctx, gateway.Call{
		Path:     TeamLeadPrefix + "/teams",
		Resource: resTeams,
		Op:       gateway.OpFetch,
	}, &env)

	return orEmpty(env.Teams), err
}

// TeamMembers lists a team's members. -> {"members": [...]}
func (a TeamLeadAPI) TeamMembers(ctx context.Context, teamID string) ([]Member, error) {
	var env membersEnvelope
	err := a.c.Do(ctx, gateway.Call{
		Path:       TeamLeadPrefix + "/team-members/{team_id}",
		PathParams: map[string]string{"team_id": teamID},
		Resource:   resMembers,
		Op:         gateway.OpFetch,
	}, &env)

	return orEmpty(env.Members), err
}

func (a TeamLeadAPI) Member(ctx context.Context, id string) (Member, error) {
	var m Member
	err := a.c.Do(ctx, gateway.Call{
		Path:       TeamLeadPrefix + "/team-member/{id}",
		PathParams: map[string]string{"id": id},
		Resource:   resMember,
		Op:         gateway.OpFetch,
	}, &m)

	return m, err
}

func (a TeamLeadAPI) UpdateMember(ctx context.Context, id string, in MemberInput) error {
	return a.c.Do(ctx, gateway.Call{
		Method:     http.MethodPut,
		Path:       TeamLeadPrefix + "/team-member/{id}",
		PathParams: map[string]string{"id": id},
		Body:       in,
		Resource:   resMember,
		Op:         gateway.OpUpdate,
	}, nil)
}

func (a TeamLeadAPI) DeleteMember(ctx context.Context, id string) error {
	return a.c.Do(ctx, gateway.Call{
		Method:     http.MethodDelete,
		Path:       TeamLeadPrefix + "/team-member/{id}",
		PathParams: map[string]string{"id": id},
		Resource:   resMember,
		Op:         gateway.OpDelete,
	}, nil)
}

func (a TeamLeadAPI) AddTeamMembers(ctx context.Context, teamID string, memberIDs []string) error {
	return a.c.Do(ctx, gateway.Call{
		Method:   http.MethodPost,
		Path:     TeamLeadPrefix + "/add-team-members",
		Query:    map[string]string{"team_id": teamID},
		Body:     MemberIDs{MemberIDs: orEmpty(memberIDs)},
		Resource: resTeam,
		Op:       gateway.OpUpdate,
	}, nil)
}

// TeamMemberAPI is the /team-member namespace.
type TeamMemberAPI struct {
	c Doer
}

func NewTeamMemberAPI(c Doer) TeamMemberAPI { return TeamMemberAPI{c: c} }

// Members lists every user. -> {"members": [...]}
func (a TeamMemberAPI) Members(ctx context.Context) ([]Member, error) {
	var env membersEnvelope
	err := a.c.Do(ctx, gateway.Call{
		Path:     TeamMemberPrefix + "/team-members",
		Resource: resMembers,
		Op:       gateway.OpFetch,
	}, &env)

	return orEmpty(env.Members), err
}

func (a TeamMemberAPI) Member(ctx context.Context, id string) (Member, error) {
	var m Member
	err := a.c.Do(ctx, gateway.Call{
		Path:       TeamMemberPrefix + "/team-member/{id}",
		PathParams: map[string]string{"id": id},
		Resource:   resMember,
		Op:         gateway.OpFetch,
	}, &m)

	return m, err
}

func (a TeamMemberAPI) CreateMember(ctx context.Context, in MemberInput) error {
	return a.c.Do(ctx, gateway.Call{
		Method:   http.MethodPost,
		Path:     TeamMemberPrefix + "/team-member",
		Body:     in,
		Resource: resMember,
		Op:       gateway.OpCreate,
	}, nil)
}
