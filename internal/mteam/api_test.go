package mteam

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyri56xcaesar/pms-dashboard/internal/gateway"
	"kyri56xcaesar/pms-dashboard/internal/resource"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
	Auth   string
}

// fakePMS answers every request with the body registered for "METHOD path"
// and records what it saw.
func fakePMS(t *testing.T, routes map[string]string) (*gateway.Client, *[]recorded) {
	t.Helper()
	var seen []recorded

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = append(seen, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(b),
			Auth:   r.Header.Get("Authorization"),
		})

		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Not Found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	tokens := gateway.TokenFunc(func(context.Context) string { return "h.p.s" })

	return gateway.New(srv.URL, tokens, zerolog.Nop()), &seen
}

func TestTeam_DecodesEveryIDSpelling(t *testing.T) {
	for _, raw := range []string{
		`{"team_id":"t1","name":"Core"}`,
		`{"_id":"t1","name":"Core"}`,
		`{"id":"t1","name":"Core"}`,
	} {
		var team Team
		require.NoError(t, json.Unmarshal([]byte(raw), &team))
		assert.Equal(t, "t1", team.ID, raw)
		assert.Equal(t, "Core", team.Name)
		assert.NotNil(t, team.MemberIDs)
	}
}

func TestMember_DecodesEveryIDSpelling(t *testing.T) {
	for _, raw := range []string{
		`{"member_id":"m1","name":"Bob"}`,
		`{"user_id":"m1","name":"Bob"}`,
		`{"_id":"m1","name":"Bob"}`,
		`{"id":"m1","name":"Bob"}`,
	} {
		var m Member
		require.NoError(t, json.Unmarshal([]byte(raw), &m))
		assert.Equal(t, "m1", m.ID, raw)
	}
}

func TestMember_NeverCarriesPassword(t *testing.T) {
	var m Member
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"m1","name":"Bob","password":"secret","hashed_password":"x"}`), &m))

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
	assert.NotContains(t, string(out), "password")
}

func TestTeam_MembersAsIDsOrObjects(t *testing.T) {
	var team Team
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1","members":["m1","m2"]}`), &team))
	assert.Equal(t, []string{"m1", "m2"}, team.MemberIDs)
	assert.Empty(t, team.Members)

	team = Team{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1","member_ids":["m1"],"members":[{"user_id":"m1","name":"Bob"},{"_id":"m2"}]}`), &team))
	assert.Equal(t, []string{"m1", "m2"}, team.MemberIDs)
	assert.Len(t, team.Members, 2)
}

func TestProjectManager_Teams(t *testing.T) {
	c, seen := fakePMS(t, map[string]string{
		"GET /project-manager/teams": `{"teams":[{"_id":"t1","name":"Core","member_ids":["m1","m2"],"project_manager":"pm1"}]}`,
	})

	teams, err := NewProjectManagerAPI(c).Teams(context.Background())
	require.NoError(t, err)

	require.Len(t, teams, 1)
	assert.Equal(t, Team{ID: "t1", Name: "Core", MemberIDs: []string{"m1", "m2"}, ProjectManagerID: "pm1"}, teams[0])
	assert.Equal(t, "Bearer h.p.s", (*seen)[0].Auth)
}

func TestProjectManager_TeamWithMembersIsBare(t *testing.T) {
	c, _ := fakePMS(t, map[string]string{
		"GET /project-manager/team-members/t1": `{"_id":"t1","name":"Core","project_manager_name":"Alice","members":[{"_id":"m1","name":"Bob","email":"bob@pms.io","role":"developer"}]}`,
	})

	team, err := NewProjectManagerAPI(c).TeamWithMembers(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, "Alice", team.ProjectManagerName)
	assert.Equal(t, []Member{{ID: "m1", Name: "Bob", Email: "bob@pms.io", Role: "developer"}}, team.Members)
}

func TestProjectManager_MembersByRole(t *testing.T) {
	c, seen := fakePMS(t, map[string]string{
		"GET /project-manager/team-members-by-role/team_lead": `{"members":[{"member_id":"l1","name":"Lee","role":"team_lead"}]}`,
	})

	members, err := NewProjectManagerAPI(c).MembersByRole(context.Background(), "team_lead")
	require.NoError(t, err)
	assert.Equal(t, "l1", members[0].ID)
	assert.Equal(t, "/project-manager/team-members-by-role/team_lead", (*seen)[0].Path)
}

func TestProjectManager_MutationPaths(t *testing.T) {
	c, seen := fakePMS(t, map[string]string{
		"POST /project-manager/create-team":         `{}`,
		"PUT /project-manager/update-team/t1":       `{}`,
		"DELETE /project-manager/teams/t1":          `{}`,
		"POST /project-manager/team-member":         `{}`,
		"PUT /project-manager/users/m1":             `{}`,
		"DELETE /project-manager/users/m1":          `{}`,
		"POST /project-manager/add-team-members":    `{}`,
		"POST /project-manager/remove-team-members": `{}`,
	})
	pm := NewProjectManagerAPI(c)
	ctx := context.Background()

	require.NoError(t, pm.CreateTeam(ctx, TeamInput{Name: "Core"}))
	require.NoError(t, pm.UpdateTeam(ctx, "t1", TeamInput{Name: "Core 2"}))
	require.NoError(t, pm.DeleteTeam(ctx, "t1"))
	require.NoError(t, pm.CreateMember(ctx, MemberInput{Name: "Bob", Email: "bob@pms.io", Role: "developer", Password: "hunter22"}))
	require.NoError(t, pm.UpdateMember(ctx, "m1", MemberInput{Name: "Bobby"}))
	require.NoError(t, pm.DeleteMember(ctx, "m1"))
	require.NoError(t, pm.AddTeamMembers(ctx, "t1", "l1", []string{"m1"}))
	require.NoError(t, pm.RemoveTeamMembers(ctx, "t1", nil))

	s := *seen
	require.Len(t, s, 8)
	assert.JSONEq(t, `{"name":"Core"}`, s[0].Body)
	assert.JSONEq(t, `{"name":"Bob","email":"bob@pms.io","role":"developer","password":"hunter22"}`, s[3].Body)
	assert.JSONEq(t, `{"name":"Bobby"}`, s[4].Body)
	assert.Equal(t, "team_id=t1&team_lead_id=l1", s[6].Query)
	assert.JSONEq(t, `{"member_ids":["m1"]}`, s[6].Body)
	assert.Equal(t, "team_id=t1", s[7].Query)
	assert.JSONEq(t, `{"member_ids":[]}`, s[7].Body)
}

func TestProjectManager_FailureMessages(t *testing.T) {
	c, _ := fakePMS(t, nil)
	pm := NewProjectManagerAPI(c)
	ctx := context.Background()

	teams, err := pm.Teams(ctx)
	assert.EqualError(t, err, "Failed to fetch teams")
	assert.Empty(t, teams)

	err = pm.CreateTeam(ctx, TeamInput{Name: "Core"})
	assert.EqualError(t, err, "Failed to create team")
	assert.Equal(t, http.StatusNotFound, gateway.StatusOf(err))

	err = pm.DeleteMember(ctx, "m1")
	assert.EqualError(t, err, "Failed to delete user")
}

func TestTeamLead_Endpoints(t *testing.T) {
	c, seen := fakePMS(t, map[string]string{
		"GET /team-lead/teams":             `{"teams":[{"team_id":"t1","name":"Core"}]}`,
		"GET /team-lead/team-members/t1":   `{"members":[{"member_id":"m1","name":"Bob"}]}`,
		"GET /team-lead/team-member/m1":    `{"_id":"m1","name":"Bob"}`,
		"PUT /team-lead/team-member/m1":    `{}`,
		"DELETE /team-lead/team-member/m1": `{"message":"deleted"}`,
		"POST /team-lead/add-team-members": `{}`,
	})
	tl := NewTeamLeadAPI(c)
	ctx := context.Background()

	teams, err := tl.Teams(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", teams[0].ID)

	members, err := tl.TeamMembers(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "m1", members[0].ID)

	m, err := tl.Member(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Bob", m.Name)

	require.NoError(t, tl.UpdateMember(ctx, "m1", MemberInput{Role: "team_lead"}))
	require.NoError(t, tl.DeleteMember(ctx, "m1"))
	require.NoError(t, tl.AddTeamMembers(ctx, "t1", []string{"m2"}))

	assert.Equal(t, "team_id=t1", (*seen)[5].Query)
}

func TestTeamMember_Endpoints(t *testing.T) {
	c, _ := fakePMS(t, map[string]string{
		"GET /team-member/team-members":   `{"members":[{"member_id":"m1"},{"member_id":"m2"}]}`,
		"GET /team-member/team-member/m2": `{"_id":"m2","name":"Dee"}`,
		"POST /team-member/team-member":   `{"_id":"m3"}`,
	})
	tm := NewTeamMemberAPI(c)
	ctx := context.Background()

	members, err := tm.Members(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	m, err := tm.Member(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, "Dee", m.Name)

	require.NoError(t, tm.CreateMember(ctx, MemberInput{Name: "Eve", Email: "eve@pms.io", Role: "developer", Password: "hunter22"}))
}

func TestSources_DriveController(t *testing.T) {
	var teams = `{"teams":[]}`
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.Method + " " + r.URL.Path {
		case "GET /project-manager/teams":
			w.Write([]byte(teams))
		case "POST /project-manager/create-team":
			teams = `{"teams":[{"_id":"t1","name":"Core"}]}`
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	pm := NewProjectManagerAPI(gateway.New(srv.URL, nil, zerolog.Nop()))
	ctrl := resource.New("teams", pm.TeamSource(), TeamMessages, zerolog.Nop())

	st, err := ctrl.Create(context.Background(), TeamInput{Name: "Core"})
	require.NoError(t, err)
	assert.Equal(t, []Team{{ID: "t1", Name: "Core", MemberIDs: []string{}}}, st.Items)
	assert.Equal(t, 2, calls)

	st, err = ctrl.Remove(context.Background(), "t1")
	require.Error(t, err)
	assert.Equal(t, "Failed to delete team", st.Error)
	assert.Equal(t, 3, calls)
}

func TestTeamLeadSources_AreReadMostly(t *testing.T) {
	tl := NewTeamLeadAPI(nil)

	ctrl := resource.New("teams", tl.TeamSource(), TeamMessages, zerolog.Nop())
	_, err := ctrl.Create(context.Background(), TeamInput{Name: "x"})
	assert.True(t, errors.Is(err, resource.ErrUnsupported))

	members := resource.New("members", tl.MemberSource("t1"), MemberMessages, zerolog.Nop())
	_, err = members.Create(context.Background(), MemberInput{})
	assert.ErrorIs(t, err, resource.ErrUnsupported)
}
