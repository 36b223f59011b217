package mteam

import (
	"context"

	"kyri56xcaesar/pms-dashboard/internal/resource"
)

var (
	TeamMessages   = resource.DefaultMessages(resTeams, resTeam)
	MemberMessages = resource.DefaultMessages(resMembers, resMember)
)

// TeamSource backs the project manager's team collection.
func (a ProjectManagerAPI) TeamSource() resource.Source[Team, TeamInput] {
	return resource.Source[Team, TeamInput]{
		List:   a.Teams,
		Create: a.CreateTeam,
		Update: a.UpdateTeam,
		Delete: a.DeleteTeam,
	}
}

// MemberSource backs the project manager's user collection.
func (a ProjectManagerAPI) MemberSource() resource.Source[Member, MemberInput] {
	return resource.Source[Member, MemberInput]{
		List:   a.Members,
		Create: a.CreateMember,
		Update: a.UpdateMember,
		Delete: a.DeleteMember,
	}
}

// TeamSource backs the lead's team collection. Leads cannot create, edit or
// delete teams.
func (a TeamLeadAPI) TeamSource() resource.Source[Team, TeamInput] {
	return resource.Source[Team, TeamInput]{List: a.Teams}
}

// MemberSource backs the member list of one led team. Creation goes through
// AddTeamMembers, which takes ids rather than a member, so it is absent here.
func (a TeamLeadAPI) MemberSource(teamID string) resource.Source[Member, MemberInput] {
	return resource.Source[Member, MemberInput]{
		List: func(ctx context.Context) ([]Member, error) {
			return a.TeamMembers(ctx, teamID)
		},
		Update: a.UpdateMember,
		Delete: a.DeleteMember,
	}
}

func (a TeamMemberAPI) MemberSource() resource.Source[Member, MemberInput] {
	return resource.Source[Member, MemberInput]{
		List:   a.Members,
		Create: a.CreateMember,
	}
}
