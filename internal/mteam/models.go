package mteam

import (
	"encoding/json"
	"slices"

	"kyri56xcaesar/pms-dashboard/internal/utils"
)

// Team is the read model of a team. The PMS API names the id team_id, _id
// or id depending on the endpoint and on whether it serializes by alias.
type Team struct {
	ID                 string   `json:"id" yaml:"id" xml:"id,attr"`
	Name               string   `json:"name" yaml:"name" xml:"name"`
	ProjectManagerID   string   `json:"project_manager_id,omitempty" yaml:"project_manager_id,omitempty" xml:"project_manager_id,omitempty"`
	ProjectManagerName string   `json:"project_manager_name,omitempty" yaml:"project_manager_name,omitempty" xml:"project_manager_name,omitempty"`
	MemberIDs          []string `json:"member_ids" yaml:"member_ids" xml:"member_ids>id"`
	Members            []Member `json:"members,omitempty" yaml:"members,omitempty" xml:"members>member,omitempty"`
}

func (t *Team) UnmarshalJSON(b []byte) error {
	var raw struct {
		TeamID             string            `json:"team_id"`
		UnderscoreID       string            `json:"_id"`
		ID                 string            `json:"id"`
		Name               string            `json:"name"`
		ProjectManager     string            `json:"project_manager"`
		ProjectManagerID   string            `json:"project_manager_id"`
		ProjectManagerName string            `json:"project_manager_name"`
		MemberIDs          []string          `json:"member_ids"`
		Members            []json.RawMessage `json:"members"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*t = Team{
		ID:                 utils.FirstNonEmpty(raw.TeamID, raw.UnderscoreID, raw.ID),
		Name:               raw.Name,
		ProjectManagerID:   utils.FirstNonEmpty(raw.ProjectManager, raw.ProjectManagerID),
		ProjectManagerName: raw.ProjectManagerName,
		MemberIDs:          raw.MemberIDs,
	}

	// members is either a list of ids or a list of member objects
	for _, m := range raw.Members {
		var id string
		if json.Unmarshal(m, &id) == nil {
			if !slices.Contains(t.MemberIDs, id) {
				t.MemberIDs = append(t.MemberIDs, id)
			}
			continue
		}

		var member Member
		if err := json.Unmarshal(m, &member); err != nil {
			return err
		}
		t.Members = append(t.Members, member)
		if member.ID != "" && !slices.Contains(t.MemberIDs, member.ID) {
			t.MemberIDs = append(t.MemberIDs, member.ID)
		}
	}
	if t.MemberIDs == nil {
		t.MemberIDs = []string{}
	}

	return nil
}

// Member is a user as the API returns it. The password never comes back.
type Member struct {
	ID    string `json:"id" yaml:"id" xml:"id,attr"`
	Name  string `json:"name" yaml:"name" xml:"name"`
	Email string `json:"email" yaml:"email" xml:"email"`
	Role  string `json:"role" yaml:"role" xml:"role"`
}

func (m *Member) UnmarshalJSON(b []byte) error {
	var raw struct {
		MemberID     string `json:"member_id"`
		UserID       string `json:"user_id"`
		UnderscoreID string `json:"_id"`
		ID           string `json:"id"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		Role         string `json:"role"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*m = Member{
		ID:    utils.FirstNonEmpty(raw.MemberID, raw.UserID, raw.UnderscoreID, raw.ID),
		Name:  raw.Name,
		Email: raw.Email,
		Role:  raw.Role,
	}

	return nil
}

// TeamInput is the body of create-team and update-team.
type TeamInput struct {
	Name           string   `json:"name,omitempty" form:"name" binding:"required,min=1,max=255"`
	MemberIDs      []string `json:"member_ids,omitempty" form:"member_ids"`
	ProjectManager string   `json:"project_manager,omitempty" form:"project_manager"`
}

// MemberInput is the write model of a user. Password is required on create
// and optional on update; it is only ever sent.
type MemberInput struct {
	Name     string `json:"name,omitempty" form:"name" binding:"required,min=1,max=255"`
	Email    string `json:"email,omitempty" form:"email" binding:"required,email"`
	Role     string `json:"role,omitempty" form:"role" binding:"required"`
	Password string `json:"password,omitempty" form:"password" binding:"omitempty,min=6,max=128"`
}

// MemberIDs is the body of add/remove team members.
type MemberIDs struct {
	MemberIDs []string `json:"member_ids"`
}

type teamsEnvelope struct {
	Teams []Team `json:"teams"`
}

type membersEnvelope struct {
	Members []Member `json:"members"`
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
