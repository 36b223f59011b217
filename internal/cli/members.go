package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kyri56xcaesar/pms-dashboard/internal/gateway"
	"kyri56xcaesar/pms-dashboard/internal/mteam"
	"kyri56xcaesar/pms-dashboard/internal/resource"
	"kyri56xcaesar/pms-dashboard/internal/session"
	"kyri56xcaesar/pms-dashboard/internal/utils"
)

type memberCtrl = resource.Controller[mteam.Member, mteam.MemberInput]

// members returns the user collection of the signed in role. Team leads
// work on one team at a time.
func (a *app) members(teamID string) (*memberCtrl, session.Session, error) {
	snap, err := a.session()
	if err != nil {
		return nil, snap, err
	}

	var src resource.Source[mteam.Member, mteam.MemberInput]
	switch {
	case snap.Role == session.RoleProjectManager:
		src = mteam.NewProjectManagerAPI(a.client).MemberSource()
	case snap.Role == session.RoleTeamLead:
		if teamID == "" {
			return nil, snap, errors.New("--team is required for team leads")
		}
		src = mteam.NewTeamLeadAPI(a.client).MemberSource(teamID)
	case snap.Role.IsMember():
		src = mteam.NewTeamMemberAPI(a.client).MemberSource()
	default:
		return nil, snap, fmt.Errorf("there is no user view for the %s role", snap.Role)
	}

	return resource.New("members", src, mteam.MemberMessages, a.log), snap, nil
}

func (a *app) showMembers(cmd *cobra.Command, st resource.State[mteam.Member]) error {
	return a.render(out(cmd), st.Items, func() table { return memberTable(st.Items) })
}

func newMembersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "members",
		Aliases: []string{"users"},
		Short:   "List and manage users",
		Long: `Project managers manage every user. Team leads manage the members of one
of their teams (--team). Team members can list users and register new ones.`,
	}

	cmd.AddCommand(
		newMembersListCommand(a),
		newMembersCreateCommand(a),
		newMembersUpdateCommand(a),
		newMembersDeleteCommand(a),
	)

	return cmd
}

func newMembersListCommand(a *app) *cobra.Command {
	var team, role string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, snap, err := a.members(team)
			if err != nil {
				return err
			}

			// project managers can ask the API directly
			if role != "" && snap.Role == session.RoleProjectManager {
				members, err := mteam.NewProjectManagerAPI(a.client).MembersByRole(cmd.Context(), role)
				if err != nil {
					return a.failed(gateway.Message(gateway.OpFetch, "users"), err)
				}

				return a.showMembers(cmd, resource.State[mteam.Member]{Items: members})
			}

			st, err := ctrl.Load(cmd.Context())
			if err != nil {
				return a.failed(st.Error, err)
			}
			if role != "" {
				st.Items = utils.Filter(st.Items, func(m mteam.Member) bool { return m.Role == role })
			}

			return a.showMembers(cmd, st)
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "team id (team leads)")
	cmd.Flags().StringVar(&role, "role", "", "only users holding this role")

	return cmd
}

type memberFlags struct {
	team     string
	name     string
	email    string
	role     string
	password string
}

func (f *memberFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.team, "team", "", "team id (team leads)")
	cmd.Flags().StringVar(&f.name, "name", "", "full name")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.role, "role", "", "project_manager, team_lead, team_member or developer")
	cmd.Flags().StringVar(&f.password, "password", "", "password, at least 6 characters")
}

func (f *memberFlags) input() mteam.MemberInput {
	return mteam.MemberInput{Name: f.name, Email: f.email, Role: f.role, Password: f.password}
}

func newMembersCreateCommand(a *app) *cobra.Command {
	var f memberFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(f.password) < 6 {
				return errors.New("--password must be at least 6 characters")
			}

			ctrl, _, err := a.members(f.team)
			if err != nil {
				return err
			}

			st, err := ctrl.Create(cmd.Context(), f.input())
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showMembers(cmd, st)
		},
	}
	f.bind(cmd)
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("role")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newMembersUpdateCommand(a *app) *cobra.Command {
	var f memberFlags

	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Update a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.members(f.team)
			if err != nil {
				return err
			}

			st, err := ctrl.Update(cmd.Context(), args[0], f.input())
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showMembers(cmd, st)
		},
	}
	f.bind(cmd)

	return cmd
}

func newMembersDeleteCommand(a *app) *cobra.Command {
	var team string

	cmd := &cobra.Command{
		Use:     "delete <user-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.members(team)
			if err != nil {
				return err
			}

			st, err := ctrl.Remove(cmd.Context(), args[0])
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showMembers(cmd, st)
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "team id (team leads)")

	return cmd
}
