package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"kyri56xcaesar/pms-dashboard/internal/gateway"
	"kyri56xcaesar/pms-dashboard/internal/mteam"
	"kyri56xcaesar/pms-dashboard/internal/resource"
	"kyri56xcaesar/pms-dashboard/internal/session"
	"kyri56xcaesar/pms-dashboard/internal/utils"
)

type teamCtrl = resource.Controller[mteam.Team, mteam.TeamInput]

// teams returns the team collection of the signed in role.
func (a *app) teams() (*teamCtrl, session.Session, error) {
	snap, err := a.session()
	if err != nil {
		return nil, snap, err
	}

	switch snap.Role {
	case session.RoleProjectManager:
		return resource.New("teams", mteam.NewProjectManagerAPI(a.client).TeamSource(), mteam.TeamMessages, a.log), snap, nil
	case session.RoleTeamLead:
		return resource.New("teams", mteam.NewTeamLeadAPI(a.client).TeamSource(), mteam.TeamMessages, a.log), snap, nil
	}

	return nil, snap, fmt.Errorf("there is no team view for the %s role", snap.Role)
}

func (a *app) showTeams(cmd *cobra.Command, st resource.State[mteam.Team]) error {
	return a.render(out(cmd), st.Items, func() table { return teamTable(st.Items) })
}

func newTeamsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "List and manage teams",
		Long: `Project managers see and manage every team. Team leads see the teams they
lead and can add members to them.`,
	}

	cmd.AddCommand(
		newTeamsListCommand(a),
		newTeamsShowCommand(a),
		newTeamsCreateCommand(a),
		newTeamsUpdateCommand(a),
		newTeamsDeleteCommand(a),
		newTeamsAddMembersCommand(a),
	)

	return cmd
}

func newTeamsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the teams visible to the role",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, _, err := a.teams()
			if err != nil {
				return err
			}

			st, err := ctrl.Load(cmd.Context())
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showTeams(cmd, st)
		},
	}
}

func newTeamsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <team-id>",
		Short: "Show one team with its members (project manager)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.session()
			if err != nil {
				return err
			}
			if snap.Role != session.RoleProjectManager {
				return fmt.Errorf("not available to the %s role", snap.Role)
			}

			team, err := mteam.NewProjectManagerAPI(a.client).TeamWithMembers(cmd.Context(), args[0])
			if err != nil {
				return a.failed(gateway.Message(gateway.OpFetch, "team"), err)
			}

			return a.render(out(cmd), team, func() table { return memberTable(team.Members) })
		},
	}
}

type teamFlags struct {
	name           string
	members        string
	projectManager string
}

func (f *teamFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "team name")
	cmd.Flags().StringVar(&f.members, "members", "", "comma separated member ids")
	cmd.Flags().StringVar(&f.projectManager, "project-manager", "", "project manager id")
}

func (f *teamFlags) input() mteam.TeamInput {
	in := mteam.TeamInput{Name: f.name, ProjectManager: f.projectManager}
	if f.members != "" {
		in.MemberIDs = utils.SplitFields(f.members)
	}

	return in
}

func newTeamsCreateCommand(a *app) *cobra.Command {
	var f teamFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, _, err := a.teams()
			if err != nil {
				return err
			}

			st, err := ctrl.Create(cmd.Context(), f.input())
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showTeams(cmd, st)
		},
	}
	f.bind(cmd)
	cmd.MarkFlagRequired("name")

	return cmd
}

func newTeamsUpdateCommand(a *app) *cobra.Command {
	var f teamFlags

	cmd := &cobra.Command{
		Use:   "update <team-id>",
		Short: "Update a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.teams()
			if err != nil {
				return err
			}

			st, err := ctrl.Update(cmd.Context(), args[0], f.input())
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showTeams(cmd, st)
		},
	}
	f.bind(cmd)

	return cmd
}

func newTeamsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <team-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a team",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.teams()
			if err != nil {
				return err
			}

			st, err := ctrl.Remove(cmd.Context(), args[0])
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showTeams(cmd, st)
		},
	}
}

func newTeamsAddMembersCommand(a *app) *cobra.Command {
	var members, lead string

	cmd := &cobra.Command{
		Use:   "add-members <team-id>",
		Short: "Add members to a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, snap, err := a.teams()
			if err != nil {
				return err
			}

			ids := utils.SplitFields(members)
			add := func(ctx context.Context) error {
				return mteam.NewTeamLeadAPI(a.client).AddTeamMembers(ctx, args[0], ids)
			}
			if snap.Role == session.RoleProjectManager {
				add = func(ctx context.Context) error {
					return mteam.NewProjectManagerAPI(a.client).AddTeamMembers(ctx, args[0], lead, ids)
				}
			}

			st, err := ctrl.Apply(cmd.Context(), gateway.Message(gateway.OpUpdate, "team"), add)
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showTeams(cmd, st)
		},
	}
	cmd.Flags().StringVar(&members, "members", "", "comma separated member ids")
	cmd.Flags().StringVar(&lead, "lead", "", "team lead id (project manager only)")
	cmd.MarkFlagRequired("members")

	return cmd
}
