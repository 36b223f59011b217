package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kyri56xcaesar/pms-dashboard/internal/gateway"
	"kyri56xcaesar/pms-dashboard/internal/mtask"
	"kyri56xcaesar/pms-dashboard/internal/resource"
	"kyri56xcaesar/pms-dashboard/internal/session"
	"kyri56xcaesar/pms-dashboard/internal/utils"
)

type taskCtrl = resource.Controller[mtask.Task, mtask.TaskInput]

// tasks returns the task collection of the signed in role: every task for
// a project manager, the team's for a lead, the caller's own otherwise.
func (a *app) tasks() (*taskCtrl, session.Session, error) {
	snap, err := a.session()
	if err != nil {
		return nil, snap, err
	}

	var src resource.Source[mtask.Task, mtask.TaskInput]
	switch {
	case snap.Role == session.RoleProjectManager:
		src = mtask.NewProjectManagerAPI(a.client).Source()
	case snap.Role == session.RoleTeamLead:
		src = mtask.NewTeamLeadAPI(a.client).Source()
	case snap.Role.IsMember():
		src = mtask.NewTeamMemberAPI(a.client).Source(a.userID(snap))
	default:
		return nil, snap, fmt.Errorf("there is no task view for the %s role", snap.Role)
	}

	return resource.New("tasks", src, mtask.Messages, a.log), snap, nil
}

func (a *app) showTasks(cmd *cobra.Command, st resource.State[mtask.Task]) error {
	return a.render(out(cmd), st.Items, func() table { return taskTable(st.Items) })
}

func newTasksCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and manage tasks",
		Long: `Project managers manage every task, team leads the tasks of their teams.
Team members see the tasks assigned to them and move them along.`,
	}

	cmd.AddCommand(
		newTasksListCommand(a),
		newTasksCreateCommand(a),
		newTasksUpdateCommand(a),
		newTasksDeleteCommand(a),
		newTasksCompleteCommand(a),
		newTasksAssignCommand(a),
	)

	return cmd
}

func newTasksListCommand(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the tasks visible to the role",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			want, err := parseStatus(status)
			if err != nil {
				return err
			}

			ctrl, _, err := a.tasks()
			if err != nil {
				return err
			}

			st, err := ctrl.Load(cmd.Context())
			if err != nil {
				return a.failed(st.Error, err)
			}
			if want != "" {
				st.Items = utils.Filter(st.Items, func(t mtask.Task) bool { return t.Status == want })
			}

			return a.showTasks(cmd, st)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only tasks in this status")

	return cmd
}

type taskFlags struct {
	title       string
	description string
	status      string
	assignedTo  string
	team        string
}

func (f *taskFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "task title")
	cmd.Flags().StringVar(&f.description, "description", "", "task description")
	cmd.Flags().StringVar(&f.status, "status", "", "unassigned, assigned, pending, in_progress or completed")
	cmd.Flags().StringVar(&f.assignedTo, "assigned-to", "", "assignee id")
	cmd.Flags().StringVar(&f.team, "team", "", "team id")
}

func (f *taskFlags) input() (mtask.TaskInput, error) {
	status, err := parseStatus(f.status)
	if err != nil {
		return mtask.TaskInput{}, err
	}

	return mtask.TaskInput{
		Title:       f.title,
		Description: f.description,
		Status:      status,
		AssignedTo:  f.assignedTo,
		TeamID:      f.team,
	}, nil
}

func parseStatus(s string) (mtask.Status, error) {
	if s == "" {
		return "", nil
	}
	status, ok := mtask.ParseStatus(s)
	if !ok {
		return "", fmt.Errorf("unknown status %q", s)
	}

	return status, nil
}

func newTasksCreateCommand(a *app) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}

			ctrl, _, err := a.tasks()
			if err != nil {
				return err
			}

			st, err := ctrl.Create(cmd.Context(), in)
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showTasks(cmd, st)
		},
	}
	f.bind(cmd)
	cmd.MarkFlagRequired("title")

	return cmd
}

func newTasksUpdateCommand(a *app) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task; members can only change its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}

			ctrl, snap, err := a.tasks()
			if err != nil {
				return err
			}
			if snap.Role.IsMember() && in.Status == "" {
				return errors.New("--status is required")
			}

			st, err := ctrl.Update(cmd.Context(), args[0], in)
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showTasks(cmd, st)
		},
	}
	f.bind(cmd)

	return cmd
}

func newTasksDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task (project manager)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.tasks()
			if err != nil {
				return err
			}

			st, err := ctrl.Remove(cmd.Context(), args[0])
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showTasks(cmd, st)
		},
	}
}

func newTasksCompleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.tasks()
			if err != nil {
				return err
			}

			st, err := ctrl.Update(cmd.Context(), args[0], mtask.TaskInput{Status: mtask.StatusCompleted})
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showTasks(cmd, st)
		},
	}
}

func newTasksAssignCommand(a *app) *cobra.Command {
	var to, status string

	cmd := &cobra.Command{
		Use:   "assign <task-id>",
		Short: "Assign a task to a member (team lead)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseStatus(status)
			if err != nil {
				return err
			}

			ctrl, snap, err := a.tasks()
			if err != nil {
				return err
			}
			if snap.Role != session.RoleTeamLead {
				return fmt.Errorf("not available to the %s role", snap.Role)
			}

			in := mtask.AssignInput{AssignedTo: to, Status: s}
			st, err := ctrl.Apply(cmd.Context(), gateway.Message(gateway.OpAssign, "task"), func(ctx context.Context) error {
				return mtask.NewTeamLeadAPI(a.client).AssignTask(ctx, args[0], in)
			})
			if err != nil {
				return a.failed(st.Error, err)
			}

			return a.showTasks(cmd, st)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "member id")
	cmd.Flags().StringVar(&status, "status", string(mtask.StatusAssigned), "status after assignment")
	cmd.MarkFlagRequired("to")

	return cmd
}
