// Package mtask holds the task calls of the PMS API per role namespace.
//
// The project manager's list is wrapped in {"tasks": [...]}; the team lead
// and team member lists are bare arrays.
package mtask

import (
	"context"
	"net/http"

	"kyri56xcaesar/pms-dashboard/internal/gateway"
)

const (
	ProjectManagerPrefix = "/project-manager"
	TeamLeadPrefix       = "/team-lead"
	TeamMemberPrefix     = "/team-member"

	resTasks = "tasks"
	resTask  = "task"
)

type Doer interface {
	Do(ctx context.Context, call gateway.Call, out any) error
}

// ProjectManagerAPI is the /project-manager task surface.
type ProjectManagerAPI struct {
	c Doer
}

func NewProjectManagerAPI(c Doer) ProjectManagerAPI { return ProjectManagerAPI{c: c} }

// Tasks returns the task view, each task joined with its team name and
// assignee name.
func (a ProjectManagerAPI) Tasks(ctx context.Context) ([]Task, error) {
	var env tasksEnvelope
	err := a.c.Do(ctx, gateway.Call{
		Path:     ProjectManagerPrefix + "/tasks",
		Resource: resTasks,
		Op:       gateway.OpFetch,
	}, &env)

	return orEmpty(env.Tasks), err
}

func (a ProjectManagerAPI) Task(ctx context.Context, id string) (Task, error) {
	var t Task
	err := a.c.Do(ctx, gateway.Call{
		Path:       ProjectManagerPrefix + "/task/{id}",
		PathParams: map[string]string{"id": id},
		Resource:   resTask,
		Op:         gateway.OpFetch,
	}, &t)

	return t, err
}

func (a ProjectManagerAPI) CreateTask(ctx context.Context, in TaskInput) error {
	return a.c.Do(ctx, gateway.Call{
		Method:   http.MethodPost,
		Path:     ProjectManagerPrefix + "/tasks",
		Body:     in,
		Resource: resTask,
		Op:       gateway.OpCreate,
	}, nil)
}

func (a ProjectManagerAPI) UpdateTask(ctx context.Context, id string, in TaskInput) error {
	return a.c.Do(ctx, gateway.Call{
		Method:     http.MethodPut,
		Path:       ProjectManagerPrefix + "/tasks/{id}",
		PathParams: map[string]string{"id": id},
		Body:       in,
		Resource:   resTask,
		Op:         gateway.OpUpdate,
	}, nil)
}

func (a ProjectManagerAPI) DeleteTask(ctx context.Context, id string) error {
	return a.c.Do(ctx, gateway.Call{
		Method:     http.MethodDelete,
		Path:       ProjectManagerPrefix + "/tasks/{id}",
		PathParams: map[string]string{"id": id},
		Resource:   resTask,
		Op:         gateway.OpDelete,
	}, nil)
}

// TeamLeadAPI is the /team-lead task surface.
type TeamLeadAPI struct {
	c Doer
}

func NewTeamLeadAPI(c Doer) TeamLeadAPI { return TeamLeadAPI{c: c} }

// Tasks lists the tasks of the caller's teams. Bare array.
func (a TeamLeadAPI) Tasks(ctx context.Context) ([]Task, error) {
	var out []Task
	err := a.c.Do(ctx, gateway.Call{
		Path:     TeamLeadPrefix + "/tasks",
		Resource: resTasks,
		Op:       gateway.OpFetch,
	}, &out)

	return orEmpty(out), err
}

// TrackTasks lists every task the lead can follow. Bare array.
func (a TeamLeadAPI) TrackTasks(ctx context.Context) ([]Task, error) {
	var out []Task
	err := a.c.Do(ctx, gateway.Call{
		Path:     TeamLeadPrefix + "/track-tasks",
		Resource: resTasks,
		Op:       gateway.OpFetch,
	}, &out)

	return orEmpty(out), err
}

// CreateTask posts to /tasks/; the trailing slash is part of the route.
func (a TeamLeadAPI) CreateTask(ctx context.Context, in TaskInput) error {
	return a.c.Do(ctx, gateway.Call{
		Method:   http.MethodPost,
		Path:     TeamLeadPrefix + "/tasks/",
		Body:     in,
		Resource: resTask,
		Op:       gateway.OpCreate,
	}, nil)
}

func (a TeamLeadAPI) UpdateTask(ctx context.Context, id string, in TaskInput) error {
	return a.c.Do(ctx, gateway.Call{
		Method:     http.MethodPut,
		Path:       TeamLeadPrefix + "/update-task/{id}",
		PathParams: map[string]string{"id": id},
		Body:       in,
		Resource:   resTask,
		Op:         gateway.OpUpdate,
	}, nil)
}

func (a TeamLeadAPI) AssignTask(ctx context.Context, id string, in AssignInput) error {
	return a.c.Do(ctx, gateway.Call{
		Method:     http.MethodPost,
		Path:       TeamLeadPrefix + "/assign-task/{id}",
		PathParams: map[string]string{"id": id},
		Body:       in,
		Resource:   resTask,
		Op:         gateway.OpAssign,
	}, nil)
}

// TeamMemberAPI is the /team-member task surface.
type TeamMemberAPI struct {
	c Doer
}

func NewTeamMemberAPI(c Doer) TeamMemberAPI { return TeamMemberAPI{c: c} }

// Tasks lists the tasks assigned to userID. Bare array.
func (a TeamMemberAPI) Tasks(ctx context.Context, userID string) ([]Task, error) {
	var out []Task
	err := a.c.Do(ctx, gateway.Call{
		Path:     TeamMemberPrefix + "/tasks/",
		Query:    map[string]string{"assigned_to": userID},
		Resource: resTasks,
		Op:       gateway.OpFetch,
	}, &out)

	return orEmpty(out), err
}

// UpdateStatus moves a task along the workflow.
func (a TeamMemberAPI) UpdateStatus(ctx context.Context, id string, status Status) error {
	return a.c.Do(ctx, gateway.Call{
		Method:     http.MethodPut,
		Path:       TeamMemberPrefix + "/tasks/{id}",
		PathParams: map[string]string{"id": id},
		Body:       TaskInput{Status: status},
		Resource:   resTask,
		Op:         gateway.OpUpdate,
	}, nil)
}

func (a TeamMemberAPI) Complete(ctx context.Context, id string) error {
	return a.UpdateStatus(ctx, id, StatusCompleted)
}
