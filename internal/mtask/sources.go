package mtask

import (
	"context"

	"kyri56xcaesar/pms-dashboard/internal/resource"
)

var Messages = resource.DefaultMessages(resTasks, resTask)

func (a ProjectManagerAPI) Source() resource.Source[Task, TaskInput] {
	return resource.Source[Task, TaskInput]{
		List:   a.Tasks,
		Create: a.CreateTask,
		Update: a.UpdateTask,
		Delete: a.DeleteTask,
	}
}

// Source backs the lead's task collection. There is no delete endpoint for
// leads.
func (a TeamLeadAPI) Source() resource.Source[Task, TaskInput] {
	return resource.Source[Task, TaskInput]{
		List:   a.Tasks,
		Create: a.CreateTask,
		Update: a.UpdateTask,
	}
}

// Source backs "my tasks" for userID. Update only carries the status.
func (a TeamMemberAPI) Source(userID string) resource.Source[Task, TaskInput] {
	return resource.Source[Task, TaskInput]{
		List: func(ctx context.Context) ([]Task, error) {
			return a.Tasks(ctx, userID)
		},
		Update: func(ctx context.Context, id string, in TaskInput) error {
			return a.UpdateStatus(ctx, id, in.Status)
		},
	}
}
