package mtask

import (
	"encoding/json"
	"strings"

	"kyri56xcaesar/pms-dashboard/internal/utils"
)

type Status string

const (
	StatusUnassigned Status = "unassigned"
	StatusAssigned   Status = "assigned"
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses in workflow order.
var Statuses = []Status{StatusUnassigned, StatusAssigned, StatusPending, StatusInProgress, StatusCompleted}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))

	return st, st.Valid()
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}

	return false
}

// Task is the read model. TeamName and TeamMember are only filled by the
// project manager's task view.
type Task struct {
	ID          string `json:"id" yaml:"id" xml:"id,attr"`
	Title       string `json:"title" yaml:"title" xml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" xml:"description,omitempty"`
	Status      Status `json:"status" yaml:"status" xml:"status"`
	AssignedTo  string `json:"assigned_to,omitempty" yaml:"assigned_to,omitempty" xml:"assigned_to,omitempty"`
	TeamID      string `json:"team_id,omitempty" yaml:"team_id,omitempty" xml:"team_id,omitempty"`
	TeamName    string `json:"team_name,omitempty" yaml:"team_name,omitempty" xml:"team_name,omitempty"`
	TeamMember  string `json:"team_member,omitempty" yaml:"team_member,omitempty" xml:"team_member,omitempty"`
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var raw struct {
		TaskID       string  `json:"task_id"`
		UnderscoreID string  `json:"_id"`
		ID           string  `json:"id"`
		Title        string  `json:"title"`
		Description  *string `json:"description"`
		Status       *string `json:"status"`
		AssignedTo   *string `json:"assigned_to"`
		TeamID       *string `json:"team_id"`
		TeamName     *string `json:"team_name"`
		TeamMember   *string `json:"team_member"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*t = Task{
		ID:          utils.FirstNonEmpty(raw.TaskID, raw.UnderscoreID, raw.ID),
		Title:       raw.Title,
		Description: deref(raw.Description),
		Status:      Status(deref(raw.Status)),
		AssignedTo:  deref(raw.AssignedTo),
		TeamID:      deref(raw.TeamID),
		TeamName:    deref(raw.TeamName),
		TeamMember:  deref(raw.TeamMember),
	}

	return nil
}

// the API sends null for unset optional fields
func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// TaskInput is the body of create and update. Empty fields are left out so
// an update only touches what was given.
type TaskInput struct {
	Title       string `json:"title,omitempty" form:"title" binding:"omitempty,min=1,max=255"`
	Description string `json:"description,omitempty" form:"description" binding:"max=2000"`
	Status      Status `json:"status,omitempty" form:"status" binding:"omitempty,oneof=unassigned assigned pending in_progress completed"`
	AssignedTo  string `json:"assigned_to,omitempty" form:"assigned_to"`
	TeamID      string `json:"team_id,omitempty" form:"team_id"`
}

// AssignInput is the body of the team lead's assign-task call.
type AssignInput struct {
	AssignedTo string `json:"assigned_to" form:"assigned_to" binding:"required"`
	Status     Status `json:"status,omitempty" form:"status" binding:"omitempty,oneof=unassigned assigned pending in_progress completed"`
}

type tasksEnvelope struct {
	Tasks []Task `json:"tasks"`
}

// CountByStatus tallies tasks per status. Every known status is present,
// zero or not; unknown values are counted under their own key.
func CountByStatus(tasks []Task) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, t := range tasks {
		counts[t.Status]++
	}

	return counts
}

func orEmpty(s []Task) []Task {
	if s == nil {
		return []Task{}
	}

	return s
}
