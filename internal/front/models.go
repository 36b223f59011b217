package front

import (
	"encoding/xml"

	"kyri56xcaesar/pms-dashboard/internal/dashboard"
	"kyri56xcaesar/pms-dashboard/internal/guard"
	"kyri56xcaesar/pms-dashboard/internal/mtask"
	"kyri56xcaesar/pms-dashboard/internal/mteam"
	"kyri56xcaesar/pms-dashboard/internal/resource"
	"kyri56xcaesar/pms-dashboard/internal/session"
)

type UserVM struct {
	ID       string       `json:"id" yaml:"id" xml:"id"`
	Username string       `json:"username" yaml:"username" xml:"username"`
	Role     session.Role `json:"role" yaml:"role" xml:"role"`
}

func userOf(s session.Session) UserVM {
	vm := UserVM{Username: s.Username(), Role: s.Role}
	if s.User != nil {
		vm.ID = s.User.ID
	}

	return vm
}

// Page is the frame every guarded view shares.
type Page struct {
	Title  string           `json:"title" yaml:"title" xml:"title"`
	Active string           `json:"active" yaml:"active" xml:"active"`
	User   UserVM           `json:"user" yaml:"user" xml:"user"`
	Menu   []guard.MenuItem `json:"menu" yaml:"menu" xml:"menu>item"`
}

func newPage(s session.Session, title, active string) Page {
	return Page{
		Title:  title,
		Active: active,
		User:   userOf(s),
		Menu:   guard.Menu(s.Role),
	}
}

type DashboardVM struct {
	XMLName xml.Name `json:"-" yaml:"-" xml:"dashboard"`

	Page `yaml:",inline"`

	TotalTeams   int                  `json:"total_teams" yaml:"total_teams" xml:"total_teams"`
	TotalTasks   int                  `json:"total_tasks" yaml:"total_tasks" xml:"total_tasks"`
	TotalMembers int                  `json:"total_members" yaml:"total_members" xml:"total_members"`
	StatusCounts map[mtask.Status]int `json:"status_counts" yaml:"status_counts" xml:"-"`

	Teams   []mteam.Team   `json:"teams" yaml:"teams" xml:"teams>team"`
	Tasks   []mtask.Task   `json:"tasks" yaml:"tasks" xml:"tasks>task"`
	Members []mteam.Member `json:"members" yaml:"members" xml:"members>member"`

	Loading bool   `json:"loading" yaml:"loading" xml:"loading"`
	Error   string `json:"error" yaml:"error" xml:"error"`
}

func newDashboardVM(p Page, st dashboard.State) DashboardVM {
	return DashboardVM{
		Page:         p,
		TotalTeams:   len(st.Teams),
		TotalTasks:   len(st.Tasks),
		TotalMembers: len(st.Members),
		StatusCounts: st.StatusCounts,
		Teams:        st.Teams,
		Tasks:        st.Tasks,
		Members:      st.Members,
		Loading:      st.Loading,
		Error:        st.Error,
	}
}

// ListVM renders one collection controller's state.
type ListVM[T any] struct {
	XMLName xml.Name `json:"-" yaml:"-" xml:"list"`

	Page `yaml:",inline"`

	Items   []T    `json:"items" yaml:"items" xml:"items>item"`
	Total   int    `json:"total" yaml:"total" xml:"total"`
	Loading bool   `json:"loading" yaml:"loading" xml:"loading"`
	Error   string `json:"error" yaml:"error" xml:"error"`
}

func newListVM[T any](p Page, st resource.State[T]) ListVM[T] {
	return ListVM[T]{
		Page:    p,
		Items:   st.Items,
		Total:   len(st.Items),
		Loading: st.Loading,
		Error:   st.Error,
	}
}

// MyTasksVM is the team member's task board.
type MyTasksVM struct {
	XMLName xml.Name `json:"-" yaml:"-" xml:"my_tasks"`

	ListVM[mtask.Task] `yaml:",inline"`

	StatusCounts map[mtask.Status]int `json:"status_counts" yaml:"status_counts" xml:"-"`
}

// TeamVM is one team with its members resolved.
type TeamVM struct {
	XMLName xml.Name `json:"-" yaml:"-" xml:"team"`

	Page `yaml:",inline"`

	Team    mteam.Team     `json:"team" yaml:"team" xml:"team"`
	Members []mteam.Member `json:"members" yaml:"members" xml:"members>member"`
	Error   string         `json:"error" yaml:"error" xml:"error"`
}

type ProfileVM struct {
	XMLName xml.Name `json:"-" yaml:"-" xml:"profile"`

	Page `yaml:",inline"`

	Authenticated bool   `json:"authenticated" yaml:"authenticated" xml:"authenticated"`
	Landing       string `json:"landing" yaml:"landing" xml:"landing"`
	ExpiresAt     string `json:"expires_at,omitempty" yaml:"expires_at,omitempty" xml:"expires_at,omitempty"`
	Expired       bool   `json:"expired" yaml:"expired" xml:"expired"`
}

type LoginVM struct {
	XMLName xml.Name `json:"-" yaml:"-" xml:"login"`

	From  string `json:"from,omitempty" yaml:"from,omitempty" xml:"from,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty" xml:"error,omitempty"`
}
