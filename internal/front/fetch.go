package front

import (
	"github.com/rs/zerolog"

	"kyri56xcaesar/pms-dashboard/internal/dashboard"
	"kyri56xcaesar/pms-dashboard/internal/mtask"
	"kyri56xcaesar/pms-dashboard/internal/mteam"
	"kyri56xcaesar/pms-dashboard/internal/resource"
	"kyri56xcaesar/pms-dashboard/internal/session"
)

type (
	teamCtrl   = resource.Controller[mteam.Team, mteam.TeamInput]
	memberCtrl = resource.Controller[mteam.Member, mteam.MemberInput]
	taskCtrl   = resource.Controller[mtask.Task, mtask.TaskInput]
)

// Workspace is everything the pages of one session read from: the API
// namespaces of its role and one long-lived controller per collection.
// Controllers a role has no page for stay nil.
type Workspace struct {
	Session session.Session

	PMTeams   mteam.ProjectManagerAPI
	LeadTeams mteam.TeamLeadAPI
	PMTasks   mtask.ProjectManagerAPI
	LeadTasks mtask.TeamLeadAPI
	SelfTasks mtask.TeamMemberAPI

	Dashboard *dashboard.Dashboard

	// project manager
	AllTeams *teamCtrl
	Users    *memberCtrl
	AllTasks *taskCtrl

	// team lead
	LedTeams  *teamCtrl
	TeamTasks *taskCtrl

	// team member
	MyTasks *taskCtrl
}

func newWorkspace(snap session.Session, c mteam.Doer, log zerolog.Logger) *Workspace {
	w := &Workspace{
		Session:   snap,
		PMTeams:   mteam.NewProjectManagerAPI(c),
		LeadTeams: mteam.NewTeamLeadAPI(c),
		PMTasks:   mtask.NewProjectManagerAPI(c),
		LeadTasks: mtask.NewTeamLeadAPI(c),
		SelfTasks: mtask.NewTeamMemberAPI(c),
	}
	userID := ""
	if snap.User != nil {
		userID = snap.User.ID
	}

	switch {
	case snap.Role == session.RoleProjectManager:
		w.AllTeams = resource.New("pm.teams", w.PMTeams.TeamSource(), mteam.TeamMessages, log)
		w.Users = resource.New("pm.users", w.PMTeams.MemberSource(), mteam.MemberMessages, log)
		w.AllTasks = resource.New("pm.tasks", w.PMTasks.Source(), mtask.Messages, log)
	case snap.Role == session.RoleTeamLead:
		w.LedTeams = resource.New("lead.teams", w.LeadTeams.TeamSource(), mteam.TeamMessages, log)
		w.TeamTasks = resource.New("lead.tasks", w.LeadTasks.Source(), mtask.Messages, log)
	case snap.Role.IsMember():
		w.MyTasks = resource.New("my.tasks", w.SelfTasks.Source(userID), mtask.Messages, log)
	}
	w.Dashboard = dashboard.New(dashboard.ForRole(snap.Role, c, userID), log)

	return w
}

// Detach cancels every in-flight load of the workspace.
func (w *Workspace) Detach() {
	w.Dashboard.Detach()
	for _, c := range []*teamCtrl{w.AllTeams, w.LedTeams} {
		if c != nil {
			c.Detach()
		}
	}
	for _, c := range []*taskCtrl{w.AllTasks, w.TeamTasks, w.MyTasks} {
		if c != nil {
			c.Detach()
		}
	}
	if w.Users != nil {
		w.Users.Detach()
	}
}
