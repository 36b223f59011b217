package guard

import "kyri56xcaesar/pms-dashboard/internal/session"

type MenuItem struct {
	Text string `json:"text" yaml:"text" xml:"text"`
	Path string `json:"path" yaml:"path" xml:"path"`
}

// Menu is the navigation bar for a role. Everyone gets the dashboard entry.
func Menu(role session.Role) []MenuItem {
	items := []MenuItem{{Text: "Dashboard", Path: "/dashboard"}}

	switch {
	case role.IsMember():
		items = append(items, MenuItem{Text: "My Tasks", Path: "/my-tasks"})
	case role == session.RoleTeamLead:
		items = append(items,
			MenuItem{Text: "Manage Teams", Path: "/lead/teams"},
			MenuItem{Text: "Team Tasks", Path: "/lead/tasks"},
		)
	case role == session.RoleProjectManager:
		items = append(items,
			MenuItem{Text: "All Teams", Path: "/pm/teams"},
			MenuItem{Text: "Manage Users", Path: "/pm/users"},
			MenuItem{Text: "All Tasks", Path: "/pm/tasks"},
		)
	}

	return items
}
