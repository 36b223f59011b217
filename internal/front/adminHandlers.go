package front

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"kyri56xcaesar/pms-dashboard/internal/gateway"
	"kyri56xcaesar/pms-dashboard/internal/guard"
	"kyri56xcaesar/pms-dashboard/internal/mtask"
	"kyri56xcaesar/pms-dashboard/internal/mteam"
)

// Project manager views: every team, every user, every task.

func (s *Server) handlePMTeams(c *gin.Context) {
	listPage(c, s.workspace().AllTeams, "All Teams", "pm.teams")
}

func (s *Server) handlePMCreateTeam(c *gin.Context) {
	var in mteam.TeamInput
	if err := c.ShouldBind(&in); err != nil {
		badInput(c, err)
		return
	}

	st, err := s.workspace().AllTeams.Create(c.Request.Context(), in)
	mutationPage(c, http.StatusCreated, st, err, "All Teams", "pm.teams")
}

func (s *Server) handlePMTeam(c *gin.Context) {
	teamID := c.Param("id")
	if teamID == "" {
		respondInFormat(c, http.StatusBadRequest, gin.H{"error": "missing team id"})
		return
	}

	team, err := s.workspace().PMTeams.TeamWithMembers(c.Request.Context(), teamID)
	vm := TeamVM{
		Page:    newPage(guard.SessionFrom(c), "Team", "pm.teams"),
		Team:    team,
		Members: team.Members,
	}
	if err != nil {
		vm.Error = err.Error()
	}

	respondInFormat(c, statusFor(err), vm)
}

func (s *Server) handlePMUpdateTeam(c *gin.Context) {
	var in mteam.TeamInput
	if err := c.ShouldBind(&in); err != nil {
		badInput(c, err)
		return
	}

	st, err := s.workspace().AllTeams.Update(c.Request.Context(), c.Param("id"), in)
	mutationPage(c, http.StatusOK, st, err, "All Teams", "pm.teams")
}

func (s *Server) handlePMDeleteTeam(c *gin.Context) {
	st, err := s.workspace().AllTeams.Remove(c.Request.Context(), c.Param("id"))
	mutationPage(c, http.StatusOK, st, err, "All Teams", "pm.teams")
}

type teamMembersRequest struct {
	MemberIDs  []string `json:"member_ids" form:"member_ids" binding:"required"`
	TeamLeadID string   `json:"team_lead_id" form:"team_lead_id"`
}

func (s *Server) handlePMAddTeamMembers(c *gin.Context) {
	var req teamMembersRequest
	if err := c.ShouldBind(&req); err != nil {
		badInput(c, err)
		return
	}
	if req.TeamLeadID == "" {
		req.TeamLeadID = c.Query("team_lead_id")
	}

	ws := s.workspace()
	teamID := c.Param("id")
	st, err := ws.AllTeams.Apply(c.Request.Context(), gateway.Message(gateway.OpUpdate, "team"), func(ctx context.Context) error {
		return ws.PMTeams.AddTeamMembers(ctx, teamID, req.TeamLeadID, req.MemberIDs)
	})
	mutationPage(c, http.StatusOK, st, err, "All Teams", "pm.teams")
}

func (s *Server) handlePMRemoveTeamMembers(c *gin.Context) {
	var req teamMembersRequest
	if err := c.ShouldBind(&req); err != nil {
		badInput(c, err)
		return
	}

	ws := s.workspace()
	teamID := c.Param("id")
	st, err := ws.AllTeams.Apply(c.Request.Context(), gateway.Message(gateway.OpUpdate, "team"), func(ctx context.Context) error {
		return ws.PMTeams.RemoveTeamMembers(ctx, teamID, req.MemberIDs)
	})
	mutationPage(c, http.StatusOK, st, err, "All Teams", "pm.teams")
}

// handlePMUsers lists every user, or only those holding ?role= when given.
func (s *Server) handlePMUsers(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		listPage(c, s.workspace().Users, "Manage Users", "pm.users")
		return
	}

	members, err := s.workspace().PMTeams.MembersByRole(c.Request.Context(), role)
	vm := ListVM[mteam.Member]{
		Page:  newPage(guard.SessionFrom(c), "Manage Users", "pm.users"),
		Items: members,
		Total: len(members),
	}
	if err != nil {
		vm.Error = err.Error()
	}

	respondInFormat(c, statusFor(err), vm)
}

func (s *Server) handlePMCreateUser(c *gin.Context) {
	var in mteam.MemberInput
	if err := c.ShouldBind(&in); err != nil {
		badInput(c, err)
		return
	}
	if in.Password == "" {
		respondInFormat(c, http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	st, err := s.workspace().Users.Create(c.Request.Context(), in)
	mutationPage(c, http.StatusCreated, st, err, "Manage Users", "pm.users")
}

func (s *Server) handlePMUpdateUser(c *gin.Context) {
	var in mteam.MemberInput
	if err := c.ShouldBind(&in); err != nil {
		badInput(c, err)
		return
	}

	st, err := s.workspace().Users.Update(c.Request.Context(), c.Param("id"), in)
	mutationPage(c, http.StatusOK, st, err, "Manage Users", "pm.users")
}

func (s *Server) handlePMDeleteUser(c *gin.Context) {
	st, err := s.workspace().Users.Remove(c.Request.Context(), c.Param("id"))
	mutationPage(c, http.StatusOK, st, err, "Manage Users", "pm.users")
}

func (s *Server) handlePMTasks(c *gin.Context) {
	listPage(c, s.workspace().AllTasks, "All Tasks", "pm.tasks")
}

func (s *Server) handlePMCreateTask(c *gin.Context) {
	var in mtask.TaskInput
	if err := c.ShouldBind(&in); err != nil {
		badInput(c, err)
		return
	}
	if in.Title == "" {
		respondInFormat(c, http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	st, err := s.workspace().AllTasks.Create(c.Request.Context(), in)
	mutationPage(c, http.StatusCreated, st, err, "All Tasks", "pm.tasks")
}

func (s *Server) handlePMUpdateTask(c *gin.Context) {
	var in mtask.TaskInput
	if err := c.ShouldBind(&in); err != nil {
		badInput(c, err)
		return
	}

	st, err := s.workspace().AllTasks.Update(c.Request.Context(), c.Param("id"), in)
	mutationPage(c, http.StatusOK, st, err, "All Tasks", "pm.tasks")
}

func (s *Server) handlePMDeleteTask(c *gin.Context) {
	st, err := s.workspace().AllTasks.Remove(c.Request.Context(), c.Param("id"))
	mutationPage(c, http.StatusOK, st, err, "All Tasks", "pm.tasks")
}
