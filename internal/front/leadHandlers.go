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

func (s *Server) handleLeadTeams(c *gin.Context) {
	listPage(c, s.workspace().LedTeams, "My Teams", "lead.teams")
}

func (s *Server) handleLeadTeamMembers(c *gin.Context) {
	members, err := s.workspace().LeadTeams.TeamMembers(c.Request.Context(), c.Param("id"))
	vm := ListVM[mteam.Member]{
		Page:  newPage(guard.SessionFrom(c), "Team Members", "lead.teams"),
		Items: members,
		Total: len(members),
	}
	if err != nil {
		vm.Error = err.Error()
	}

	respondInFormat(c, statusFor(err), vm)
}

func (s *Server) handleLeadAddTeamMembers(c *gin.Context) {
	var req teamMembersRequest
	if err := c.ShouldBind(&req); err != nil {
		badInput(c, err)
		return
	}

	ws := s.workspace()
	teamID := c.Param("id")
	st, err := ws.LedTeams.Apply(c.Request.Context(), gateway.Message(gateway.OpUpdate, "team"), func(ctx context.Context) error {
		return ws.LeadTeams.AddTeamMembers(ctx, teamID, req.MemberIDs)
	})
	mutationPage(c, http.StatusOK, st, err, "My Teams", "lead.teams")
}

// Member edits go through the teams collection so the member lists it
// shows are reloaded afterwards.
func (s *Server) handleLeadUpdateMember(c *gin.Context) {
	var in mteam.MemberInput
	if err := c.ShouldBind(&in); err != nil {
		badInput(c, err)
		return
	}

	ws := s.workspace()
	id := c.Param("id")
	st, err := ws.LedTeams.Apply(c.Request.Context(), gateway.Message(gateway.OpUpdate, "user"), func(ctx context.Context) error {
		return ws.LeadTeams.UpdateMember(ctx, id, in)
	})
	mutationPage(c, http.StatusOK, st, err, "My Teams", "lead.teams")
}

func (s *Server) handleLeadDeleteMember(c *gin.Context) {
	ws := s.workspace()
	id := c.Param("id")
	st, err := ws.LedTeams.Apply(c.Request.Context(), gateway.Message(gateway.OpDelete, "user"), func(ctx context.Context) error {
		return ws.LeadTeams.DeleteMember(ctx, id)
	})
	mutationPage(c, http.StatusOK, st, err, "My Teams", "lead.teams")
}

func (s *Server) handleLeadTasks(c *gin.Context) {
	listPage(c, s.workspace().TeamTasks, "Team Tasks", "lead.tasks")
}

func (s *Server) handleLeadCreateTask(c *gin.Context) {
	var in mtask.TaskInput
	if err := c.ShouldBind(&in); err != nil {
		badInput(c, err)
		return
	}
	if in.Title == "" {
		respondInFormat(c, http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	st, err := s.workspace().TeamTasks.Create(c.Request.Context(), in)
	mutationPage(c, http.StatusCreated, st, err, "Team Tasks", "lead.tasks")
}

func (s *Server) handleLeadUpdateTask(c *gin.Context) {
	var in mtask.TaskInput
	if err := c.ShouldBind(&in); err != nil {
		badInput(c, err)
		return
	}

	st, err := s.workspace().TeamTasks.Update(c.Request.Context(), c.Param("id"), in)
	mutationPage(c, http.StatusOK, st, err, "Team Tasks", "lead.tasks")
}

func (s *Server) handleLeadAssignTask(c *gin.Context) {
	var in mtask.AssignInput
	if err := c.ShouldBind(&in); err != nil {
		badInput(c, err)
		return
	}
	if in.Status == "" {
		in.Status = mtask.StatusAssigned
	}

	ws := s.workspace()
	id := c.Param("id")
	st, err := ws.TeamTasks.Apply(c.Request.Context(), gateway.Message(gateway.OpAssign, "task"), func(ctx context.Context) error {
		return ws.LeadTasks.AssignTask(ctx, id, in)
	})
	mutationPage(c, http.StatusOK, st, err, "Team Tasks", "lead.tasks")
}
