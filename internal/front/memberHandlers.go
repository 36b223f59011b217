package front

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kyri56xcaesar/pms-dashboard/internal/guard"
	"kyri56xcaesar/pms-dashboard/internal/mtask"
	"kyri56xcaesar/pms-dashboard/internal/resource"
)

func myTasksPage(c *gin.Context, status int, st resource.State[mtask.Task]) {
	respondInFormat(c, status, MyTasksVM{
		ListVM:       newListVM(newPage(guard.SessionFrom(c), "My Tasks", "my.tasks"), st),
		StatusCounts: mtask.CountByStatus(st.Items),
	})
}

func (s *Server) handleMyTasks(c *gin.Context) {
	ctrl := s.workspace().MyTasks
	if ctrl == nil {
		respondInFormat(c, http.StatusNotFound, gin.H{"error": "no such view for this role"})
		return
	}

	st, err := ctrl.Load(c.Request.Context())
	myTasksPage(c, statusFor(err), st)
}

type statusRequest struct {
	Status string `json:"status" form:"status" binding:"required"`
}

func (s *Server) handleMyTaskStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBind(&req); err != nil {
		badInput(c, err)
		return
	}
	status, ok := mtask.ParseStatus(req.Status)
	if !ok {
		respondInFormat(c, http.StatusBadRequest, gin.H{"error": "unknown status " + req.Status})
		return
	}

	s.updateMyTask(c, c.Param("id"), status)
}

func (s *Server) handleMyTaskComplete(c *gin.Context) {
	s.updateMyTask(c, c.Param("id"), mtask.StatusCompleted)
}

func (s *Server) updateMyTask(c *gin.Context, id string, status mtask.Status) {
	st, err := s.workspace().MyTasks.Update(c.Request.Context(), id, mtask.TaskInput{Status: status})
	myTasksPage(c, statusFor(err), st)
}
