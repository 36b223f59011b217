package front

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kyri56xcaesar/pms-dashboard/internal/credential"
	"kyri56xcaesar/pms-dashboard/internal/dashboard"
	"kyri56xcaesar/pms-dashboard/internal/gateway"
	"kyri56xcaesar/pms-dashboard/internal/guard"
	"kyri56xcaesar/pms-dashboard/internal/resource"
	"kyri56xcaesar/pms-dashboard/internal/session"
)

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	From     string `form:"from" json:"from"`
}

func (r loginRequest) validate() error {
	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return errors.New("cannot have empty fields")
	}

	return nil
}

func (s *Server) handleLoginPage(c *gin.Context) {
	respondInFormat(c, http.StatusOK, LoginVM{From: c.Query("from")})
}

func (s *Server) handleLogin(c *gin.Context) {
	var r loginRequest
	if err := c.ShouldBind(&r); err != nil {
		s.log.Debug().Err(err).Msg("failed to bind login request")
		respondInFormat(c, http.StatusBadRequest, LoginVM{Error: "bad data"})

		return
	}
	if r.From == "" {
		r.From = c.Query("from")
	}

	if err := r.validate(); err != nil {
		respondInFormat(c, http.StatusBadRequest, LoginVM{From: r.From, Error: err.Error()})

		return
	}

	snap, err := session.SignIn(c.Request.Context(), s.client, s.store, r.Username, r.Password)
	if err != nil {
		s.log.Warn().Err(err).Str("username", r.Username).Msg("login failed")

		status := http.StatusUnauthorized
		if session.UserMessage(err) != session.InvalidCredentials {
			status = http.StatusInternalServerError
		}
		respondInFormat(c, status, LoginVM{From: r.From, Error: session.UserMessage(err)})

		return
	}

	s.log.Info().Str("username", r.Username).Str("role", string(snap.Role)).Msg("logged in")

	target := guard.LandingPath(snap.Role)
	if guard.SafeReturn(r.From) {
		target = r.From
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.store.Logout(c.Request.Context()); err != nil {
		s.log.Error().Err(err).Msg("could not clear the stored session")
	}

	c.Redirect(http.StatusSeeOther, guard.LoginPath)
}

func (s *Server) handleHome(c *gin.Context) {
	snap := guard.SessionFrom(c)
	respondInFormat(c, http.StatusOK, newPage(snap, "Home", "home"))
}

func (s *Server) handleProfile(c *gin.Context) {
	snap := guard.SessionFrom(c)
	vm := ProfileVM{
		Page:          newPage(snap, "Profile", "profile"),
		Authenticated: snap.IsAuthenticated,
		Landing:       guard.LandingPath(snap.Role),
	}

	// the expiry is only informative, the API decides whether the token
	// is still good
	if claims, err := credential.Decode(snap.Token); err == nil && claims.ExpiresAt != nil {
		vm.ExpiresAt = claims.ExpiresAt.UTC().Format(time.RFC3339)
		vm.Expired = claims.Expired(time.Now())
	}

	respondInFormat(c, http.StatusOK, vm)
}

func (s *Server) loadDashboard(c *gin.Context, title, active string) {
	snap := guard.SessionFrom(c)

	st, err := s.workspace().Dashboard.Load(c.Request.Context())
	respondInFormat(c, statusFor(err), newDashboardVM(newPage(snap, title, active), st))
}

func (s *Server) handleDashboard(c *gin.Context) { s.loadDashboard(c, "Dashboard", "dashboard") }

func (s *Server) handleDashboardTeams(c *gin.Context) { s.loadDashboard(c, "Teams", "teams") }

func (s *Server) handleDashboardTasks(c *gin.Context) { s.loadDashboard(c, "Tasks", "tasks") }

// statusFor maps a controller error onto the status of the page answer.
// The body still carries the state and its fixed message.
func statusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, resource.ErrUnsupported):
		return http.StatusMethodNotAllowed
	case errors.Is(err, resource.ErrDetached), errors.Is(err, dashboard.ErrDetached):
		return http.StatusConflict
	}

	if st := gateway.StatusOf(err); st >= 400 && st < 500 {
		return st
	}

	return http.StatusBadGateway
}

// listPage loads ctrl and answers with its state.
func listPage[T, P any](c *gin.Context, ctrl *resource.Controller[T, P], title, active string) {
	if ctrl == nil {
		respondInFormat(c, http.StatusNotFound, gin.H{"error": "no such view for this role"})
		return
	}

	st, err := ctrl.Load(c.Request.Context())
	respondInFormat(c, statusFor(err), newListVM(newPage(guard.SessionFrom(c), title, active), st))
}

// mutationPage answers a mutation with the collection state the controller
// ended up in. ok is the status used on success.
func mutationPage[T any](c *gin.Context, ok int, st resource.State[T], err error, title, active string) {
	status := statusFor(err)
	if err == nil {
		status = ok
	}

	respondInFormat(c, status, newListVM(newPage(guard.SessionFrom(c), title, active), st))
}

func badInput(c *gin.Context, err error) {
	respondInFormat(c, http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
}
