// Package front is the local dashboard server. It serves the role-gated
// views of the PMS dashboard as json, yaml or xml and drives the same
// session and collection controllers the command line uses.
package front

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kyri56xcaesar/pms-dashboard/internal/config"
	"kyri56xcaesar/pms-dashboard/internal/gateway"
	"kyri56xcaesar/pms-dashboard/internal/guard"
	"kyri56xcaesar/pms-dashboard/internal/logger"
	"kyri56xcaesar/pms-dashboard/internal/session"
)

type Server struct {
	config config.Config
	engine *gin.Engine
	store  *session.Store
	client *gateway.Client
	log    zerolog.Logger

	mu          sync.Mutex
	ws          *Workspace
	unsubscribe func()
}

// New wires a server around an already rehydrated store and its client.
func New(cfg config.Config, store *session.Store, client *gateway.Client, log zerolog.Logger) *Server {
	setGinMode(cfg.ApiGinMode)

	s := &Server{
		config: cfg,
		engine: gin.New(),
		store:  store,
		client: client,
		log:    log,
	}
	s.engine.Use(logger.GinLogger(log), logger.GinRecovery(log))

	// any login or logout invalidates the controllers of the previous
	// session and cancels what they still have in flight
	s.unsubscribe = store.Subscribe(func(session.Session) {
		s.resetWorkspace()
	})

	s.setCors()
	s.setRoutes()

	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// workspace returns the controllers of the current session, building them
// on first use.
func (s *Server) workspace() *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ws == nil {
		s.ws = newWorkspace(s.store.Snapshot(), s.client, s.log)
	}

	return s.ws
}

func (s *Server) resetWorkspace() {
	s.mu.Lock()
	old := s.ws
	s.ws = nil
	s.mu.Unlock()

	if old != nil {
		old.Detach()
	}
}

func (s *Server) setCors() {
	corsconfig := cors.DefaultConfig()
	corsconfig.AllowOrigins = s.config.AllowedOrigins
	corsconfig.AllowMethods = s.config.AllowedMethods
	corsconfig.AllowHeaders = s.config.AllowedHeaders
	s.engine.Use(cors.New(corsconfig))
}

func (s *Server) setRoutes() {
	root := s.engine.Group("/")
	{
		root.GET("/healthz", func(c *gin.Context) {
			respondInFormat(c, http.StatusOK, gin.H{
				"status": "alive",
				"api":    s.client.BaseURL(),
			})
		})

		root.GET("/login", s.handleLoginPage)
		root.POST("/login", s.handleLogin)
		root.GET("/logout", s.handleLogout)
		root.POST("/logout", s.handleLogout)
	}

	authed := s.engine.Group("/", guard.Middleware(s.store, guard.RequireAuth()))
	{
		authed.GET("/", s.handleHome)
		authed.GET("/profile", s.handleProfile)
		authed.GET("/dashboard", s.handleDashboard)
		authed.GET("/teams", s.handleDashboardTeams)
		authed.GET("/tasks", s.handleDashboardTasks)
	}

	pm := s.engine.Group("/pm", guard.Middleware(s.store, guard.RequireRole(session.RoleProjectManager)))
	{
		pm.GET("/teams", s.handlePMTeams)
		pm.POST("/teams", s.handlePMCreateTeam)
		pm.GET("/teams/:id", s.handlePMTeam)
		pm.PUT("/teams/:id", s.handlePMUpdateTeam)
		pm.DELETE("/teams/:id", s.handlePMDeleteTeam)
		pm.POST("/teams/:id/members", s.handlePMAddTeamMembers)
		pm.DELETE("/teams/:id/members", s.handlePMRemoveTeamMembers)

		pm.GET("/users", s.handlePMUsers)
		pm.POST("/users", s.handlePMCreateUser)
		pm.PUT("/users/:id", s.handlePMUpdateUser)
		pm.DELETE("/users/:id", s.handlePMDeleteUser)

		pm.GET("/tasks", s.handlePMTasks)
		pm.POST("/tasks", s.handlePMCreateTask)
		pm.PUT("/tasks/:id", s.handlePMUpdateTask)
		pm.DELETE("/tasks/:id", s.handlePMDeleteTask)
	}

	lead := s.engine.Group("/lead", guard.Middleware(s.store, guard.RequireRole(session.RoleTeamLead)))
	{
		lead.GET("/teams", s.handleLeadTeams)
		lead.GET("/teams/:id/members", s.handleLeadTeamMembers)
		lead.POST("/teams/:id/members", s.handleLeadAddTeamMembers)
		lead.PUT("/members/:id", s.handleLeadUpdateMember)
		lead.DELETE("/members/:id", s.handleLeadDeleteMember)

		lead.GET("/tasks", s.handleLeadTasks)
		lead.POST("/tasks", s.handleLeadCreateTask)
		lead.PUT("/tasks/:id", s.handleLeadUpdateTask)
		lead.POST("/tasks/:id/assign", s.handleLeadAssignTask)
	}

	member := s.engine.Group("/my-tasks", guard.Middleware(s.store, guard.RequireRole(session.RoleTeamMember, session.RoleDeveloper)))
	{
		member.GET("", s.handleMyTasks)
		member.PUT("/:id", s.handleMyTaskStatus)
		member.POST("/:id/complete", s.handleMyTaskComplete)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		respondInFormat(c, http.StatusNotFound, gin.H{"error": "bad path"})
	})
}

// Serve listens until ctx is cancelled or the process gets SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: time.Second * 5,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", server.Addr).Str("api", s.client.BaseURL()).Msg("dashboard listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	stop()
	s.log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := server.Shutdown(shutdownCtx)

	s.unsubscribe()
	s.resetWorkspace()
	s.log.Info().Msg("server exiting")

	return err
}

func setGinMode(mode string) {
	switch strings.ToLower(mode) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "envgin":
		gin.SetMode(gin.EnvGinMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}

// respondInFormat writes data as ?format=json|yaml|xml, json by default.
func respondInFormat(c *gin.Context, status int, data any) {
	switch strings.ToLower(c.DefaultQuery("format", "json")) {
	case "yaml", "yml":
		c.YAML(status, data)
	case "xml":
		c.XML(status, data)
	default:
		c.JSON(status, data)
	}
}
