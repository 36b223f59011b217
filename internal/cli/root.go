// Package cli is the pmsdash command line. Every command works against the
// same persisted session as the dashboard server, so logging in from one
// logs in the other.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kyri56xcaesar/pms-dashboard/internal/config"
	"kyri56xcaesar/pms-dashboard/internal/gateway"
	"kyri56xcaesar/pms-dashboard/internal/logger"
	"kyri56xcaesar/pms-dashboard/internal/resource"
	"kyri56xcaesar/pms-dashboard/internal/session"
	"kyri56xcaesar/pms-dashboard/internal/storage"
)

var errNotLoggedIn = errors.New("not logged in, run 'pmsdash login' first")

// Options replaces parts of the environment the commands would otherwise
// build from the configuration.
type Options struct {
	// Storage is used instead of the configured session driver. It is not
	// closed by the command.
	Storage storage.Storage
}

type app struct {
	opts Options

	cfgPath  string
	apiURL   string
	output   string
	logLevel string

	cfg    config.Config
	st     storage.Storage
	store  *session.Store
	client *gateway.Client
	log    zerolog.Logger
}

// NewRootCommand builds the pmsdash command tree.
func NewRootCommand(opts Options) *cobra.Command {
	cmd, _ := newRoot(opts)
	return cmd
}

func newRoot(opts Options) (*cobra.Command, *app) {
	a := &app{opts: opts, log: logger.Nop()}

	root := &cobra.Command{
		Use:   "pmsdash",
		Short: "Role based dashboard for the PMS team and task API",
		Long: `pmsdash signs in to a PMS API and works with its teams, tasks and users
the way the caller's role allows: project managers see everything, team
leads their own teams, team members their own tasks.

The session is stored locally and shared with 'pmsdash serve'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", ".env", "dotenv file with the settings")
	flags.StringVar(&a.apiURL, "api", "", "PMS API base url, overrides PMS_API_URL")
	flags.StringVarP(&a.output, "output", "o", "table", "output format: table, json or yaml")
	flags.StringVar(&a.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	root.AddCommand(
		newServeCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newDashboardCommand(a),
		newTeamsCommand(a),
		newTasksCommand(a),
		newMembersCommand(a),
	)

	return root, a
}

// Execute runs pmsdash with the process arguments.
func Execute(ctx context.Context) error {
	root, a := newRoot(Options{})
	defer a.close()

	return root.ExecuteContext(ctx)
}

func (a *app) setup(ctx context.Context) error {
	switch a.output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	a.cfg = config.Load(a.cfgPath)
	if a.apiURL != "" {
		a.cfg.APIURL = strings.TrimRight(a.apiURL, "/")
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	logger.Init(a.cfg.LogLevel)
	a.log = logger.Component("cli")

	a.st = a.opts.Storage
	if a.st == nil {
		st, err := storage.Open(ctx, storage.Options{
			Driver: a.cfg.StorageDriver,
			Dir:    a.cfg.StorageDir,
			DSN:    a.cfg.StorageDSN,
		})
		if err != nil {
			return fmt.Errorf("open session storage: %w", err)
		}
		a.st = st
	}

	a.store = session.New(ctx, a.st, a.log)
	a.client = gateway.New(a.cfg.APIURL, a.store, a.log)

	return nil
}

func (a *app) close() {
	if a.st == nil || a.opts.Storage != nil {
		return
	}
	if err := a.st.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing session storage")
	}
}

// session returns the current session, or errNotLoggedIn.
func (a *app) session() (session.Session, error) {
	snap := a.store.Snapshot()
	if !snap.IsAuthenticated || snap.Token == "" {
		return snap, errNotLoggedIn
	}

	return snap, nil
}

func (a *app) userID(s session.Session) string {
	if s.User == nil {
		return ""
	}

	return s.User.ID
}

// failed turns a controller failure into what the user sees: the fixed
// message of the collection when there is one.
func (a *app) failed(msg string, err error) error {
	if errors.Is(err, resource.ErrUnsupported) {
		return fmt.Errorf("not available to the %s role", a.store.Snapshot().Role)
	}

	a.log.Debug().Err(err).Msg("request failed")
	if msg == "" {
		return err
	}

	return errors.New(msg)
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
