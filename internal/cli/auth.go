package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"kyri56xcaesar/pms-dashboard/internal/credential"
	"kyri56xcaesar/pms-dashboard/internal/guard"
	"kyri56xcaesar/pms-dashboard/internal/session"
)

func newLoginCommand(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the PMS API",
		Long: `Sign in with a username and password. The password can also be given
through PMS_PASSWORD.

Examples:
  pmsdash login -u alice -p secret
  PMS_PASSWORD=secret pmsdash login -u alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("PMS_PASSWORD")
			}
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}

			snap, err := session.SignIn(cmd.Context(), a.client, a.store, username, password)
			if err != nil {
				a.log.Debug().Err(err).Str("username", username).Msg("login failed")
				return errors.New(session.UserMessage(err))
			}

			fmt.Fprintf(out(cmd), "Logged in as %s (%s)\n", snap.Username(), snap.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")

	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}

			fmt.Fprintln(out(cmd), "Logged out")
			return nil
		},
	}
}

type whoami struct {
	Username  string       `json:"username" yaml:"username"`
	UserID    string       `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Role      session.Role `json:"role" yaml:"role"`
	Landing   string       `json:"landing" yaml:"landing"`
	ExpiresAt string       `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired   bool         `json:"expired" yaml:"expired"`
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user and role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.session()
			if err != nil {
				fmt.Fprintln(out(cmd), "Not logged in.")
				return nil
			}

			w := whoami{
				Username: snap.Username(),
				UserID:   a.userID(snap),
				Role:     snap.Role,
				Landing:  guard.LandingPath(snap.Role),
			}
			// local hint only; the API is the one that rejects an old token
			if claims, err := credential.Decode(snap.Token); err == nil && claims.ExpiresAt != nil {
				w.ExpiresAt = claims.ExpiresAt.UTC().Format(time.RFC3339)
				w.Expired = claims.Expired(time.Now())
			}

			if err := a.render(out(cmd), w, func() table {
				return table{
					header: []string{"USERNAME", "ROLE", "EXPIRES"},
					rows:   [][]string{{w.Username, string(w.Role), orDash(w.ExpiresAt)}},
				}
			}); err != nil {
				return err
			}
			if w.Expired {
				fmt.Fprintln(cmd.ErrOrStderr(), "The token has expired, run 'pmsdash login' again.")
			}

			return nil
		},
	}
}
