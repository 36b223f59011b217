package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"kyri56xcaesar/pms-dashboard/internal/dashboard"
	"kyri56xcaesar/pms-dashboard/internal/front"
	"kyri56xcaesar/pms-dashboard/internal/logger"
	"kyri56xcaesar/pms-dashboard/internal/mtask"
)

func newServeCommand(a *app) *cobra.Command {
	var ip, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local dashboard server",
		Long: `Serve the role gated dashboard views over http until interrupted.
Views answer in json by default, ?format=yaml or ?format=xml on request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ip != "" {
				a.cfg.Ip = ip
			}
			if port != "" {
				a.cfg.Port = port
			}

			return front.New(a.cfg, a.store, a.client, logger.Component("front")).Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&ip, "ip", "", "listen address, overrides IP")
	cmd.Flags().StringVar(&port, "port", "", "listen port, overrides PORT")

	return cmd
}

type overview struct {
	Role         string               `json:"role" yaml:"role"`
	Teams        int                  `json:"teams" yaml:"teams"`
	Tasks        int                  `json:"tasks" yaml:"tasks"`
	Members      int                  `json:"members" yaml:"members"`
	StatusCounts map[mtask.Status]int `json:"status_counts" yaml:"status_counts"`
}

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the totals and task status counts of the role's view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.session()
			if err != nil {
				return err
			}

			d := dashboard.New(dashboard.ForRole(snap.Role, a.client, a.userID(snap)), a.log)
			st, err := d.Load(cmd.Context())
			if err != nil {
				return a.failed(st.Error, err)
			}

			o := overview{
				Role:         string(snap.Role),
				Teams:        len(st.Teams),
				Tasks:        len(st.Tasks),
				Members:      len(st.Members),
				StatusCounts: st.StatusCounts,
			}

			return a.render(out(cmd), o, func() table {
				t := table{
					header: []string{"TEAMS", "TASKS", "MEMBERS"},
					rows:   [][]string{{strconv.Itoa(o.Teams), strconv.Itoa(o.Tasks), strconv.Itoa(o.Members)}},
				}
				for _, s := range mtask.Statuses {
					t.header = append(t.header, string(s))
					t.rows[0] = append(t.rows[0], strconv.Itoa(o.StatusCounts[s]))
				}

				return t
			})
		},
	}
}
