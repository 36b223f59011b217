package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"kyri56xcaesar/pms-dashboard/internal/mtask"
	"kyri56xcaesar/pms-dashboard/internal/mteam"
	"kyri56xcaesar/pms-dashboard/internal/utils"
)

type table struct {
	header []string
	rows   [][]string
}

// render writes v in the selected output format. The table is only built
// when it is the one asked for.
func (a *app) render(w io.Writer, v any, tbl func() table) error {
	switch a.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	t := tbl()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.header, "\t"))
	for _, row := range t.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

func orDash(s string) string { return utils.FirstNonEmpty(s, "-") }

func teamTable(teams []mteam.Team) table {
	return table{
		header: []string{"ID", "NAME", "PROJECT MANAGER", "MEMBERS"},
		rows: utils.Map(teams, func(t mteam.Team) []string {
			return []string{
				t.ID,
				utils.Truncate(t.Name, 40),
				orDash(utils.FirstNonEmpty(t.ProjectManagerName, t.ProjectManagerID)),
				strconv.Itoa(len(t.MemberIDs)),
			}
		}),
	}
}

func memberTable(members []mteam.Member) table {
	return table{
		header: []string{"ID", "NAME", "EMAIL", "ROLE"},
		rows: utils.Map(members, func(m mteam.Member) []string {
			return []string{m.ID, utils.Truncate(m.Name, 30), orDash(m.Email), orDash(m.Role)}
		}),
	}
}

func taskTable(tasks []mtask.Task) table {
	return table{
		header: []string{"ID", "TITLE", "STATUS", "ASSIGNED TO", "TEAM"},
		rows: utils.Map(tasks, func(t mtask.Task) []string {
			return []string{
				t.ID,
				utils.Truncate(t.Title, 40),
				string(t.Status),
				orDash(utils.FirstNonEmpty(t.TeamMember, t.AssignedTo)),
				orDash(utils.FirstNonEmpty(t.TeamName, t.TeamID)),
			}
		}),
	}
}
