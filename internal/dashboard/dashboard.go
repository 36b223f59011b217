// Package dashboard loads the overview numbers a role lands on: teams, tasks
// and members fetched together, plus the task count per status.
package dashboard

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"kyri56xcaesar/pms-dashboard/internal/mtask"
	"kyri56xcaesar/pms-dashboard/internal/mteam"
	"kyri56xcaesar/pms-dashboard/internal/session"
)

// FetchFailed is shown whenever any of the three lists could not be loaded.
const FetchFailed = "Failed to fetch dashboard data"

var ErrDetached = errors.New("dashboard detached")

type Data struct {
	Teams   []mteam.Team   `json:"teams" yaml:"teams" xml:"teams>team"`
	Tasks   []mtask.Task   `json:"tasks" yaml:"tasks" xml:"tasks>task"`
	Members []mteam.Member `json:"members" yaml:"members" xml:"members>member"`
}

type State struct {
	Data

	StatusCounts map[mtask.Status]int `json:"status_counts" yaml:"status_counts" xml:"-"`
	Loading      bool                 `json:"loading" yaml:"loading" xml:"loading"`
	Error        string               `json:"error" yaml:"error" xml:"error"`
}

// Fetcher loads one complete Data snapshot.
type Fetcher func(ctx context.Context) (Data, error)

// ProjectManager fetches all teams, the task view and all users
// concurrently. The first failure cancels the others.
func ProjectManager(teams mteam.ProjectManagerAPI, tasks mtask.ProjectManagerAPI) Fetcher {
	return func(ctx context.Context) (Data, error) {
		var d Data
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() (err error) {
			d.Teams, err = teams.Teams(ctx)
			return err
		})
		g.Go(func() (err error) {
			d.Tasks, err = tasks.Tasks(ctx)
			return err
		})
		g.Go(func() (err error) {
			d.Members, err = teams.Members(ctx)
			return err
		})

		if err := g.Wait(); err != nil {
			return Data{}, err
		}

		return d, nil
	}
}

// TeamLead fetches the led teams and their tasks. Leads have no endpoint
// listing every user, so Members stays empty.
func TeamLead(teams mteam.TeamLeadAPI, tasks mtask.TeamLeadAPI) Fetcher {
	return func(ctx context.Context) (Data, error) {
		d := Data{Members: []mteam.Member{}}
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() (err error) {
			d.Teams, err = teams.Teams(ctx)
			return err
		})
		g.Go(func() (err error) {
			d.Tasks, err = tasks.Tasks(ctx)
			return err
		})

		if err := g.Wait(); err != nil {
			return Data{}, err
		}

		return d, nil
	}
}

// TeamMember fetches the caller's assigned tasks and the user directory.
// Members are not shown any team list.
func TeamMember(teams mteam.TeamMemberAPI, tasks mtask.TeamMemberAPI, userID string) Fetcher {
	return func(ctx context.Context) (Data, error) {
		d := Data{Teams: []mteam.Team{}}
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() (err error) {
			d.Tasks, err = tasks.Tasks(ctx, userID)
			return err
		})
		g.Go(func() (err error) {
			d.Members, err = teams.Members(ctx)
			return err
		})

		if err := g.Wait(); err != nil {
			return Data{}, err
		}

		return d, nil
	}
}

// ForRole picks the fetcher of role's API namespace. Roles without one
// (super_admin, unknown) get an empty snapshot.
func ForRole(role session.Role, c mteam.Doer, userID string) Fetcher {
	switch {
	case role == session.RoleProjectManager:
		return ProjectManager(mteam.NewProjectManagerAPI(c), mtask.NewProjectManagerAPI(c))
	case role == session.RoleTeamLead:
		return TeamLead(mteam.NewTeamLeadAPI(c), mtask.NewTeamLeadAPI(c))
	case role.IsMember():
		return TeamMember(mteam.NewTeamMemberAPI(c), mtask.NewTeamMemberAPI(c), userID)
	}

	return func(context.Context) (Data, error) {
		return Data{Teams: []mteam.Team{}, Tasks: []mtask.Task{}, Members: []mteam.Member{}}, nil
	}
}

// Dashboard holds the last loaded snapshot. Loads follow the same rules as
// a resource controller: the last issued load wins, failures keep the
// previous snapshot, and Detach drops whatever is still in flight.
type Dashboard struct {
	fetch Fetcher
	log   zerolog.Logger

	life    context.Context
	destroy context.CancelFunc

	mu       sync.Mutex
	state    State
	issued   uint64
	pending  int
	detached bool
}

func New(fetch Fetcher, log zerolog.Logger) *Dashboard {
	life, destroy := context.WithCancel(context.Background())

	return &Dashboard{
		fetch:   fetch,
		log:     log.With().Str("component", "dashboard").Logger(),
		life:    life,
		destroy: destroy,
		state:   empty(),
	}
}

func empty() State {
	return State{
		Data: Data{
			Teams:   []mteam.Team{},
			Tasks:   []mtask.Task{},
			Members: []mteam.Member{},
		},
		StatusCounts: mtask.CountByStatus(nil),
	}
}

func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.snapshot()
}

func (d *Dashboard) snapshot() State {
	return State{
		Data: Data{
			Teams:   slices.Clone(d.state.Teams),
			Tasks:   slices.Clone(d.state.Tasks),
			Members: slices.Clone(d.state.Members),
		},
		StatusCounts: maps.Clone(d.state.StatusCounts),
		Loading:      d.state.Loading,
		Error:        d.state.Error,
	}
}

func (d *Dashboard) begin() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.detached {
		return false
	}
	d.pending++
	d.state.Loading = true
	d.state.Error = ""

	return true
}

func (d *Dashboard) end() {
	if d.pending--; d.pending <= 0 {
		d.pending = 0
		d.state.Loading = false
	}
}

func (d *Dashboard) scoped(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(d.life, cancel)

	return ctx, func() { stop(); cancel() }
}

// Load fetches a fresh snapshot. The returned error is the raw cause; the
// state carries FetchFailed.
func (d *Dashboard) Load(ctx context.Context) (State, error) {
	if !d.begin() {
		return State{}, ErrDetached
	}
	d.mu.Lock()
	d.issued++
	seq := d.issued
	d.mu.Unlock()

	ctx, done := d.scoped(ctx)
	data, err := d.fetch(ctx)
	done()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.detached {
		return State{}, ErrDetached
	}
	d.end()

	switch {
	case seq != d.issued:
		d.log.Debug().Uint64("seq", seq).Msg("discarding stale dashboard load")
	case err != nil:
		d.state.Error = FetchFailed
		d.log.Warn().Err(err).Msg(FetchFailed)
	default:
		d.state.Data = normalize(data)
		d.state.StatusCounts = mtask.CountByStatus(d.state.Tasks)
	}

	return d.snapshot(), err
}

func normalize(data Data) Data {
	if data.Teams == nil {
		data.Teams = []mteam.Team{}
	}
	if data.Tasks == nil {
		data.Tasks = []mtask.Task{}
	}
	if data.Members == nil {
		data.Members = []mteam.Member{}
	}

	return data
}

// Detach cancels in-flight work; later results and calls are ignored.
func (d *Dashboard) Detach() {
	d.mu.Lock()
	d.detached = true
	d.mu.Unlock()

	d.destroy()
}
