package mtask

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyri56xcaesar/pms-dashboard/internal/gateway"
	"kyri56xcaesar/pms-dashboard/internal/resource"
)

type hit struct {
	Method string
	Path   string
	Query  string
	Body   string
}

func fakePMS(t *testing.T, routes map[string]string) (*gateway.Client, *[]hit) {
	t.Helper()
	var hits []hit

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		hits = append(hits, hit{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(b)})

		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return gateway.New(srv.URL, nil, zerolog.Nop()), &hits
}

func TestTask_DecodesAliasesAndNulls(t *testing.T) {
	var task Task
	raw := `{"_id":"t1","title":"Task X","description":null,"status":"pending","assigned_to":null,"team_id":"tm1"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &task))

	assert.Equal(t, Task{ID: "t1", Title: "Task X", Status: StatusPending, TeamID: "tm1"}, task)

	require.NoError(t, json.Unmarshal([]byte(`{"task_id":"t2","title":"Y"}`), &task))
	assert.Equal(t, "t2", task.ID)
	assert.Empty(t, task.Status)
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" In_Progress ")
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, s)

	_, ok = ParseStatus("done")
	assert.False(t, ok)
}

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus([]Task{
		{Status: StatusPending},
		{Status: StatusPending},
		{Status: StatusCompleted},
		{Status: "archived"},
	})

	assert.Equal(t, 2, counts[StatusPending])
	assert.Equal(t, 1, counts[StatusCompleted])
	assert.Equal(t, 0, counts[StatusUnassigned])
	assert.Equal(t, 1, counts["archived"])
	assert.Len(t, counts, len(Statuses)+1)
}

func TestProjectManager_TaskView(t *testing.T) {
	c, _ := fakePMS(t, map[string]string{
		"GET /project-manager/tasks":  `{"tasks":[{"_id":"1","title":"Task X","status":"pending","team_name":"Core","team_member":"Bob"}]}`,
		"GET /project-manager/task/1": `{"_id":"1","title":"Task X","status":"pending","description":"d"}`,
	})
	pm := NewProjectManagerAPI(c)

	tasks, err := pm.Tasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Task{{ID: "1", Title: "Task X", Status: StatusPending, TeamName: "Core", TeamMember: "Bob"}}, tasks)

	task, err := pm.Task(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "d", task.Description)
}

func TestProjectManager_Mutations(t *testing.T) {
	c, hits := fakePMS(t, map[string]string{
		"POST /project-manager/tasks":     `{}`,
		"PUT /project-manager/tasks/1":    `{}`,
		"DELETE /project-manager/tasks/1": `{}`,
	})
	pm := NewProjectManagerAPI(c)
	ctx := context.Background()

	require.NoError(t, pm.CreateTask(ctx, TaskInput{Title: "Write docs", TeamID: "tm1"}))
	require.NoError(t, pm.UpdateTask(ctx, "1", TaskInput{Status: StatusInProgress}))
	require.NoError(t, pm.DeleteTask(ctx, "1"))

	h := *hits
	assert.JSONEq(t, `{"title":"Write docs","team_id":"tm1"}`, h[0].Body)
	assert.JSONEq(t, `{"status":"in_progress"}`, h[1].Body)
	assert.Equal(t, http.MethodDelete, h[2].Method)
}

func TestTeamLead_BareLists(t *testing.T) {
	c, _ := fakePMS(t, map[string]string{
		"GET /team-lead/tasks":       `[{"task_id":"1","title":"A","status":"assigned"}]`,
		"GET /team-lead/track-tasks": `[{"task_id":"1"},{"task_id":"2"}]`,
	})
	tl := NewTeamLeadAPI(c)

	tasks, err := tl.Tasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, tasks[0].Status)

	tracked, err := tl.TrackTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tracked, 2)
}

func TestTeamLead_CreateUpdateAssign(t *testing.T) {
	c, hits := fakePMS(t, map[string]string{
		"POST /team-lead/tasks/":        `{}`,
		"PUT /team-lead/update-task/1":  `{}`,
		"POST /team-lead/assign-task/1": `{}`,
	})
	tl := NewTeamLeadAPI(c)
	ctx := context.Background()

	require.NoError(t, tl.CreateTask(ctx, TaskInput{Title: "A"}))
	require.NoError(t, tl.UpdateTask(ctx, "1", TaskInput{Title: "B"}))
	require.NoError(t, tl.AssignTask(ctx, "1", AssignInput{AssignedTo: "m1", Status: StatusAssigned}))

	assert.JSONEq(t, `{"assigned_to":"m1","status":"assigned"}`, (*hits)[2].Body)
}

func TestTeamLead_AssignFailure(t *testing.T) {
	c, _ := fakePMS(t, nil)

	err := NewTeamLeadAPI(c).AssignTask(context.Background(), "1", AssignInput{AssignedTo: "m1"})
	assert.EqualError(t, err, "Failed to assign task")
}

func TestTeamMember_AssignedTasksAndComplete(t *testing.T) {
	c, hits := fakePMS(t, map[string]string{
		"GET /team-member/tasks/":  `[{"_id":"1","title":"A","status":"in_progress","assigned_to":"u1"}]`,
		"PUT /team-member/tasks/1": `{}`,
	})
	tm := NewTeamMemberAPI(c)
	ctx := context.Background()

	tasks, err := tm.Tasks(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", tasks[0].AssignedTo)
	assert.Equal(t, "assigned_to=u1", (*hits)[0].Query)

	require.NoError(t, tm.Complete(ctx, "1"))
	assert.JSONEq(t, `{"status":"completed"}`, (*hits)[1].Body)
}

func TestSources_MyTasksReloadAfterComplete(t *testing.T) {
	status := "in_progress"
	var gets int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets++
			w.Write([]byte(`[{"_id":"1","title":"A","status":"` + status + `"}]`))
		case http.MethodPut:
			status = "completed"
			w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	tm := NewTeamMemberAPI(gateway.New(srv.URL, nil, zerolog.Nop()))
	ctrl := resource.New("my-tasks", tm.Source("u1"), Messages, zerolog.Nop())

	st, err := ctrl.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, st.Items[0].Status)

	st, err = ctrl.Update(context.Background(), "1", TaskInput{Status: StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, st.Items[0].Status)
	assert.Equal(t, 2, gets)

	_, err = ctrl.Remove(context.Background(), "1")
	assert.ErrorIs(t, err, resource.ErrUnsupported)
}
