package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core"
)

func TestNewTask_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	today := time.Date(2021, 3, 10, 15, 0, 0, 0, time.UTC)
	defer func(fn func() time.Time) { nowFunc = fn }(nowFunc)
	nowFunc = func() time.Time { return today }

	tests := []struct {
		name       string
		task       NewTask
		wantFields map[string]string
	}{
		{name: "defaults", task: NewTask{Title: "  Wire the sensor "}},
		{name: "due today", task: NewTask{Title: "Wire the sensor", DueDate: null.TimeFrom(today.Add(-time.Hour))}},
		{
			name:       "due in the past",
			task:       NewTask{Title: "Wire the sensor", DueDate: null.TimeFrom(today.AddDate(0, 0, -1))},
			wantFields: map[string]string{"dueDate": "dueDate cannot be in the past"},
		},
		{
			name:       "blank title",
			task:       NewTask{Title: "   "},
			wantFields: map[string]string{"title": "this field is required"},
		},
		{
			name:       "unknown status and priority",
			task:       NewTask{Title: "Wire the sensor", Status: "lol", Priority: "asap"},
			wantFields: map[string]string{"status": "status must be one of [todo in_progress in_review done]", "priority": "priority must be one of [low medium high urgent]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nt := tt.task
			err := core.TranslateValidation(nt.Validate(validate), translator)
			if tt.wantFields == nil {
				require.NoError(t, err)
				assert.Equal(t, "Wire the sensor", nt.Title)
				assert.Equal(t, StatusTodo, nt.Status)
				assert.Equal(t, PriorityMedium, nt.Priority)
				return
			}
			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "want a validation error, got %v", err)
			assert.Equal(t, tt.wantFields, vErr.FieldMap())
		})
	}
}

func TestUpdateTask_UnmarshalJSON(t *testing.T) {
	area := null.StringFrom("a1")
	base := Task{
		Title:         "Wire the sensor",
		ProjectAreaID: area,
		AssigneeID:    null.StringFrom("u1"),
		DueDate:       null.TimeFrom(time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)),
	}

	tests := []struct {
		name string
		body string
		want func(Task) Task
	}{
		{name: "empty", body: `{}`, want: func(t Task) Task { return t }},
		{
			name: "absent fields are kept",
			body: `{"title": "Solder the board"}`,
			want: func(t Task) Task { t.Title = "Solder the board"; return t },
		},
		{
			name: "null fields are cleared",
			body: `{"assigneeId": null, "projectAreaId": null, "dueDate": null}`,
			want: func(t Task) Task {
				t.AssigneeID, t.ProjectAreaID, t.DueDate = null.String{}, null.String{}, null.Time{}
				return t
			},
		},
		{
			name: "values are set",
			body: `{"assigneeId": "u2"}`,
			want: func(t Task) Task { t.AssigneeID = null.StringFrom("u2"); return t },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var upd UpdateTask
			require.NoError(t, json.Unmarshal([]byte(tt.body), &upd))
			assert.Equal(t, tt.want(base), upd.Apply(base))
		})
	}
}

func TestListFilter(t *testing.T) {
	due := time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)
	tasks := map[string]Task{
		"unassigned": {ID: "1", Status: StatusTodo},
		"assigned":   {ID: "2", Status: StatusTodo, AssigneeID: null.StringFrom("u1"), ProjectAreaID: null.StringFrom("a1")},
		"due":        {ID: "3", Status: StatusDone, AssigneeID: null.StringFrom("u2"), DueDate: null.TimeFrom(due)},
	}

	tests := []struct {
		name   string
		filter ListFilter
		params string
		want   []string
	}{
		{name: "all", want: []string{"assigned", "due", "unassigned"}},
		{name: "unassigned", filter: ListFilter{AssigneeID: core.FilterNull()}, params: "assigneeId=null", want: []string{"unassigned"}},
		{name: "assignee", filter: ListFilter{AssigneeID: core.FilterValue("u1")}, params: "assigneeId=u1", want: []string{"assigned"}},
		{name: "outside areas", filter: ListFilter{ProjectAreaID: core.FilterNull()}, params: "projectAreaId=null", want: []string{"due", "unassigned"}},
		{name: "status", filter: ListFilter{Status: StatusDone}, params: "status=done", want: []string{"due"}},
		{
			name:   "due before",
			filter: ListFilter{DueBefore: due.Add(time.Hour)},
			params: "dueBefore=2021-04-01T01%3A00%3A00Z",
			want:   []string{"due"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.params, tt.filter.Params().Encode())

			var got []string
			for _, name := range []string{"assigned", "due", "unassigned"} {
				if tt.filter.Match(tasks[name]) {
					got = append(got, name)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2021, 4, 2, 0, 0, 0, 0, time.UTC)
	due := null.TimeFrom(now.AddDate(0, 0, -1))

	assert.True(t, Task{Status: StatusInProgress, DueDate: due}.IsOverdue(now))
	assert.False(t, Task{Status: StatusDone, DueDate: due}.IsOverdue(now))
	assert.False(t, Task{Status: StatusTodo}.IsOverdue(now))
}
