package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/task"
)

type (
	ListTasksArgs struct {
		ProjectID string
		Filter    task.ListFilter
	}

	// TaskRef locates a task. AreaID is the area the task was in before the write, if any.
	TaskRef struct {
		ProjectID string
		ID        string
		AreaID    string
	}

	CreateTaskArgs struct {
		ProjectID string
		Task      task.NewTask
	}

	UpdateTaskArgs struct {
		TaskRef
		Update task.UpdateTask
	}

	StatusArgs struct {
		TaskRef
		Status task.StatusUpdate
	}

	SubmitArgs struct {
		TaskRef
		Submission task.Submit
	}

	GradeArgs struct {
		TaskRef
		Grade task.Grade
	}
)

// RefOf returns the reference of an existing task.
func RefOf(t task.Task) TaskRef {
	return TaskRef{ProjectID: t.ProjectID, ID: t.ID, AreaID: t.AreaID()}
}

func tasksPath(projectID string) string { return "/tasks/" + url.PathEscape(projectID) + "/tasks" }

func (ref TaskRef) path() string { return tasksPath(ref.ProjectID) + "/" + url.PathEscape(ref.ID) }

// lifecycleTags are invalidated by status changes, submissions and gradings, which
// never move a task between projects or areas.
func (ref TaskRef) lifecycleTags() []cache.Tag {
	return []cache.Tag{
		cache.NewTag(TagTask, ref.ID),
		cache.NewTag(TagProjectTasks, ref.ProjectID),
		cache.ListTag(TagMyTasks),
	}
}

func areaTasksTag(areaID string) (cache.Tag, bool) {
	if areaID == "" {
		return cache.Tag{}, false
	}
	return cache.NewTag(TagAreaTasks, areaID), true
}

// taskListTags returns the tags provided by a task list: every task, the project's and
// the collection's task lists, and every area seen along with the filtered area.
func taskListTags(tasks []task.Task, projectID string, filter task.ListFilter) []cache.Tag {
	tags := make([]cache.Tag, 0, len(tasks)*2+3)
	for _, t := range tasks {
		tags = append(tags, cache.NewTag(TagTask, t.ID))
		if tag, ok := areaTasksTag(t.AreaID()); ok {
			tags = append(tags, tag)
		}
	}
	tags = append(tags, cache.NewTag(TagProjectTasks, projectID), cache.ListTag(TagProjectTasks))
	if !filter.ProjectAreaID.IsAbsent() && filter.ProjectAreaID.Value.Valid {
		if tag, ok := areaTasksTag(filter.ProjectAreaID.Value.String); ok {
			tags = append(tags, tag)
		}
	}
	return cache.Dedupe(tags)
}

// CreateTaskTags returns the tags invalidated by the creation of a task.
// The area collection tag is never invalidated.
func CreateTaskTags(projectID string, nt task.NewTask) []cache.Tag {
	tags := []cache.Tag{cache.NewTag(TagProjectTasks, projectID), cache.ListTag(TagProjectTasks)}
	if nt.ProjectAreaID.Valid {
		if tag, ok := areaTasksTag(nt.ProjectAreaID.String); ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

var (
	ListTasksEndpoint = QueryDef[ListTasksArgs, core.List[task.Task]]{
		Name: "getProjectTasks",
		Request: func(args ListTasksArgs) Request {
			return Request{Method: http.MethodGet, Path: tasksPath(args.ProjectID), Params: args.Filter.Params()}
		},
		ProvidesTags: func(res core.List[task.Task], args ListTasksArgs) []cache.Tag {
			return taskListTags(res.Items, args.ProjectID, args.Filter)
		},
	}

	GetTaskEndpoint = QueryDef[TaskRef, task.Task]{
		Name: "getTask",
		Request: func(ref TaskRef) Request {
			return Request{Method: http.MethodGet, Path: ref.path()}
		},
		ProvidesTags: func(_ task.Task, ref TaskRef) []cache.Tag {
			return []cache.Tag{cache.NewTag(TagTask, ref.ID)}
		},
	}

	MyTasksEndpoint = QueryDef[task.MyFilter, core.List[task.Task]]{
		Name: "getMyTasks",
		Request: func(filter task.MyFilter) Request {
			return Request{Method: http.MethodGet, Path: "/tasks/my/tasks", Params: filter.Params()}
		},
		ProvidesTags: func(res core.List[task.Task], _ task.MyFilter) []cache.Tag {
			tags := make([]cache.Tag, 0, len(res.Items)+2)
			for _, t := range res.Items {
				tags = append(tags, cache.NewTag(TagTask, t.ID))
			}
			return append(tags, cache.ListTag(TagMyTasks), cache.ListTag(TagProjectTasks))
		},
	}

	CreateTaskEndpoint = MutationDef[CreateTaskArgs, task.Task]{
		Name: "createTask",
		Request: func(args CreateTaskArgs) Request {
			return Request{Method: http.MethodPost, Path: tasksPath(args.ProjectID), Body: &args.Task}
		},
		InvalidatesTags: func(_ task.Task, args CreateTaskArgs) []cache.Tag {
			return CreateTaskTags(args.ProjectID, args.Task)
		},
	}

	UpdateTaskEndpoint = MutationDef[UpdateTaskArgs, task.Task]{
		Name: "updateTask",
		Request: func(args UpdateTaskArgs) Request {
			return Request{Method: http.MethodPatch, Path: args.path(), Body: &args.Update}
		},
		InvalidatesTags: func(res task.Task, args UpdateTaskArgs) []cache.Tag {
			tags := []cache.Tag{
				cache.NewTag(TagTask, args.ID),
				cache.NewTag(TagProjectTasks, args.ProjectID),
				cache.ListTag(TagProjectTasks),
			}
			newArea := args.AreaID
			if args.Update.ProjectAreaID != nil {
				newArea = args.Update.ProjectAreaID.String
			}
			if res.ID != "" {
				newArea = res.AreaID()
			}
			for _, areaID := range []string{args.AreaID, newArea} {
				if tag, ok := areaTasksTag(areaID); ok {
					tags = append(tags, tag)
				}
			}
			return tags
		},
	}

	UpdateTaskStatusEndpoint = MutationDef[StatusArgs, task.Task]{
		Name: "updateTaskStatus",
		Request: func(args StatusArgs) Request {
			return Request{Method: http.MethodPatch, Path: args.path() + "/status", Body: &args.Status}
		},
		InvalidatesTags: func(_ task.Task, args StatusArgs) []cache.Tag {
			return args.lifecycleTags()
		},
	}

	SubmitTaskEndpoint = MutationDef[SubmitArgs, task.Task]{
		Name: "submitTask",
		Request: func(args SubmitArgs) Request {
			return Request{Method: http.MethodPost, Path: args.path() + "/submit", Body: &args.Submission}
		},
		InvalidatesTags: func(_ task.Task, args SubmitArgs) []cache.Tag {
			return args.lifecycleTags()
		},
	}

	GradeTaskEndpoint = MutationDef[GradeArgs, task.Task]{
		Name: "gradeTask",
		Request: func(args GradeArgs) Request {
			return Request{Method: http.MethodPost, Path: args.path() + "/grade", Body: &args.Grade}
		},
		InvalidatesTags: func(_ task.Task, args GradeArgs) []cache.Tag {
			return args.lifecycleTags()
		},
	}

	DeleteTaskEndpoint = MutationDef[TaskRef, struct{}]{
		Name: "deleteTask",
		Request: func(ref TaskRef) Request {
			return Request{Method: http.MethodDelete, Path: ref.path()}
		},
		InvalidatesTags: func(_ struct{}, ref TaskRef) []cache.Tag {
			tags := []cache.Tag{
				cache.NewTag(TagTask, ref.ID),
				cache.NewTag(TagProjectTasks, ref.ProjectID),
				cache.ListTag(TagProjectTasks),
			}
			if tag, ok := areaTasksTag(ref.AreaID); ok {
				tags = append(tags, tag)
			}
			return tags
		},
	}
)

func (c *Client) ListTasks(ctx context.Context, projectID string, filter task.ListFilter) (core.List[task.Task], error) {
	return Query(ctx, c, ListTasksEndpoint, ListTasksArgs{ProjectID: projectID, Filter: filter})
}

func (c *Client) GetTask(ctx context.Context, projectID, id string) (task.Task, error) {
	return Query(ctx, c, GetTaskEndpoint, TaskRef{ProjectID: projectID, ID: id})
}

func (c *Client) MyTasks(ctx context.Context, filter task.MyFilter) (core.List[task.Task], error) {
	return Query(ctx, c, MyTasksEndpoint, filter)
}

func (c *Client) CreateTask(ctx context.Context, projectID string, nt task.NewTask) (task.Task, error) {
	return Mutate(ctx, c, CreateTaskEndpoint, CreateTaskArgs{ProjectID: projectID, Task: nt})
}

// UpdateTask modifies t; t is the task as last read, so that its previous area gets invalidated.
func (c *Client) UpdateTask(ctx context.Context, t task.Task, upd task.UpdateTask) (task.Task, error) {
	return Mutate(ctx, c, UpdateTaskEndpoint, UpdateTaskArgs{TaskRef: RefOf(t), Update: upd})
}

func (c *Client) UpdateTaskStatus(ctx context.Context, ref TaskRef, status string) (task.Task, error) {
	return Mutate(ctx, c, UpdateTaskStatusEndpoint, StatusArgs{TaskRef: ref, Status: task.StatusUpdate{Status: status}})
}

func (c *Client) SubmitTask(ctx context.Context, ref TaskRef, s task.Submit) (task.Task, error) {
	return Mutate(ctx, c, SubmitTaskEndpoint, SubmitArgs{TaskRef: ref, Submission: s})
}

func (c *Client) GradeTask(ctx context.Context, ref TaskRef, g task.Grade) (task.Task, error) {
	return Mutate(ctx, c, GradeTaskEndpoint, GradeArgs{TaskRef: ref, Grade: g})
}

func (c *Client) DeleteTask(ctx context.Context, ref TaskRef) error {
	_, err := Mutate(ctx, c, DeleteTaskEndpoint, ref)
	return err
}
