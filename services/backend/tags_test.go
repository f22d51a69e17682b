package backend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/application"
	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/learningpath"
	"github.com/trezcool/masomo/core/newsletter"
	"github.com/trezcool/masomo/core/project"
	"github.com/trezcool/masomo/core/session"
	"github.com/trezcool/masomo/core/task"
	"github.com/trezcool/masomo/core/user"
	"github.com/trezcool/masomo/core/workspace"
)

var sortTags = cmpopts.SortSlices(func(a, b cache.Tag) bool { return a.String() < b.String() })

func TestCreateTaskTags(t *testing.T) {
	tests := []struct {
		name string
		task task.NewTask
		want []cache.Tag
	}{
		{
			name: "outside areas",
			task: task.NewTask{Title: "Wire the sensor"},
			want: []cache.Tag{
				{Type: TagProjectTasks, ID: "p1"},
				{Type: TagProjectTasks, ID: cache.ListID},
			},
		},
		{
			name: "in an area",
			task: task.NewTask{Title: "Wire the sensor", ProjectAreaID: null.StringFrom("a1")},
			want: []cache.Tag{
				{Type: TagProjectTasks, ID: "p1"},
				{Type: TagProjectTasks, ID: cache.ListID},
				{Type: TagAreaTasks, ID: "a1"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateTaskEndpoint.InvalidatesTags(task.Task{}, CreateTaskArgs{ProjectID: "p1", Task: tt.task})
			if diff := cmp.Diff(tt.want, got, sortTags); diff != "" {
				t.Errorf("InvalidatesTags() mismatch (-want +got):\n%s", diff)
			}
			for _, tag := range got {
				if tag == cache.ListTag(TagAreaTasks) {
					t.Errorf("the area task lists of other areas must not be invalidated")
				}
			}
		})
	}
}

func TestUpdateTaskEndpoint_InvalidatesTags(t *testing.T) {
	moved := null.StringFrom("a2")
	cleared := null.String{}

	tests := []struct {
		name   string
		ref    TaskRef
		update task.UpdateTask
		res    task.Task
		want   []cache.Tag
	}{
		{
			name:   "moved to another area",
			ref:    TaskRef{ProjectID: "p1", ID: "t1", AreaID: "a1"},
			update: task.UpdateTask{ProjectAreaID: &moved},
			res:    task.Task{ID: "t1", ProjectAreaID: moved},
			want: []cache.Tag{
				{Type: TagTask, ID: "t1"},
				{Type: TagProjectTasks, ID: "p1"},
				{Type: TagProjectTasks, ID: cache.ListID},
				{Type: TagAreaTasks, ID: "a1"},
				{Type: TagAreaTasks, ID: "a2"},
			},
		},
		{
			name:   "removed from its area",
			ref:    TaskRef{ProjectID: "p1", ID: "t1", AreaID: "a1"},
			update: task.UpdateTask{ProjectAreaID: &cleared},
			res:    task.Task{ID: "t1"},
			want: []cache.Tag{
				{Type: TagTask, ID: "t1"},
				{Type: TagProjectTasks, ID: "p1"},
				{Type: TagProjectTasks, ID: cache.ListID},
				{Type: TagAreaTasks, ID: "a1"},
			},
		},
		{
			name: "never in an area",
			ref:  TaskRef{ProjectID: "p1", ID: "t1"},
			res:  task.Task{ID: "t1"},
			want: []cache.Tag{
				{Type: TagTask, ID: "t1"},
				{Type: TagProjectTasks, ID: "p1"},
				{Type: TagProjectTasks, ID: cache.ListID},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cache.Dedupe(UpdateTaskEndpoint.InvalidatesTags(tt.res, UpdateTaskArgs{TaskRef: tt.ref, Update: tt.update}))
			if diff := cmp.Diff(tt.want, got, sortTags); diff != "" {
				t.Errorf("InvalidatesTags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListTasksEndpoint(t *testing.T) {
	args := ListTasksArgs{
		ProjectID: "p1",
		Filter: task.ListFilter{
			AssigneeID:    core.FilterNull(),
			ProjectAreaID: core.FilterValue("a3"),
		},
	}
	if got, want := ListTasksEndpoint.Key(args), "getProjectTasks(/tasks/p1/tasks?assigneeId=null&projectAreaId=a3)"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
	if got, want := ListTasksEndpoint.Key(ListTasksArgs{ProjectID: "p1"}), "getProjectTasks(/tasks/p1/tasks)"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}

	res := core.List[task.Task]{Items: []task.Task{
		{ID: "t1", ProjectAreaID: null.StringFrom("a1")},
		{ID: "t2"},
	}}
	want := []cache.Tag{
		{Type: TagAreaTasks, ID: "a1"},
		{Type: TagAreaTasks, ID: "a3"},
		{Type: TagProjectTasks, ID: "p1"},
		{Type: TagProjectTasks, ID: cache.ListID},
		{Type: TagTask, ID: "t1"},
		{Type: TagTask, ID: "t2"},
	}
	if diff := cmp.Diff(want, ListTasksEndpoint.ProvidesTags(res, args), sortTags); diff != "" {
		t.Errorf("ProvidesTags() mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskLifecycleTags(t *testing.T) {
	ref := TaskRef{ProjectID: "p1", ID: "t1", AreaID: "a1"}
	want := []cache.Tag{
		{Type: TagTask, ID: "t1"},
		{Type: TagProjectTasks, ID: "p1"},
		{Type: TagMyTasks, ID: cache.ListID},
	}
	for name, got := range map[string][]cache.Tag{
		"status": UpdateTaskStatusEndpoint.InvalidatesTags(task.Task{}, StatusArgs{TaskRef: ref}),
		"submit": SubmitTaskEndpoint.InvalidatesTags(task.Task{}, SubmitArgs{TaskRef: ref}),
		"grade":  GradeTaskEndpoint.InvalidatesTags(task.Task{}, GradeArgs{TaskRef: ref}),
	} {
		if diff := cmp.Diff(want, got, sortTags); diff != "" {
			t.Errorf("%s: InvalidatesTags() mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestDeleteProjectEndpoint_InvalidatesTags(t *testing.T) {
	got := DeleteProjectEndpoint.InvalidatesTags(struct{}{}, "p1")
	want := []cache.Tag{
		{Type: TagProject, ID: "p1"},
		{Type: TagProject, ID: cache.ListID},
		{Type: TagProjectTasks, ID: "p1"},
		{Type: TagProjectAreas, ID: "p1"},
	}
	if diff := cmp.Diff(want, got, sortTags); diff != "" {
		t.Errorf("InvalidatesTags() mismatch (-want +got):\n%s", diff)
	}
}

func TestResourceTags(t *testing.T) {
	entity := func(typ, id string) []cache.Tag { return []cache.Tag{cache.NewTag(typ, id), cache.ListTag(typ)} }
	list := func(typ string) []cache.Tag { return []cache.Tag{cache.ListTag(typ)} }

	tests := []struct {
		name string
		got  []cache.Tag
		want []cache.Tag
	}{
		// areas
		{
			name: "list areas",
			got:  ListAreasEndpoint.ProvidesTags([]project.Area{{ID: "a1"}, {ID: "a2"}}, "p1"),
			want: []cache.Tag{cache.NewTag(TagArea, "a1"), cache.NewTag(TagArea, "a2"), cache.NewTag(TagProjectAreas, "p1")},
		},
		{
			name: "create area",
			got:  CreateAreaEndpoint.InvalidatesTags(project.Area{ID: "a3"}, CreateAreaArgs{ProjectID: "p1"}),
			want: []cache.Tag{cache.NewTag(TagProjectAreas, "p1")},
		},
		{
			name: "update area",
			got:  UpdateAreaEndpoint.InvalidatesTags(project.Area{}, UpdateAreaArgs{ProjectID: "p1", ID: "a1"}),
			want: []cache.Tag{cache.NewTag(TagProjectAreas, "p1"), cache.NewTag(TagArea, "a1"), cache.NewTag(TagAreaTasks, "a1")},
		},
		{
			name: "delete area",
			got:  DeleteAreaEndpoint.InvalidatesTags(struct{}{}, AreaRef{ProjectID: "p1", ID: "a1"}),
			want: []cache.Tag{cache.NewTag(TagProjectAreas, "p1"), cache.NewTag(TagArea, "a1"), cache.NewTag(TagAreaTasks, "a1")},
		},

		// users
		{
			name: "list users",
			got:  ListUsersEndpoint.ProvidesTags(core.List[user.User]{Items: []user.User{{ID: "u1"}}}, user.QueryFilter{}),
			want: entity(TagUser, "u1"),
		},
		{name: "get user", got: GetUserEndpoint.ProvidesTags(user.User{}, "u1"), want: []cache.Tag{cache.NewTag(TagUser, "u1")}},
		{name: "create user", got: CreateUserEndpoint.InvalidatesTags(user.User{ID: "u2"}, user.NewUser{}), want: list(TagUser)},
		{name: "update user", got: UpdateUserEndpoint.InvalidatesTags(user.User{}, UpdateUserArgs{ID: "u1"}), want: entity(TagUser, "u1")},
		{name: "delete user", got: DeleteUserEndpoint.InvalidatesTags(struct{}{}, "u1"), want: entity(TagUser, "u1")},

		// sessions
		{
			name: "list sessions",
			got:  ListSessionsEndpoint.ProvidesTags(core.List[session.Session]{Items: []session.Session{{ID: "s1"}}}, session.QueryFilter{}),
			want: entity(TagSession, "s1"),
		},
		{name: "get session", got: GetSessionEndpoint.ProvidesTags(session.Session{}, "s1"), want: []cache.Tag{cache.NewTag(TagSession, "s1")}},
		{name: "create session", got: CreateSessionEndpoint.InvalidatesTags(session.Session{ID: "s2"}, session.NewSession{}), want: list(TagSession)},
		{name: "update session", got: UpdateSessionEndpoint.InvalidatesTags(session.Session{}, UpdateSessionArgs{ID: "s1"}), want: entity(TagSession, "s1")},
		{name: "join session", got: JoinSessionEndpoint.InvalidatesTags(session.Session{}, "s1"), want: entity(TagSession, "s1")},
		{name: "leave session", got: LeaveSessionEndpoint.InvalidatesTags(session.Session{}, "s1"), want: entity(TagSession, "s1")},
		{name: "cancel session", got: CancelSessionEndpoint.InvalidatesTags(session.Session{}, "s1"), want: entity(TagSession, "s1")},
		{name: "delete session", got: DeleteSessionEndpoint.InvalidatesTags(struct{}{}, "s1"), want: entity(TagSession, "s1")},

		// applications
		{
			name: "list applications",
			got: ListApplicationsEndpoint.ProvidesTags(
				core.List[application.Application]{Items: []application.Application{{ID: "ap1"}}}, application.QueryFilter{}),
			want: entity(TagApplication, "ap1"),
		},
		{name: "get application", got: GetApplicationEndpoint.ProvidesTags(application.Application{}, "ap1"), want: []cache.Tag{cache.NewTag(TagApplication, "ap1")}},
		{name: "create application", got: CreateApplicationEndpoint.InvalidatesTags(application.Application{ID: "ap2"}, application.NewApplication{}), want: list(TagApplication)},
		{
			name: "application status",
			got:  UpdateApplicationStatusEndpoint.InvalidatesTags(application.Application{}, ApplicationStatusArgs{ID: "ap1"}),
			want: entity(TagApplication, "ap1"),
		},
		{name: "delete application", got: DeleteApplicationEndpoint.InvalidatesTags(struct{}{}, "ap1"), want: entity(TagApplication, "ap1")},

		// newsletters
		{
			name: "list subscriptions",
			got: ListSubscriptionsEndpoint.ProvidesTags(
				core.List[newsletter.Subscription]{Items: []newsletter.Subscription{{ID: "n1"}}}, newsletter.QueryFilter{}),
			want: entity(TagNewsletterSubscription, "n1"),
		},
		{name: "subscribe", got: SubscribeEndpoint.InvalidatesTags(newsletter.Subscription{ID: "n1"}, newsletter.Subscribe{}), want: entity(TagNewsletterSubscription, "n1")},
		{name: "unsubscribe", got: UnsubscribeEndpoint.InvalidatesTags(newsletter.Subscription{ID: "n1"}, newsletter.Unsubscribe{}), want: entity(TagNewsletterSubscription, "n1")},
		{name: "delete subscription", got: DeleteSubscriptionEndpoint.InvalidatesTags(struct{}{}, "n1"), want: entity(TagNewsletterSubscription, "n1")},

		// learning paths
		{
			name: "list learning paths",
			got: ListLearningPathsEndpoint.ProvidesTags(
				core.List[learningpath.LearningPath]{Items: []learningpath.LearningPath{{ID: "lp1"}}}, learningpath.QueryFilter{}),
			want: entity(TagLearningPath, "lp1"),
		},
		{
			name: "my learning paths",
			got:  MyLearningPathsEndpoint.ProvidesTags([]learningpath.MyPath{{LearningPath: learningpath.LearningPath{ID: "lp1"}}}, struct{}{}),
			want: []cache.Tag{cache.NewTag(TagLearningPath, "lp1"), cache.ListTag(TagMyLearningPaths)},
		},
		{name: "get learning path", got: GetLearningPathEndpoint.ProvidesTags(learningpath.LearningPath{}, "lp1"), want: []cache.Tag{cache.NewTag(TagLearningPath, "lp1")}},
		{
			name: "create learning path",
			got:  CreateLearningPathEndpoint.InvalidatesTags(learningpath.LearningPath{ID: "lp2"}, learningpath.NewLearningPath{}),
			want: list(TagLearningPath),
		},
		{
			name: "update learning path",
			got:  UpdateLearningPathEndpoint.InvalidatesTags(learningpath.LearningPath{}, UpdateLearningPathArgs{ID: "lp1"}),
			want: append(entity(TagLearningPath, "lp1"), cache.ListTag(TagMyLearningPaths)),
		},
		{
			name: "delete learning path",
			got:  DeleteLearningPathEndpoint.InvalidatesTags(struct{}{}, "lp1"),
			want: append(entity(TagLearningPath, "lp1"), cache.ListTag(TagMyLearningPaths)),
		},
		{
			name: "enroll",
			got:  EnrollEndpoint.InvalidatesTags(learningpath.Enrollment{}, "lp1"),
			want: []cache.Tag{cache.NewTag(TagLearningPath, "lp1"), cache.ListTag(TagMyLearningPaths)},
		},

		// workspaces
		{name: "get workspace", got: GetWorkspaceEndpoint.ProvidesTags(workspace.Workspace{}, "p1"), want: []cache.Tag{cache.NewTag(TagWorkspace, "p1")}},
		{name: "update notes", got: UpdateNotesEndpoint.InvalidatesTags(workspace.Workspace{}, UpdateNotesArgs{ProjectID: "p1"}), want: []cache.Tag{cache.NewTag(TagWorkspace, "p1")}},
		{name: "add resource", got: AddResourceEndpoint.InvalidatesTags(workspace.Resource{}, AddResourceArgs{ProjectID: "p1"}), want: []cache.Tag{cache.NewTag(TagWorkspace, "p1")}},
		{
			name: "remove resource",
			got:  RemoveResourceEndpoint.InvalidatesTags(struct{}{}, ResourceRef{ProjectID: "p1", ID: "r1"}),
			want: []cache.Tag{cache.NewTag(TagWorkspace, "p1")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got, sortTags); diff != "" {
				t.Errorf("tags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
