package inmemdb

import (
	"github.com/trezcool/masomo/core/application"
	"github.com/trezcool/masomo/core/learningpath"
	"github.com/trezcool/masomo/core/newsletter"
	"github.com/trezcool/masomo/core/project"
	"github.com/trezcool/masomo/core/session"
	"github.com/trezcool/masomo/core/task"
	"github.com/trezcool/masomo/core/user"
	"github.com/trezcool/masomo/core/workspace"
)

// DB holds every table of the dev backend. Nothing is persisted.
type DB struct {
	Users         *Table[user.User]
	Projects      *Table[project.Project]
	Areas         *Table[project.Area]
	Tasks         *Table[task.Task]
	Sessions      *Table[session.Session]
	Applications  *Table[application.Application]
	Subscriptions *Table[newsletter.Subscription]
	LearningPaths *Table[learningpath.LearningPath]
	// Enrollments are keyed by EnrollmentKey.
	Enrollments *Table[learningpath.Enrollment]
	// Workspaces are keyed by project ID.
	Workspaces *Table[workspace.Workspace]
}

func Open() *DB {
	return &DB{
		Users:         NewTable[user.User](),
		Projects:      NewTable[project.Project](),
		Areas:         NewTable[project.Area](),
		Tasks:         NewTable[task.Task](),
		Sessions:      NewTable[session.Session](),
		Applications:  NewTable[application.Application](),
		Subscriptions: NewTable[newsletter.Subscription](),
		LearningPaths: NewTable[learningpath.LearningPath](),
		Enrollments:   NewTable[learningpath.Enrollment](),
		Workspaces:    NewTable[workspace.Workspace](),
	}
}

func EnrollmentKey(pathID, userID string) string {
	return pathID + "/" + userID
}
