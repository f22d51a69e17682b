package backend

import "github.com/trezcool/masomo/core/cache"

// Tag types
const (
	TagProject                = "Project"
	TagProjectAreas           = "ProjectAreas"
	TagArea                   = "Area"
	TagProjectTasks           = "ProjectTasks"
	TagAreaTasks              = "AreaTasks"
	TagMyTasks                = "MyTasks"
	TagTask                   = "Task"
	TagUser                   = "User"
	TagSession                = "Session"
	TagApplication            = "Application"
	TagNewsletterSubscription = "NewsletterSubscription"
	TagLearningPath           = "LearningPath"
	TagMyLearningPaths        = "MyLearningPaths"
	TagWorkspace              = "Workspace"
)

// MeID is the ID of the tag provided by the current user read.
const MeID = "ME"

// listTags returns one tag per id plus the collection tag of typ.
func listTags(typ string, ids []string) []cache.Tag {
	tags := make([]cache.Tag, 0, len(ids)+1)
	for _, id := range ids {
		tags = append(tags, cache.NewTag(typ, id))
	}
	return append(tags, cache.ListTag(typ))
}

// entityTags returns the tag of one resource plus the collection tag of typ.
func entityTags(typ, id string) []cache.Tag {
	return []cache.Tag{cache.NewTag(typ, id), cache.ListTag(typ)}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}
