package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/learningpath"
)

type UpdateLearningPathArgs struct {
	ID     string
	Update learningpath.UpdateLearningPath
}

func learningPathPath(id string) string { return "/learning-paths/" + url.PathEscape(id) }

func learningPathWriteTags(id string) []cache.Tag {
	return append(entityTags(TagLearningPath, id), cache.ListTag(TagMyLearningPaths))
}

var (
	ListLearningPathsEndpoint = QueryDef[learningpath.QueryFilter, core.List[learningpath.LearningPath]]{
		Name: "getLearningPaths",
		Request: func(filter learningpath.QueryFilter) Request {
			return Request{Method: http.MethodGet, Path: "/learning-paths", Params: filter.Params()}
		},
		ProvidesTags: func(res core.List[learningpath.LearningPath], _ learningpath.QueryFilter) []cache.Tag {
			return listTags(TagLearningPath, ids(res.Items, func(lp learningpath.LearningPath) string { return lp.ID }))
		},
	}

	MyLearningPathsEndpoint = QueryDef[struct{}, []learningpath.MyPath]{
		Name: "getMyLearningPaths",
		Request: func(struct{}) Request {
			return Request{Method: http.MethodGet, Path: "/learning-paths/my"}
		},
		ProvidesTags: func(paths []learningpath.MyPath, _ struct{}) []cache.Tag {
			tags := make([]cache.Tag, 0, len(paths)+1)
			for _, p := range paths {
				tags = append(tags, cache.NewTag(TagLearningPath, p.ID))
			}
			return append(tags, cache.ListTag(TagMyLearningPaths))
		},
	}

	GetLearningPathEndpoint = QueryDef[string, learningpath.LearningPath]{
		Name: "getLearningPath",
		Request: func(id string) Request {
			return Request{Method: http.MethodGet, Path: learningPathPath(id)}
		},
		ProvidesTags: func(_ learningpath.LearningPath, id string) []cache.Tag {
			return []cache.Tag{cache.NewTag(TagLearningPath, id)}
		},
	}

	CreateLearningPathEndpoint = MutationDef[learningpath.NewLearningPath, learningpath.LearningPath]{
		Name: "createLearningPath",
		Request: func(nlp learningpath.NewLearningPath) Request {
			return Request{Method: http.MethodPost, Path: "/learning-paths", Body: &nlp}
		},
		InvalidatesTags: func(learningpath.LearningPath, learningpath.NewLearningPath) []cache.Tag {
			return []cache.Tag{cache.ListTag(TagLearningPath)}
		},
	}

	UpdateLearningPathEndpoint = MutationDef[UpdateLearningPathArgs, learningpath.LearningPath]{
		Name: "updateLearningPath",
		Request: func(args UpdateLearningPathArgs) Request {
			return Request{Method: http.MethodPatch, Path: learningPathPath(args.ID), Body: &args.Update}
		},
		InvalidatesTags: func(_ learningpath.LearningPath, args UpdateLearningPathArgs) []cache.Tag {
			return learningPathWriteTags(args.ID)
		},
	}

	DeleteLearningPathEndpoint = MutationDef[string, struct{}]{
		Name: "deleteLearningPath",
		Request: func(id string) Request {
			return Request{Method: http.MethodDelete, Path: learningPathPath(id)}
		},
		InvalidatesTags: func(_ struct{}, id string) []cache.Tag {
			return learningPathWriteTags(id)
		},
	}

	EnrollEndpoint = MutationDef[string, learningpath.Enrollment]{
		Name: "enrollLearningPath",
		Request: func(id string) Request {
			return Request{Method: http.MethodPost, Path: learningPathPath(id) + "/enroll"}
		},
		InvalidatesTags: func(_ learningpath.Enrollment, id string) []cache.Tag {
			return []cache.Tag{cache.NewTag(TagLearningPath, id), cache.ListTag(TagMyLearningPaths)}
		},
	}
)

func (c *Client) ListLearningPaths(ctx context.Context, filter learningpath.QueryFilter) (core.List[learningpath.LearningPath], error) {
	return Query(ctx, c, ListLearningPathsEndpoint, filter)
}

func (c *Client) MyLearningPaths(ctx context.Context) ([]learningpath.MyPath, error) {
	return Query(ctx, c, MyLearningPathsEndpoint, struct{}{})
}

func (c *Client) GetLearningPath(ctx context.Context, id string) (learningpath.LearningPath, error) {
	return Query(ctx, c, GetLearningPathEndpoint, id)
}

func (c *Client) CreateLearningPath(ctx context.Context, nlp learningpath.NewLearningPath) (learningpath.LearningPath, error) {
	return Mutate(ctx, c, CreateLearningPathEndpoint, nlp)
}

func (c *Client) UpdateLearningPath(ctx context.Context, id string, ulp learningpath.UpdateLearningPath) (learningpath.LearningPath, error) {
	return Mutate(ctx, c, UpdateLearningPathEndpoint, UpdateLearningPathArgs{ID: id, Update: ulp})
}

func (c *Client) DeleteLearningPath(ctx context.Context, id string) error {
	_, err := Mutate(ctx, c, DeleteLearningPathEndpoint, id)
	return err
}

func (c *Client) Enroll(ctx context.Context, id string) (learningpath.Enrollment, error) {
	return Mutate(ctx, c, EnrollEndpoint, id)
}
