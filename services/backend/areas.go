package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/project"
)

type (
	CreateAreaArgs struct {
		ProjectID string
		Area      project.NewArea
	}

	UpdateAreaArgs struct {
		ProjectID string
		ID        string
		Update    project.UpdateArea
	}

	AreaRef struct {
		ProjectID string
		ID        string
	}
)

func areasPath(projectID string) string { return projectPath(projectID) + "/areas" }

func areaPath(projectID, id string) string { return areasPath(projectID) + "/" + url.PathEscape(id) }

var (
	ListAreasEndpoint = QueryDef[string, []project.Area]{
		Name: "getProjectAreas",
		Request: func(projectID string) Request {
			return Request{Method: http.MethodGet, Path: areasPath(projectID)}
		},
		ProvidesTags: func(areas []project.Area, projectID string) []cache.Tag {
			tags := make([]cache.Tag, 0, len(areas)+1)
			for _, a := range areas {
				tags = append(tags, cache.NewTag(TagArea, a.ID))
			}
			return append(tags, cache.NewTag(TagProjectAreas, projectID))
		},
	}

	CreateAreaEndpoint = MutationDef[CreateAreaArgs, project.Area]{
		Name: "createProjectArea",
		Request: func(args CreateAreaArgs) Request {
			return Request{Method: http.MethodPost, Path: areasPath(args.ProjectID), Body: &args.Area}
		},
		InvalidatesTags: func(_ project.Area, args CreateAreaArgs) []cache.Tag {
			return []cache.Tag{cache.NewTag(TagProjectAreas, args.ProjectID)}
		},
	}

	UpdateAreaEndpoint = MutationDef[UpdateAreaArgs, project.Area]{
		Name: "updateProjectArea",
		Request: func(args UpdateAreaArgs) Request {
			return Request{Method: http.MethodPatch, Path: areaPath(args.ProjectID, args.ID), Body: &args.Update}
		},
		InvalidatesTags: func(_ project.Area, args UpdateAreaArgs) []cache.Tag {
			return areaWriteTags(args.ProjectID, args.ID)
		},
	}

	DeleteAreaEndpoint = MutationDef[AreaRef, struct{}]{
		Name: "deleteProjectArea",
		Request: func(ref AreaRef) Request {
			return Request{Method: http.MethodDelete, Path: areaPath(ref.ProjectID, ref.ID)}
		},
		InvalidatesTags: func(_ struct{}, ref AreaRef) []cache.Tag {
			return areaWriteTags(ref.ProjectID, ref.ID)
		},
	}
)

func areaWriteTags(projectID, id string) []cache.Tag {
	return []cache.Tag{
		cache.NewTag(TagProjectAreas, projectID),
		cache.NewTag(TagArea, id),
		cache.NewTag(TagAreaTasks, id),
	}
}

func (c *Client) ListAreas(ctx context.Context, projectID string) ([]project.Area, error) {
	return Query(ctx, c, ListAreasEndpoint, projectID)
}

func (c *Client) CreateArea(ctx context.Context, projectID string, na project.NewArea) (project.Area, error) {
	return Mutate(ctx, c, CreateAreaEndpoint, CreateAreaArgs{ProjectID: projectID, Area: na})
}

func (c *Client) UpdateArea(ctx context.Context, projectID, id string, ua project.UpdateArea) (project.Area, error) {
	return Mutate(ctx, c, UpdateAreaEndpoint, UpdateAreaArgs{ProjectID: projectID, ID: id, Update: ua})
}

func (c *Client) DeleteArea(ctx context.Context, projectID, id string) error {
	_, err := Mutate(ctx, c, DeleteAreaEndpoint, AreaRef{ProjectID: projectID, ID: id})
	return err
}
