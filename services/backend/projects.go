package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/project"
)

type (
	UpdateProjectArgs struct {
		ID     string
		Update project.UpdateProject
	}

	AddMemberArgs struct {
		ProjectID string
		Member    project.AddMember
	}

	RemoveMemberArgs struct {
		ProjectID string
		UserID    string
	}
)

func projectPath(id string) string { return "/projects/" + url.PathEscape(id) }

var (
	ListProjectsEndpoint = QueryDef[project.QueryFilter, core.List[project.Project]]{
		Name: "getProjects",
		Request: func(filter project.QueryFilter) Request {
			return Request{Method: http.MethodGet, Path: "/projects", Params: filter.Params()}
		},
		ProvidesTags: func(res core.List[project.Project], _ project.QueryFilter) []cache.Tag {
			return listTags(TagProject, ids(res.Items, func(p project.Project) string { return p.ID }))
		},
	}

	GetProjectEndpoint = QueryDef[string, project.Project]{
		Name: "getProject",
		Request: func(id string) Request {
			return Request{Method: http.MethodGet, Path: projectPath(id)}
		},
		ProvidesTags: func(_ project.Project, id string) []cache.Tag {
			return []cache.Tag{cache.NewTag(TagProject, id)}
		},
	}

	CreateProjectEndpoint = MutationDef[project.NewProject, project.Project]{
		Name: "createProject",
		Request: func(np project.NewProject) Request {
			return Request{Method: http.MethodPost, Path: "/projects", Body: &np}
		},
		InvalidatesTags: func(project.Project, project.NewProject) []cache.Tag {
			return []cache.Tag{cache.ListTag(TagProject)}
		},
	}

	UpdateProjectEndpoint = MutationDef[UpdateProjectArgs, project.Project]{
		Name: "updateProject",
		Request: func(args UpdateProjectArgs) Request {
			return Request{Method: http.MethodPatch, Path: projectPath(args.ID), Body: &args.Update}
		},
		InvalidatesTags: func(_ project.Project, args UpdateProjectArgs) []cache.Tag {
			return entityTags(TagProject, args.ID)
		},
	}

	DeleteProjectEndpoint = MutationDef[string, struct{}]{
		Name: "deleteProject",
		Request: func(id string) Request {
			return Request{Method: http.MethodDelete, Path: projectPath(id)}
		},
		InvalidatesTags: func(_ struct{}, id string) []cache.Tag {
			return []cache.Tag{
				cache.NewTag(TagProject, id),
				cache.ListTag(TagProject),
				cache.NewTag(TagProjectTasks, id),
				cache.NewTag(TagProjectAreas, id),
			}
		},
	}

	AddProjectMemberEndpoint = MutationDef[AddMemberArgs, project.Project]{
		Name: "addProjectMember",
		Request: func(args AddMemberArgs) Request {
			return Request{Method: http.MethodPost, Path: projectPath(args.ProjectID) + "/members", Body: &args.Member}
		},
		InvalidatesTags: func(_ project.Project, args AddMemberArgs) []cache.Tag {
			return []cache.Tag{cache.NewTag(TagProject, args.ProjectID)}
		},
	}

	RemoveProjectMemberEndpoint = MutationDef[RemoveMemberArgs, project.Project]{
		Name: "removeProjectMember",
		Request: func(args RemoveMemberArgs) Request {
			return Request{
				Method: http.MethodDelete,
				Path:   projectPath(args.ProjectID) + "/members/" + url.PathEscape(args.UserID),
			}
		},
		InvalidatesTags: func(_ project.Project, args RemoveMemberArgs) []cache.Tag {
			return []cache.Tag{cache.NewTag(TagProject, args.ProjectID)}
		},
	}
)

func (c *Client) ListProjects(ctx context.Context, filter project.QueryFilter) (core.List[project.Project], error) {
	return Query(ctx, c, ListProjectsEndpoint, filter)
}

func (c *Client) GetProject(ctx context.Context, id string) (project.Project, error) {
	return Query(ctx, c, GetProjectEndpoint, id)
}

func (c *Client) CreateProject(ctx context.Context, np project.NewProject) (project.Project, error) {
	return Mutate(ctx, c, CreateProjectEndpoint, np)
}

func (c *Client) UpdateProject(ctx context.Context, id string, up project.UpdateProject) (project.Project, error) {
	return Mutate(ctx, c, UpdateProjectEndpoint, UpdateProjectArgs{ID: id, Update: up})
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, err := Mutate(ctx, c, DeleteProjectEndpoint, id)
	return err
}

func (c *Client) AddProjectMember(ctx context.Context, projectID string, am project.AddMember) (project.Project, error) {
	return Mutate(ctx, c, AddProjectMemberEndpoint, AddMemberArgs{ProjectID: projectID, Member: am})
}

func (c *Client) RemoveProjectMember(ctx context.Context, projectID, userID string) (project.Project, error) {
	return Mutate(ctx, c, RemoveProjectMemberEndpoint, RemoveMemberArgs{ProjectID: projectID, UserID: userID})
}
