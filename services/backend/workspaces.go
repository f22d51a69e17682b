package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/workspace"
)

type (
	UpdateNotesArgs struct {
		ProjectID string
		Notes     workspace.UpdateNotes
	}

	AddResourceArgs struct {
		ProjectID string
		Resource  workspace.NewResource
	}

	ResourceRef struct {
		ProjectID string
		ID        string
	}
)

func workspacePath(projectID string) string { return "/workspaces/" + url.PathEscape(projectID) }

func workspaceTags(projectID string) []cache.Tag {
	return []cache.Tag{cache.NewTag(TagWorkspace, projectID)}
}

var (
	GetWorkspaceEndpoint = QueryDef[string, workspace.Workspace]{
		Name: "getWorkspace",
		Request: func(projectID string) Request {
			return Request{Method: http.MethodGet, Path: workspacePath(projectID)}
		},
		ProvidesTags: func(_ workspace.Workspace, projectID string) []cache.Tag {
			return workspaceTags(projectID)
		},
	}

	UpdateNotesEndpoint = MutationDef[UpdateNotesArgs, workspace.Workspace]{
		Name: "updateWorkspaceNotes",
		Request: func(args UpdateNotesArgs) Request {
			return Request{Method: http.MethodPatch, Path: workspacePath(args.ProjectID), Body: &args.Notes}
		},
		InvalidatesTags: func(_ workspace.Workspace, args UpdateNotesArgs) []cache.Tag {
			return workspaceTags(args.ProjectID)
		},
	}

	AddResourceEndpoint = MutationDef[AddResourceArgs, workspace.Resource]{
		Name: "addWorkspaceResource",
		Request: func(args AddResourceArgs) Request {
			return Request{Method: http.MethodPost, Path: workspacePath(args.ProjectID) + "/resources", Body: &args.Resource}
		},
		InvalidatesTags: func(_ workspace.Resource, args AddResourceArgs) []cache.Tag {
			return workspaceTags(args.ProjectID)
		},
	}

	RemoveResourceEndpoint = MutationDef[ResourceRef, struct{}]{
		Name: "removeWorkspaceResource",
		Request: func(ref ResourceRef) Request {
			return Request{
				Method: http.MethodDelete,
				Path:   workspacePath(ref.ProjectID) + "/resources/" + url.PathEscape(ref.ID),
			}
		},
		InvalidatesTags: func(_ struct{}, ref ResourceRef) []cache.Tag {
			return workspaceTags(ref.ProjectID)
		},
	}
)

func (c *Client) GetWorkspace(ctx context.Context, projectID string) (workspace.Workspace, error) {
	return Query(ctx, c, GetWorkspaceEndpoint, projectID)
}

func (c *Client) UpdateWorkspaceNotes(ctx context.Context, projectID, notes string) (workspace.Workspace, error) {
	return Mutate(ctx, c, UpdateNotesEndpoint, UpdateNotesArgs{ProjectID: projectID, Notes: workspace.UpdateNotes{Notes: notes}})
}

func (c *Client) AddWorkspaceResource(ctx context.Context, projectID string, nr workspace.NewResource) (workspace.Resource, error) {
	return Mutate(ctx, c, AddResourceEndpoint, AddResourceArgs{ProjectID: projectID, Resource: nr})
}

func (c *Client) RemoveWorkspaceResource(ctx context.Context, projectID, id string) error {
	_, err := Mutate(ctx, c, RemoveResourceEndpoint, ResourceRef{ProjectID: projectID, ID: id})
	return err
}
