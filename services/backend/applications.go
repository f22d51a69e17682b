package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/application"
	"github.com/trezcool/masomo/core/cache"
)

type ApplicationStatusArgs struct {
	ID     string
	Status application.StatusUpdate
}

func applicationPath(id string) string { return "/applications/" + url.PathEscape(id) }

var (
	ListApplicationsEndpoint = QueryDef[application.QueryFilter, core.List[application.Application]]{
		Name: "getApplications",
		Request: func(filter application.QueryFilter) Request {
			return Request{Method: http.MethodGet, Path: "/applications", Params: filter.Params()}
		},
		ProvidesTags: func(res core.List[application.Application], _ application.QueryFilter) []cache.Tag {
			return listTags(TagApplication, ids(res.Items, func(a application.Application) string { return a.ID }))
		},
	}

	GetApplicationEndpoint = QueryDef[string, application.Application]{
		Name: "getApplication",
		Request: func(id string) Request {
			return Request{Method: http.MethodGet, Path: applicationPath(id)}
		},
		ProvidesTags: func(_ application.Application, id string) []cache.Tag {
			return []cache.Tag{cache.NewTag(TagApplication, id)}
		},
	}

	CreateApplicationEndpoint = MutationDef[application.NewApplication, application.Application]{
		Name: "createApplication",
		Request: func(na application.NewApplication) Request {
			return Request{Method: http.MethodPost, Path: "/applications", Body: &na}
		},
		InvalidatesTags: func(application.Application, application.NewApplication) []cache.Tag {
			return []cache.Tag{cache.ListTag(TagApplication)}
		},
	}

	UpdateApplicationStatusEndpoint = MutationDef[ApplicationStatusArgs, application.Application]{
		Name: "updateApplicationStatus",
		Request: func(args ApplicationStatusArgs) Request {
			return Request{Method: http.MethodPatch, Path: applicationPath(args.ID) + "/status", Body: &args.Status}
		},
		InvalidatesTags: func(_ application.Application, args ApplicationStatusArgs) []cache.Tag {
			return entityTags(TagApplication, args.ID)
		},
	}

	DeleteApplicationEndpoint = MutationDef[string, struct{}]{
		Name: "deleteApplication",
		Request: func(id string) Request {
			return Request{Method: http.MethodDelete, Path: applicationPath(id)}
		},
		InvalidatesTags: func(_ struct{}, id string) []cache.Tag {
			return entityTags(TagApplication, id)
		},
	}
)

func (c *Client) ListApplications(ctx context.Context, filter application.QueryFilter) (core.List[application.Application], error) {
	return Query(ctx, c, ListApplicationsEndpoint, filter)
}

func (c *Client) GetApplication(ctx context.Context, id string) (application.Application, error) {
	return Query(ctx, c, GetApplicationEndpoint, id)
}

func (c *Client) CreateApplication(ctx context.Context, na application.NewApplication) (application.Application, error) {
	return Mutate(ctx, c, CreateApplicationEndpoint, na)
}

func (c *Client) UpdateApplicationStatus(ctx context.Context, id string, su application.StatusUpdate) (application.Application, error) {
	return Mutate(ctx, c, UpdateApplicationStatusEndpoint, ApplicationStatusArgs{ID: id, Status: su})
}

func (c *Client) DeleteApplication(ctx context.Context, id string) error {
	_, err := Mutate(ctx, c, DeleteApplicationEndpoint, id)
	return err
}
