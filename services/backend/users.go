package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/user"
)

type UpdateUserArgs struct {
	ID     string
	Update user.UpdateUser
}

func userPath(id string) string { return "/users/" + url.PathEscape(id) }

var (
	ListUsersEndpoint = QueryDef[user.QueryFilter, core.List[user.User]]{
		Name: "getUsers",
		Request: func(filter user.QueryFilter) Request {
			return Request{Method: http.MethodGet, Path: "/users", Params: filter.Params()}
		},
		ProvidesTags: func(res core.List[user.User], _ user.QueryFilter) []cache.Tag {
			return listTags(TagUser, ids(res.Items, func(u user.User) string { return u.ID }))
		},
	}

	GetUserEndpoint = QueryDef[string, user.User]{
		Name: "getUser",
		Request: func(id string) Request {
			return Request{Method: http.MethodGet, Path: userPath(id)}
		},
		ProvidesTags: func(_ user.User, id string) []cache.Tag {
			return []cache.Tag{cache.NewTag(TagUser, id)}
		},
	}

	CreateUserEndpoint = MutationDef[user.NewUser, user.User]{
		Name: "createUser",
		Request: func(nu user.NewUser) Request {
			return Request{Method: http.MethodPost, Path: "/users", Body: &nu}
		},
		InvalidatesTags: func(user.User, user.NewUser) []cache.Tag {
			return []cache.Tag{cache.ListTag(TagUser)}
		},
	}

	UpdateUserEndpoint = MutationDef[UpdateUserArgs, user.User]{
		Name: "updateUser",
		Request: func(args UpdateUserArgs) Request {
			return Request{Method: http.MethodPatch, Path: userPath(args.ID), Body: &args.Update}
		},
		InvalidatesTags: func(_ user.User, args UpdateUserArgs) []cache.Tag {
			return entityTags(TagUser, args.ID)
		},
	}

	DeleteUserEndpoint = MutationDef[string, struct{}]{
		Name: "deleteUser",
		Request: func(id string) Request {
			return Request{Method: http.MethodDelete, Path: userPath(id)}
		},
		InvalidatesTags: func(_ struct{}, id string) []cache.Tag {
			return entityTags(TagUser, id)
		},
	}
)

func (c *Client) ListUsers(ctx context.Context, filter user.QueryFilter) (core.List[user.User], error) {
	return Query(ctx, c, ListUsersEndpoint, filter)
}

func (c *Client) GetUser(ctx context.Context, id string) (user.User, error) {
	return Query(ctx, c, GetUserEndpoint, id)
}

func (c *Client) CreateUser(ctx context.Context, nu user.NewUser) (user.User, error) {
	return Mutate(ctx, c, CreateUserEndpoint, nu)
}

func (c *Client) UpdateUser(ctx context.Context, id string, uu user.UpdateUser) (user.User, error) {
	return Mutate(ctx, c, UpdateUserEndpoint, UpdateUserArgs{ID: id, Update: uu})
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := Mutate(ctx, c, DeleteUserEndpoint, id)
	return err
}
