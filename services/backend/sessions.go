package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/session"
)

type UpdateSessionArgs struct {
	ID     string
	Update session.UpdateSession
}

func sessionPath(id string) string { return "/sessions/" + url.PathEscape(id) }

// sessionAction declares the POST /sessions/:id/<action> writes.
func sessionAction(name, action string) MutationDef[string, session.Session] {
	return MutationDef[string, session.Session]{
		Name: name,
		Request: func(id string) Request {
			return Request{Method: http.MethodPost, Path: sessionPath(id) + "/" + action}
		},
		InvalidatesTags: func(_ session.Session, id string) []cache.Tag {
			return entityTags(TagSession, id)
		},
	}
}

var (
	ListSessionsEndpoint = QueryDef[session.QueryFilter, core.List[session.Session]]{
		Name: "getSessions",
		Request: func(filter session.QueryFilter) Request {
			return Request{Method: http.MethodGet, Path: "/sessions", Params: filter.Params()}
		},
		ProvidesTags: func(res core.List[session.Session], _ session.QueryFilter) []cache.Tag {
			return listTags(TagSession, ids(res.Items, func(s session.Session) string { return s.ID }))
		},
	}

	GetSessionEndpoint = QueryDef[string, session.Session]{
		Name: "getSession",
		Request: func(id string) Request {
			return Request{Method: http.MethodGet, Path: sessionPath(id)}
		},
		ProvidesTags: func(_ session.Session, id string) []cache.Tag {
			return []cache.Tag{cache.NewTag(TagSession, id)}
		},
	}

	CreateSessionEndpoint = MutationDef[session.NewSession, session.Session]{
		Name: "createSession",
		Request: func(ns session.NewSession) Request {
			return Request{Method: http.MethodPost, Path: "/sessions", Body: &ns}
		},
		InvalidatesTags: func(session.Session, session.NewSession) []cache.Tag {
			return []cache.Tag{cache.ListTag(TagSession)}
		},
	}

	UpdateSessionEndpoint = MutationDef[UpdateSessionArgs, session.Session]{
		Name: "updateSession",
		Request: func(args UpdateSessionArgs) Request {
			return Request{Method: http.MethodPatch, Path: sessionPath(args.ID), Body: &args.Update}
		},
		InvalidatesTags: func(_ session.Session, args UpdateSessionArgs) []cache.Tag {
			return entityTags(TagSession, args.ID)
		},
	}

	JoinSessionEndpoint   = sessionAction("joinSession", "join")
	LeaveSessionEndpoint  = sessionAction("leaveSession", "leave")
	CancelSessionEndpoint = sessionAction("cancelSession", "cancel")

	DeleteSessionEndpoint = MutationDef[string, struct{}]{
		Name: "deleteSession",
		Request: func(id string) Request {
			return Request{Method: http.MethodDelete, Path: sessionPath(id)}
		},
		InvalidatesTags: func(_ struct{}, id string) []cache.Tag {
			return entityTags(TagSession, id)
		},
	}
)

func (c *Client) ListSessions(ctx context.Context, filter session.QueryFilter) (core.List[session.Session], error) {
	return Query(ctx, c, ListSessionsEndpoint, filter)
}

func (c *Client) GetSession(ctx context.Context, id string) (session.Session, error) {
	return Query(ctx, c, GetSessionEndpoint, id)
}

func (c *Client) CreateSession(ctx context.Context, ns session.NewSession) (session.Session, error) {
	return Mutate(ctx, c, CreateSessionEndpoint, ns)
}

func (c *Client) UpdateSession(ctx context.Context, id string, us session.UpdateSession) (session.Session, error) {
	return Mutate(ctx, c, UpdateSessionEndpoint, UpdateSessionArgs{ID: id, Update: us})
}

func (c *Client) JoinSession(ctx context.Context, id string) (session.Session, error) {
	return Mutate(ctx, c, JoinSessionEndpoint, id)
}

func (c *Client) LeaveSession(ctx context.Context, id string) (session.Session, error) {
	return Mutate(ctx, c, LeaveSessionEndpoint, id)
}

func (c *Client) CancelSession(ctx context.Context, id string) (session.Session, error) {
	return Mutate(ctx, c, CancelSessionEndpoint, id)
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	_, err := Mutate(ctx, c, DeleteSessionEndpoint, id)
	return err
}
