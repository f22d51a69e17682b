package backend

import (
	"context"
	"net/http"

	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/user"
)

var (
	LoginEndpoint = MutationDef[user.Credentials, user.Session]{
		Name: "login",
		Request: func(creds user.Credentials) Request {
			return Request{Method: http.MethodPost, Path: "/auth/login", Body: &creds}
		},
	}

	MeEndpoint = QueryDef[struct{}, user.User]{
		Name: "getMe",
		Request: func(struct{}) Request {
			return Request{Method: http.MethodGet, Path: "/auth/me"}
		},
		ProvidesTags: func(usr user.User, _ struct{}) []cache.Tag {
			return []cache.Tag{cache.NewTag(TagUser, usr.ID), cache.NewTag(TagUser, MeID)}
		},
	}
)

// Login exchanges creds for a token, which the client uses from now on.
// Every cached read is dropped.
func (c *Client) Login(ctx context.Context, creds user.Credentials) (user.Session, error) {
	sess, err := Mutate(ctx, c, LoginEndpoint, creds)
	if err != nil {
		return user.Session{}, err
	}
	c.SetToken(sess.Token)
	return sess, nil
}

// Logout forgets the token and every cached read.
func (c *Client) Logout() {
	c.SetToken("")
}

func (c *Client) Me(ctx context.Context) (user.User, error) {
	return Query(ctx, c, MeEndpoint, struct{}{})
}
