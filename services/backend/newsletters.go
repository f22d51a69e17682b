package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/newsletter"
)

var (
	ListSubscriptionsEndpoint = QueryDef[newsletter.QueryFilter, core.List[newsletter.Subscription]]{
		Name: "getNewsletterSubscriptions",
		Request: func(filter newsletter.QueryFilter) Request {
			return Request{Method: http.MethodGet, Path: "/newsletters/subscriptions", Params: filter.Params()}
		},
		ProvidesTags: func(res core.List[newsletter.Subscription], _ newsletter.QueryFilter) []cache.Tag {
			return listTags(TagNewsletterSubscription, ids(res.Items, func(s newsletter.Subscription) string { return s.ID }))
		},
	}

	SubscribeEndpoint = MutationDef[newsletter.Subscribe, newsletter.Subscription]{
		Name: "subscribeNewsletter",
		Request: func(s newsletter.Subscribe) Request {
			return Request{Method: http.MethodPost, Path: "/newsletters/subscribe", Body: &s}
		},
		InvalidatesTags: func(res newsletter.Subscription, _ newsletter.Subscribe) []cache.Tag {
			return entityTags(TagNewsletterSubscription, res.ID)
		},
	}

	UnsubscribeEndpoint = MutationDef[newsletter.Unsubscribe, newsletter.Subscription]{
		Name: "unsubscribeNewsletter",
		Request: func(u newsletter.Unsubscribe) Request {
			return Request{Method: http.MethodPost, Path: "/newsletters/unsubscribe", Body: &u}
		},
		InvalidatesTags: func(res newsletter.Subscription, _ newsletter.Unsubscribe) []cache.Tag {
			return entityTags(TagNewsletterSubscription, res.ID)
		},
	}

	DeleteSubscriptionEndpoint = MutationDef[string, struct{}]{
		Name: "deleteNewsletterSubscription",
		Request: func(id string) Request {
			return Request{Method: http.MethodDelete, Path: "/newsletters/subscriptions/" + url.PathEscape(id)}
		},
		InvalidatesTags: func(_ struct{}, id string) []cache.Tag {
			return entityTags(TagNewsletterSubscription, id)
		},
	}
)

func (c *Client) ListSubscriptions(ctx context.Context, filter newsletter.QueryFilter) (core.List[newsletter.Subscription], error) {
	return Query(ctx, c, ListSubscriptionsEndpoint, filter)
}

func (c *Client) Subscribe(ctx context.Context, s newsletter.Subscribe) (newsletter.Subscription, error) {
	return Mutate(ctx, c, SubscribeEndpoint, s)
}

func (c *Client) Unsubscribe(ctx context.Context, email string) (newsletter.Subscription, error) {
	return Mutate(ctx, c, UnsubscribeEndpoint, newsletter.Unsubscribe{Email: email})
}

func (c *Client) DeleteSubscription(ctx context.Context, id string) error {
	_, err := Mutate(ctx, c, DeleteSubscriptionEndpoint, id)
	return err
}
