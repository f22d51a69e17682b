package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core/newsletter"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

func registerNewsletterAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *resourceAPI) {
	ng := g.Group("/newsletters")
	ng.POST("/subscribe", api.subscribeNewsletter)
	ng.POST("/unsubscribe", api.unsubscribeNewsletter)

	sg := ng.Group("/subscriptions", jwt, adminMiddleware())
	sg.GET("", api.querySubscriptions)
	sg.DELETE("/:id", api.destroySubscription)
}

func (api *resourceAPI) querySubscriptions(ctx echo.Context) error {
	filter := newsletter.QueryFilter{
		Status: ctx.QueryParam("status"),
		Search: ctx.QueryParam("search"),
		Page:   queryPage(ctx),
	}
	subs := api.db.Subscriptions.Filter(func(s newsletter.Subscription) bool {
		if filter.Status != "" && s.Status != filter.Status {
			return false
		}
		return filter.Search == "" || inmemdb.Contains(s.Email, filter.Search) || inmemdb.Contains(s.Name, filter.Search)
	})
	return respond(ctx, http.StatusOK, inmemdb.Paginate(subs, filter.Page))
}

func (api *resourceAPI) findSubscription(email string) (newsletter.Subscription, error) {
	return api.db.Subscriptions.Find(func(s newsletter.Subscription) bool { return s.Email == email })
}

// subscribeNewsletter is idempotent: subscribing again re-activates a past subscription.
func (api *resourceAPI) subscribeNewsletter(ctx echo.Context) error {
	var data newsletter.Subscribe
	if err := api.bind(ctx, &data); err != nil {
		return err
	}

	now := api.now()
	if sub, err := api.findSubscription(data.Email); err == nil {
		if sub.Status == newsletter.StatusActive {
			return respond(ctx, http.StatusOK, sub)
		}
		sub, err = api.db.Subscriptions.Update(sub.ID, func(row *newsletter.Subscription) error {
			row.Status = newsletter.StatusActive
			if data.Name != "" {
				row.Name = data.Name
			}
			row.SubscribedAt = now
			row.UnsubscribedAt = null.Time{}
			row.UpdatedAt = now
			return nil
		})
		if err != nil {
			return err
		}
		return respond(ctx, http.StatusOK, sub)
	}

	sub := newsletter.Subscription{
		ID:           inmemdb.NewID(),
		Email:        data.Email,
		Name:         data.Name,
		Status:       newsletter.StatusActive,
		Source:       data.Source,
		SubscribedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	api.db.Subscriptions.Insert(sub.ID, sub)
	return respond(ctx, http.StatusCreated, sub)
}

func (api *resourceAPI) unsubscribeNewsletter(ctx echo.Context) error {
	var data newsletter.Unsubscribe
	if err := api.bind(ctx, &data); err != nil {
		return err
	}
	sub, err := api.findSubscription(data.Email)
	if err != nil {
		return errHttpNotFound
	}
	sub, err = api.db.Subscriptions.Update(sub.ID, func(row *newsletter.Subscription) error {
		if row.Status == newsletter.StatusUnsubscribed {
			return nil
		}
		now := api.now()
		row.Status = newsletter.StatusUnsubscribed
		row.UnsubscribedAt = null.TimeFrom(now)
		row.UpdatedAt = now
		return nil
	})
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, sub)
}

func (api *resourceAPI) destroySubscription(ctx echo.Context) error {
	if err := api.db.Subscriptions.Delete(ctx.Param("id")); err != nil {
		return errHttpNotFound
	}
	return noContent(ctx)
}
