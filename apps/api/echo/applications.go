package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/application"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

// applications are sent by visitors, before they have an account.
func registerApplicationAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *resourceAPI) {
	ag := g.Group("/applications")
	ag.POST("", api.createApplication)
	ag.GET("", api.queryApplications, jwt, adminMiddleware())

	dg := ag.Group("/:id", jwt, adminMiddleware())
	dg.GET("", api.retrieveApplication)
	dg.PATCH("/status", api.updateApplicationStatus)
	dg.DELETE("", api.destroyApplication)
}

func (api *resourceAPI) queryApplications(ctx echo.Context) error {
	filter := application.QueryFilter{
		Status: ctx.QueryParam("status"),
		Type:   ctx.QueryParam("type"),
		Search: ctx.QueryParam("search"),
		Page:   queryPage(ctx),
	}
	apps := api.db.Applications.Filter(func(a application.Application) bool {
		switch {
		case filter.Status != "" && a.Status != filter.Status,
			filter.Type != "" && a.Type != filter.Type,
			filter.Search != "" && !(inmemdb.Contains(a.Name, filter.Search) || inmemdb.Contains(a.Email, filter.Search)):
			return false
		}
		return true
	})
	// newest first
	for i, j := 0, len(apps)-1; i < j; i, j = i+1, j-1 {
		apps[i], apps[j] = apps[j], apps[i]
	}
	return respond(ctx, http.StatusOK, inmemdb.Paginate(apps, filter.Page))
}

func (api *resourceAPI) retrieveApplication(ctx echo.Context) error {
	a, err := api.db.Applications.Get(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	return respond(ctx, http.StatusOK, a)
}

func (api *resourceAPI) createApplication(ctx echo.Context) error {
	var data application.NewApplication
	if err := api.bind(ctx, &data); err != nil {
		return err
	}
	_, err := api.db.Applications.Find(func(a application.Application) bool {
		return strings.EqualFold(a.Email, data.Email) && a.Type == data.Type && !a.Closed()
	})
	if err == nil {
		return errHttpConflict("an application is already pending for this email")
	}

	now := api.now()
	a := application.Application{
		ID:         inmemdb.NewID(),
		Type:       data.Type,
		Name:       data.Name,
		Email:      data.Email,
		Motivation: data.Motivation,
		Skills:     data.Skills,
		Portfolio:  data.Portfolio,
		Status:     application.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	api.db.Applications.Insert(a.ID, a)
	return respond(ctx, http.StatusCreated, a)
}

func (api *resourceAPI) updateApplicationStatus(ctx echo.Context) error {
	usr, err := api.user(ctx)
	if err != nil {
		return err
	}
	var data application.StatusUpdate
	if err = api.bind(ctx, &data); err != nil {
		return err
	}

	a, err := api.db.Applications.Update(ctx.Param("id"), func(row *application.Application) error {
		if row.Closed() {
			return errHttpConflict("application is already " + row.Status)
		}
		row.Status = data.Status
		row.ReviewNote = data.ReviewNote
		row.ReviewerID = usr.ID
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return respond(ctx, http.StatusOK, a)
}

func (api *resourceAPI) destroyApplication(ctx echo.Context) error {
	if err := api.db.Applications.Delete(ctx.Param("id")); err != nil {
		return errHttpNotFound
	}
	return noContent(ctx)
}
