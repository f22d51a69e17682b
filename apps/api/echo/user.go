package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/user"
)

var (
	errUsrNotFoundInCtx  = errors.New("user object not found in echo.Context")
	errNoPermsToSetRoles = "not enough rights to set these roles"
)

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *resourceAPI) {
	ug := g.Group("/users", jwt)
	ug.GET("", api.queryUsers, adminMiddleware())
	ug.POST("", api.createUser, adminMiddleware())
	ug.GET("/roles", api.queryRoles)

	// detail endpoints
	dg := ug.Group("/:id", api.ctxUserOrAdminMiddleware())
	dg.GET("", api.retrieveUser)
	dg.PATCH("", api.updateUser)
	dg.DELETE("", api.destroyUser, adminMiddleware())
}

func (api *resourceAPI) queryUsers(ctx echo.Context) error {
	filter := user.QueryFilter{
		Search:   ctx.QueryParam("search"),
		Role:     ctx.QueryParam("role"),
		IsActive: core.ParseBool(ctx.QueryParams(), "isActive"),
		Ordering: queryOrdering(ctx),
		Page:     queryPage(ctx),
	}
	users, err := api.usrSvc.Filter(filter)
	if err != nil {
		return errors.Wrap(err, "filtering users")
	}
	return respond(ctx, http.StatusOK, users)
}

func (api *resourceAPI) createUser(ctx echo.Context) error {
	var data user.NewUser
	if err := api.bind(ctx, &data); err != nil {
		return err
	}

	// ctxUser cannot set a role > their own max role
	ctxUsr, err := api.user(ctx)
	if err != nil {
		return err
	}
	if user.MaxRolePriority(data.Roles) > user.MaxRolePriority(ctxUsr.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	usr, err := api.usrSvc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return respond(ctx, http.StatusCreated, usr)
}

func (api *resourceAPI) queryRoles(ctx echo.Context) error {
	return respond(ctx, http.StatusOK, user.Roles)
}

func (api *resourceAPI) retrieveUser(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	return respond(ctx, http.StatusOK, usr)
}

func (api *resourceAPI) updateUser(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	var data user.UpdateUser
	if err := api.bind(ctx, &data); err != nil {
		return err
	}

	ctxUsr, err := api.user(ctx)
	if err != nil {
		return err
	}
	// `IsActive` and `Roles` can only be changed by admin
	if !ctxUsr.IsAdmin() && (data.IsActive != nil || data.Roles != nil) {
		return errHttpForbidden
	}
	// ctxUser cannot set a role > their own max role
	if user.MaxRolePriority(data.Roles) > user.MaxRolePriority(ctxUsr.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	usr, err = api.usrSvc.Update(usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return respond(ctx, http.StatusOK, usr)
}

func (api *resourceAPI) destroyUser(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	// ctxUser cannot delete themselves
	ctxUsr, err := api.user(ctx)
	if err != nil {
		return err
	}
	if usr.ID == ctxUsr.ID {
		return errHttpForbidden
	}

	if err := api.usrSvc.Delete(usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return noContent(ctx)
}

func (api *resourceAPI) ctxUserOrAdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := api.user(ctx)
			if err != nil {
				return err
			}

			if ctx.Param("id") == ctxUsr.ID || ctxUsr.IsAdmin() {
				if usr, err := api.usrSvc.GetByID(ctx.Param("id")); err == nil {
					ctx.Set("object", usr)
					return next(ctx)
				} else if errors.Cause(err) != user.ErrNotFound {
					return errors.Wrap(err, "finding user by ID")
				}
			}
			return errHttpNotFound
		}
	}
}
