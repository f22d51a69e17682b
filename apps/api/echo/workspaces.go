package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/project"
	"github.com/trezcool/masomo/core/workspace"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

func registerWorkspaceAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *resourceAPI) {
	wg := g.Group("/workspaces/:projectId", jwt, api.projectMemberMiddleware())
	wg.GET("", api.retrieveWorkspace)
	wg.PATCH("", api.updateWorkspaceNotes)
	wg.POST("/resources", api.addWorkspaceResource)
	wg.DELETE("/resources/:id", api.removeWorkspaceResource)
}

// projectMemberMiddleware lets through the members of the :projectId project and admins.
func (api *resourceAPI) projectMemberMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, usr, err := api.visibleProject(ctx, ctx.Param("projectId"))
			if err != nil {
				return err
			}
			if !(usr.IsAdmin() || p.HasMember(usr.ID)) {
				return errHttpForbidden
			}
			ctx.Set("object", p)
			return next(ctx)
		}
	}
}

// workspace returns the workspace of the project, an empty one if none was saved yet.
func (api *resourceAPI) workspace(ctx echo.Context) workspace.Workspace {
	p, _ := ctx.Get("object").(project.Project)
	ws, err := api.db.Workspaces.Get(p.ID)
	if err != nil {
		ws = workspace.Workspace{ProjectID: p.ID, Resources: []workspace.Resource{}, UpdatedAt: p.CreatedAt}
	}
	return ws
}

// saveWorkspace applies fn to the workspace of the request and saves it.
func (api *resourceAPI) saveWorkspace(ctx echo.Context, fn func(ws *workspace.Workspace) error) (workspace.Workspace, error) {
	ws := api.workspace(ctx)
	if _, err := api.db.Workspaces.Get(ws.ProjectID); err != nil {
		api.db.Workspaces.Insert(ws.ProjectID, ws)
	}
	return api.db.Workspaces.Update(ws.ProjectID, func(row *workspace.Workspace) error {
		if err := fn(row); err != nil {
			return err
		}
		row.UpdatedAt = api.now()
		return nil
	})
}

func (api *resourceAPI) retrieveWorkspace(ctx echo.Context) error {
	return respond(ctx, http.StatusOK, api.workspace(ctx))
}

func (api *resourceAPI) updateWorkspaceNotes(ctx echo.Context) error {
	var data workspace.UpdateNotes
	if err := api.bind(ctx, &data); err != nil {
		return err
	}
	ws, err := api.saveWorkspace(ctx, func(ws *workspace.Workspace) error {
		ws.Notes = data.Notes
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "updating workspace notes")
	}
	return respond(ctx, http.StatusOK, ws)
}

func (api *resourceAPI) addWorkspaceResource(ctx echo.Context) error {
	usr, err := api.user(ctx)
	if err != nil {
		return err
	}
	var data workspace.NewResource
	if err = api.bind(ctx, &data); err != nil {
		return err
	}

	res := workspace.Resource{
		ID:        inmemdb.NewID(),
		Title:     data.Title,
		URL:       data.URL,
		Kind:      data.Kind,
		AddedBy:   usr.ID,
		CreatedAt: api.now(),
	}
	_, err = api.saveWorkspace(ctx, func(ws *workspace.Workspace) error {
		ws.Resources = append(ws.Resources, res)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "adding workspace resource")
	}
	return respond(ctx, http.StatusCreated, res)
}

func (api *resourceAPI) removeWorkspaceResource(ctx echo.Context) error {
	id := ctx.Param("id")
	_, err := api.saveWorkspace(ctx, func(ws *workspace.Workspace) error {
		for i, res := range ws.Resources {
			if res.ID == id {
				ws.Resources = append(ws.Resources[:i:i], ws.Resources[i+1:]...)
				return nil
			}
		}
		return errHttpNotFound
	})
	if err != nil {
		return err
	}
	return noContent(ctx)
}
