package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/project"
	"github.com/trezcool/masomo/core/task"
	"github.com/trezcool/masomo/core/user"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

var projectOrderings = map[string]inmemdb.Less[project.Project]{
	"name":      func(a, b project.Project) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	"startDate": func(a, b project.Project) bool { return a.StartDate.Before(b.StartDate) },
	"createdAt": func(a, b project.Project) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"progress":  func(a, b project.Project) bool { return a.Progress < b.Progress },
}

func registerProjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *resourceAPI) {
	pg := g.Group("/projects", jwt)
	pg.GET("", api.queryProjects)
	pg.POST("", api.createProject, mentorMiddleware())

	dg := pg.Group("/:id")
	dg.GET("", api.retrieveProject)
	dg.PATCH("", api.updateProject)
	dg.DELETE("", api.destroyProject)
	dg.POST("/members", api.addProjectMember)
	dg.DELETE("/members/:userId", api.removeProjectMember)

	dg.GET("/areas", api.queryAreas)
	dg.POST("/areas", api.createArea)
	dg.PATCH("/areas/:areaId", api.updateArea)
	dg.DELETE("/areas/:areaId", api.destroyArea)
}

// canSee reports whether usr may read p.
func canSee(usr user.User, p project.Project) bool {
	return p.Visibility == project.VisibilityPublic || usr.IsAdmin() || p.HasMember(usr.ID)
}

// canManage reports whether usr may modify p and its areas.
func canManage(usr user.User, p project.Project) bool {
	return usr.IsAdmin() || p.OwnerID == usr.ID || inmemdb.HasString(p.MentorIDs, usr.ID)
}

// visibleProject returns the project of the request if the user can see it.
func (api *resourceAPI) visibleProject(ctx echo.Context, id string) (project.Project, user.User, error) {
	usr, err := api.user(ctx)
	if err != nil {
		return project.Project{}, usr, err
	}
	p, err := api.db.Projects.Get(id)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return project.Project{}, usr, errHttpNotFound
		}
		return project.Project{}, usr, errors.Wrap(err, "finding project")
	}
	if !canSee(usr, p) {
		return project.Project{}, usr, errHttpNotFound
	}
	return p, usr, nil
}

// managedProject returns the project of the request if the user can modify it.
func (api *resourceAPI) managedProject(ctx echo.Context, id string) (project.Project, user.User, error) {
	p, usr, err := api.visibleProject(ctx, id)
	if err != nil {
		return p, usr, err
	}
	if !canManage(usr, p) {
		return p, usr, errHttpForbidden
	}
	return p, usr, nil
}

func (api *resourceAPI) queryProjects(ctx echo.Context) error {
	usr, err := api.user(ctx)
	if err != nil {
		return err
	}
	var (
		search     = ctx.QueryParam("search")
		category   = strings.ToLower(ctx.QueryParam("category"))
		level      = ctx.QueryParam("level")
		visibility = ctx.QueryParam("visibility")
		memberID   = ctx.QueryParam("memberId")
		mentorID   = ctx.QueryParam("mentorId")
	)
	projects := api.db.Projects.Filter(func(p project.Project) bool {
		switch {
		case !canSee(usr, p),
			search != "" && !(inmemdb.Contains(p.Name, search) || inmemdb.Contains(p.Description, search)),
			category != "" && p.Category != category,
			level != "" && p.Level != level,
			visibility != "" && p.Visibility != visibility,
			memberID != "" && !(p.OwnerID == memberID || inmemdb.HasString(p.MemberIDs, memberID)),
			mentorID != "" && !inmemdb.HasString(p.MentorIDs, mentorID):
			return false
		}
		return true
	})
	inmemdb.Sort(projects, queryOrdering(ctx), projectOrderings)
	return respond(ctx, http.StatusOK, inmemdb.Paginate(projects, queryPage(ctx)))
}

func (api *resourceAPI) retrieveProject(ctx echo.Context) error {
	p, _, err := api.visibleProject(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, p)
}

func (api *resourceAPI) createProject(ctx echo.Context) error {
	usr, err := api.user(ctx)
	if err != nil {
		return err
	}
	var data project.NewProject
	if err = api.bind(ctx, &data); err != nil {
		return err
	}

	now := api.now()
	p := project.Project{
		ID:          inmemdb.NewID(),
		Name:        data.Name,
		Description: data.Description,
		Category:    data.Category,
		Level:       data.Level,
		StartDate:   data.StartDate,
		EndDate:     data.EndDate,
		Visibility:  data.Visibility,
		OwnerID:     usr.ID,
		MemberIDs:   nonNil(data.MemberIDs),
		MentorIDs:   nonNil(data.MentorIDs),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	api.db.Projects.Insert(p.ID, p)
	return respond(ctx, http.StatusCreated, p)
}

func (api *resourceAPI) updateProject(ctx echo.Context) error {
	p, _, err := api.managedProject(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	var data project.UpdateProject
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	if !data.Apply(p).DatesValid() {
		return errHttpBadRequest("endDate must be after the start date")
	}

	p, err = api.db.Projects.Update(p.ID, func(row *project.Project) error {
		*row = data.Apply(*row)
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "updating project")
	}
	return respond(ctx, http.StatusOK, p)
}

func (api *resourceAPI) destroyProject(ctx echo.Context) error {
	p, usr, err := api.visibleProject(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if !(usr.IsAdmin() || p.OwnerID == usr.ID) {
		return errHttpForbidden
	}
	if err = api.db.Projects.Delete(p.ID); err != nil {
		return errors.Wrap(err, "deleting project")
	}
	api.db.Areas.DeleteWhere(func(a project.Area) bool { return a.ProjectID == p.ID })
	api.db.Tasks.DeleteWhere(func(t task.Task) bool { return t.ProjectID == p.ID })
	_ = api.db.Workspaces.Delete(p.ID)
	return noContent(ctx)
}

func (api *resourceAPI) addProjectMember(ctx echo.Context) error {
	p, _, err := api.managedProject(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	var data project.AddMember
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	if _, err = api.usrSvc.GetByID(data.UserID); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpBadRequest("unknown user")
		}
		return errors.Wrap(err, "finding member")
	}

	p, err = api.db.Projects.Update(p.ID, func(row *project.Project) error {
		if row.HasMember(data.UserID) {
			return errHttpConflict("user is already a member of the project")
		}
		if data.Role == project.MemberRoleMentor {
			row.MentorIDs = append(row.MentorIDs, data.UserID)
		} else {
			row.MemberIDs = append(row.MemberIDs, data.UserID)
		}
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, p)
}

func (api *resourceAPI) removeProjectMember(ctx echo.Context) error {
	p, _, err := api.managedProject(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	userID := ctx.Param("userId")

	p, err = api.db.Projects.Update(p.ID, func(row *project.Project) error {
		if row.OwnerID == userID {
			return errHttpBadRequest("the owner cannot be removed from the project")
		}
		if !row.HasMember(userID) {
			return errHttpNotFound
		}
		row.MemberIDs = inmemdb.RemoveString(row.MemberIDs, userID)
		row.MentorIDs = inmemdb.RemoveString(row.MentorIDs, userID)
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, p)
}

// Areas

func (api *resourceAPI) queryAreas(ctx echo.Context) error {
	p, _, err := api.visibleProject(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	areas := api.db.Areas.Filter(func(a project.Area) bool { return a.ProjectID == p.ID })
	inmemdb.Sort(areas, queryOrdering(ctx), map[string]inmemdb.Less[project.Area]{
		"order": func(a, b project.Area) bool { return a.Order < b.Order },
		"name":  func(a, b project.Area) bool { return a.Name < b.Name },
	})
	return respond(ctx, http.StatusOK, areas)
}

func (api *resourceAPI) createArea(ctx echo.Context) error {
	p, _, err := api.managedProject(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	var data project.NewArea
	if err = api.bind(ctx, &data); err != nil {
		return err
	}

	now := api.now()
	a := project.Area{
		ID:          inmemdb.NewID(),
		ProjectID:   p.ID,
		Name:        data.Name,
		Description: data.Description,
		Color:       data.Color,
		Order:       data.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	api.db.Areas.Insert(a.ID, a)
	return respond(ctx, http.StatusCreated, a)
}

// projectArea returns the area of the request, which must belong to the managed project.
func (api *resourceAPI) projectArea(ctx echo.Context) (project.Area, error) {
	p, _, err := api.managedProject(ctx, ctx.Param("id"))
	if err != nil {
		return project.Area{}, err
	}
	a, err := api.db.Areas.Get(ctx.Param("areaId"))
	if err != nil || a.ProjectID != p.ID {
		return project.Area{}, errHttpNotFound
	}
	return a, nil
}

func (api *resourceAPI) updateArea(ctx echo.Context) error {
	a, err := api.projectArea(ctx)
	if err != nil {
		return err
	}
	var data project.UpdateArea
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	a, err = api.db.Areas.Update(a.ID, func(row *project.Area) error {
		*row = data.Apply(*row)
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "updating area")
	}
	return respond(ctx, http.StatusOK, a)
}

func (api *resourceAPI) destroyArea(ctx echo.Context) error {
	a, err := api.projectArea(ctx)
	if err != nil {
		return err
	}
	if err = api.db.Areas.Delete(a.ID); err != nil {
		return errors.Wrap(err, "deleting area")
	}
	// tasks of the area are kept, outside any area
	now := api.now()
	for _, t := range api.db.Tasks.Filter(func(t task.Task) bool { return t.AreaID() == a.ID }) {
		_, _ = api.db.Tasks.Update(t.ID, func(row *task.Task) error {
			row.ProjectAreaID.Valid = false
			row.ProjectAreaID.String = ""
			row.UpdatedAt = now
			return nil
		})
	}
	return noContent(ctx)
}

func nonNil(vals []string) []string {
	if vals == nil {
		return []string{}
	}
	return vals
}
