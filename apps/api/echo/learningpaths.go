package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/learningpath"
	"github.com/trezcool/masomo/core/user"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

func registerLearningPathAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *resourceAPI) {
	lg := g.Group("/learning-paths", jwt)
	lg.GET("", api.queryLearningPaths)
	lg.POST("", api.createLearningPath, mentorMiddleware())
	lg.GET("/my", api.queryMyLearningPaths)

	dg := lg.Group("/:id")
	dg.GET("", api.retrieveLearningPath)
	dg.PATCH("", api.updateLearningPath)
	dg.DELETE("", api.destroyLearningPath)
	dg.POST("/enroll", api.enrollLearningPath)
}

// drafts are only visible to their author and admins.
func canSeePath(usr user.User, lp learningpath.LearningPath) bool {
	return lp.Published || lp.AuthorID == usr.ID || usr.IsAdmin()
}

func (api *resourceAPI) visiblePath(ctx echo.Context) (learningpath.LearningPath, user.User, error) {
	usr, err := api.user(ctx)
	if err != nil {
		return learningpath.LearningPath{}, usr, err
	}
	lp, err := api.db.LearningPaths.Get(ctx.Param("id"))
	if err != nil || !canSeePath(usr, lp) {
		return learningpath.LearningPath{}, usr, errHttpNotFound
	}
	return lp, usr, nil
}

func (api *resourceAPI) ownPath(ctx echo.Context) (learningpath.LearningPath, error) {
	lp, usr, err := api.visiblePath(ctx)
	if err != nil {
		return lp, err
	}
	if !(usr.IsAdmin() || lp.AuthorID == usr.ID) {
		return lp, errHttpForbidden
	}
	return lp, nil
}

func (api *resourceAPI) queryLearningPaths(ctx echo.Context) error {
	usr, err := api.user(ctx)
	if err != nil {
		return err
	}
	q := ctx.QueryParams()
	filter := learningpath.QueryFilter{
		Level:     q.Get("level"),
		Category:  q.Get("category"),
		Search:    q.Get("search"),
		Published: core.ParseBool(q, "published"),
		Page:      queryPage(ctx),
	}
	paths := api.db.LearningPaths.Filter(func(lp learningpath.LearningPath) bool {
		switch {
		case !canSeePath(usr, lp),
			filter.Level != "" && lp.Level != filter.Level,
			filter.Category != "" && lp.Category != filter.Category,
			filter.Published != nil && lp.Published != *filter.Published,
			filter.Search != "" && !(inmemdb.Contains(lp.Title, filter.Search) || inmemdb.Contains(lp.Description, filter.Search)):
			return false
		}
		return true
	})
	return respond(ctx, http.StatusOK, inmemdb.Paginate(paths, filter.Page))
}

func (api *resourceAPI) queryMyLearningPaths(ctx echo.Context) error {
	usr, err := api.user(ctx)
	if err != nil {
		return err
	}
	enrollments := api.db.Enrollments.Filter(func(e learningpath.Enrollment) bool { return e.UserID == usr.ID })

	paths := make([]learningpath.MyPath, 0, len(enrollments))
	for _, e := range enrollments {
		lp, err := api.db.LearningPaths.Get(e.PathID)
		if err != nil {
			continue
		}
		paths = append(paths, learningpath.MyPath{LearningPath: lp, Enrollment: e})
	}
	return respond(ctx, http.StatusOK, paths)
}

func (api *resourceAPI) retrieveLearningPath(ctx echo.Context) error {
	lp, _, err := api.visiblePath(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, lp)
}

func (api *resourceAPI) createLearningPath(ctx echo.Context) error {
	usr, err := api.user(ctx)
	if err != nil {
		return err
	}
	var data learningpath.NewLearningPath
	if err = api.bind(ctx, &data); err != nil {
		return err
	}

	now := api.now()
	lp := learningpath.LearningPath{
		ID:          inmemdb.NewID(),
		Title:       data.Title,
		Description: data.Description,
		Level:       data.Level,
		Category:    data.Category,
		AuthorID:    usr.ID,
		Published:   data.Published,
		Steps:       data.Steps,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	api.db.LearningPaths.Insert(lp.ID, lp)
	return respond(ctx, http.StatusCreated, lp)
}

func (api *resourceAPI) updateLearningPath(ctx echo.Context) error {
	lp, err := api.ownPath(ctx)
	if err != nil {
		return err
	}
	var data learningpath.UpdateLearningPath
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	lp, err = api.db.LearningPaths.Update(lp.ID, func(row *learningpath.LearningPath) error {
		*row = data.Apply(*row)
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "updating learning path")
	}

	// completed steps past the new last step are dropped
	if data.Steps != nil {
		for _, e := range api.db.Enrollments.Filter(func(e learningpath.Enrollment) bool { return e.PathID == lp.ID }) {
			_, _ = api.db.Enrollments.Update(inmemdb.EnrollmentKey(e.PathID, e.UserID), func(row *learningpath.Enrollment) error {
				steps := row.CompletedSteps[:0]
				for _, i := range row.CompletedSteps {
					if i < len(lp.Steps) {
						steps = append(steps, i)
					}
				}
				row.CompletedSteps = steps
				return nil
			})
		}
	}
	return respond(ctx, http.StatusOK, lp)
}

func (api *resourceAPI) destroyLearningPath(ctx echo.Context) error {
	lp, err := api.ownPath(ctx)
	if err != nil {
		return err
	}
	if err = api.db.LearningPaths.Delete(lp.ID); err != nil {
		return errors.Wrap(err, "deleting learning path")
	}
	api.db.Enrollments.DeleteWhere(func(e learningpath.Enrollment) bool { return e.PathID == lp.ID })
	return noContent(ctx)
}

func (api *resourceAPI) enrollLearningPath(ctx echo.Context) error {
	lp, usr, err := api.visiblePath(ctx)
	if err != nil {
		return err
	}
	if !lp.Published {
		return errHttpConflict("learning path is not published")
	}
	key := inmemdb.EnrollmentKey(lp.ID, usr.ID)
	if _, err = api.db.Enrollments.Get(key); err == nil {
		return errHttpConflict("already enrolled")
	}

	e := learningpath.Enrollment{
		PathID:         lp.ID,
		UserID:         usr.ID,
		CompletedSteps: []int{},
		EnrolledAt:     api.now(),
	}
	api.db.Enrollments.Insert(key, e)
	return respond(ctx, http.StatusCreated, e)
}
