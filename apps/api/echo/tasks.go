package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/project"
	"github.com/trezcool/masomo/core/task"
	"github.com/trezcool/masomo/core/user"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

var taskOrderings = map[string]inmemdb.Less[task.Task]{
	"title":     func(a, b task.Task) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) },
	"status":    func(a, b task.Task) bool { return rank(task.AllStatuses, a.Status) < rank(task.AllStatuses, b.Status) },
	"priority":  func(a, b task.Task) bool { return rank(task.AllPriorities, a.Priority) < rank(task.AllPriorities, b.Priority) },
	"createdAt": func(a, b task.Task) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"updatedAt": func(a, b task.Task) bool { return a.UpdatedAt.Before(b.UpdatedAt) },
	// tasks without due date come last
	"dueDate": func(a, b task.Task) bool {
		if !a.DueDate.Valid || !b.DueDate.Valid {
			return a.DueDate.Valid && !b.DueDate.Valid
		}
		return a.DueDate.Time.Before(b.DueDate.Time)
	},
}

func rank(vals []string, val string) int {
	for i, v := range vals {
		if v == val {
			return i
		}
	}
	return len(vals)
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *resourceAPI) {
	tg := g.Group("/tasks", jwt)
	tg.GET("/my/tasks", api.queryMyTasks)

	pg := tg.Group("/:projectId/tasks")
	pg.GET("", api.queryTasks)
	pg.POST("", api.createTask)

	dg := pg.Group("/:id")
	dg.GET("", api.retrieveTask)
	dg.PATCH("", api.updateTask)
	dg.DELETE("", api.destroyTask)
	dg.PATCH("/status", api.updateTaskStatus)
	dg.POST("/submit", api.submitTask)
	dg.POST("/grade", api.gradeTask)
}

// projectTask returns the task of the request along with its project.
func (api *resourceAPI) projectTask(ctx echo.Context) (task.Task, project.Project, user.User, error) {
	p, usr, err := api.visibleProject(ctx, ctx.Param("projectId"))
	if err != nil {
		return task.Task{}, p, usr, err
	}
	t, err := api.db.Tasks.Get(ctx.Param("id"))
	if err != nil || t.ProjectID != p.ID {
		return task.Task{}, p, usr, errHttpNotFound
	}
	return t, p, usr, nil
}

// checkTaskRefs makes sure the area and the assignee of a task exist and belong to its project.
func (api *resourceAPI) checkTaskRefs(p project.Project, areaID, assigneeID null.String) error {
	var flds []core.FieldError
	if areaID.Valid {
		if a, err := api.db.Areas.Get(areaID.String); err != nil || a.ProjectID != p.ID {
			flds = append(flds, core.FieldError{Field: "projectAreaId", Error: "unknown project area"})
		}
	}
	if assigneeID.Valid && !p.HasMember(assigneeID.String) {
		flds = append(flds, core.FieldError{Field: "assigneeId", Error: "assignee must be a member of the project"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (api *resourceAPI) queryTasks(ctx echo.Context) error {
	p, _, err := api.visibleProject(ctx, ctx.Param("projectId"))
	if err != nil {
		return err
	}

	q := ctx.QueryParams()
	filter := task.ListFilter{
		Status:        q.Get("status"),
		Priority:      q.Get("priority"),
		AssigneeID:    core.ParseFilter(q, "assigneeId"),
		ProjectAreaID: core.ParseFilter(q, "projectAreaId"),
		Search:        q.Get("search"),
		Ordering:      queryOrdering(ctx),
		Page:          queryCursor(ctx),
	}
	if filter.DueBefore, err = queryTime(ctx, "dueBefore"); err != nil {
		return err
	}
	if filter.DueAfter, err = queryTime(ctx, "dueAfter"); err != nil {
		return err
	}

	tasks := api.db.Tasks.Filter(func(t task.Task) bool {
		if t.ProjectID != p.ID || !filter.Match(t) {
			return false
		}
		return filter.Search == "" || inmemdb.Contains(t.Title, filter.Search) || inmemdb.Contains(t.Description, filter.Search)
	})
	inmemdb.Sort(tasks, filter.Ordering, taskOrderings)
	return respond(ctx, http.StatusOK, inmemdb.Paginate(tasks, filter.Page))
}

func (api *resourceAPI) queryMyTasks(ctx echo.Context) error {
	usr, err := api.user(ctx)
	if err != nil {
		return err
	}
	q := ctx.QueryParams()
	filter := task.MyFilter{
		Status:    q.Get("status"),
		Priority:  q.Get("priority"),
		ProjectID: q.Get("projectId"),
		Ordering:  queryOrdering(ctx),
		Page:      queryCursor(ctx),
	}

	tasks := api.db.Tasks.Filter(func(t task.Task) bool {
		switch {
		case !t.AssigneeID.Valid || t.AssigneeID.String != usr.ID,
			filter.Status != "" && t.Status != filter.Status,
			filter.Priority != "" && t.Priority != filter.Priority,
			filter.ProjectID != "" && t.ProjectID != filter.ProjectID:
			return false
		}
		return true
	})
	inmemdb.Sort(tasks, filter.Ordering, taskOrderings)
	return respond(ctx, http.StatusOK, inmemdb.Paginate(tasks, filter.Page))
}

func (api *resourceAPI) retrieveTask(ctx echo.Context) error {
	t, _, _, err := api.projectTask(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, t)
}

func (api *resourceAPI) createTask(ctx echo.Context) error {
	p, usr, err := api.visibleProject(ctx, ctx.Param("projectId"))
	if err != nil {
		return err
	}
	if !(usr.IsAdmin() || p.HasMember(usr.ID)) {
		return errHttpForbidden
	}

	var data task.NewTask
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	if err = api.checkTaskRefs(p, data.ProjectAreaID, data.AssigneeID); err != nil {
		return err
	}

	now := api.now()
	t := task.Task{
		ID:            inmemdb.NewID(),
		ProjectID:     p.ID,
		ProjectAreaID: data.ProjectAreaID,
		Title:         data.Title,
		Description:   data.Description,
		Status:        data.Status,
		Priority:      data.Priority,
		AssigneeID:    data.AssigneeID,
		CreatorID:     usr.ID,
		DueDate:       data.DueDate,
		Tags:          data.Tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	api.db.Tasks.Insert(t.ID, t)
	return respond(ctx, http.StatusCreated, t)
}

func (api *resourceAPI) updateTask(ctx echo.Context) error {
	t, p, usr, err := api.projectTask(ctx)
	if err != nil {
		return err
	}
	if !(usr.IsAdmin() || p.HasMember(usr.ID)) {
		return errHttpForbidden
	}

	var data task.UpdateTask
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	next := data.Apply(t)
	if err = api.checkTaskRefs(p, next.ProjectAreaID, next.AssigneeID); err != nil {
		return err
	}

	t, err = api.db.Tasks.Update(t.ID, func(row *task.Task) error {
		*row = data.Apply(*row)
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return respond(ctx, http.StatusOK, t)
}

func (api *resourceAPI) updateTaskStatus(ctx echo.Context) error {
	t, p, usr, err := api.projectTask(ctx)
	if err != nil {
		return err
	}
	if !(usr.IsAdmin() || p.HasMember(usr.ID)) {
		return errHttpForbidden
	}

	var data task.StatusUpdate
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	t, err = api.db.Tasks.Update(t.ID, func(row *task.Task) error {
		row.Status = data.Status
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "updating task status")
	}
	return respond(ctx, http.StatusOK, t)
}

func (api *resourceAPI) submitTask(ctx echo.Context) error {
	t, p, usr, err := api.projectTask(ctx)
	if err != nil {
		return err
	}
	isAssignee := t.AssigneeID.Valid && t.AssigneeID.String == usr.ID
	if !(isAssignee || (!t.AssigneeID.Valid && p.HasMember(usr.ID))) {
		return errHttpForbidden
	}
	if t.Status == task.StatusDone {
		return errHttpConflict("task is already done")
	}

	var data task.Submit
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	t, err = api.db.Tasks.Update(t.ID, func(row *task.Task) error {
		now := api.now()
		row.Submission = &task.Submission{
			Content:     data.Content,
			Links:       data.Links,
			SubmittedBy: usr.ID,
			SubmittedAt: now,
		}
		row.Grading = nil
		row.Status = task.StatusInReview
		row.UpdatedAt = now
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "submitting task")
	}
	return respond(ctx, http.StatusOK, t)
}

func (api *resourceAPI) gradeTask(ctx echo.Context) error {
	t, p, usr, err := api.projectTask(ctx)
	if err != nil {
		return err
	}
	if !(usr.IsAdmin() || inmemdb.HasString(p.MentorIDs, usr.ID) || p.OwnerID == usr.ID) {
		return errHttpForbidden
	}
	if t.Submission == nil {
		return errHttpConflict("task has no submission to grade")
	}

	var data task.Grade
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	t, err = api.db.Tasks.Update(t.ID, func(row *task.Task) error {
		now := api.now()
		row.Grading = &task.Grading{
			Score:    data.Score,
			Feedback: data.Feedback,
			GradedBy: usr.ID,
			GradedAt: now,
		}
		row.Status = task.StatusDone
		row.UpdatedAt = now
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "grading task")
	}
	return respond(ctx, http.StatusOK, t)
}

func (api *resourceAPI) destroyTask(ctx echo.Context) error {
	t, p, usr, err := api.projectTask(ctx)
	if err != nil {
		return err
	}
	if !(canManage(usr, p) || t.CreatorID == usr.ID) {
		return errHttpForbidden
	}
	if err = api.db.Tasks.Delete(t.ID); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return noContent(ctx)
}
