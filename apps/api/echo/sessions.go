package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/session"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

var sessionOrderings = map[string]inmemdb.Less[session.Session]{
	"startsAt":  func(a, b session.Session) bool { return a.StartsAt.Before(b.StartsAt) },
	"title":     func(a, b session.Session) bool { return a.Title < b.Title },
	"createdAt": func(a, b session.Session) bool { return a.CreatedAt.Before(b.CreatedAt) },
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *resourceAPI) {
	sg := g.Group("/sessions", jwt)
	sg.GET("", api.querySessions)
	sg.POST("", api.createSession, mentorMiddleware())

	dg := sg.Group("/:id")
	dg.GET("", api.retrieveSession)
	dg.PATCH("", api.updateSession)
	dg.DELETE("", api.destroySession)
	dg.POST("/join", api.joinSession)
	dg.POST("/leave", api.leaveSession)
	dg.POST("/cancel", api.cancelSession)
}

func (api *resourceAPI) getSession(ctx echo.Context) (session.Session, error) {
	s, err := api.db.Sessions.Get(ctx.Param("id"))
	if err != nil {
		return s, errHttpNotFound
	}
	return s, nil
}

// ownSession returns the session of the request if the user hosts it or is an admin.
func (api *resourceAPI) ownSession(ctx echo.Context) (session.Session, error) {
	usr, err := api.user(ctx)
	if err != nil {
		return session.Session{}, err
	}
	s, err := api.getSession(ctx)
	if err != nil {
		return s, err
	}
	if !(usr.IsAdmin() || s.MentorID == usr.ID) {
		return s, errHttpForbidden
	}
	return s, nil
}

func (api *resourceAPI) querySessions(ctx echo.Context) error {
	filter := session.QueryFilter{
		Status:        ctx.QueryParam("status"),
		MentorID:      ctx.QueryParam("mentorId"),
		ParticipantID: ctx.QueryParam("participantId"),
		Ordering:      queryOrdering(ctx),
		Page:          queryPage(ctx),
	}
	var err error
	if filter.From, err = queryTime(ctx, "from"); err != nil {
		return err
	}
	if filter.To, err = queryTime(ctx, "to"); err != nil {
		return err
	}

	sessions := api.db.Sessions.Filter(func(s session.Session) bool {
		switch {
		case filter.Status != "" && s.Status != filter.Status,
			filter.MentorID != "" && s.MentorID != filter.MentorID,
			filter.ParticipantID != "" && !s.HasParticipant(filter.ParticipantID),
			!filter.From.IsZero() && s.StartsAt.Before(filter.From),
			!filter.To.IsZero() && s.StartsAt.After(filter.To):
			return false
		}
		return true
	})
	if len(filter.Ordering) == 0 {
		filter.Ordering = core.ParseOrderings("startsAt")
	}
	inmemdb.Sort(sessions, filter.Ordering, sessionOrderings)
	return respond(ctx, http.StatusOK, inmemdb.Paginate(sessions, filter.Page))
}

func (api *resourceAPI) retrieveSession(ctx echo.Context) error {
	s, err := api.getSession(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, s)
}

func (api *resourceAPI) createSession(ctx echo.Context) error {
	usr, err := api.user(ctx)
	if err != nil {
		return err
	}
	var data session.NewSession
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	if data.ProjectID != "" {
		if _, err = api.db.Projects.Get(data.ProjectID); err != nil {
			return errHttpBadRequest("unknown project")
		}
	}

	now := api.now()
	s := session.Session{
		ID:             inmemdb.NewID(),
		Title:          data.Title,
		Description:    data.Description,
		MentorID:       usr.ID,
		ProjectID:      data.ProjectID,
		ParticipantIDs: []string{},
		Capacity:       data.Capacity,
		StartsAt:       data.StartsAt,
		EndsAt:         data.EndsAt,
		MeetingURL:     data.MeetingURL,
		Status:         session.StatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	api.db.Sessions.Insert(s.ID, s)
	return respond(ctx, http.StatusCreated, s)
}

func (api *resourceAPI) updateSession(ctx echo.Context) error {
	s, err := api.ownSession(ctx)
	if err != nil {
		return err
	}
	var data session.UpdateSession
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	next := data.Apply(s)
	if !next.EndsAt.After(next.StartsAt) {
		return errHttpBadRequest("endsAt must be after startsAt")
	}
	if len(next.ParticipantIDs) > next.Capacity {
		return errHttpConflict("capacity is lower than the number of participants")
	}

	s, err = api.db.Sessions.Update(s.ID, func(row *session.Session) error {
		*row = data.Apply(*row)
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	return respond(ctx, http.StatusOK, s)
}

func (api *resourceAPI) destroySession(ctx echo.Context) error {
	s, err := api.ownSession(ctx)
	if err != nil {
		return err
	}
	if err = api.db.Sessions.Delete(s.ID); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return noContent(ctx)
}

func (api *resourceAPI) joinSession(ctx echo.Context) error {
	usr, err := api.user(ctx)
	if err != nil {
		return err
	}
	s, err := api.db.Sessions.Update(ctx.Param("id"), func(row *session.Session) error {
		switch {
		case !row.Open():
			return errHttpConflict("session is not open")
		case row.MentorID == usr.ID, row.HasParticipant(usr.ID):
			return errHttpConflict("already in the session")
		case row.IsFull():
			return errHttpConflict("session is full")
		}
		row.ParticipantIDs = append(row.ParticipantIDs, usr.ID)
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return respond(ctx, http.StatusOK, s)
}

func (api *resourceAPI) leaveSession(ctx echo.Context) error {
	usr, err := api.user(ctx)
	if err != nil {
		return err
	}
	s, err := api.db.Sessions.Update(ctx.Param("id"), func(row *session.Session) error {
		switch {
		case !row.Open():
			return errHttpConflict("session is not open")
		case !row.HasParticipant(usr.ID):
			return errHttpConflict("not in the session")
		}
		row.ParticipantIDs = inmemdb.RemoveString(row.ParticipantIDs, usr.ID)
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return respond(ctx, http.StatusOK, s)
}

func (api *resourceAPI) cancelSession(ctx echo.Context) error {
	s, err := api.ownSession(ctx)
	if err != nil {
		return err
	}
	s, err = api.db.Sessions.Update(s.ID, func(row *session.Session) error {
		if row.Status == session.StatusCompleted || row.Status == session.StatusCancelled {
			return errHttpConflict("session is already " + row.Status)
		}
		row.Status = session.StatusCancelled
		row.UpdatedAt = api.now()
		return nil
	})
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, s)
}
