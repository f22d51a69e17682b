package echoapi

import (
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/user"
	"github.com/trezcool/masomo/services/backend"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

// envelope is the body of every successful reply.
type envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

func respond(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, envelope{Status: backend.StatusSuccess, Data: data})
}

type validatable interface {
	Validate(validate *validator.Validate) error
}

// resourceAPI holds what every resource handler needs.
type resourceAPI struct {
	db         *inmemdb.DB
	usrSvc     *user.Service
	validate   *validator.Validate
	translator ut.Translator
	now        func() time.Time
}

// bind decodes the request body into data and validates it.
func (api *resourceAPI) bind(ctx echo.Context, data validatable) error {
	if err := ctx.Bind(data); err != nil {
		return errHttpBadRequest("malformed request body")
	}
	return data.Validate(api.validate)
}

func (api *resourceAPI) user(ctx echo.Context) (user.User, error) {
	return getContextUser(ctx, api.usrSvc)
}

// Query params

func queryPage(ctx echo.Context) core.Page {
	return core.ParsePage(ctx.QueryParams(), inmemdb.DefaultLimit, inmemdb.MaxLimit)
}

// queryCursor is queryPage for cursor paginated lists: no page number is echoed back.
func queryCursor(ctx echo.Context) core.Page {
	pg := queryPage(ctx)
	pg.Page = 0
	if pg.Cursor == "" {
		pg.Cursor = "0"
	}
	return pg
}

func queryOrdering(ctx echo.Context) []core.Ordering {
	return core.ParseOrderings(ctx.QueryParam(core.OrderingParam))
}

func queryTime(ctx echo.Context, key string) (time.Time, error) {
	val := ctx.QueryParam(key)
	if val == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, core.NewValidationError(
			errors.Errorf("invalid %s", key),
			core.FieldError{Field: key, Error: "must be an RFC 3339 date"},
		)
	}
	return t, nil
}

func noContent(ctx echo.Context) error {
	return ctx.NoContent(http.StatusNoContent)
}
