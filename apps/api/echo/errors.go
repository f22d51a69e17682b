package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/user"
	"github.com/trezcool/masomo/services/backend"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "incorrect email or password")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errHttpConflict         = func(msg string) *echo.HTTPError { return echo.NewHTTPError(http.StatusConflict, msg) }
	errHttpBadRequest       = func(msg string) *echo.HTTPError { return echo.NewHTTPError(http.StatusBadRequest, msg) }
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler writing the error payload of the
// platform: {"status": "fail"|"error", "message": "...", "error": {"statusCode", "status", "isOperational"}}.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var payload *backend.APIError

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				payload = backend.NewAPIError(http.StatusUnauthorized, fmt.Sprint(origErr.Message))
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			payload = backend.NewAPIError(origErr.Code, fmt.Sprint(origErr.Message))
		case validator.ValidationErrors:
			vErr := core.TranslateValidation(origErr, translator).(*core.ValidationError)
			payload = backend.NewAPIError(http.StatusBadRequest, vErr.Error(), vErr.Fields...)
		case *core.ValidationError:
			payload = backend.NewAPIError(http.StatusBadRequest, origErr.Error(), origErr.Fields...)
		default:
			if origErr == inmemdb.ErrNotFound || origErr == user.ErrNotFound {
				payload = backend.NewAPIError(http.StatusNotFound, origErr.Error())
				break
			}

			// any other error is a server error
			msg := http.StatusText(http.StatusInternalServerError)
			if ctx.Echo().Debug {
				msg = err.Error()
			}
			payload = backend.NewAPIError(http.StatusInternalServerError, msg)

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Name = claims.Name
				usr.Email = claims.Email
			}
			logger.Error(http.StatusText(http.StatusInternalServerError), errors.Wrap(err, "handling request"), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(payload.HTTPStatus)
			} else {
				err = ctx.JSON(payload.HTTPStatus, payload)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
