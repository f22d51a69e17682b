package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/user"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

// APIPrefix is the path every REST route is mounted on.
const APIPrefix = "/api/v1"

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		DB         *inmemdb.DB
		UserSvc    *user.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}

	// Server emulates the platform backend: it stores resources in memory and speaks its
	// REST dialect. It implements none of the platform's business rules.
	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		jwt      middleware.JWTConfig
		errors   chan error
		shutdown chan os.Signal
		nowFunc  func() time.Time
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
		nowFunc:  time.Now,
	}
	s.jwt = newJWTConfig(deps.Conf)
	s.setup()
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group(APIPrefix)
	jwt := middleware.JWTWithConfig(s.jwt)

	api := &resourceAPI{
		db:         s.deps.DB,
		usrSvc:     s.deps.UserSvc,
		validate:   s.deps.Validate,
		translator: s.deps.Translator,
		now:        func() time.Time { return s.nowFunc().UTC() },
	}
	registerAuthAPI(v1, jwt, s)
	registerUserAPI(v1, jwt, api)
	registerProjectAPI(v1, jwt, api)
	registerTaskAPI(v1, jwt, api)
	registerSessionAPI(v1, jwt, api)
	registerApplicationAPI(v1, jwt, api)
	registerNewsletterAPI(v1, jwt, api)
	registerLearningPathAPI(v1, jwt, api)
	registerWorkspaceAPI(v1, jwt, api)
}

// Start listens on the configured address; failures are sent on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown asks the main goroutine to shut the server down.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Masomo API!")
}
