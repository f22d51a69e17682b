package dig_container

import (
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/masomo/apps/api/echo"
	"github.com/trezcool/masomo/apps/shared"
	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/user"
	logsvc "github.com/trezcool/masomo/services/logger"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newRollbarLogger(name string, conf *core.Config) (core.Logger, error) {
	std, err := logsvc.NewZap(name, conf)
	if err != nil {
		return nil, err
	}
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)
	return logger, nil
}

func newLogger(conf *core.Config) (core.Logger, error) {
	return newRollbarLogger("api", conf)
}

func newDBLogger(conf *core.Config) (core.Logger, error) {
	return newRollbarLogger("db", conf)
}

// newDB opens the in-memory database, loaded with the fixtures of the configured seed file.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *inmemdb.DB {
	db := inmemdb.Open()
	if path := conf.Server.SeedFile; path != "" {
		if err := inmemdb.LoadSeedFile(db, path); err != nil {
			loggerParam.Logger.Fatal(fmt.Sprintf("seeding database: %v", err), err)
		}
		loggerParam.Logger.Info("database seeded", map[string]interface{}{
			"file":     path,
			"users":    db.Users.Len(),
			"projects": db.Projects.Len(),
			"tasks":    db.Tasks.Len(),
		})
	}
	return db
}

type validatorResult struct {
	dig.Out
	Validate   *validator.Validate
	Translator ut.Translator
}

func newValidator() validatorResult {
	validate, translator := shared.NewValidator()
	return validatorResult{Validate: validate, Translator: translator}
}

type serverParams struct {
	dig.In
	Conf       *core.Config
	Logger     core.Logger
	DB         *inmemdb.DB
	UserSvc    *user.Service
	Validate   *validator.Validate
	Translator ut.Translator
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		DB:         p.DB,
		UserSvc:    p.UserSvc,
		Validate:   p.Validate,
		Translator: p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(inmemdb.NewUserRepository))
	must(c.Provide(user.NewService))
	must(c.Provide(newValidator))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
