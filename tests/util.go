package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	echoapi "github.com/trezcool/masomo/apps/api/echo"
	"github.com/trezcool/masomo/apps/shared"
	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/core/user"
	"github.com/trezcool/masomo/services/backend"
	logsvc "github.com/trezcool/masomo/services/logger"
	inmemdb "github.com/trezcool/masomo/storage/database/inmem"
)

// Config returns the configuration of the test apps.
func Config() *core.Config {
	return &core.Config{
		AppName:   "Masomo",
		Env:       "TEST",
		Build:     "test",
		TestMode:  true,
		SecretKey: "test-secret",
		LogLevel:  "error",
		API: core.APIConfig{
			Timeout: 5 * time.Second,
		},
		Cache: core.CacheConfig{
			KeepUnusedFor: time.Minute,
			PruneInterval: time.Minute,
		},
		Server: core.ServerConfig{
			Host:                      "localhost",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
			DisableReqLogs:            true,
		},
	}
}

// Backend is a dev backend running in process.
type Backend struct {
	DB     *inmemdb.DB
	Server *echoapi.Server
	HTTP   *httptest.Server
	UsrSvc *user.Service
}

// URL is the base URL of the REST API.
func (b *Backend) URL() string {
	return b.HTTP.URL + echoapi.APIPrefix
}

// StartBackend serves a fresh dev backend until the end of the test.
func StartBackend(t *testing.T) *Backend {
	t.Helper()

	db := inmemdb.Open()
	validate, translator := shared.NewValidator()
	usrSvc := user.NewService(inmemdb.NewUserRepository(db))
	srv := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       Config(),
		Logger:     logsvc.NewNopLogger(),
		DB:         db,
		UserSvc:    usrSvc,
		Validate:   validate,
		Translator: translator,
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &Backend{DB: db, Server: srv, HTTP: ts, UsrSvc: usrSvc}
}

// Token returns a valid access token of usr.
func (b *Backend) Token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := b.Server.GenerateToken(usr)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	return token
}

// NewClient returns a client of the backend, authenticated as usr when given.
func (b *Backend) NewClient(t *testing.T, usr ...user.User) *backend.Client {
	t.Helper()

	store := cache.NewStore(logsvc.NewNopLogger())
	t.Cleanup(func() { _ = store.Close() })

	validate, translator := shared.NewValidator()
	var token string
	if len(usr) > 0 {
		token = b.Token(t, usr[0])
	}
	return backend.NewClient(
		backend.Options{BaseURL: b.URL(), Token: token, Timeout: 5 * time.Second},
		store, validate, translator, logsvc.NewNopLogger(),
	)
}

func CreateUser(
	t *testing.T,
	db *inmemdb.DB,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if len(roles) == 0 {
		roles = []string{user.RoleStudent}
	}
	usr := user.User{
		ID:        inmemdb.NewID(),
		Name:      name,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	db.Users.Insert(usr.ID, usr)
	return usr
}
