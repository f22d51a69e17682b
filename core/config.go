package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "MASOMO"

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string
		LogLevel     string

		API    APIConfig
		Cache  CacheConfig
		Server ServerConfig
		CLI    CLIConfig
	}

	// APIConfig configures the REST client talking to the platform backend.
	APIConfig struct {
		BaseURL string
		Timeout time.Duration
		Token   string
	}

	CacheConfig struct {
		KeepUnusedFor time.Duration
		PruneInterval time.Duration
	}

	// ServerConfig configures the in-memory dev backend.
	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		SeedFile                  string
		DisableReqLogs            bool
	}

	CLIConfig struct {
		TokenFile    string
		PollInterval time.Duration
	}
)

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and
// MASOMO_* environment variables, in increasing order of precedence.
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		LogLevel:     v.GetString("logLevel"),
		API: APIConfig{
			BaseURL: strings.TrimRight(v.GetString("api.baseURL"), "/"),
			Timeout: v.GetDuration("api.timeout"),
			Token:   v.GetString("api.token"),
		},
		Cache: CacheConfig{
			KeepUnusedFor: v.GetDuration("cache.keepUnusedFor"),
			PruneInterval: v.GetDuration("cache.pruneInterval"),
		},
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			SeedFile:                  v.GetString("server.seedFile"),
			DisableReqLogs:            v.GetBool("server.disableReqLogs"),
		},
		CLI: CLIConfig{
			TokenFile:    v.GetString("cli.tokenFile"),
			PollInterval: v.GetDuration("cli.pollInterval"),
		},
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Masomo")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("logLevel", "info")

	v.SetDefault("api.baseURL", "http://localhost:8000/api/v1")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.token", "")

	v.SetDefault("cache.keepUnusedFor", 60*time.Second)
	v.SetDefault("cache.pruneInterval", 30*time.Second)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.seedFile", "")
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("cli.tokenFile", defaultTokenFile())
	v.SetDefault("cli.pollInterval", time.Duration(0))
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: api.baseURL is required")
	}
	if c.API.Timeout < 0 {
		return errors.New("config: api.timeout must be >= 0")
	}
	if c.Cache.KeepUnusedFor < 0 || c.Cache.PruneInterval < 0 {
		return errors.New("config: cache durations must be >= 0")
	}
	if !c.Debug && !c.TestMode && c.SecretKey == "" {
		return errors.New("config: secretKey is required outside debug mode")
	}
	return nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".masomo-token"
	}
	return filepath.Join(dir, "masomo", "token")
}
