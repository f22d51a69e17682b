package logsvc

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/masomo/core"
)

// ZapLogger is a core.Logger writing to zap only.
type ZapLogger struct {
	std *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

// NewZap builds the sugared zap logger of an app: human readable in debug mode, JSON otherwise.
func NewZap(name string, conf *core.Config) (*zap.SugaredLogger, error) {
	var zconf zap.Config
	if conf.Debug {
		zconf = zap.NewDevelopmentConfig()
	} else {
		zconf = zap.NewProductionConfig()
	}
	lvl := zapcore.InfoLevel
	if err := lvl.Set(conf.LogLevel); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", conf.LogLevel)
	}
	zconf.Level = zap.NewAtomicLevelAt(lvl)
	zconf.OutputPaths = []string{"stderr"}

	logger, err := zconf.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named(name).Sugar(), nil
}

func NewZapLogger(std *zap.SugaredLogger) *ZapLogger {
	return &ZapLogger{std: std}
}

// NewNopLogger returns a logger discarding everything, for tests.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{std: zap.NewNop().Sugar()}
}

func (l ZapLogger) Debug(msg string, args ...interface{}) { l.std.Debugw(msg, fields(args)...) }
func (l ZapLogger) Info(msg string, args ...interface{})  { l.std.Infow(msg, fields(args)...) }
func (l ZapLogger) Warn(msg string, args ...interface{})  { l.std.Warnw(msg, fields(args)...) }
func (l ZapLogger) Error(msg string, args ...interface{}) { l.std.Errorw(msg, fields(args)...) }
func (l ZapLogger) Fatal(msg string, args ...interface{}) { l.std.Fatalw(msg, fields(args)...) }

// fields turns free-form log args into zap key/value pairs.
func fields(args []interface{}) []interface{} {
	if len(args) == 0 {
		return nil
	}
	kvs := make([]interface{}, 0, len(args)*2)
	for i, arg := range args {
		switch v := arg.(type) {
		case error:
			kvs = append(kvs, zap.Error(v))
		case map[string]interface{}:
			for k, val := range v {
				kvs = append(kvs, k, val)
			}
		case Person:
			id, uname, _ := v.RollbarPerson()
			kvs = append(kvs, "user_id", id, "username", uname)
		default:
			kvs = append(kvs, fmt.Sprintf("arg%d", i), v)
		}
	}
	return kvs
}
