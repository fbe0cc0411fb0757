package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a development logger for the development env, production otherwise.
func New(env, level string) (*zap.Logger, error) {
	var c zap.Config
	var opts []zap.Option
	if env == "development" {
		c = zap.NewDevelopmentConfig()
		opts = append(opts, zap.AddStacktrace(zap.ErrorLevel))
	} else {
		c = zap.NewProductionConfig()
		c.DisableStacktrace = true
	}

	if level == "" {
		level = "info"
	}
	atomic := zap.NewAtomicLevel()
	if err := atomic.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("could not parse log level %s", level)
	}
	c.Level = atomic

	return c.Build(opts...)
}

func MustNew(env, level string) *zap.Logger {
	l, err := New(env, level)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	return l
}
