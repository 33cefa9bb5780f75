package logger

import (
	"go.uber.org/zap"
)

// New builds the application logger. "development" gets a human-readable
// debug logger, anything else the JSON production config.
func New(env string) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if env == "development" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return l
}
