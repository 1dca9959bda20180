package logger

import (
	"github.com/sirupsen/logrus"
)

// Logger is the shared logrus instance used by components that take an
// injected logger.
var Logger *logrus.Logger

// Init creates the logger at the given level; an unknown level falls
// back to info.
func Init(level string) {
	Logger = logrus.New()
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Logger.SetLevel(parsed)
}
