// Package log configures the process-wide logrus logger: JSON output in
// production, colored text everywhere else.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

var entry *logrus.Entry

func Init(environment string) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:      true,
			QuoteEmptyFields: true,
		})
		logger.SetLevel(logrus.DebugLevel)
	}

	entry = logger.WithField("service", "listing-api")
}

// L returns the configured logger, initializing a development logger if
// Init was never called (tests).
func L() *logrus.Entry {
	if entry == nil {
		Init("development")
	}
	return entry
}
