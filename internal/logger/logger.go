// Package logger builds the logrus logger shared by the commands.
package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out. The level comes from levelName
// ("debug", "info", "warn", "error"); unknown or empty names mean warn.
// verbose forces the debug level.
func New(out io.Writer, levelName string, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	switch levelName {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
