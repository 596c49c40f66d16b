// Package xlog builds the shell's structured logger.
package xlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// New returns a logger entry carrying static identity fields: development
// mode logs to a file under the config dir, production mode discards all
// output.
func New(configDir, version string, debug bool) *logrus.Entry {
	var log *logrus.Logger
	if debug || os.Getenv("XDSH_DEBUG") == "1" {
		log = newDevelopmentLogger(configDir)
	} else {
		log = newProductionLogger()
	}

	log.Formatter = &logrus.JSONFormatter{}

	return log.WithFields(logrus.Fields{
		"debug":   debug,
		"version": version,
		"pid":     os.Getpid(),
	})
}

func getLogLevel() logrus.Level {
	strLevel := os.Getenv("XDSH_LOG_LEVEL")
	level, err := logrus.ParseLevel(strLevel)
	if err != nil {
		return logrus.DebugLevel
	}
	return level
}

func newDevelopmentLogger(configDir string) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(getLogLevel())
	file, err := os.OpenFile(filepath.Join(configDir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xdsh: unable to open debug log, logging to stderr")
		log.SetOutput(os.Stderr)
		return log
	}
	log.SetOutput(file)
	return log
}

func newProductionLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	log.SetLevel(logrus.ErrorLevel)
	return log
}
