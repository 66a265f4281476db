package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the logger of a linc tool. Debug logging honours
// LOG_LEVEL; a log file gets JSON lines, the terminal gets text.
func NewLogger(tool string, debug bool, logFile string) (*logrus.Entry, error) {
	log := logrus.New()
	log.Out = os.Stderr
	log.SetLevel(logrus.InfoLevel)
	if debug || os.Getenv("DEBUG") == "TRUE" {
		log.SetLevel(getLogLevel())
	}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, err
		}
		log.SetOutput(file)
		log.Formatter = &logrus.JSONFormatter{}
	} else {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	return log.WithFields(logrus.Fields{
		"tool":  tool,
		"debug": debug,
	}), nil
}

func getLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.DebugLevel
	}
	return level
}
