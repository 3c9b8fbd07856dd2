package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the process logger from the configuration. The level
// and format have already been validated by LoadConfig.
func newLogger(config *Config, stderr io.Writer) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if config.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger.SetOutput(stderr)
	if config.LogFile != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   config.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}
	return logger
}

// closeLogger flushes and closes a rotating log file, if any.
func closeLogger(logger *logrus.Logger) {
	if file, ok := logger.Out.(*lumberjack.Logger); ok {
		file.Close()
	}
}
