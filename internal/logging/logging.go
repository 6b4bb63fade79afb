// Package logging builds the logrus loggers used by the client and server.
package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// New returns a logger writing text lines to out
func New(out io.Writer, level log.Level) *log.Logger {
	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		QuoteEmptyFields: true,
	})
	return logger
}

// OpenFile returns a logger appending to path. The terminal client cannot
// log to stdout while the alt screen is active.
func OpenFile(path string, level log.Level) (*log.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f, nil
}

// Discard returns a logger that drops everything
func Discard() *log.Logger {
	return New(io.Discard, log.PanicLevel)
}
