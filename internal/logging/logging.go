package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// New builds a logger writing to stdout. format is "json" or "text".
func New(level, format string) (*logrus.Logger, error) {
	return NewWithOutput(os.Stdout, level, format)
}

func NewWithOutput(out io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, errors.Errorf("log format %q: want json or text", format)
	}
	return logger, nil
}

// Middleware logs one line per request.
func Middleware(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   status,
			"latency":  time.Since(start).String(),
			"clientIP": c.ClientIP(),
		})
		if id, ok := c.Get("member_id"); ok {
			entry = entry.WithField("member_id", id)
		}
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
