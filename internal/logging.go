package internal

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry so call sites can attach request context.
type Logger struct {
	*logrus.Entry
}

// NewLogger builds the application logger. Local environments get a pretty
// console format, everything else structured JSON.
func NewLogger(level string) *Logger {
	base := logrus.New()

	env := os.Getenv("ENVIRONMENT")
	if env == "" || env == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(os.Stdout)

	switch level {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Entry: logrus.NewEntry(base)}
}

// NewTestLogger returns a logger that discards everything, for tests.
func NewTestLogger() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.PanicLevel)
	return &Logger{Entry: logrus.NewEntry(base)}
}

// WithRequest attaches request metadata and returns an entry. The request
// ID assigned by the middleware is picked up from the request context.
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	reqID, _ := r.Context().Value(RequestIDKey).(string)
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}

	fields := logrus.Fields{
		"method":    r.Method,
		"path":      r.URL.Path,
		"remote_ip": r.RemoteAddr,
	}
	if reqID != "" {
		fields["req_id"] = reqID
	}
	return l.WithFields(fields)
}

// WithVideo standardizes per-video log fields
func (l *Logger) WithVideo(videoID string) *logrus.Entry {
	return l.WithField("video_id", videoID)
}
