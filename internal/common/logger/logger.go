package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes one JSON line per event, tagged with the owning service and
// the action being logged.
type Logger struct {
	service   string
	requestID string
}

// Options configures the process-wide log sink.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	host = hostname()
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string { return strings.ToUpper(l.String()) }
}

// Setup installs the sink used by every Logger. The returned closer flushes
// the rotated log file, if one was configured.
func Setup(opts Options) io.Closer {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	mu.Lock()
	base = zerolog.New(w).Level(lvl)
	mu.Unlock()
	return closer
}

// SetOutput redirects every Logger to w at debug level.
func SetOutput(w io.Writer) {
	mu.Lock()
	base = zerolog.New(w).Level(zerolog.DebugLevel)
	mu.Unlock()
}

func New(service string) *Logger { return &Logger{service: service} }

// WithRequestID returns a copy of l that stamps every entry with id.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{service: l.service, requestID: id}
}

func (l *Logger) sink() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	zl := base
	return &zl
}

func (l *Logger) log(ev *zerolog.Event, action string, fields map[string]any, err error) {
	ev = ev.Timestamp().
		Str("service", l.service).
		Str("action", action).
		Str("hostname", host).
		Str("request_id", l.requestID)
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(action)
}

func (l *Logger) Info(action string, fields map[string]any)  { l.log(l.sink().Info(), action, fields, nil) }
func (l *Logger) Debug(action string, fields map[string]any) { l.log(l.sink().Debug(), action, fields, nil) }
func (l *Logger) Warn(action string, fields map[string]any)  { l.log(l.sink().Warn(), action, fields, nil) }
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(l.sink().Error(), action, fields, err)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func hostname() string { h, _ := os.Hostname(); return h }
