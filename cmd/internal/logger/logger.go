package logger

import (
	"io"
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

const defaultServiceName = "blog-console"

// Logger 는 콘솔 전역에서 사용하는 최소 로거 인터페이스다.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields 는 구조화 로그 한 줄에 top-level 키로 붙는 값들이다.
type Fields map[string]any

// Log 는 전역 로거 인스턴스다. Init 전에는 info 레벨로 동작한다.
var Log Logger = NewLogger("info")

// Init 은 주어진 레벨 이름으로 전역 로거를 교체한다.
func Init(level string) {
	Log = NewLogger(level)
}

// NewLogger 는 stdout 으로 JSON 한 줄씩 출력하는 gookit/slog 로거를 만든다.
func NewLogger(level string) Logger {
	return newLogger(level, os.Stdout)
}

func newLogger(level string, out io.Writer) *slog.Logger {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	threshold := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= threshold {
			levels = append(levels, lv)
		}
	}

	h := handler.NewIOWriter(out, levels)
	// 기본 필드는 datetime/level/message 만 남기고 나머지는 Fields 로만 출력한다.
	h.SetFormatter(slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	}))

	return slog.NewWithHandlers(h)
}

func serviceName() string {
	if sn := os.Getenv("SERVICE_NAME"); sn != "" {
		return sn
	}
	return defaultServiceName
}

// withFields 는 service_name 을 보강해 레벨별로 한 줄을 남긴다.
// 전역 로거가 gookit/slog 가 아니면 필드 없이 메시지만 남긴다.
func withFields(level slog.Level, msg string, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	if _, ok := fields["service_name"]; !ok {
		fields["service_name"] = serviceName()
	}

	lg, ok := Log.(*slog.Logger)
	if !ok {
		switch level {
		case slog.DebugLevel:
			Log.Debug(msg)
		case slog.WarnLevel:
			Log.Warn(msg)
		case slog.ErrorLevel:
			Log.Error(msg)
		default:
			Log.Info(msg)
		}
		return
	}

	r := lg.WithFields(slog.M(fields))
	switch level {
	case slog.DebugLevel:
		r.Debug(msg)
	case slog.WarnLevel:
		r.Warn(msg)
	case slog.ErrorLevel:
		r.Error(msg)
	default:
		r.Info(msg)
	}
}

// InfoWithFields 는 request_id, span_id, session_id 같은 구조화 필드를 포함한 JSON 로그를 남긴다.
func InfoWithFields(msg string, fields Fields) { withFields(slog.InfoLevel, msg, fields) }

func DebugWithFields(msg string, fields Fields) { withFields(slog.DebugLevel, msg, fields) }

func WarnWithFields(msg string, fields Fields) { withFields(slog.WarnLevel, msg, fields) }

func ErrorWithFields(msg string, fields Fields) { withFields(slog.ErrorLevel, msg, fields) }
