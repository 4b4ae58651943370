package logger

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fokusplaner/core/internal/infrastructure/config"
)

// Logger is the zap sugared logger with the planner's field helpers
type Logger struct {
	*zap.SugaredLogger
}

// New builds a JSON production logger or a console development logger
// depending on cfg.Format.
func New(cfg config.LoggerConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.DisableStacktrace = true
	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.OutputPaths, zapConfig.ErrorOutputPaths = outputPaths(cfg)

	zapLogger, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// outputPaths keeps logs off stdout unless asked, because command output
// goes there.
func outputPaths(cfg config.LoggerConfig) (out, errOut []string) {
	switch {
	case cfg.Output == "file" && cfg.Filename != "":
		return []string{cfg.Filename}, []string{cfg.Filename}
	case cfg.Output == "stdout":
		return []string{"stdout"}, []string{"stderr"}
	default:
		return []string{"stderr"}, []string{"stderr"}
	}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) with(fields ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(fields...)}
}

func (l *Logger) WithError(err error) *Logger {
	return l.with("error", err.Error())
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.with("request_id", requestID)
}

func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// LogHTTPRequest records one served request
func (l *Logger) LogHTTPRequest(method, path, userAgent, ip string, status int, latency time.Duration) {
	l.Infow("HTTP request",
		"method", method,
		"path", path,
		"status_code", status,
		"duration_ms", milliseconds(latency),
		"user_agent", userAgent,
		"ip", ip,
	)
}

// LogStorageOperation records a collection read or write. Failures are
// errors, successes debug.
func (l *Logger) LogStorageOperation(op, collection string, took time.Duration, err error) {
	if err != nil {
		l.Errorw("Storage operation failed", "operation", op, "collection", collection, "duration_ms", milliseconds(took), "error", err.Error())
		return
	}
	l.Debugw("Storage operation executed", "operation", op, "collection", collection, "duration_ms", milliseconds(took))
}

// LogAction records a user-visible change such as a created task
func (l *Logger) LogAction(action string, metadata map[string]interface{}) {
	fields := make([]interface{}, 0, 2+2*len(metadata))
	fields = append(fields, "action", action)
	for k, v := range metadata {
		fields = append(fields, k, v)
	}
	l.Infow("User action", fields...)
}

// Close flushes any buffered log entries
func (l *Logger) Close() error {
	return l.SugaredLogger.Sync()
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
