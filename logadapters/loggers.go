// Package logadapters provides ready-made implementations of the
// 4-method Logger interface (Debug/Info/Warn/Error with slog-style
// key-value args) used throughout the lending service: a plain log/slog
// wrapper and OpenTelemetry-backed variants for instrumented
// deployments.
package logadapters

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"
)

// SlogLogger adapts a *slog.Logger to the service's Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a logger on top of the given slog handler.
func NewSlogLogger(handler slog.Handler) *SlogLogger {
	return &SlogLogger{logger: slog.New(handler)}
}

// NewSlogBridgeLogger creates a logger backed by the OpenTelemetry slog
// bridge, giving automatic trace correlation via the global
// LoggerProvider.
func NewSlogBridgeLogger(name string) *SlogLogger {
	return &SlogLogger{logger: otelslog.NewLogger(name)}
}

// Debug logs a debug message.
func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// Info logs an info message.
func (l *SlogLogger) Info(msg string, args ...any) { l.logger.Info(msg, args...) }

// Warn logs a warning message.
func (l *SlogLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }

// Error logs an error message.
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// OTelLogger implements the Logger interface on the OpenTelemetry
// logging API directly, for callers that need control over log record
// creation.
type OTelLogger struct {
	logger log.Logger
}

// NewOTelLogger creates a logger that emits via the given OpenTelemetry logger.
func NewOTelLogger(logger log.Logger) *OTelLogger {
	return &OTelLogger{logger: logger}
}

// Debug emits a debug-severity log record.
func (l *OTelLogger) Debug(msg string, args ...any) { l.emit(log.SeverityDebug, msg, args...) }

// Info emits an info-severity log record.
func (l *OTelLogger) Info(msg string, args ...any) { l.emit(log.SeverityInfo, msg, args...) }

// Warn emits a warn-severity log record.
func (l *OTelLogger) Warn(msg string, args ...any) { l.emit(log.SeverityWarn, msg, args...) }

// Error emits an error-severity log record.
func (l *OTelLogger) Error(msg string, args ...any) { l.emit(log.SeverityError, msg, args...) }

func (l *OTelLogger) emit(severity log.Severity, msg string, args ...any) {
	record := log.Record{}
	record.SetSeverity(severity)
	record.SetBody(log.StringValue(msg))

	// Args come in key-value pairs like slog.
	for i := 0; i+1 < len(args); i += 2 {
		key, isString := args[i].(string)
		if !isString {
			continue
		}

		record.AddAttributes(log.String(key, stringValue(args[i+1])))
	}

	l.logger.Emit(context.Background(), record)
}

func stringValue(v any) string {
	if s, isString := v.(string); isString {
		return s
	}

	return slog.AnyValue(v).String()
}
