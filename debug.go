package lens

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// DebugLogger is the diagnostic channel for Lens operations. When enabled, it
// logs all console API communications including requests, responses, degraded
// results and swallowed dispatcher failures. It is never user-facing: views
// learn about degradation through result flags, not through this logger.
type DebugLogger struct {
	enabled bool
	logger  zerolog.Logger
	closer  io.Closer
}

// NewDebugLogger creates a new debug logger.
// If logPath is empty, logs to stderr.
func NewDebugLogger(enabled bool, logPath string) (*DebugLogger, error) {
	var writer io.Writer = os.Stderr
	var closer io.Closer

	if enabled && logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open debug log: %w", err)
		}
		writer = f
		closer = f
	}

	logger := zerolog.New(writer).With().Timestamp().Str("component", "lens").Logger()
	if !enabled {
		logger = logger.Level(zerolog.Disabled)
	}

	return &DebugLogger{
		enabled: enabled,
		logger:  logger,
		closer:  closer,
	}, nil
}

// Close closes the debug logger if it's writing to a file.
func (l *DebugLogger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Log writes a debug message if logging is enabled.
func (l *DebugLogger) Log(format string, args ...any) {
	if l == nil || !l.enabled {
		return
	}
	l.logger.Debug().Msgf(format, args...)
}

// LogRequest logs an outgoing HTTP request.
func (l *DebugLogger) LogRequest(method, url string, body []byte) {
	if l == nil || !l.enabled {
		return
	}
	ev := l.logger.Debug().Str("method", method).Str("url", url)
	if len(body) > 0 {
		ev = ev.Str("body", truncateForLog(string(body), 2000))
	}
	ev.Msg("request")
}

// LogResponse logs an HTTP response.
func (l *DebugLogger) LogResponse(statusCode int, status string, body []byte) {
	if l == nil || !l.enabled {
		return
	}
	ev := l.logger.Debug().Int("status_code", statusCode).Str("status", status)
	if len(body) > 0 {
		ev = ev.Str("body", truncateForLog(string(body), 4000))
	}
	ev.Msg("response")
}

// LogError logs an error with full details.
func (l *DebugLogger) LogError(operation string, err error) {
	if l == nil || !l.enabled {
		return
	}
	l.logger.Debug().Str("operation", operation).Err(err).Msg("error")
}

// LogDegraded logs a resource falling back to its fixed payload.
func (l *DebugLogger) LogDegraded(resource string, reason error) {
	if l == nil || !l.enabled {
		return
	}
	l.logger.Debug().Str("resource", resource).Err(reason).Msg("degraded to fallback")
}

// truncateForLog truncates a string for logging purposes.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}
