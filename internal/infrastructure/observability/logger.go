package observability

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// InitLogger builds the process logger. Format "console" switches to the
// human-readable writer; anything else emits JSON lines.
func InitLogger(level, format string, output io.Writer) zerolog.Logger {
	if output == nil {
		output = os.Stdout
	}
	if strings.EqualFold(format, "console") {
		output = zerolog.ConsoleWriter{Out: output}
	}

	return zerolog.New(output).
		Level(parseLogLevel(level)).
		With().
		Timestamp().
		Caller().
		Logger()
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// ForProvider tags every entry with the serving gateway.
func ForProvider(logger zerolog.Logger, provider string) zerolog.Logger {
	return logger.With().Str("provider", provider).Logger()
}

// LeveledLogger exposes a zerolog logger through the printf-style leveled
// interface SDK clients expect.
type LeveledLogger struct {
	logger zerolog.Logger
}

func NewLeveledLogger(logger zerolog.Logger) *LeveledLogger {
	return &LeveledLogger{logger: logger}
}

func (l *LeveledLogger) Debugf(format string, v ...any) { l.logger.Debug().Msgf(format, v...) }
func (l *LeveledLogger) Infof(format string, v ...any)  { l.logger.Info().Msgf(format, v...) }
func (l *LeveledLogger) Warnf(format string, v ...any)  { l.logger.Warn().Msgf(format, v...) }
func (l *LeveledLogger) Errorf(format string, v ...any) { l.logger.Error().Msgf(format, v...) }
