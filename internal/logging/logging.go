package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bnema/neruai/internal/domain"
	"github.com/rs/zerolog"
)

// New builds the process logger. format is "console" for human output or
// "json" for one JSON object per line.
func New(w io.Writer, level string, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("%w: log level %q", domain.ErrInvalidConfig, level)
		}
		lvl = parsed
	}

	switch strings.ToLower(format) {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("%w: log format %q", domain.ErrInvalidConfig, format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
