package report

import (
	"context"
	"log/slog"
	"strings"

	"github.com/roach88/unitrun/internal/event"
)

// Slog writes events as structured log records.
//
// Pass events log at debug, fail at warn, error at error and lifecycle
// events at info.
type Slog struct {
	logger *slog.Logger
}

// NewSlog creates a reporter logging to logger. A nil logger uses slog.Default().
func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger}
}

// Report logs ev.
func (s *Slog) Report(ev event.Event) {
	attrs := []slog.Attr{slog.String("kind", string(ev.Kind))}
	if ev.RunID != "" {
		attrs = append(attrs, slog.String("run_id", ev.RunID))
	}
	if len(ev.Units) > 0 {
		attrs = append(attrs, slog.String("units", strings.Join(ev.Units, " ")))
	}

	level := slog.LevelInfo
	msg := string(ev.Kind)
	switch ev.Kind {
	case event.KindPass, event.KindFail, event.KindError:
		level = outcomeLevel(ev.Kind)
		msg = "assertion " + string(ev.Kind)
		if len(ev.Contexts) > 0 {
			attrs = append(attrs, slog.String("contexts", strings.Join(ev.Contexts, " ")))
		}
		if ev.Message != "" {
			attrs = append(attrs, slog.String("message", ev.Message))
		}
		attrs = append(attrs,
			slog.String("expected", event.Repr(ev.Expected)),
			slog.String("actual", event.Repr(ev.Actual)),
		)
		if ev.Location != nil {
			attrs = append(attrs, slog.String("location", ev.Location.String()))
		}
	case event.KindBeginGroup, event.KindEndGroup:
		attrs = append(attrs, slog.String("group", ev.Group))
	case event.KindBeginTestUnit, event.KindEndTestUnit:
		attrs = append(attrs, slog.String("unit", ev.Unit))
	case event.KindSummary:
		msg = "run summary"
		attrs = append(attrs,
			slog.Int("units", ev.Counts.Units),
			slog.Int("pass", ev.Counts.Pass),
			slog.Int("fail", ev.Counts.Fail),
			slog.Int("error", ev.Counts.Error),
		)
	}

	s.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func outcomeLevel(kind event.Kind) slog.Level {
	switch kind {
	case event.KindPass:
		return slog.LevelDebug
	case event.KindFail:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
