package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". A nil error yields an empty attribute,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// SessionID records the browser session key.
func SessionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("session_id", id)
}

// Identity records the identity provider's user id.
func Identity(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("identity", id)
}

func Role(role string) slog.Attr {
	return slog.String("role", role)
}

func Status(status string) slog.Attr {
	return slog.String("status", status)
}

func Generation(gen uint64) slog.Attr {
	return slog.Uint64("generation", gen)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Path(p string) slog.Attr {
	return slog.String("path", p)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// LessonID records the backend id of a lesson.
func LessonID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("lesson_id", id)
}
