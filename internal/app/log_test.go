package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestAppdHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name      string
		component string
		level     slog.Level
		message   string
		attrs     []slog.Attr
		want      string
	}{
		{
			name:      "basic info message",
			component: "serve",
			level:     slog.LevelInfo,
			message:   "record cached",
			want:      "2024-06-15T14:30:45Z\tINFO\tserve\trecord cached\n",
		},
		{
			name:      "warn level",
			component: "serve",
			level:     slog.LevelWarn,
			message:   "token expired",
			want:      "2024-06-15T14:30:45Z\tWARN\tserve\ttoken expired\n",
		},
		{
			name:      "with record attrs",
			component: "user-add",
			level:     slog.LevelInfo,
			message:   "user created",
			attrs:     []slog.Attr{slog.String("email", "ada@example.com"), slog.Int("records", 3)},
			want:      "2024-06-15T14:30:45Z\tINFO\tuser-add\tuser created\temail=ada@example.com\trecords=3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &appdHandler{w: &buf, component: tt.component}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestAppdHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &appdHandler{w: &buf, component: "serve"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("cache", "users")}).(*appdHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "primed", 0)
	r.AddAttrs(slog.String("key", "abc"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "cache=users") {
		t.Errorf("expected pre-set attr cache=users, got: %q", got)
	}
	if !strings.Contains(got, "key=abc") {
		t.Errorf("expected record attr key=abc, got: %q", got)
	}
}

func TestAppdHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &appdHandler{w: &buf, component: "serve", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*appdHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestAppdHandler_Enabled(t *testing.T) {
	h := &appdHandler{}
	// All levels should be enabled
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if !h.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = false, want true", level)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()

	logger, f, err := newLogger(dir, "serve")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	if logger == nil {
		t.Fatal("newLogger() returned nil logger")
	}
	if f == nil {
		t.Fatal("newLogger() returned nil file")
	}
}
