package shared

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "key=value") {
			t.Errorf("unexpected log output: %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("to file")
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		tc := []struct {
			in   string
			want log.Level
		}{
			{"debug", log.DebugLevel},
			{" WARN ", log.WarnLevel},
			{"error", log.ErrorLevel},
			{"", log.InfoLevel},
			{"chatty", log.InfoLevel},
		}
		for _, tt := range tc {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	})

	t.Run("GenerateID is unique", func(t *testing.T) {
		if GenerateID() == GenerateID() {
			t.Error("expected distinct IDs")
		}
	})
}

func TestErrors(t *testing.T) {
	t.Run("NetworkError matches ErrNetwork and its cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := fmt.Errorf("load: %w", &NetworkError{Method: "GET", Path: "/c/getMovies", Err: cause})

		if !errors.Is(err, ErrNetwork) {
			t.Error("expected errors.Is(err, ErrNetwork)")
		}
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is(err, cause)")
		}
	})

	t.Run("HTTPError exposes status and message", func(t *testing.T) {
		err := fmt.Errorf("vote: %w", &HTTPError{Method: "POST", Path: "/u/1/vote", StatusCode: 403, Message: "Members only"})

		if !errors.Is(err, ErrHTTPStatus) {
			t.Error("expected errors.Is(err, ErrHTTPStatus)")
		}
		if StatusCode(err) != 403 {
			t.Errorf("StatusCode() = %d, want 403", StatusCode(err))
		}
		if UserMessage(err, "") != "Members only" {
			t.Errorf("UserMessage() = %q", UserMessage(err, ""))
		}
	})

	t.Run("ValidationError matches ErrInvalidInput", func(t *testing.T) {
		err := NewValidationError("title", "is required")
		if !errors.Is(err, ErrInvalidInput) {
			t.Error("expected errors.Is(err, ErrInvalidInput)")
		}
		if err.Error() != "title is required" {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("UserMessage fallbacks", func(t *testing.T) {
		if got := UserMessage(errors.New("boom"), "Failed to add movie."); got != "Failed to add movie." {
			t.Errorf("UserMessage() = %q", got)
		}
		if got := UserMessage(errors.New("boom"), ""); got != "An error occurred. Please try again." {
			t.Errorf("UserMessage() = %q", got)
		}
		if StatusCode(errors.New("boom")) != 0 {
			t.Error("expected 0 status for plain error")
		}
	})
}
