package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevel(t *testing.T) {
	logger := NewWithWriter(io.Discard, "debug")
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}

	logger = NewWithWriter(io.Discard, "WARN")
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %s", logger.GetLevel())
	}

	for _, lvl := range []string{"", "invalid"} {
		logger = NewWithWriter(io.Discard, lvl)
		if logger.GetLevel() != zerolog.InfoLevel {
			t.Fatalf("expected info fallback for %q, got %s", lvl, logger.GetLevel())
		}
	}
}

func TestNewWithWriterFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info")
	logger.Debug().Msg("hidden")
	logger.Info().Str("stage", "ipfs").Msg("uploaded")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if line["stage"] != "ipfs" || line["message"] != "uploaded" {
		t.Fatalf("unexpected fields: %v", line)
	}
	if _, ok := line["time"]; !ok {
		t.Fatalf("expected a timestamp: %v", line)
	}
}
