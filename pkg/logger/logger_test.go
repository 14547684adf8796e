package logger

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// resetSingleton lets each test start from an uninitialised logger.
func resetSingleton() {
	once = sync.Once{}
	instance = zerolog.Logger{}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_IsSingletonAndFiltersLevel(t *testing.T) {
	resetSingleton()
	t.Cleanup(resetSingleton)

	var buf bytes.Buffer
	log := Init(Options{Level: "warn", Output: &buf, Service: "secure-notes"})
	Init(Options{Level: "trace", Output: &bytes.Buffer{}})

	log.Info().Msg("dropped")
	got := Get()
	got.Warn().Str("k", "v").Msg("kept")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected exactly one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "kept" || entry["service"] != "secure-notes" || entry["k"] != "v" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestGet_InitialisesWithDefaults(t *testing.T) {
	resetSingleton()
	t.Cleanup(resetSingleton)

	l := Get()
	if l.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %v", l.GetLevel())
	}

	// A later Init does not replace the defaulted singleton.
	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf})
	if got := Get(); got.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("singleton replaced after Get: %v", got.GetLevel())
	}
}
