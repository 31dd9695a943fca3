package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to unmarshal %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" Info ", InfoLevel},
		{"warning", WarnLevel},
		{"Error", ErrorLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAlgorithmFields(t *testing.T) {
	tests := []struct {
		field Field
		key   string
		value any
	}{
		{Algorithm("louvain"), "algorithm", "louvain"},
		{HierarchyLevel(2), "level", 2},
		{Iteration(3), "iteration", 3},
		{Modularity(0.25), "modularity", 0.25},
		{CommunityCount(7), "community_count", int64(7)},
		{NodeID(11), "node_id", int64(11)},
		{JobID("abc"), "job_id", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if tt.field.Key != tt.key || tt.field.Value != tt.value {
				t.Errorf("Field = %+v, want {%s %v}", tt.field, tt.key, tt.value)
			}
		})
	}

	if f := Error(nil); f.Value != nil {
		t.Errorf("Error(nil) = %+v", f)
	}
	if f := Error(errors.New("boom")); f.Value != "boom" {
		t.Errorf("Error() = %+v", f)
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("Unexpected levels %s, %s", entries[0].Level, entries[1].Level)
	}

	logger.SetLevel(DebugLevel)
	if logger.GetLevel() != DebugLevel {
		t.Errorf("GetLevel() = %v after SetLevel(DEBUG)", logger.GetLevel())
	}
}

func TestJSONLogger_WithMergesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Algorithm("wcc"), String("phase", "link"))
	child.Info("batch finished", String("phase", "merge"), Count(3))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].Fields
	if fields["algorithm"] != "wcc" {
		t.Errorf("algorithm = %v, want wcc", fields["algorithm"])
	}
	if fields["phase"] != "merge" {
		t.Errorf("call-site field should override preset, got %v", fields["phase"])
	}
	if fields["count"] != float64(3) {
		t.Errorf("count = %v, want 3", fields["count"])
	}
}

func TestJSONLogger_NoFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	NewJSONLogger(&buf, InfoLevel).Info("message without fields")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if _, exists := entry["fields"]; exists {
		t.Error("Expected fields key to be omitted when empty")
	}
}

func TestJSONLogger_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Info("worker", Int("worker", i))
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 8 {
		t.Errorf("Expected 8 intact lines, got %d", got)
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	StartTimer(logger, "aggregate", HierarchyLevel(1)).End(CommunityCount(4))
	StartTimer(logger, "aggregate").EndError(errors.New("cancelled"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if _, ok := entries[0].Fields["latency"]; !ok {
		t.Error("Expected latency field")
	}
	if entries[0].Fields["community_count"] != float64(4) {
		t.Errorf("community_count = %v", entries[0].Fields["community_count"])
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "cancelled" {
		t.Errorf("Unexpected error entry %+v", entries[1])
	}

	// nil logger must not panic
	StartTimer(nil, "noop").End()
}

func TestProgressLogger(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressLogger(NewJSONLogger(&buf, DebugLevel), 25)

	progress.Reset("Louvain :: local moving", 100)
	for i := 0; i < 100; i++ {
		progress.LogProgress(1)
	}
	progress.Done()

	var percents []float64
	for _, e := range decodeLines(t, &buf) {
		if p, ok := e.Fields["percent"]; ok {
			percents = append(percents, p.(float64))
		}
	}
	want := []float64{25, 50, 75, 100}
	if len(percents) != len(want) {
		t.Fatalf("Expected progress %v, got %v", want, percents)
	}
	for i := range want {
		if percents[i] != want[i] {
			t.Errorf("Progress[%d] = %v, want %v", i, percents[i], want[i])
		}
	}
}

func TestDefaultLogger(t *testing.T) {
	if DefaultLogger() == nil {
		t.Fatal("DefaultLogger() returned nil")
	}

	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, InfoLevel))
	DefaultLogger().Info("replaced")
	if !strings.Contains(buf.String(), "replaced") {
		t.Error("Expected SetDefaultLogger to take effect")
	}
	SetDefaultLogger(NewNopLogger())
}

func BenchmarkJSONLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("sweep", Algorithm("louvain"), Iteration(i))
	}
}
