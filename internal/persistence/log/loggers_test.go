package log

import (
	"path/filepath"
	"testing"
	"time"

	"hexglobe.ai/internal/sim/world"
)

func TestJSONLZstdWriterRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "x")
	clock := time.Date(2024, 5, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	if err := w.Write(map[string]int{"n": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := w.Write(map[string]int{"n": 2}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, name := range []string{"x-2024-05-01-10.jsonl.zst", "x-2024-05-01-11.jsonl.zst"} {
		lines := 0
		if err := ReadJSONL(filepath.Join(dir, name), func([]byte) error { lines++; return nil }); err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if lines != 1 {
			t.Fatalf("%s: got %d lines", name, lines)
		}
	}
}

func TestReportLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewReportLogger(dir)
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l.w.now = func() time.Time { return clock }
	st := world.Stats{Level: 2, Tiles: 162, Pentagons: 12, Rivers: 3}
	if err := l.WriteReport(Report{Time: clock, WorldID: "w", Source: "generated", Digest: "d", Stats: st}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	got, err := ReadReports(filepath.Join(dir, "reports", "reports-2024-05-01-10.jsonl.zst"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].Stats.Tiles != 162 || got[0].Source != "generated" {
		t.Fatalf("unexpected reports: %+v", got)
	}
}

func TestEventLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLogger(dir)
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l.w.now = func() time.Time { return clock }
	in := []world.Event{
		{Kind: "PLACE", UnitID: 1, Owner: "p1", From: -1, To: 4},
		{Kind: "MOVE", UnitID: 1, From: 4, To: 5},
	}
	for _, e := range in {
		if err := l.WriteEvent(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	got, err := ReadEvents(filepath.Join(dir, "events", "events-2024-05-01-10.jsonl.zst"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0] != in[0] || got[1] != in[1] {
		t.Fatalf("unexpected events: %+v", got)
	}
}
