package history

import (
	"context"
	"testing"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	entries := []Entry{
		{StartedAt: base, GoldenPath: "goldens/a.png", Mode: "verify", Outcome: "match"},
		{StartedAt: base.Add(time.Second), GoldenPath: "goldens/a.png", Mode: "verify",
			Outcome: "pixel_mismatch", DiffCount: 12, DiffPercent: 0.3, DiffPath: "outputs/diff.png"},
		{StartedAt: base.Add(2 * time.Second), GoldenPath: "goldens/a.png", Mode: "approve",
			Outcome: "approved", Duration: 1200 * time.Millisecond},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries", len(got))
	}
	// Most recent first.
	if got[0].Mode != "approve" || got[0].Outcome != "approved" {
		t.Fatalf("order wrong: %+v", got[0])
	}
	if got[1].DiffCount != 12 || got[1].DiffPath != "outputs/diff.png" {
		t.Fatalf("mismatch row lost fields: %+v", got[1])
	}
	if got[0].Duration != 1200*time.Millisecond {
		t.Fatalf("duration = %v", got[0].Duration)
	}
}

func TestRecentLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := Entry{StartedAt: time.Now().Add(time.Duration(i) * time.Second),
			GoldenPath: "g.png", Mode: "verify", Outcome: "match"}
		if err := s.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("limit ignored, got %d", len(got))
	}
}

func TestRecentEmpty(t *testing.T) {
	s := testStore(t)
	got, err := s.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty, got %d", len(got))
	}
}
