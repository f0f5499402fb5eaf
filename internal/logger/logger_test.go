package logger

import (
	"fmt"
	"testing"
)

func TestRingTailEmpty(t *testing.T) {
	r := NewRing()
	if got := r.Tail(10); len(got) != 0 {
		t.Fatalf("Tail on empty ring = %v", got)
	}
}

func TestRingTailPartial(t *testing.T) {
	r := NewRing()
	for i := range 3 {
		fmt.Fprintf(r, "line %d\n", i)
	}
	got := r.Tail(10)
	if len(got) != 3 {
		t.Fatalf("Tail = %d lines, want 3", len(got))
	}
	if got[0] != "line 0" || got[2] != "line 2" {
		t.Fatalf("Tail = %v, want oldest first", got)
	}
}

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing()
	total := ringCapacity + 50
	for i := range total {
		fmt.Fprintf(r, "line %d\n", i)
	}

	got := r.Tail(ringCapacity)
	if len(got) != ringCapacity {
		t.Fatalf("Tail = %d lines, want %d", len(got), ringCapacity)
	}
	if want := fmt.Sprintf("line %d", total-ringCapacity); got[0] != want {
		t.Errorf("oldest kept line = %q, want %q", got[0], want)
	}
	if want := fmt.Sprintf("line %d", total-1); got[len(got)-1] != want {
		t.Errorf("newest line = %q, want %q", got[len(got)-1], want)
	}
}

func TestRingTailLimitsCount(t *testing.T) {
	r := NewRing()
	for i := range 20 {
		fmt.Fprintf(r, "line %d\n", i)
	}
	got := r.Tail(5)
	if len(got) != 5 {
		t.Fatalf("Tail(5) = %d lines", len(got))
	}
	if got[0] != "line 15" || got[4] != "line 19" {
		t.Fatalf("Tail(5) = %v", got)
	}
}

func TestSetupRejectsBadLevel(t *testing.T) {
	if _, err := Setup(t.TempDir(), "nope", false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestSetupWritesThroughRing(t *testing.T) {
	ring, err := Setup(t.TempDir(), "info", false)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	fmt.Fprintln(ring, "hello")
	if got := ring.Tail(1); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("Tail = %v", got)
	}
}
