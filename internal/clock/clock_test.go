package clock

import (
	"testing"
	"time"
)

func TestFakeClock(t *testing.T) {
	start := time.Unix(1000, 0)
	clk := NewFake(start)

	if got := clk.Now(); !got.Equal(start) {
		t.Errorf("Expected %v, got %v", start, got)
	}

	clk.Advance(5 * time.Second)
	if got := clk.Now(); !got.Equal(start.Add(5 * time.Second)) {
		t.Errorf("Expected %v, got %v", start.Add(5*time.Second), got)
	}

	later := time.Unix(2000, 0)
	clk.Set(later)
	if got := clk.Now(); !got.Equal(later) {
		t.Errorf("Expected %v, got %v", later, got)
	}
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	got := System().Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Expected system time between %v and %v, got %v", before, after, got)
	}
}
