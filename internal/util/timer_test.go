package util

import (
	"testing"
	"time"
)

func TestTimer(t *testing.T) {
	var zero Timer
	if zero.ElapsedUs() != 0 || zero.ElapsedSeconds() != 0 {
		t.Fatalf("expected zero elapsed for an unstarted timer")
	}

	timer := StartTimer()
	time.Sleep(2 * time.Millisecond)
	if got := timer.ElapsedUs(); got < 2000 {
		t.Fatalf("expected at least 2000us got %d", got)
	}
}
