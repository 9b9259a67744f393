package logging

import "testing"

func TestNewParsesLevel(t *testing.T) {
	logger, err := New("warn", false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Fatalf("debug should be disabled at warn level")
	}
	if !logger.Core().Enabled(1) {
		t.Fatalf("warn should be enabled")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", true); err == nil {
		t.Fatalf("expected error")
	}
}
