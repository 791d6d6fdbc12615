package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsThrottle(t *testing.T) {
	err := &FloodWaitError{Wait: 30 * time.Second}

	if !IsThrottle(err) {
		t.Error("Expected flood wait to classify as throttle")
	}
	if !IsThrottle(fmt.Errorf("get messages: %w", err)) {
		t.Error("Expected wrapped flood wait to classify as throttle")
	}
	if IsThrottle(errors.New("some other error")) {
		t.Error("Unrelated error must not classify as throttle")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&NotFoundError{Subject: "channel"}) {
		t.Error("Expected NotFoundError to match")
	}
	if !IsNotFound(ErrChannelNotFound) {
		t.Error("Expected ErrChannelNotFound sentinel to match")
	}
	if IsNotFound(&FloodWaitError{Wait: time.Second}) {
		t.Error("Flood wait must not classify as not found")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"connection", &ConnectionError{Err: errors.New("refused")}, true},
		{"timeout", &TimeoutError{Err: errors.New("deadline")}, true},
		{"not connected", ErrNotConnected, true},
		{"wrapped connection", fmt.Errorf("call: %w", &ConnectionError{Err: errors.New("reset")}), true},
		{"not found", &NotFoundError{Subject: "channel"}, false},
		{"flood wait", &FloodWaitError{Wait: time.Second}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable(%v) = %v, expected %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestFloodWaitError_WaitDuration(t *testing.T) {
	err := &FloodWaitError{Wait: 45 * time.Second}
	if err.WaitDuration() != 45*time.Second {
		t.Errorf("Expected 45s, got %s", err.WaitDuration())
	}
}

func TestErrorUnwrapping(t *testing.T) {
	inner := errors.New("socket closed")

	if !errors.Is(&ConnectionError{Err: inner}, inner) {
		t.Error("ConnectionError should unwrap to inner error")
	}
	if !errors.Is(&TimeoutError{Err: inner}, inner) {
		t.Error("TimeoutError should unwrap to inner error")
	}
}
