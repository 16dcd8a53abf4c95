package client

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryWithBackoff_SucceedsAfterServerErrors(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return &UpstreamError{StatusCode: 503, Class: ErrorClassServer}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("retryWithBackoff() error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), 2, time.Millisecond, func() error {
		attempts++
		return &UpstreamError{StatusCode: 500, Class: ErrorClassServer, Message: "boom"}
	})

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	ue, ok := IsUpstream(err)
	if !ok {
		t.Fatalf("expected last UpstreamError, got %T: %v", err, err)
	}
	if ue.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", ue.StatusCode)
	}
}

func TestRetryWithBackoff_ZeroRetriesIsSingleAttempt(t *testing.T) {
	attempts := 0
	_ = retryWithBackoff(context.Background(), 0, time.Millisecond, func() error {
		attempts++
		return &UpstreamError{Class: ErrorClassNetwork}
	})

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryWithBackoff_NonRetryableErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "client error", err: &UpstreamError{StatusCode: 404, Class: ErrorClassClient}},
		{name: "malformed body", err: &UpstreamError{StatusCode: 200, Class: ErrorClassMalformed}},
		{name: "cancellation", err: ErrCancelled},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := retryWithBackoff(context.Background(), 5, time.Millisecond, func() error {
				attempts++
				return tt.err
			})

			if attempts != 1 {
				t.Errorf("attempts = %d, want 1", attempts)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestRetryWithBackoff_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	start := time.Now()
	err := retryWithBackoff(ctx, 5, time.Second, func() error {
		attempts++
		cancel()
		return &UpstreamError{StatusCode: 503, Class: ErrorClassServer}
	})

	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("backoff was not interrupted, took %v", elapsed)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
