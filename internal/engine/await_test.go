package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestAwaitReady_AlreadyReady(t *testing.T) {
	err := AwaitReady(context.Background(), func() bool { return true }, time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("Expected nil, got %v", err)
	}
}

func TestAwaitReady_BecomesReady(t *testing.T) {
	var polls atomic.Int32
	ready := func() bool { return polls.Add(1) >= 3 }

	err := AwaitReady(context.Background(), ready, time.Millisecond, 5*time.Second)
	if err != nil {
		t.Fatalf("Expected nil, got %v", err)
	}
	if polls.Load() < 3 {
		t.Errorf("Expected at least 3 polls, got %d", polls.Load())
	}
}

func TestAwaitReady_Timeout(t *testing.T) {
	err := AwaitReady(context.Background(), func() bool { return false }, time.Millisecond, 20*time.Millisecond)
	if !errors.Is(err, ErrAwaitTimeout) {
		t.Fatalf("Expected ErrAwaitTimeout, got %v", err)
	}
}

func TestAwaitReady_ContextCancelIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := AwaitReady(ctx, func() bool { return false }, time.Millisecond, time.Hour)
	if errors.Is(err, ErrAwaitTimeout) {
		t.Fatalf("cancellation must not look like a timeout: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestAwaitReady_NilFunc(t *testing.T) {
	if err := AwaitReady(context.Background(), nil, time.Millisecond, time.Millisecond); err == nil {
		t.Fatal("Expected error for nil ready func")
	}
}
