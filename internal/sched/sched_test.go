package sched

import (
	"context"
	"errors"
	"testing"
)

func TestSequence(t *testing.T) {
	var seq Sequence

	if seq.Current() != 0 {
		t.Errorf("Expected zero token initially, got %d", seq.Current())
	}

	first := seq.Next()
	second := seq.Next()

	if second <= first {
		t.Errorf("Expected increasing tokens, got %d then %d", first, second)
	}
	if seq.IsCurrent(first) {
		t.Error("Expected first token to be stale")
	}
	if !seq.IsCurrent(second) {
		t.Error("Expected second token to be current")
	}
}

func TestInline_AppliesContinuation(t *testing.T) {
	applied := false
	Inline{}.Go(context.Background(), func(ctx context.Context) func() {
		return func() { applied = true }
	})

	if !applied {
		t.Error("Expected continuation to run synchronously")
	}

	// A nil continuation is allowed
	Inline{}.Go(context.Background(), func(ctx context.Context) func() { return nil })
}

func TestManual_OutOfOrder(t *testing.T) {
	var m Manual
	var order []string

	for _, name := range []string{"a", "b", "c"} {
		name := name
		m.Go(context.Background(), func(ctx context.Context) func() {
			return func() { order = append(order, name) }
		})
	}

	if m.Pending() != 3 {
		t.Fatalf("Expected 3 pending tasks, got %d", m.Pending())
	}

	m.Run(2)
	m.Run(0)
	m.Run(0)

	want := []string{"c", "a", "b"}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, order)
			break
		}
	}

	if m.Run(0) {
		t.Error("Expected Run on empty queue to report false")
	}
}

func TestManual_PassesContext(t *testing.T) {
	var m Manual
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	m.Go(ctx, func(ctx context.Context) func() {
		got = ctx.Err()
		return nil
	})
	m.RunAll()

	if !errors.Is(got, context.Canceled) {
		t.Errorf("Expected canceled context, got %v", got)
	}
}
