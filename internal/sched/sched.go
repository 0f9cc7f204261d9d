package sched

import (
	"context"
	"sync"
)

// Token identifies one generation of work. A later token supersedes every
// earlier one.
type Token uint64

// Sequence hands out monotonically increasing tokens. It is owned by a
// single event loop and needs no locking.
type Sequence struct {
	current Token
}

// Next invalidates all outstanding tokens and returns a fresh one
func (s *Sequence) Next() Token {
	s.current++
	return s.current
}

// Current returns the latest token handed out
func (s *Sequence) Current() Token {
	return s.current
}

// IsCurrent reports whether t is still the latest token
func (s *Sequence) IsCurrent(t Token) bool {
	return t == s.current
}

// Task runs off the event loop. The returned continuation, if any, is
// applied back on the event loop.
type Task func(ctx context.Context) func()

// Scheduler runs tasks and delivers their continuations to the owning
// event loop.
type Scheduler interface {
	Go(ctx context.Context, task Task)
}

// Inline runs the task and its continuation synchronously on the caller.
type Inline struct{}

func (Inline) Go(ctx context.Context, task Task) {
	if apply := task(ctx); apply != nil {
		apply()
	}
}

// Manual queues tasks until the caller resolves them, in any order.
type Manual struct {
	mu      sync.Mutex
	pending []manualTask
}

type manualTask struct {
	ctx  context.Context
	task Task
}

func (m *Manual) Go(ctx context.Context, task Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, manualTask{ctx: ctx, task: task})
}

// Pending returns the number of unresolved tasks
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Run resolves the i-th pending task (0 = oldest) and applies its
// continuation. It reports false when no such task exists.
func (m *Manual) Run(i int) bool {
	m.mu.Lock()
	if i < 0 || i >= len(m.pending) {
		m.mu.Unlock()
		return false
	}
	t := m.pending[i]
	m.pending = append(m.pending[:i], m.pending[i+1:]...)
	m.mu.Unlock()

	if apply := t.task(t.ctx); apply != nil {
		apply()
	}
	return true
}

// RunAll resolves pending tasks oldest first, including tasks scheduled by
// continuations, until none remain.
func (m *Manual) RunAll() {
	for m.Run(0) {
	}
}
