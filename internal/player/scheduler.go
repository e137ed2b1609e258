package player

import (
	"container/heap"
	"sync"
	"time"
)

// Timer is a pending scheduled call.
type Timer interface {
	// Stop prevents the call from firing. It reports whether the call was
	// still pending.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the wall clock.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler is a virtual clock. Nothing fires until Advance, Step or
// Flush is called, and callbacks run on the calling goroutine in due order
// (ties in scheduling order).
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	queue taskQueue
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTask{sched: s, due: s.now + d, seq: s.seq, fn: f}
	heap.Push(&s.queue, t)
	return t
}

// Now returns the virtual time elapsed since creation.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of scheduled calls that have not fired.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Advance moves the clock forward by d, firing every call that falls due.
// It returns the number of calls fired.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	fired := 0
	for s.fireNext(target, true) {
		fired++
	}
	s.mu.Lock()
	if s.now < target {
		s.now = target
	}
	s.mu.Unlock()
	return fired
}

// Step fires the next pending call, moving the clock to its due time.
func (s *ManualScheduler) Step() bool {
	return s.fireNext(0, false)
}

// Flush fires calls until none remain, including calls scheduled by the
// calls it fires.
func (s *ManualScheduler) Flush() int {
	fired := 0
	for s.Step() {
		fired++
	}
	return fired
}

func (s *ManualScheduler) fireNext(limit time.Duration, bounded bool) bool {
	s.mu.Lock()
	if s.queue.Len() == 0 || (bounded && s.queue[0].due > limit) {
		s.mu.Unlock()
		return false
	}
	t := heap.Pop(&s.queue).(*manualTask)
	t.fired = true
	if t.due > s.now {
		s.now = t.due
	}
	s.mu.Unlock()

	t.fn()
	return true
}

type manualTask struct {
	sched   *ManualScheduler
	due     time.Duration
	seq     uint64
	fn      func()
	fired   bool
	stopped bool
	index   int
}

func (t *manualTask) Stop() bool {
	s := t.sched
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	heap.Remove(&s.queue, t.index)
	return true
}

type taskQueue []*manualTask

func (q taskQueue) Len() int { return len(q) }
func (q taskQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}
func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*manualTask)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
