package live

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quizcast/quizcast/pkg/audioio"
)

// Scheduler renders a sequence of decoded response buffers as
// continuous, gap-free audio output, tolerating irregular arrival
// timing from the network.
//
// All buffers are scheduled against a single cursor, the next free
// playback start time: each buffer starts exactly where the previous
// one ends, and the cursor catches up to "now" after a stall so a late
// buffer starts immediately instead of in the past. This guarantees
// back-to-back playback with no gaps or overlaps as long as fragments
// decode faster than real time.
type Scheduler struct {
	sink   audioio.Sink
	clock  Clock
	logger *slog.Logger

	mu     sync.Mutex
	cursor time.Time // zero until the first buffer after start/flush
	active map[uint64]*scheduledBuffer
	nextID uint64

	// writeMu serializes sink writes against Flush, so a buffer being
	// written when an interruption lands is discarded by the flush's
	// Clear instead of surviving it.
	writeMu sync.Mutex

	// Stats
	scheduled atomic.Int64
	completed atomic.Int64
	flushes   atomic.Int64
}

// scheduledBuffer is one entry in the active set.
type scheduledBuffer struct {
	chunk      audioio.Chunk
	start      time.Time
	startTimer Timer
	doneTimer  Timer
}

// SchedulerStats tracks scheduler counters.
type SchedulerStats struct {
	Scheduled int64 `json:"scheduled"`
	Completed int64 `json:"completed"`
	Flushes   int64 `json:"flushes"`
}

// NewScheduler creates a playback scheduler writing to sink.
func NewScheduler(sink audioio.Sink, logger *slog.Logger) *Scheduler {
	return NewSchedulerWithClock(sink, systemClock{}, logger)
}

// NewSchedulerWithClock creates a scheduler with an injected clock.
func NewSchedulerWithClock(sink audioio.Sink, clock Clock, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		sink:   sink,
		clock:  clock,
		logger: logger,
		active: make(map[uint64]*scheduledBuffer),
	}
}

// Enqueue schedules a decoded buffer for playback and returns its
// start time. The buffer starts no earlier than the cursor; the cursor
// then advances by exactly the buffer's duration. Empty buffers are
// dropped.
func (s *Scheduler) Enqueue(chunk audioio.Chunk) time.Time {
	d := chunk.Duration()
	if d == 0 {
		return time.Time{}
	}

	s.mu.Lock()

	now := s.clock.Now()
	if s.cursor.Before(now) {
		// Catch up after a gap or stall: never schedule in the past.
		s.cursor = now
	}

	start := s.cursor
	s.cursor = s.cursor.Add(d)
	end := s.cursor

	id := s.nextID
	s.nextID++

	buf := &scheduledBuffer{chunk: chunk, start: start}
	buf.startTimer = s.clock.AfterFunc(start.Sub(now), func() { s.play(id) })
	buf.doneTimer = s.clock.AfterFunc(end.Sub(now), func() { s.complete(id) })
	s.active[id] = buf

	s.mu.Unlock()

	s.scheduled.Add(1)
	return start
}

// play writes one buffer to the sink at its scheduled start time.
// A write failure skips the buffer; it never aborts the scheduler.
func (s *Scheduler) play(id uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	buf, ok := s.active[id]
	s.mu.Unlock()

	if !ok {
		// Flushed before its start time.
		return
	}

	if err := s.sink.Write(context.Background(), buf.chunk); err != nil {
		s.logger.Warn("playback write failed, skipping buffer", "error", err)
	}
}

// complete removes a buffer from the active set when its scheduled
// interval ends.
func (s *Scheduler) complete(id uint64) {
	s.mu.Lock()
	_, ok := s.active[id]
	delete(s.active, id)
	s.mu.Unlock()

	if ok {
		s.completed.Add(1)
	}
}

// Flush force-stops every scheduled buffer, clears the active set and
// resets the cursor, then discards whatever the sink had buffered.
// The next buffer schedules fresh from the current time, so stale
// audio from a pre-empted turn never plays.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	for id, buf := range s.active {
		buf.startTimer.Stop()
		buf.doneTimer.Stop()
		delete(s.active, id)
	}
	s.cursor = time.Time{}
	s.mu.Unlock()

	// Taking writeMu here waits out any write already in flight, so
	// Clear below discards that buffer too.
	s.writeMu.Lock()
	if err := s.sink.Clear(); err != nil {
		s.logger.Warn("sink clear failed", "error", err)
	}
	s.writeMu.Unlock()
	s.flushes.Add(1)
}

// ActiveCount returns the number of scheduled-but-unfinished buffers.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Stats returns scheduler counters.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Scheduled: s.scheduled.Load(),
		Completed: s.completed.Load(),
		Flushes:   s.flushes.Load(),
	}
}
