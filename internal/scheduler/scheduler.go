// Package scheduler keeps one in-memory timer per pending reminder.
//
// Timers are a latency optimisation only. Nothing here is durable; after a
// restart the map is empty and the recovery sweep delivers anything that was
// missed.
package scheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Payload travels with a timer to the delivery callback.
type Payload struct {
	ReminderID     uint
	ConversationID string
	Title          string
}

// FireFunc is invoked once when a timer expires.
type FireFunc func(Payload)

// Handle identifies one armed timer.
type Handle struct {
	id    uint
	timer *time.Timer
}

// ReminderID returns the reminder the handle was armed for.
func (h *Handle) ReminderID() uint {
	if h == nil {
		return 0
	}
	return h.id
}

// Scheduler arms and cancels per-reminder timers.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[uint]*Handle
	fire    FireFunc
	now     func() time.Time
	stopped bool
	logger  zerolog.Logger
}

// New returns a Scheduler that calls fire when a reminder comes due.
func New(fire FireFunc, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		timers: make(map[uint]*Handle),
		fire:   fire,
		now:    time.Now,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Arm schedules payload for due. A due instant in the past fires immediately.
// Arming an id that already has a timer replaces it.
func (s *Scheduler) Arm(id uint, due time.Time, payload Payload) *Handle {
	payload.ReminderID = id
	delay := due.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	if existing, ok := s.timers[id]; ok {
		existing.timer.Stop()
	}

	h := &Handle{id: id}
	h.timer = time.AfterFunc(delay, func() { s.expire(h, payload) })
	s.timers[id] = h
	s.logger.Debug().Uint("reminder_id", id).Dur("delay", delay).Msg("timer armed")
	return h
}

// Cancel stops the timer behind h if it has not fired yet.
func (s *Scheduler) Cancel(h *Handle) bool {
	if h == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.timers[h.id]; ok && current == h {
		delete(s.timers, h.id)
	}
	return h.timer.Stop()
}

// Pending returns the number of armed timers that have not fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every timer and rejects further Arm calls.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, h := range s.timers {
		h.timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) expire(h *Handle, payload Payload) {
	s.mu.Lock()
	current, ok := s.timers[h.id]
	if !ok || current != h {
		s.mu.Unlock()
		return
	}
	delete(s.timers, h.id)
	s.mu.Unlock()

	s.fire(payload)
}
