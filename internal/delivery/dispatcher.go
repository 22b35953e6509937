// Package delivery sends due reminders and records the pending -> sent transition.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pathakanu/alina/internal/audit"
	"github.com/pathakanu/alina/internal/database"
	"github.com/pathakanu/alina/internal/metrics"
	"github.com/pathakanu/alina/internal/model"
	"github.com/pathakanu/alina/internal/scheduler"
	"github.com/pathakanu/alina/internal/transport"
	"github.com/rs/zerolog"
)

// Path names the route a delivery came through.
type Path string

const (
	// PathTimer is the in-memory timer firing on time.
	PathTimer Path = "timer"
	// PathSweep is the recovery sweep catching a missed reminder.
	PathSweep Path = "sweep"
)

// Store is the subset of the durable store the dispatcher needs.
type Store interface {
	GetReminder(ctx context.Context, id uint) (model.Reminder, error)
	MarkSent(ctx context.Context, id uint) (bool, error)
}

// Dispatcher delivers reminders. Concurrent Deliver calls for the same id
// collapse to one; the loser returns immediately.
type Dispatcher struct {
	store  Store
	sender transport.Sender
	audit  audit.Recorder
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	inflight map[uint]struct{}
}

// New returns a Dispatcher. A nil recorder disables the audit log.
func New(store Store, sender transport.Sender, recorder audit.Recorder, logger zerolog.Logger) *Dispatcher {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Dispatcher{
		store:    store,
		sender:   sender,
		audit:    recorder,
		logger:   logger.With().Str("component", "delivery").Logger(),
		now:      time.Now,
		inflight: make(map[uint]struct{}),
	}
}

// Message renders the text sent to the conversation.
func Message(title string, path Path) string {
	if title == "" {
		title = model.DefaultReminderTitle
	}
	if path == PathSweep {
		return fmt.Sprintf("⏰ (Late) Reminder: %s", title)
	}
	return fmt.Sprintf("⏰ Reminder: %s", title)
}

// Deliver sends reminder id if it is still pending and then marks it sent.
// The transition is attempted whether or not the send succeeded, so a
// reminder is never retried forever. It reports whether this call performed
// the transition. Only store failures are returned as errors.
func (d *Dispatcher) Deliver(ctx context.Context, id uint, path Path) (bool, error) {
	if !d.claim(id) {
		return false, nil
	}
	defer d.release(id)

	log := d.logger.With().Uint("reminder_id", id).Str("path", string(path)).Logger()

	reminder, err := d.store.GetReminder(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		log.Warn().Msg("reminder vanished before delivery")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deliver reminder %d: %w", id, err)
	}
	if reminder.Sent {
		log.Debug().Msg("reminder already sent, skipping")
		return false, nil
	}

	if err := d.sender.Send(ctx, reminder.ConversationID, Message(reminder.Title, path)); err != nil {
		metrics.DeliveryFailures.WithLabelValues("send").Inc()
		log.Error().Err(err).Str("conversation_id", reminder.ConversationID).Msg("reminder send failed; marking sent anyway")
	}

	marked, err := d.store.MarkSent(ctx, id)
	if err != nil {
		metrics.DeliveryFailures.WithLabelValues("mark_sent").Inc()
		return false, fmt.Errorf("deliver reminder %d: %w", id, err)
	}
	if !marked {
		log.Warn().Msg("reminder was marked sent concurrently")
		return false, nil
	}
	metrics.RemindersDelivered.WithLabelValues(string(path)).Inc()

	kind := audit.KindReminderSent
	if path == PathSweep {
		kind = audit.KindReminderLate
	}
	entry := audit.Entry{At: d.now(), ConversationID: reminder.ConversationID, Kind: kind, Content: reminder.Title}
	if err := d.audit.Append(ctx, entry); err != nil {
		metrics.DeliveryFailures.WithLabelValues("audit").Inc()
		log.Warn().Err(err).Msg("audit append failed")
	}

	log.Info().Str("conversation_id", reminder.ConversationID).Msg("reminder delivered")
	return true, nil
}

// OnTimer returns the scheduler callback for the timer path. Each delivery
// gets its own deadline so a hung transport cannot hold the in-flight claim.
func (d *Dispatcher) OnTimer(timeout time.Duration) scheduler.FireFunc {
	return func(p scheduler.Payload) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := d.Deliver(ctx, p.ReminderID, PathTimer); err != nil {
			d.logger.Error().Err(err).Uint("reminder_id", p.ReminderID).Msg("timer delivery failed")
		}
	}
}

func (d *Dispatcher) claim(id uint) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inflight[id]; busy {
		return false
	}
	d.inflight[id] = struct{}{}
	return true
}

func (d *Dispatcher) release(id uint) {
	d.mu.Lock()
	delete(d.inflight, id)
	d.mu.Unlock()
}
