// Package audit appends an append-only activity log, one partition per local date.
package audit

import (
	"context"
	"time"
)

// Kind labels an audit row.
type Kind string

const (
	// KindNote is a saved note.
	KindNote Kind = "Note"
	// KindReminderScheduled is a reminder accepted and armed.
	KindReminderScheduled Kind = "Reminder (scheduled)"
	// KindReminderSent is a reminder delivered by its timer.
	KindReminderSent Kind = "Reminder (sent)"
	// KindReminderLate is a reminder delivered by the recovery sweep.
	KindReminderLate Kind = "Reminder (sent late)"
)

// Entry is one audit row.
type Entry struct {
	At             time.Time
	ConversationID string
	Kind           Kind
	Content        string
}

// Recorder appends entries. Failures are reported to the caller, who logs and ignores them.
type Recorder interface {
	Append(ctx context.Context, entry Entry) error
}

// Nop discards every entry.
type Nop struct{}

// Append implements Recorder.
func (Nop) Append(context.Context, Entry) error { return nil }

// Header is the first row written to every new partition.
var Header = []string{"Date", "Time", "Conversation", "Kind", "Content"}

// PartitionName returns the partition for t in loc, e.g. "2026-10-14".
func PartitionName(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// Row renders entry as the column values written to a partition.
func Row(entry Entry, loc *time.Location) []string {
	local := entry.At.In(loc)
	return []string{
		local.Format("02.01.2006"),
		local.Format("15:04:05"),
		entry.ConversationID,
		string(entry.Kind),
		entry.Content,
	}
}
