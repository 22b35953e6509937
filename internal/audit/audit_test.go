package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionUsesLocalDate(t *testing.T) {
	t.Parallel()
	istanbul := time.FixedZone("TRT", 3*60*60)
	at := time.Date(2026, 10, 13, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-10-14", PartitionName(at, istanbul))
	assert.Equal(t, "2026-10-13", PartitionName(at, time.UTC))
}

func TestRow(t *testing.T) {
	t.Parallel()
	istanbul := time.FixedZone("TRT", 3*60*60)
	entry := Entry{
		At:             time.Date(2026, 10, 13, 22, 30, 5, 0, time.UTC),
		ConversationID: "telegram:42",
		Kind:           KindReminderSent,
		Content:        "drink water",
	}

	assert.Equal(t, []string{"14.10.2026", "01:30:05", "telegram:42", "Reminder (sent)", "drink water"}, Row(entry, istanbul))
	assert.Len(t, Header, len(Row(entry, istanbul)))
}

func TestNop(t *testing.T) {
	t.Parallel()
	var r Recorder = Nop{}
	require.NoError(t, r.Append(context.Background(), Entry{}))
}
