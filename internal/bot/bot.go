package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pathakanu/alina/internal/audit"
	"github.com/pathakanu/alina/internal/intent"
	"github.com/pathakanu/alina/internal/metrics"
	"github.com/pathakanu/alina/internal/model"
	myopenai "github.com/pathakanu/alina/internal/openai"
	"github.com/pathakanu/alina/internal/scheduler"
	"github.com/pathakanu/alina/internal/timeparse"
	"github.com/rs/zerolog"
)

// Store is the persistence the bot writes to.
type Store interface {
	CreateNote(ctx context.Context, note *model.Note) error
	CreateReminder(ctx context.Context, reminder *model.Reminder) error
	UpcomingReminders(ctx context.Context, now time.Time) ([]model.Reminder, error)
	NotesFor(ctx context.Context, conversationID string, limit int) ([]model.Note, error)
	PendingReminders(ctx context.Context, conversationID string) ([]model.Reminder, error)
}

// Classifier is the language-model fallback.
type Classifier interface {
	ClassifyIntent(ctx context.Context, content string) myopenai.Classification
	Reply(ctx context.Context, content string) string
}

// Timers arms in-memory reminder timers.
type Timers interface {
	Arm(id uint, due time.Time, payload scheduler.Payload) *scheduler.Handle
	Pending() int
}

// Deps are the collaborators a Bot is built from. Audit may be nil.
type Deps struct {
	Store      Store
	Splitter   *intent.Splitter
	Parser     *timeparse.Parser
	Classifier Classifier
	Timers     Timers
	Audit      audit.Recorder
}

// Bot turns inbound text into notes, reminders or chat replies.
type Bot struct {
	store      Store
	splitter   *intent.Splitter
	parser     *timeparse.Parser
	classifier Classifier
	timers     Timers
	audit      audit.Recorder
	loc        *time.Location
	logger     zerolog.Logger
	now        func() time.Time
}

const (
	localTimeLayout = "02.01.2006 15:04"
	listLimit       = 10
	auditTimeout    = 10 * time.Second
)

// New creates a fully configured Bot instance.
func New(deps Deps, logger zerolog.Logger) *Bot {
	recorder := deps.Audit
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Bot{
		store:      deps.Store,
		splitter:   deps.Splitter,
		parser:     deps.Parser,
		classifier: deps.Classifier,
		timers:     deps.Timers,
		audit:      recorder,
		loc:        deps.Parser.Location(),
		logger:     logger.With().Str("component", "bot").Logger(),
		now:        time.Now,
	}
}

// HandleMessage processes one inbound text and returns the reply. Blank input
// returns "" and touches nothing.
func (b *Bot) HandleMessage(ctx context.Context, conversationID, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	ctx = b.requestContext(ctx, conversationID)

	result := b.splitter.Classify(text)
	switch result.Kind {
	case intent.KindNote:
		metrics.MessagesHandled.WithLabelValues("note", "local").Inc()
		return b.saveNote(ctx, conversationID, result.Body)
	case intent.KindReminder:
		metrics.MessagesHandled.WithLabelValues("reminder", "local").Inc()
		return b.scheduleReminder(ctx, conversationID, result.Title, result.WhenText)
	}

	classification := b.classifier.ClassifyIntent(ctx, text)
	metrics.ClassifierOutcomes.WithLabelValues(string(classification.Intent)).Inc()
	switch classification.Intent {
	case myopenai.IntentNote:
		metrics.MessagesHandled.WithLabelValues("note", "classifier").Inc()
		return b.saveNote(ctx, conversationID, fallback(classification.Title, text))
	case myopenai.IntentReminder:
		metrics.MessagesHandled.WithLabelValues("reminder", "classifier").Inc()
		return b.scheduleReminder(ctx, conversationID, classification.Title, fallback(classification.WhenText, text))
	}

	metrics.MessagesHandled.WithLabelValues("chat", "fallback").Inc()
	return b.classifier.Reply(ctx, text)
}

// HandleCommand processes slash commands such as /start and /not.
func (b *Bot) HandleCommand(ctx context.Context, conversationID, command, args string) string {
	args = strings.TrimSpace(args)
	ctx = b.requestContext(ctx, conversationID)
	switch strings.ToLower(command) {
	case "start", "help":
		return helpResponse()
	case "not", "note":
		if args == "" {
			return "Usage: /not <text>"
		}
		return b.saveNote(ctx, conversationID, args)
	case "notes":
		return b.listNotes(ctx, conversationID)
	case "reminders":
		return b.listReminders(ctx, conversationID)
	default:
		return "I don't know that command.\n\n" + helpResponse()
	}
}

// Restore re-arms timers for every pending reminder due in the future.
// Past-due reminders are left to the sweeper.
func (b *Bot) Restore(ctx context.Context) (int, error) {
	reminders, err := b.store.UpcomingReminders(ctx, b.now())
	if err != nil {
		return 0, fmt.Errorf("restore timers: %w", err)
	}
	for _, r := range reminders {
		b.arm(r)
	}
	return len(reminders), nil
}

// requestContext attaches a request-scoped logger carrying a correlation id.
func (b *Bot) requestContext(ctx context.Context, conversationID string) context.Context {
	log := b.logger.With().
		Str("request_id", uuid.NewString()).
		Str("conversation_id", conversationID).
		Logger()
	return log.WithContext(ctx)
}

func (b *Bot) saveNote(ctx context.Context, conversationID, text string) string {
	log := zerolog.Ctx(ctx)
	note := &model.Note{ConversationID: conversationID, Text: text, CreatedAt: b.now()}
	if err := b.store.CreateNote(ctx, note); err != nil {
		log.Error().Err(err).Msg("save note")
		return "I couldn't save the note. Please try again."
	}
	metrics.NotesCreated.Inc()
	b.record(ctx, audit.Entry{At: note.CreatedAt, ConversationID: conversationID, Kind: audit.KindNote, Content: text})
	return fmt.Sprintf("Note saved ✅ (%s).", note.CreatedAt.In(b.loc).Format(localTimeLayout))
}

func (b *Bot) scheduleReminder(ctx context.Context, conversationID, title, whenText string) string {
	log := zerolog.Ctx(ctx)
	due, err := b.parser.Parse(whenText, b.now())
	if errors.Is(err, timeparse.ErrNoTime) {
		metrics.ParseFailures.Inc()
		log.Info().Str("when_text", whenText).Msg("could not determine reminder time")
		return "I couldn't work out the time. Example: “remind me to drink water | tomorrow 10:30”."
	}
	if err != nil {
		log.Error().Err(err).Msg("parse reminder time")
		return "I couldn't work out the time. Please try again."
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = model.DefaultReminderTitle
	}
	reminder := &model.Reminder{ConversationID: conversationID, Title: title, RemindAt: due}
	if err := b.store.CreateReminder(ctx, reminder); err != nil {
		log.Error().Err(err).Msg("save reminder")
		return "I couldn't save the reminder. Please try again."
	}

	b.arm(*reminder)
	metrics.RemindersScheduled.Inc()
	b.record(ctx, audit.Entry{At: reminder.RemindAt, ConversationID: conversationID, Kind: audit.KindReminderScheduled, Content: title})
	log.Info().Uint("reminder_id", reminder.ID).Time("due", reminder.RemindAt).Msg("reminder scheduled")

	return fmt.Sprintf("Done! Reminder set for %s: “%s”", reminder.RemindAt.In(b.loc).Format(localTimeLayout), title)
}

func (b *Bot) arm(r model.Reminder) {
	b.timers.Arm(r.ID, r.RemindAt, scheduler.Payload{
		ReminderID:     r.ID,
		ConversationID: r.ConversationID,
		Title:          r.Title,
	})
	metrics.ArmedTimers.Set(float64(b.timers.Pending()))
}

// record appends an audit row. Failures are logged and dropped.
func (b *Bot) record(ctx context.Context, entry audit.Entry) {
	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()
	if err := b.audit.Append(ctx, entry); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("kind", string(entry.Kind)).Msg("audit append failed")
	}
}

func (b *Bot) listNotes(ctx context.Context, conversationID string) string {
	notes, err := b.store.NotesFor(ctx, conversationID, listLimit)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("list notes")
		return "I couldn't load your notes. Please try again later."
	}
	if len(notes) == 0 {
		return "You have no notes yet."
	}

	var sb strings.Builder
	sb.WriteString("Your latest notes:\n")
	for i, n := range notes {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, n.Text, n.CreatedAt.In(b.loc).Format(localTimeLayout)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) listReminders(ctx context.Context, conversationID string) string {
	reminders, err := b.store.PendingReminders(ctx, conversationID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("list reminders")
		return "I couldn't load your reminders. Please try again later."
	}
	if len(reminders) == 0 {
		return "You have no upcoming reminders."
	}

	var sb strings.Builder
	sb.WriteString("Upcoming reminders:\n")
	for i, r := range reminders {
		sb.WriteString(fmt.Sprintf("%d. %s — %s\n", i+1, r.RemindAt.In(b.loc).Format(localTimeLayout), r.Title))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func fallback(primary, secondary string) string {
	if strings.TrimSpace(primary) == "" {
		return secondary
	}
	return primary
}

func helpResponse() string {
	return "Hi, I'm Alina 🤖 You can say things like:\n" +
		"- \"take a note send the meeting summary\" to save a note\n" +
		"- \"remind me to take my pills | today 21:30\" to set a reminder\n" +
		"- \"remind me tomorrow 10:30 call the bank\" also works\n" +
		"- /notes and /reminders list what I have saved"
}
