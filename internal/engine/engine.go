package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"portfolio/internal/config"
	"portfolio/internal/contact"
	"portfolio/internal/domain"
	"portfolio/internal/events"
	"portfolio/internal/repo"
)

const defaultMaxMessageBytes = 5000

// PublicActor is recorded as the actor of anonymous submissions.
const PublicActor = "public"

// TooLongError reports a message body over the configured limit.
type TooLongError struct {
	Limit int
}

func (e TooLongError) Error() string {
	return fmt.Sprintf("message exceeds %d bytes", e.Limit)
}

type Engine struct {
	DB        *sql.DB
	Repo      repo.Repo
	Events    events.Writer
	Config    *config.Config
	Now       func() time.Time
	Sanitizer *bluemonday.Policy
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:        db,
		Repo:      repo.Repo{DB: db},
		Events:    events.Writer{},
		Config:    cfg,
		Now:       time.Now,
		Sanitizer: bluemonday.StrictPolicy(),
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) maxMessageBytes() int {
	if e.Config != nil && e.Config.Server.Contact.MaxMessageBytes > 0 {
		return e.Config.Server.Contact.MaxMessageBytes
	}
	return defaultMaxMessageBytes
}

// ReceiveOptions are the inputs of one public contact submission.
type ReceiveOptions struct {
	Name       string
	Email      string
	Message    string
	RemoteAddr string
	UserAgent  string
}

// ReceiveMessage validates, sanitises and stores a contact submission, and
// appends a message.received event in the same transaction.
func (e Engine) ReceiveMessage(ctx context.Context, opts ReceiveOptions) (domain.Message, error) {
	fields := contact.Fields{Name: opts.Name, Email: opts.Email, Message: opts.Message}
	if err := contact.Validate(fields); err != nil {
		return domain.Message{}, err
	}
	if limit := e.maxMessageBytes(); len(opts.Message) > limit {
		return domain.Message{}, TooLongError{Limit: limit}
	}
	fields.Name = e.sanitize(fields.Name)
	fields.Message = e.sanitize(fields.Message)
	// Markup-only input is empty once scrubbed.
	if err := contact.Validate(fields); err != nil {
		return domain.Message{}, err
	}

	m := domain.Message{
		ID:         uuid.New().String(),
		Name:       fields.Name,
		Email:      strings.TrimSpace(fields.Email),
		Body:       fields.Message,
		RemoteAddr: opts.RemoteAddr,
		UserAgent:  opts.UserAgent,
		CreatedAt:  e.now().UTC().Format(time.RFC3339Nano),
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Message{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertMessageTx(ctx, tx, m); err != nil {
		return domain.Message{}, fmt.Errorf("insert message: %w", err)
	}
	if err := e.Events.Append(ctx, tx, events.Record{
		Type:       events.MessageReceived,
		EntityKind: events.EntityMessage,
		EntityID:   m.ID,
		ActorID:    PublicActor,
		Payload: map[string]any{
			"email_domain": emailDomain(m.Email),
			"bytes":        len(m.Body),
		},
	}); err != nil {
		return domain.Message{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Message{}, err
	}
	return m, nil
}

// ReadMessage returns a message and marks it read on first access.
func (e Engine) ReadMessage(ctx context.Context, id, actorID string) (domain.Message, error) {
	m, err := e.Repo.GetMessage(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}
	if m.ReadAt != "" {
		return m, nil
	}
	ts := e.now().UTC().Format(time.RFC3339)
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Message{}, err
	}
	defer tx.Rollback()
	changed, err := e.Repo.MarkReadTx(ctx, tx, id, ts)
	if err != nil {
		return domain.Message{}, err
	}
	if changed {
		if err := e.Events.Append(ctx, tx, events.Record{Type: events.MessageRead, EntityKind: events.EntityMessage, EntityID: id, ActorID: actorID}); err != nil {
			return domain.Message{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Message{}, err
	}
	m.ReadAt = ts
	return m, nil
}

// DeleteMessage removes a message and records who did it.
func (e Engine) DeleteMessage(ctx context.Context, id, actorID string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("id required")
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Repo.DeleteMessageTx(ctx, tx, id); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, events.Record{Type: events.MessageDeleted, EntityKind: events.EntityMessage, EntityID: id, ActorID: actorID}); err != nil {
		return err
	}
	return tx.Commit()
}

const maxSanitizeRounds = 8

// sanitize returns plain text with no markup left in it. Entity-encoded
// markup decodes to real tags, so scrubbing repeats until the text is stable.
func (e Engine) sanitize(s string) string {
	if e.Sanitizer == nil {
		return s
	}
	for i := 0; i < maxSanitizeRounds; i++ {
		next := html.UnescapeString(e.Sanitizer.Sanitize(s))
		if next == s {
			return s
		}
		s = next
	}
	// Still changing: keep the escaped form rather than decoded markup.
	return e.Sanitizer.Sanitize(s)
}

func emailDomain(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 {
		return strings.ToLower(email[i+1:])
	}
	return ""
}
