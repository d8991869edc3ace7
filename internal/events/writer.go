package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Event types written by the inbox.
const (
	MessageReceived = "message.received"
	MessageRead     = "message.read"
	MessageDeleted  = "message.deleted"
)

// EntityMessage is the entity kind of every inbox event.
const EntityMessage = "message"

// Record is one row to append to the event log.
type Record struct {
	Type       string
	EntityKind string
	EntityID   string
	ActorID    string
	Payload    map[string]any
}

type Writer struct {
	Now func() time.Time
}

// Append writes rec inside tx, so it commits or rolls back with the change
// it describes.
func (w Writer) Append(ctx context.Context, tx *sql.Tx, rec Record) error {
	if rec.Type == "" || rec.ActorID == "" {
		return errors.New("event type and actor are required")
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	payload := rec.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", rec.Type, err)
	}
	var entityID any
	if rec.EntityID != "" {
		entityID = rec.EntityID
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO events(ts,type,entity_kind,entity_id,actor_id,payload_json) VALUES (?,?,?,?,?,?)`,
		now().UTC().Format(time.RFC3339), rec.Type, rec.EntityKind, entityID, rec.ActorID, string(data))
	return err
}
