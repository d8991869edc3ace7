package events_test

import (
	"context"
	"testing"
	"time"

	"portfolio/internal/db"
	"portfolio/internal/events"
	"portfolio/internal/migrate"
	"portfolio/internal/repo"
)

func TestAppendCommitsWithTx(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()
	w := events.Writer{Now: func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := w.Append(ctx, tx, events.Record{Type: events.MessageRead, EntityKind: events.EntityMessage, EntityID: "m1", ActorID: "owner"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	tx.Rollback()

	tx, err = conn.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := w.Append(ctx, tx, events.Record{Type: events.MessageDeleted, EntityKind: events.EntityMessage, EntityID: "m1", ActorID: "owner", Payload: map[string]any{"n": 1}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := repo.Repo{DB: conn}.LatestEvents(ctx, 0, "")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rolled back event must not persist, got %d events", len(got))
	}
	if got[0].Type != events.MessageDeleted || got[0].TS != "2024-05-01T12:00:00Z" || got[0].Payload != `{"n":1}` {
		t.Fatalf("unexpected event %+v", got[0])
	}
}

func TestAppendRequiresTypeAndActor(t *testing.T) {
	var w events.Writer
	if err := w.Append(context.Background(), nil, events.Record{Type: events.MessageRead}); err == nil {
		t.Fatalf("expected error for missing actor")
	}
}
