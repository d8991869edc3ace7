package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"portfolio/internal/config"
	"portfolio/internal/contact"
	"portfolio/internal/db"
	"portfolio/internal/engine"
	"portfolio/internal/events"
	"portfolio/internal/migrate"
	"portfolio/internal/repo"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default()
	cfg.Server.Contact.MaxMessageBytes = 64
	eng := engine.New(conn, cfg)
	eng.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return testEnv{Engine: eng, Ctx: context.Background()}
}

func TestReceiveMessageStoresAndLogs(t *testing.T) {
	env := newTestEnv(t)
	m, err := env.Engine.ReceiveMessage(env.Ctx, engine.ReceiveOptions{
		Name:       "Ada <script>alert(1)</script>",
		Email:      "ada@example.com",
		Message:    "<b>Hello</b> & welcome",
		RemoteAddr: "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if m.Name != "Ada " || m.Body != "Hello & welcome" {
		t.Fatalf("unexpected sanitised values %q / %q", m.Name, m.Body)
	}
	got, err := env.Engine.Repo.GetMessage(env.Ctx, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "ada@example.com" || got.RemoteAddr != "10.0.0.1" || got.ReadAt != "" {
		t.Fatalf("unexpected stored message %+v", got)
	}
	evts, err := env.Engine.Repo.LatestEvents(env.Ctx, 10, events.MessageReceived)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(evts) != 1 || evts[0].EntityID != m.ID || evts[0].ActorID != engine.PublicActor {
		t.Fatalf("unexpected events %+v", evts)
	}
	if !strings.Contains(evts[0].Payload, `"email_domain":"example.com"`) {
		t.Fatalf("payload missing domain: %s", evts[0].Payload)
	}
}

func TestReceiveMessageScrubsEncodedMarkup(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		name, message         string
		wantName, wantMessage string
	}{
		{
			name:        "&lt;script&gt;alert(1)&lt;/script&gt;Ada",
			message:     "&lt;img src=x onerror=alert(1)&gt;hello",
			wantName:    "Ada",
			wantMessage: "hello",
		},
		{
			name:        "Ada",
			message:     "&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt; x < y & z",
			wantName:    "Ada",
			wantMessage: "bold x < y & z",
		},
	}
	for _, tc := range cases {
		m, err := env.Engine.ReceiveMessage(env.Ctx, engine.ReceiveOptions{Name: tc.name, Email: "ada@example.com", Message: tc.message})
		if err != nil {
			t.Fatalf("receive %q: %v", tc.message, err)
		}
		got, err := env.Engine.Repo.GetMessage(env.Ctx, m.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != tc.wantName || got.Body != tc.wantMessage {
			t.Fatalf("stored name=%q body=%q, want %q / %q", got.Name, got.Body, tc.wantName, tc.wantMessage)
		}
		for _, bad := range []string{"<script", "<img", "onerror", "<b>"} {
			if strings.Contains(got.Name+got.Body, bad) {
				t.Fatalf("stored text still holds %q: %q / %q", bad, got.Name, got.Body)
			}
		}
	}

	_, err := env.Engine.ReceiveMessage(env.Ctx, engine.ReceiveOptions{Name: "A", Email: "a@b.com", Message: "&lt;script&gt;alert(1)&lt;/script&gt;"})
	var ve *contact.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("encoded script only must scrub to nothing and be rejected, got %v", err)
	}
}

func TestReceiveMessageRejects(t *testing.T) {
	env := newTestEnv(t)
	cases := map[string]engine.ReceiveOptions{
		"missing":     {Name: "A", Email: "a@b.com"},
		"bad email":   {Name: "A", Email: "a@b", Message: "hi"},
		"markup only": {Name: "A", Email: "a@b.com", Message: "<img src=x>"},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.Engine.ReceiveMessage(env.Ctx, opts)
			var ve *contact.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	_, err := env.Engine.ReceiveMessage(env.Ctx, engine.ReceiveOptions{Name: "A", Email: "a@b.com", Message: strings.Repeat("x", 65)})
	var tl engine.TooLongError
	if !errors.As(err, &tl) || tl.Limit != 64 {
		t.Fatalf("expected TooLongError, got %v", err)
	}
	total, _, err := env.Engine.Repo.CountMessages(env.Ctx)
	if err != nil || total != 0 {
		t.Fatalf("rejected messages must not be stored: total=%d err=%v", total, err)
	}
}

func TestReadAndDeleteMessage(t *testing.T) {
	env := newTestEnv(t)
	m, err := env.Engine.ReceiveMessage(env.Ctx, engine.ReceiveOptions{Name: "A", Email: "a@b.com", Message: "hi"})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	unread, err := env.Engine.Repo.ListMessages(env.Ctx, repo.ListFilter{UnreadOnly: true})
	if err != nil || len(unread) != 1 {
		t.Fatalf("expected one unread, got %d (%v)", len(unread), err)
	}

	read, err := env.Engine.ReadMessage(env.Ctx, m.ID, "owner")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if read.ReadAt == "" {
		t.Fatalf("expected read_at set")
	}
	if _, err := env.Engine.ReadMessage(env.Ctx, m.ID, "owner"); err != nil {
		t.Fatalf("second read: %v", err)
	}
	readEvents, _ := env.Engine.Repo.LatestEvents(env.Ctx, 0, events.MessageRead)
	if len(readEvents) != 1 {
		t.Fatalf("expected one read event, got %d", len(readEvents))
	}
	total, unreadCount, err := env.Engine.Repo.CountMessages(env.Ctx)
	if err != nil || total != 1 || unreadCount != 0 {
		t.Fatalf("unexpected counts total=%d unread=%d err=%v", total, unreadCount, err)
	}

	if err := env.Engine.DeleteMessage(env.Ctx, m.ID, "owner"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.Engine.Repo.GetMessage(env.Ctx, m.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := env.Engine.DeleteMessage(env.Ctx, m.ID, "owner"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
