package contact_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"portfolio/internal/contact"
)

type testEnv struct {
	ctrl     *contact.Controller
	notices  *contact.Recorder
	calls    *atomic.Int32
	metrics  *contact.Metrics
	lastSent *atomic.Value
}

// newTestEnv wires a controller whose submitter answers with result.
func newTestEnv(t *testing.T, result func(ctx context.Context) error) testEnv {
	t.Helper()
	calls := &atomic.Int32{}
	last := &atomic.Value{}
	rec := &contact.Recorder{}
	metrics, err := contact.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	ctrl, err := contact.NewController(contact.Config{
		Submitter: contact.SubmitterFunc(func(ctx context.Context, f contact.Fields) error {
			calls.Add(1)
			last.Store(f)
			return result(ctx)
		}),
		Notify:  rec.Notify,
		Metrics: metrics,
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return testEnv{ctrl: ctrl, notices: rec, calls: calls, metrics: metrics, lastSent: last}
}

func fill(t *testing.T, c *contact.Controller, f contact.Fields) {
	t.Helper()
	for key, value := range map[contact.FieldKey]string{
		contact.FieldName:    f.Name,
		contact.FieldEmail:   f.Email,
		contact.FieldMessage: f.Message,
	} {
		if err := c.UpdateField(key, value); err != nil {
			t.Fatalf("update %s: %v", key, err)
		}
	}
}

var validFields = contact.Fields{Name: "A", Email: "a@b.com", Message: "hi"}

func TestValidationGating(t *testing.T) {
	cases := []struct {
		name   string
		fields contact.Fields
		reason string
		notice contact.Notification
	}{
		{"all empty", contact.Fields{}, contact.ReasonMissingFields, contact.NoticeMissingFields},
		{"no name", contact.Fields{Email: "a@b.com", Message: "hi"}, contact.ReasonMissingFields, contact.NoticeMissingFields},
		{"no email", contact.Fields{Name: "A", Message: "hi"}, contact.ReasonMissingFields, contact.NoticeMissingFields},
		{"no message", contact.Fields{Name: "A", Email: "a@b.com"}, contact.ReasonMissingFields, contact.NoticeMissingFields},
		{"bad email", contact.Fields{Name: "A", Email: "a.com", Message: "hi"}, contact.ReasonInvalidEmail, contact.NoticeInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, func(context.Context) error { return nil })
			fill(t, env.ctrl, tc.fields)

			out, err := env.ctrl.Submit(context.Background())
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			want := contact.Outcome{Kind: contact.ValidationRejected, Reason: tc.reason}
			if diff := cmp.Diff(want, out); diff != "" {
				t.Fatalf("outcome mismatch (-want +got):\n%s", diff)
			}
			if n := env.calls.Load(); n != 0 {
				t.Fatalf("expected no network calls, got %d", n)
			}
			if diff := cmp.Diff([]contact.Notification{tc.notice}, env.notices.All()); diff != "" {
				t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
			}
			if env.ctrl.Status() != contact.Idle {
				t.Fatalf("status changed on validation reject")
			}
			if diff := cmp.Diff(tc.fields, env.ctrl.Fields()); diff != "" {
				t.Fatalf("fields mutated (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWhitespaceCountsAsFilled(t *testing.T) {
	env := newTestEnv(t, func(context.Context) error { return nil })
	fill(t, env.ctrl, contact.Fields{Name: " ", Email: "a@b.com", Message: " "})
	out, err := env.ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Kind != contact.Accepted {
		t.Fatalf("expected accepted, got %+v", out)
	}
}

func TestSuccessPath(t *testing.T) {
	env := newTestEnv(t, func(context.Context) error { return nil })
	fill(t, env.ctrl, validFields)

	out, err := env.ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff(contact.Outcome{Kind: contact.Accepted}, out); diff != "" {
		t.Fatalf("outcome mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(contact.Fields{}, env.ctrl.Fields()); diff != "" {
		t.Fatalf("fields not reset (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(validFields, env.lastSent.Load().(contact.Fields)); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if env.ctrl.Status() != contact.Idle {
		t.Fatalf("expected idle")
	}
	notes := env.notices.All()
	if len(notes) != 1 || notes[0].Variant != contact.VariantDefault {
		t.Fatalf("expected one default notification, got %+v", notes)
	}
	if got := testutil.ToFloat64(env.metrics.Submissions().WithLabelValues("accepted")); got != 1 {
		t.Fatalf("expected accepted counter 1, got %v", got)
	}
}

func TestFailurePath(t *testing.T) {
	cases := map[string]error{
		"server rejection": &contact.ServerRejection{StatusCode: http.StatusInternalServerError},
		"transport error":  &contact.TransportError{Err: errors.New("connection refused")},
	}
	for name, cause := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, func(context.Context) error { return cause })
			fill(t, env.ctrl, validFields)

			out, err := env.ctrl.Submit(context.Background())
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if out.Kind != contact.Rejected || !errors.Is(out.Cause, cause) {
				t.Fatalf("expected rejected with cause, got %+v", out)
			}
			if diff := cmp.Diff(validFields, env.ctrl.Fields()); diff != "" {
				t.Fatalf("fields must be preserved (-want +got):\n%s", diff)
			}
			if env.ctrl.Status() != contact.Idle {
				t.Fatalf("expected idle")
			}
			if diff := cmp.Diff([]contact.Notification{contact.NoticeFailed}, env.notices.All()); diff != "" {
				t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSingleFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	env := newTestEnv(t, func(context.Context) error {
		close(entered)
		<-release
		return nil
	})
	fill(t, env.ctrl, validFields)

	done := make(chan contact.Outcome)
	go func() {
		out, _ := env.ctrl.Submit(context.Background())
		done <- out
	}()
	<-entered

	if env.ctrl.Status() != contact.Submitting {
		t.Fatalf("expected submitting while in flight")
	}
	if got := env.ctrl.ButtonLabel(); got != "Sending..." {
		t.Fatalf("unexpected label %q", got)
	}
	if _, err := env.ctrl.Submit(context.Background()); !errors.Is(err, contact.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	// Edits are still accepted while suspended.
	if err := env.ctrl.UpdateField(contact.FieldMessage, "edited"); err != nil {
		t.Fatalf("update during flight: %v", err)
	}

	close(release)
	out := <-done
	if out.Kind != contact.Accepted {
		t.Fatalf("expected accepted, got %+v", out)
	}
	if n := env.calls.Load(); n != 1 {
		t.Fatalf("expected exactly one network call, got %d", n)
	}
	if n := len(env.notices.All()); n != 1 {
		t.Fatalf("expected exactly one notification, got %d", n)
	}
	if env.ctrl.Status() != contact.Idle || env.ctrl.ButtonLabel() != "Send Message" {
		t.Fatalf("expected idle after settle")
	}
}

func TestCancelledSubmissionIsSilent(t *testing.T) {
	env := newTestEnv(t, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	fill(t, env.ctrl, validFields)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := env.ctrl.Submit(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n := len(env.notices.All()); n != 0 {
		t.Fatalf("abandoned submission must not notify, got %d", n)
	}
	if env.ctrl.Status() != contact.Idle {
		t.Fatalf("expected idle")
	}
	if diff := cmp.Diff(validFields, env.ctrl.Fields()); diff != "" {
		t.Fatalf("fields mutated (-want +got):\n%s", diff)
	}
}

func TestUpdateFieldUnknownKey(t *testing.T) {
	env := newTestEnv(t, func(context.Context) error { return nil })
	if err := env.ctrl.UpdateField("phone", "123"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestNewControllerRequiresSubmitter(t *testing.T) {
	if _, err := contact.NewController(contact.Config{}); err == nil {
		t.Fatalf("expected error without submitter")
	}
}

func TestHTTPSubmitter(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusCreated)
	var got contact.Fields
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/contact" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	sub := contact.NewHTTPSubmitter(srv.URL)
	if err := sub.Submit(context.Background(), validFields); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if diff := cmp.Diff(validFields, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	status.Store(http.StatusBadGateway)
	err := sub.Submit(context.Background(), validFields)
	var rej *contact.ServerRejection
	if !errors.As(err, &rej) || rej.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected server rejection, got %v", err)
	}

	srv.Close()
	err = sub.Submit(context.Background(), validFields)
	var te *contact.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
