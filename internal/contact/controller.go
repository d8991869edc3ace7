package contact

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Submitter delivers validated fields to the backend. A nil error means the
// endpoint accepted the message.
type Submitter interface {
	Submit(ctx context.Context, f Fields) error
}

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, f Fields) error

// Submit delegates to the underlying function.
func (fn SubmitterFunc) Submit(ctx context.Context, f Fields) error { return fn(ctx, f) }

// Config wires a Controller.
type Config struct {
	Submitter Submitter
	Notify    Notifier
	Logger    *slog.Logger
	Metrics   *Metrics
}

// Controller holds the state of one mounted contact form. It is safe for
// concurrent use; field edits may arrive while a submission is in flight.
type Controller struct {
	submitter Submitter
	notify    Notifier
	logger    *slog.Logger
	metrics   *Metrics

	mu     sync.Mutex
	fields Fields
	status Status
}

// NewController returns a controller with empty fields in the Idle state.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Submitter == nil {
		return nil, errors.New("contact: submitter is required")
	}
	notify := cfg.Notify
	if notify == nil {
		notify = func(Notification) {}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		submitter: cfg.Submitter,
		notify:    notify,
		logger:    logger,
		metrics:   cfg.Metrics,
	}, nil
}

// UpdateField overwrites one field. No validation happens here.
func (c *Controller) UpdateField(key FieldKey, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch key {
	case FieldName:
		c.fields.Name = value
	case FieldEmail:
		c.fields.Email = value
	case FieldMessage:
		c.fields.Message = value
	default:
		return errors.New("contact: unknown field " + string(key))
	}
	return nil
}

// Fields returns a snapshot of the current input.
func (c *Controller) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

// Status returns the current submission status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ButtonLabel is the submit button text for the current status.
func (c *Controller) ButtonLabel() string {
	if c.Status() == Submitting {
		return "Sending..."
	}
	return "Send Message"
}

// Submit validates the fields and sends them. While one call is in flight any
// other call returns ErrInFlight immediately without side effects.
//
// Every settled call emits exactly one notification. If ctx is cancelled
// before the submitter answers, the attempt is abandoned silently and
// ctx.Err() is returned.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.status == Submitting {
		c.mu.Unlock()
		return Outcome{}, ErrInFlight
	}
	fields := c.fields
	if err := Validate(fields); err != nil {
		c.mu.Unlock()
		var ve *ValidationError
		errors.As(err, &ve)
		return c.rejectInput(ve), nil
	}
	c.status = Submitting
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.status = Idle
		c.mu.Unlock()
	}()

	err := c.submitter.Submit(ctx, fields)
	if err != nil && ctx.Err() != nil {
		c.logger.Debug("contact: submission abandoned", "error", err)
		c.metrics.observe("abandoned")
		return Outcome{}, ctx.Err()
	}
	if err != nil {
		c.logger.Warn("contact: submission failed", "error", err)
		c.metrics.observe(string(Rejected))
		c.notify(NoticeFailed)
		return Outcome{Kind: Rejected, Cause: err}, nil
	}

	c.mu.Lock()
	c.fields = Fields{}
	c.mu.Unlock()
	c.metrics.observe(string(Accepted))
	c.notify(NoticeSent)
	return Outcome{Kind: Accepted}, nil
}

func (c *Controller) rejectInput(ve *ValidationError) Outcome {
	c.metrics.observe(string(ValidationRejected))
	if ve.Reason == ReasonInvalidEmail {
		c.notify(NoticeInvalidEmail)
	} else {
		c.notify(NoticeMissingFields)
	}
	return Outcome{Kind: ValidationRejected, Reason: ve.Reason}
}
