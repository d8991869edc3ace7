package contact

import (
	"context"
	"log/slog"
	"sync"
)

// Variant of a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is what the UI feedback layer renders as a toast.
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Notifier delivers a notification to whatever shows it to the user.
type Notifier func(Notification)

// User-facing copy. Failure text never carries the underlying cause.
var (
	NoticeMissingFields = Notification{Title: "Error", Description: "Please fill in all fields", Variant: VariantDestructive}
	NoticeInvalidEmail  = Notification{Title: "Error", Description: "Please enter a valid email address", Variant: VariantDestructive}
	NoticeSent          = Notification{Title: "Success!", Description: "Thank you for your message! I'll get back to you soon.", Variant: VariantDefault}
	NoticeFailed        = Notification{Title: "Error", Description: "Failed to send message. Please try again.", Variant: VariantDestructive}
)

// Recorder is a Notifier sink that keeps every notification; handy for CLIs
// that print after the fact and for tests.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// LogNotifier writes notifications to logger.
func LogNotifier(logger *slog.Logger) Notifier {
	return func(n Notification) {
		level := slog.LevelInfo
		if n.Variant == VariantDestructive {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, n.Title, "description", n.Description, "variant", string(n.Variant))
	}
}
