// Package notify surfaces the outcome of mutations to the user: transient
// toasts and query-key invalidations, pushed to the user's open clients.
// Delivery is best effort. Nothing is persisted or retried.
package notify

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Info    Level = "info"
)

type Kind string

const (
	KindToast      Kind = "toast"
	KindInvalidate Kind = "invalidate"
)

// Query keys invalidated after mutations.
const (
	KeyAccounts      = "accounts"
	KeyContacts      = "contacts"
	KeyLeads         = "leads"
	KeyOpportunities = "opportunities"
	KeyActivities    = "activities"
	KeyWorkflows     = "workflows"
	KeyDashboard     = "dashboard"
)

// Frame is the JSON message written to clients.
type Frame struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Level   Level     `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
	Keys    []string  `json:"keys,omitempty"`
	At      time.Time `json:"at"`
}

func ToastFrame(level Level, message string) Frame {
	return Frame{ID: newID(), Kind: KindToast, Level: level, Message: message, At: time.Now().UTC()}
}

func InvalidateFrame(keys ...string) Frame {
	return Frame{ID: newID(), Kind: KindInvalidate, Keys: keys, At: time.Now().UTC()}
}

func newID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Sink receives notifications for a user. Implementations must not block
// the caller on slow or absent clients.
type Sink interface {
	Toast(ctx context.Context, userID string, level Level, message string)
	Invalidate(ctx context.Context, userID string, keys ...string)
}

// Fanout forwards every notification to each sink in order.
type Fanout []Sink

func (f Fanout) Toast(ctx context.Context, userID string, level Level, message string) {
	for _, s := range f {
		s.Toast(ctx, userID, level, message)
	}
}

func (f Fanout) Invalidate(ctx context.Context, userID string, keys ...string) {
	for _, s := range f {
		s.Invalidate(ctx, userID, keys...)
	}
}

// LogSink writes notifications to a zap logger.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log.Named("notify")}
}

func (s *LogSink) Toast(_ context.Context, userID string, level Level, message string) {
	fields := []zap.Field{zap.String("user_id", userID), zap.String("level", string(level)), zap.String("message", message)}
	if level == Error {
		s.log.Warn("toast", fields...)
		return
	}
	s.log.Debug("toast", fields...)
}

func (s *LogSink) Invalidate(_ context.Context, userID string, keys ...string) {
	s.log.Debug("invalidate", zap.String("user_id", userID), zap.Strings("keys", keys))
}

// Discard drops everything.
type Discard struct{}

func (Discard) Toast(context.Context, string, Level, string) {}
func (Discard) Invalidate(context.Context, string, ...string) {}

// Outcome reports a finished mutation on entity. Success toasts
// "<Entity> <past> successfully" and invalidates keys. Failure toasts the
// error message, or "Failed to <verb> <entity>" when it is empty.
func Outcome(ctx context.Context, sink Sink, userID, verb, entity string, err error, keys ...string) {
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Failed to " + verb + " " + entity
		}
		sink.Toast(ctx, userID, Error, msg)
		return
	}
	sink.Toast(ctx, userID, Success, capitalize(entity)+" "+pastTense(verb)+" successfully")
	if len(keys) > 0 {
		sink.Invalidate(ctx, userID, keys...)
	}
}

func pastTense(verb string) string {
	if strings.HasSuffix(verb, "e") {
		return verb + "d"
	}
	return verb + "ed"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
