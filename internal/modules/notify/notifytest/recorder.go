// Package notifytest provides an in-memory notify.Sink for tests.
package notifytest

import (
	"context"
	"sync"

	"salescrm/internal/modules/notify"
)

type Toast struct {
	UserID  string
	Level   notify.Level
	Message string
}

type Recorder struct {
	mu          sync.Mutex
	toasts      []Toast
	invalidated map[string][]string
}

func New() *Recorder {
	return &Recorder{invalidated: make(map[string][]string)}
}

func (r *Recorder) Toast(_ context.Context, userID string, level notify.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, Toast{UserID: userID, Level: level, Message: message})
}

func (r *Recorder) Invalidate(_ context.Context, userID string, keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated[userID] = append(r.invalidated[userID], keys...)
}

func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Last returns the most recent toast, or the zero Toast.
func (r *Recorder) Last() Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}
	}
	return r.toasts[len(r.toasts)-1]
}

func (r *Recorder) Invalidated(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.invalidated[userID]...)
}
