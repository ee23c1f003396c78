package notify

import (
	"context"

	"go.uber.org/zap"

	"salescrm/internal/modules/session"
)

var allKeys = []string{KeyAccounts, KeyContacts, KeyLeads, KeyOpportunities, KeyActivities, KeyWorkflows, KeyDashboard}

// SessionRelay forwards session transitions to the user's open clients.
type SessionRelay struct {
	sink Sink
	log  *zap.Logger
}

func NewSessionRelay(sink Sink, log *zap.Logger) *SessionRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionRelay{sink: sink, log: log.Named("session_relay")}
}

// Run consumes events until ctx is done or the channel is closed.
func (r *SessionRelay) Run(ctx context.Context, events <-chan session.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.handle(ctx, ev)
		}
	}
}

func (r *SessionRelay) handle(ctx context.Context, ev session.Event) {
	userID := ev.Principal.UserID
	r.log.Debug("session event", zap.String("type", string(ev.Type)), zap.String("user_id", userID))

	switch ev.Type {
	case session.SignedIn:
		r.sink.Toast(ctx, userID, Success, "Successfully signed in!")
	case session.SignedOut:
		r.sink.Toast(ctx, userID, Info, "Successfully signed out!")
		r.sink.Invalidate(ctx, userID, allKeys...)
	}
}
