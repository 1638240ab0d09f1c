package sessionlog

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/isabella232/gamesym/internal/modules"
)

// Recorder tags records with one session and hands out the sequence
// numbers that order them. Safe for concurrent use.
type Recorder struct {
	store   *Store
	session string
	seq     atomic.Int64
}

// NewRecorder creates a recorder for the given session.
func NewRecorder(store *Store, session string) *Recorder {
	return &Recorder{store: store, session: session}
}

// Session returns the session token records are tagged with.
func (r *Recorder) Session() string { return r.session }

// RecordAttempt writes one search attempt at the next sequence
// number.
func (r *Recorder) RecordAttempt(ctx context.Context, module, store, filename, buildID, outcome, detail string) error {
	_, err := r.store.RecordAttempt(ctx, Attempt{
		Session:  r.session,
		Seq:      r.seq.Add(1),
		Module:   module,
		Store:    store,
		Filename: filename,
		BuildID:  buildID,
		Outcome:  outcome,
		Detail:   detail,
	})
	return err
}

// RecordLoad implements modules.TelemetrySink. The sink interface has
// no error path, so write failures are logged and dropped rather than
// failing the load that produced the counters.
func (r *Recorder) RecordLoad(t modules.LoadTelemetry) {
	if _, err := r.store.RecordTelemetry(context.Background(), r.session, r.seq.Add(1), t); err != nil {
		slog.Error("recording load telemetry failed", "session", r.session, "error", err)
	}
}
