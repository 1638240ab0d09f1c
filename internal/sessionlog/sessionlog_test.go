package sessionlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isabella232/gamesym/internal/modules"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

// TestOpen_Reopen tests that opening an existing database is
// idempotent and keeps its data.
func TestOpen_Reopen(t *testing.T) {
	store, path := openTestStore(t)

	sess, err := store.BeginSession(context.Background(), "first")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	sessions, err := reopened.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, sess.Token, sessions[0].Token)
	assert.Equal(t, "first", sessions[0].Label)
}

// TestSessions_ChronologicalOrder tests that session listing follows
// creation order.
func TestSessions_ChronologicalOrder(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	first, err := store.BeginSession(ctx, "a")
	require.NoError(t, err)
	second, err := store.BeginSession(ctx, "b")
	require.NoError(t, err)

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.Token, sessions[0].Token)
	assert.Equal(t, second.Token, sessions[1].Token)
}

// TestRecordAttempt_DeterministicRead tests ordered reads and
// duplicate suppression.
func TestRecordAttempt_DeterministicRead(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	sess, err := store.BeginSession(ctx, "")
	require.NoError(t, err)

	// Insert out of order; reads must come back by seq.
	for _, a := range []Attempt{
		{Session: sess.Token, Seq: 2, Module: "game.elf", Store: "http(https://s.example.com)", Filename: "game.debug", BuildID: "deadbeef", Outcome: OutcomeHit},
		{Session: sess.Token, Seq: 1, Module: "game.elf", Store: "flat(/opt/syms)", Filename: "game.debug", BuildID: "deadbeef", Outcome: OutcomeMiss},
	} {
		_, err := store.RecordAttempt(ctx, a)
		require.NoError(t, err)
	}

	// Writing the same attempt again is a no-op.
	id, err := store.RecordAttempt(ctx, Attempt{
		Session: sess.Token, Seq: 1, Module: "game.elf",
		Store: "flat(/opt/syms)", Filename: "game.debug", BuildID: "deadbeef", Outcome: OutcomeMiss,
	})
	require.NoError(t, err)

	attempts, err := store.Attempts(ctx, sess.Token)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, int64(1), attempts[0].Seq)
	assert.Equal(t, OutcomeMiss, attempts[0].Outcome)
	assert.Equal(t, id, attempts[0].ID)
	assert.Equal(t, int64(2), attempts[1].Seq)
	assert.Equal(t, OutcomeHit, attempts[1].Outcome)
}

// TestAttemptID_Stable tests that record ids are content-addressed.
func TestAttemptID_Stable(t *testing.T) {
	a, err := attemptID("tok", 1, "m.so", "flat(/s)", "m.debug", "abcd", OutcomeHit)
	require.NoError(t, err)
	b, err := attemptID("tok", 1, "m.so", "flat(/s)", "m.debug", "abcd", OutcomeHit)
	require.NoError(t, err)
	c, err := attemptID("tok", 2, "m.so", "flat(/s)", "m.debug", "abcd", OutcomeHit)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

// TestRecorder_Telemetry tests the loader sink path end to end.
func TestRecorder_Telemetry(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	sess, err := store.BeginSession(ctx, "")
	require.NoError(t, err)

	rec := NewRecorder(store, sess.Token)
	var sink modules.TelemetrySink = rec
	sink.RecordLoad(modules.LoadTelemetry{
		ModulesCount:              3,
		BinariesLoadedBeforeCount: 1,
		BinariesLoadedAfterCount:  3,
		SymbolsLoadedBeforeCount:  0,
		SymbolsLoadedAfterCount:   2,
	})

	records, err := store.TelemetryRecords(ctx, sess.Token)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].ModulesCount)
	assert.Equal(t, 2, records[0].SymbolsLoadedAfterCount)
}

// TestRecorder_SequencesAttempts tests that the recorder assigns
// increasing sequence numbers.
func TestRecorder_SequencesAttempts(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	sess, err := store.BeginSession(ctx, "")
	require.NoError(t, err)

	rec := NewRecorder(store, sess.Token)
	require.NoError(t, rec.RecordAttempt(ctx, "a.so", "flat(/s)", "a.debug", "01", OutcomeMiss, ""))
	require.NoError(t, rec.RecordAttempt(ctx, "a.so", "http(https://x)", "a.debug", "01", OutcomeHit, ""))

	attempts, err := store.Attempts(ctx, sess.Token)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, int64(1), attempts[0].Seq)
	assert.Equal(t, int64(2), attempts[1].Seq)
}
