package scan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/diedornot/lifecheck/pkg/store"
)

type sentMail struct {
	receivers []string
	subject   string
	body      string
}

// fakeSender records sends and fails selected recipients.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]error
}

func (f *fakeSender) Send(receivers []string, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range receivers {
		if err := f.failFor[r]; err != nil {
			return err
		}
	}
	f.sent = append(f.sent, sentMail{receivers: receivers, subject: subject, body: body})
	return nil
}

func (f *fakeSender) GetHost() string { return "fake" }
func (f *fakeSender) GetPort() int    { return 25 }

func newDispatcher(t *testing.T, sender *fakeSender, st store.Store, renotifyAfter time.Duration) *Dispatcher {
	t.Helper()
	return NewDispatcher(sender, st, zaptest.NewLogger(t).Sugar(), "DiedOrNot", renotifyAfter)
}

func candidateFor(id, name, contact string, daysSince float64, last store.Date) Candidate {
	return Candidate{
		User:        store.User{ID: id, DisplayName: name, EmergencyContact: contact},
		DaysSince:   daysSince,
		LastCheckIn: last,
	}
}

func TestDispatchSendsOneMailPerCandidate(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := newDispatcher(t, sender, store.NewMemory(), 0)
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	outcome := &Outcome{
		UsersScanned: 3,
		Candidates: []Candidate{
			candidateFor("B", "Bob", "sos-b@example.com", 3.0, store.Date{Year: 2025, Month: time.June, Day: 7}),
		},
	}
	report := dispatcher.Dispatch(context.Background(), outcome, now)

	assert.Equal(t, 3, report.UsersScanned)
	assert.Equal(t, 1, report.NotificationsSent)
	assert.Empty(t, report.Failures)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, now, report.Timestamp)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"sos-b@example.com"}, sender.sent[0].receivers)
	assert.Contains(t, sender.sent[0].subject, "Bob")
	assert.Contains(t, sender.sent[0].body, "3.0 days")
	assert.Contains(t, sender.sent[0].body, "2025-06-07")
}

func TestDispatchIsolatesMailerFailures(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"sos-b@example.com": errors.New("smtp: connection reset"),
	}}
	dispatcher := newDispatcher(t, sender, store.NewMemory(), 0)

	outcome := &Outcome{
		UsersScanned: 3,
		Candidates: []Candidate{
			candidateFor("B", "Bob", "sos-b@example.com", 3.0, store.Date{Year: 2025, Month: time.June, Day: 7}),
			candidateFor("D", "Dana", "sos-d@example.com", 4.0, store.Date{Year: 2025, Month: time.June, Day: 6}),
		},
	}
	report := dispatcher.Dispatch(context.Background(), outcome, time.Now())

	// B's failure is recorded; D is still notified.
	assert.Equal(t, 1, report.NotificationsSent)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "B", report.Failures[0].UserID)
	assert.Equal(t, StageDispatch, report.Failures[0].Stage)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"sos-d@example.com"}, sender.sent[0].receivers)
}

func TestDispatchAllMailerFailures(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"sos-b@example.com": errors.New("mailbox unavailable"),
	}}
	dispatcher := newDispatcher(t, sender, store.NewMemory(), 0)

	outcome := &Outcome{
		UsersScanned: 3,
		Candidates: []Candidate{
			candidateFor("B", "Bob", "sos-b@example.com", 3.0, store.Date{Year: 2025, Month: time.June, Day: 7}),
		},
	}
	report := dispatcher.Dispatch(context.Background(), outcome, time.Now())

	assert.Equal(t, 3, report.UsersScanned)
	assert.Equal(t, 0, report.NotificationsSent)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "B", report.Failures[0].UserID)
}

func TestDispatchMissingEmergencyContact(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := newDispatcher(t, sender, store.NewMemory(), 0)

	outcome := &Outcome{
		UsersScanned: 1,
		Candidates: []Candidate{
			candidateFor("B", "Bob", "", 3.0, store.Date{Year: 2025, Month: time.June, Day: 7}),
		},
	}
	report := dispatcher.Dispatch(context.Background(), outcome, time.Now())

	assert.Equal(t, 0, report.NotificationsSent)
	require.Len(t, report.Failures, 1)
	assert.Empty(t, sender.sent)
}

func TestDispatchCarriesFetchFailures(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := newDispatcher(t, sender, store.NewMemory(), 0)

	outcome := &Outcome{
		UsersScanned: 2,
		Failures:     []Failure{{UserID: "A", Stage: StageFetch, Error: "row decode failed"}},
	}
	report := dispatcher.Dispatch(context.Background(), outcome, time.Now())

	require.Len(t, report.Failures, 1)
	assert.Equal(t, StageFetch, report.Failures[0].Stage)
}

func TestDispatchRenotifyInterval(t *testing.T) {
	mem := store.NewMemory()
	sender := &fakeSender{}
	dispatcher := newDispatcher(t, sender, mem, 24*time.Hour)
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	outcome := &Outcome{
		UsersScanned: 1,
		Candidates: []Candidate{
			candidateFor("B", "Bob", "sos-b@example.com", 3.0, store.Date{Year: 2025, Month: time.June, Day: 7}),
		},
	}

	report := dispatcher.Dispatch(context.Background(), outcome, now)
	assert.Equal(t, 1, report.NotificationsSent)

	// Second run within the interval: suppressed, not a failure.
	report = dispatcher.Dispatch(context.Background(), outcome, now.Add(6*time.Hour))
	assert.Equal(t, 0, report.NotificationsSent)
	assert.Equal(t, 1, report.NotificationsSkipped)
	assert.Empty(t, report.Failures)

	// After the interval the alert fires again while the user stays silent.
	report = dispatcher.Dispatch(context.Background(), outcome, now.Add(30*time.Hour))
	assert.Equal(t, 1, report.NotificationsSent)
	require.Len(t, sender.sent, 2)
}

func TestDispatchRenotifyDisabledNotifiesEveryRun(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := newDispatcher(t, sender, store.NewMemory(), 0)
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	outcome := &Outcome{
		UsersScanned: 1,
		Candidates: []Candidate{
			candidateFor("B", "Bob", "sos-b@example.com", 3.0, store.Date{Year: 2025, Month: time.June, Day: 7}),
		},
	}

	for i := 0; i < 3; i++ {
		report := dispatcher.Dispatch(context.Background(), outcome, now.Add(time.Duration(i)*24*time.Hour))
		assert.Equal(t, 1, report.NotificationsSent)
	}
	assert.Len(t, sender.sent, 3)
}

func TestDispatchCancelledReturnsPartialReport(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := newDispatcher(t, sender, store.NewMemory(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := &Outcome{
		UsersScanned: 2,
		Candidates: []Candidate{
			candidateFor("B", "Bob", "sos-b@example.com", 3.0, store.Date{Year: 2025, Month: time.June, Day: 7}),
			candidateFor("D", "Dana", "sos-d@example.com", 4.0, store.Date{Year: 2025, Month: time.June, Day: 6}),
		},
	}
	report := dispatcher.Dispatch(ctx, outcome, time.Now())

	assert.Equal(t, 0, report.NotificationsSent)
	assert.Equal(t, 2, report.UsersScanned)
	assert.Empty(t, sender.sent)
}
