package checkin

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/diedornot/lifecheck/pkg/metrics"
	"github.com/diedornot/lifecheck/pkg/store"
)

// Ledger owns the check-in write path. It never pre-checks for duplicates:
// the store's uniqueness constraint is the single source of truth, and a
// rejected insert comes back as store.ErrDuplicateCheckIn.
type Ledger struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewLedger(st store.Store, log *zap.SugaredLogger) *Ledger {
	return &Ledger{store: st, log: log.Named("ledger")}
}

// RecordCheckIn appends one check-in for the caller's "today". The date is
// a caller concern and is passed through unmodified. A duplicate for the
// day is a normal outcome, not a fault; callers distinguish it with
// errors.Is(err, store.ErrDuplicateCheckIn).
func (l *Ledger) RecordCheckIn(ctx context.Context, userID string, date store.Date) (store.CheckIn, error) {
	if userID == "" {
		return store.CheckIn{}, fmt.Errorf("user id must not be empty")
	}
	if date.IsZero() {
		return store.CheckIn{}, fmt.Errorf("check-in date must not be empty")
	}

	ci, err := l.store.InsertCheckIn(ctx, userID, date)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateCheckIn) {
			metrics.CheckInsDuplicate.Inc()
			l.log.Debugw("Check-in already recorded", "userID", userID, "date", date.String())
			return store.CheckIn{}, err
		}
		metrics.CheckInsFailed.Inc()
		return store.CheckIn{}, errors.Wrap(err, "recording check-in")
	}

	metrics.CheckInsRecorded.Inc()
	l.log.Infow("Check-in recorded", "userID", userID, "date", date.String())
	return ci, nil
}

// HasCheckedInToday reports whether a check-in exists for the given date.
// Read-only UI support; it must never be used to gate RecordCheckIn.
func (l *Ledger) HasCheckedInToday(ctx context.Context, userID string, date store.Date) (bool, error) {
	return l.store.HasCheckedIn(ctx, userID, date)
}

// History returns a user's check-ins, newest first.
func (l *Ledger) History(ctx context.Context, userID string) ([]store.CheckIn, error) {
	return l.store.ListCheckIns(ctx, userID)
}
