package scan

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diedornot/lifecheck/pkg/metrics"
	"github.com/diedornot/lifecheck/pkg/staleness"
	"github.com/diedornot/lifecheck/pkg/store"
)

// ErrUsersUnavailable means the user list could not be fetched. It is the
// only error fatal to a run; everything per-user is absorbed into the
// report.
var ErrUsersUnavailable = errors.New("user list unavailable")

// Outcome is what a single scan pass produces: the due candidates plus the
// per-user fetch failures encountered along the way.
type Outcome struct {
	Candidates   []Candidate
	Failures     []Failure
	UsersScanned int
}

// Scanner enumerates all users and evaluates each one's staleness.
type Scanner struct {
	store          store.Store
	eval           staleness.Evaluator
	log            *zap.SugaredLogger
	maxConcurrency int
	perUserTimeout time.Duration
}

func NewScanner(st store.Store, eval staleness.Evaluator, log *zap.SugaredLogger,
	maxConcurrency int, perUserTimeout time.Duration,
) *Scanner {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	return &Scanner{
		store:          st,
		eval:           eval,
		log:            log.Named("scanner"),
		maxConcurrency: maxConcurrency,
		perUserTimeout: perUserTimeout,
	}
}

// Scan fetches the full user set and evaluates each user independently.
// A per-user fetch failure lands in the outcome's failure list and the scan
// moves on; only a failure to list users at all returns an error. Per-user
// work fans out under a bounded concurrency limit and stops early when ctx
// is cancelled, returning whatever was collected so far.
func (s *Scanner) Scan(ctx context.Context, now time.Time, thresholdDays float64) (*Outcome, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, errors.Wrap(ErrUsersUnavailable, err.Error())
	}
	s.log.Infow("Scanning users for missed check-ins",
		"users", len(users), "thresholdDays", thresholdDays)

	outcome := &Outcome{UsersScanned: len(users)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for _, user := range users {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			candidate, failure := s.evaluateUser(gctx, user, now, thresholdDays)
			mu.Lock()
			defer mu.Unlock()
			if failure != nil {
				outcome.Failures = append(outcome.Failures, *failure)
			}
			if candidate != nil {
				outcome.Candidates = append(outcome.Candidates, *candidate)
			}
			return nil
		})
	}
	_ = g.Wait()

	metrics.UsersScanned.Add(float64(outcome.UsersScanned))
	s.log.Infow("Scan pass finished",
		"users", outcome.UsersScanned,
		"due", len(outcome.Candidates),
		"fetchFailures", len(outcome.Failures))
	return outcome, nil
}

func (s *Scanner) evaluateUser(ctx context.Context, user store.User, now time.Time,
	thresholdDays float64,
) (*Candidate, *Failure) {
	fetchCtx := ctx
	if s.perUserTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.perUserTimeout)
		defer cancel()
	}

	last, err := s.store.LatestCheckIn(fetchCtx, user.ID)
	if err != nil {
		s.log.Errorw("Error fetching latest check-in, skipping user",
			"userID", user.ID, "error", err)
		return nil, &Failure{UserID: user.ID, Stage: StageFetch, Error: err.Error()}
	}
	if last == nil {
		// Never checked in: no baseline, never due.
		s.log.Debugw("User has no check-ins", "userID", user.ID)
		return nil, nil
	}

	result := s.eval.Evaluate(last.Date, now, thresholdDays)
	s.log.Debugw("Evaluated user staleness",
		"userID", user.ID, "daysSince", result.DaysSince, "due", result.Due)
	if !result.Due {
		return nil, nil
	}
	return &Candidate{
		User:        user,
		DaysSince:   result.DaysSince,
		LastCheckIn: last.Date,
	}, nil
}
