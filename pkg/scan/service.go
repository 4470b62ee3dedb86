package scan

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/diedornot/lifecheck/pkg/metrics"
)

// Service runs the full scan-and-notify pipeline. It holds no state across
// runs; everything persistent lives in the store.
type Service struct {
	scanner    *Scanner
	dispatcher *Dispatcher
	log        *zap.SugaredLogger
}

func NewService(scanner *Scanner, dispatcher *Dispatcher, log *zap.SugaredLogger) *Service {
	return &Service{scanner: scanner, dispatcher: dispatcher, log: log.Named("scan")}
}

// Run executes one scan. The returned error is non-nil only when the run
// could not start at all (user list unavailable); per-user failures are
// inside the report.
func (s *Service) Run(ctx context.Context, now time.Time, thresholdDays float64) (Report, error) {
	s.log.Infow("Starting escalation scan", "now", now, "thresholdDays", thresholdDays)

	outcome, err := s.scanner.Scan(ctx, now, thresholdDays)
	if err != nil {
		metrics.ScansRun.WithLabelValues("failed").Inc()
		s.log.Errorw("Escalation scan could not start", "error", err)
		return Report{}, err
	}

	report := s.dispatcher.Dispatch(ctx, outcome, now)
	metrics.ScansRun.WithLabelValues("completed").Inc()
	s.log.Infow("Escalation scan completed",
		"runID", report.RunID,
		"usersScanned", report.UsersScanned,
		"notificationsSent", report.NotificationsSent,
		"failures", len(report.Failures))
	return report, nil
}
