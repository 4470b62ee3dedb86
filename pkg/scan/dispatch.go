package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diedornot/lifecheck/pkg/mail"
	"github.com/diedornot/lifecheck/pkg/metrics"
	"github.com/diedornot/lifecheck/pkg/store"
)

// Dispatcher sends one alert per candidate and aggregates the run report.
// Each dispatch is isolated: a mailer failure for one candidate is recorded
// and the rest proceed. There is no resend within a run; a failed
// notification waits for the next scheduled scan.
type Dispatcher struct {
	sender       mail.Sender
	store        store.Store
	log          *zap.SugaredLogger
	brandingName string

	// renotifyAfter suppresses repeat alerts for a still-silent user until
	// the interval has passed since the last one. Zero disables suppression.
	renotifyAfter time.Duration
}

func NewDispatcher(sender mail.Sender, st store.Store, log *zap.SugaredLogger,
	brandingName string, renotifyAfter time.Duration,
) *Dispatcher {
	return &Dispatcher{
		sender:        sender,
		store:         st,
		log:           log.Named("dispatcher"),
		brandingName:  brandingName,
		renotifyAfter: renotifyAfter,
	}
}

// Dispatch notifies every candidate in the outcome and folds the scanner's
// fetch failures plus any dispatch failures into a single report. A
// cancelled ctx stops further dispatches; the partial report reflects work
// completed so far.
func (d *Dispatcher) Dispatch(ctx context.Context, outcome *Outcome, now time.Time) Report {
	report := Report{
		RunID:        uuid.NewString(),
		UsersScanned: outcome.UsersScanned,
		Failures:     append([]Failure{}, outcome.Failures...),
		Timestamp:    now.UTC(),
	}

	for _, candidate := range outcome.Candidates {
		if ctx.Err() != nil {
			d.log.Warnw("Dispatch cancelled, returning partial report",
				"sentSoFar", report.NotificationsSent)
			break
		}

		if skip, err := d.shouldSkip(ctx, candidate.User.ID, now); err != nil {
			d.log.Warnw("Could not read last-notified state, notifying anyway",
				"userID", candidate.User.ID, "error", err)
		} else if skip {
			metrics.NotificationsSkipped.Inc()
			report.NotificationsSkipped++
			d.log.Debugw("Skipping recently notified user", "userID", candidate.User.ID)
			continue
		}

		if err := d.notify(candidate); err != nil {
			metrics.NotificationsFailed.Inc()
			report.Failures = append(report.Failures, Failure{
				UserID: candidate.User.ID,
				Stage:  StageDispatch,
				Error:  err.Error(),
			})
			continue
		}

		metrics.NotificationsSent.Inc()
		report.NotificationsSent++
		if d.renotifyAfter > 0 {
			if err := d.store.MarkNotified(ctx, candidate.User.ID, now); err != nil {
				d.log.Warnw("Could not record notification time",
					"userID", candidate.User.ID, "error", err)
			}
		}
	}

	d.log.Infow("Dispatch finished",
		"runID", report.RunID,
		"sent", report.NotificationsSent,
		"skipped", report.NotificationsSkipped,
		"failures", len(report.Failures))
	return report
}

func (d *Dispatcher) shouldSkip(ctx context.Context, userID string, now time.Time) (bool, error) {
	if d.renotifyAfter <= 0 {
		return false, nil
	}
	last, ok, err := d.store.LastNotified(ctx, userID)
	if err != nil {
		return false, err
	}
	return ok && now.Sub(last) < d.renotifyAfter, nil
}

func (d *Dispatcher) notify(candidate Candidate) error {
	recipient := candidate.User.EmergencyContact
	if recipient == "" {
		return fmt.Errorf("user has no emergency contact")
	}

	body, err := mail.RenderEscalation(mail.EscalationMailParams{
		DisplayName:     candidate.User.DisplayName,
		DaysSince:       fmt.Sprintf("%.1f", candidate.DaysSince),
		LastCheckInDate: candidate.LastCheckIn.String(),
		BrandingName:    d.brandingName,
	})
	if err != nil {
		return fmt.Errorf("rendering escalation mail: %w", err)
	}

	subject := mail.EscalationSubject(candidate.User.DisplayName)
	d.log.Infow("Sending escalation notification",
		"userID", candidate.User.ID,
		"daysSince", fmt.Sprintf("%.1f", candidate.DaysSince))
	return d.sender.Send([]string{recipient}, subject, body)
}
