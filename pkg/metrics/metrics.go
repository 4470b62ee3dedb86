package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Check-in write path metrics
	CheckInsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lifecheck_checkins_recorded_total",
		Help: "Total number of check-ins successfully recorded",
	})
	CheckInsDuplicate = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lifecheck_checkins_duplicate_total",
		Help: "Total number of check-in attempts rejected as duplicates for the day",
	})
	CheckInsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lifecheck_checkins_failed_total",
		Help: "Total number of check-in attempts that failed on the store",
	})

	// Scan pipeline metrics
	ScansRun = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecheck_scans_total",
		Help: "Total number of escalation scans, by outcome",
	}, []string{"outcome"})
	UsersScanned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lifecheck_scan_users_scanned_total",
		Help: "Total number of users evaluated across all scans",
	})
	NotificationsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lifecheck_notifications_sent_total",
		Help: "Total number of escalation notifications delivered",
	})
	NotificationsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lifecheck_notifications_failed_total",
		Help: "Total number of escalation notifications that failed to send",
	})
	NotificationsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lifecheck_notifications_skipped_total",
		Help: "Total number of due candidates skipped by the renotify interval",
	})

	// Mail transport metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecheck_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecheck_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	}, []string{"host"})
)

func init() {
	prometheus.MustRegister(CheckInsRecorded)
	prometheus.MustRegister(CheckInsDuplicate)
	prometheus.MustRegister(CheckInsFailed)
	prometheus.MustRegister(ScansRun)
	prometheus.MustRegister(UsersScanned)
	prometheus.MustRegister(NotificationsSent)
	prometheus.MustRegister(NotificationsFailed)
	prometheus.MustRegister(NotificationsSkipped)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
