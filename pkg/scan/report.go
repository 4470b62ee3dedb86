package scan

import (
	"time"

	"github.com/diedornot/lifecheck/pkg/store"
)

// Candidate is a user whose silence has crossed the threshold. Computed
// fresh on every scan, never persisted.
type Candidate struct {
	User        store.User
	DaysSince   float64
	LastCheckIn store.Date
}

// Failure stages, recorded per user in the run report.
const (
	StageFetch    = "fetch"
	StageDispatch = "dispatch"
)

// Failure is one user's recorded error. It never aborts a run.
type Failure struct {
	UserID string `json:"userId"`
	Stage  string `json:"stage"`
	Error  string `json:"error"`
}

// Report summarizes one scan-and-notify run. It is returned to the caller
// and serialized on the trigger surface; it is not persisted.
type Report struct {
	RunID                string    `json:"runId"`
	UsersScanned         int       `json:"usersScanned"`
	NotificationsSent    int       `json:"notificationsSent"`
	NotificationsSkipped int       `json:"notificationsSkipped,omitempty"`
	Failures             []Failure `json:"failures"`
	Timestamp            time.Time `json:"timestamp"`
}
