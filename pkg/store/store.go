package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrDuplicateCheckIn is returned by InsertCheckIn when a check-in for the
	// same (user, date) pair already exists. Adapters must map their backend's
	// constraint-violation signal to this sentinel; callers never inspect
	// error text.
	ErrDuplicateCheckIn = errors.New("check-in already recorded for this date")

	// ErrUserNotFound is returned by GetUser when no user row matches.
	ErrUserNotFound = errors.New("user not found")
)

// User is a profile row owned by the backend. This core only reads it.
type User struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"name"`
	EmergencyContact string    `json:"emergency_email"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

// CheckIn is one liveness record for one calendar day.
type CheckIn struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Date      Date      `json:"check_in_date"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Store is the backend boundary. It guarantees the (user_id, check_in_date)
// uniqueness constraint server-side; callers rely on ErrDuplicateCheckIn
// instead of pre-checking.
type Store interface {
	// ListUsers returns the full user set.
	ListUsers(ctx context.Context) ([]User, error)
	// GetUser returns a single user or ErrUserNotFound.
	GetUser(ctx context.Context, id string) (User, error)

	// InsertCheckIn appends exactly one check-in row, or returns
	// ErrDuplicateCheckIn when the uniqueness constraint rejects it.
	InsertCheckIn(ctx context.Context, userID string, date Date) (CheckIn, error)
	// LatestCheckIn returns the most recent check-in for a user, or nil when
	// the user has never checked in.
	LatestCheckIn(ctx context.Context, userID string) (*CheckIn, error)
	// ListCheckIns returns all check-ins for a user, newest first.
	ListCheckIns(ctx context.Context, userID string) ([]CheckIn, error)
	// HasCheckedIn reports whether a check-in exists for the given date.
	HasCheckedIn(ctx context.Context, userID string, date Date) (bool, error)

	// LastNotified returns when the user's emergency contact was last
	// notified, or ok=false when never.
	LastNotified(ctx context.Context, userID string) (time.Time, bool, error)
	// MarkNotified upserts the last-notified timestamp for a user.
	MarkNotified(ctx context.Context, userID string, at time.Time) error

	// Close releases the underlying connection, if any.
	Close() error
}

const dateLayout = "2006-01-02"

// Date is a calendar date with no time component. The zero value means
// "absent" (a user who has never checked in).
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a date in "2006-01-02" form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Midnight returns the instant at which d begins in loc. A nil loc means UTC.
func (d Date) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return d.Midnight(time.UTC).Format(dateLayout)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
