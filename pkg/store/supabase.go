package store

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Supabase is a Store speaking PostgREST over HTTP, as exposed by a hosted
// Supabase project. The uniqueness constraint still lives in the underlying
// Postgres schema; PostgREST surfaces violations as 409 responses carrying
// SQLSTATE 23505, which this adapter maps to ErrDuplicateCheckIn.
type Supabase struct {
	client *resty.Client
}

// postgrestError is the error body PostgREST returns on failed requests.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (e postgrestError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("postgrest error %s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("postgrest error %s: %s", e.Code, e.Message)
}

// NewSupabase builds an adapter for the project at baseURL, authenticating
// with the service-role key (the scan job needs to read all users, which RLS
// denies to anon keys).
func NewSupabase(baseURL, serviceKey string, timeout time.Duration) *Supabase {
	client := resty.New().
		SetBaseURL(baseURL+"/rest/v1").
		SetHeader("apikey", serviceKey).
		SetAuthToken(serviceKey).
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Supabase{client: client}
}

func (s *Supabase) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetResult(&users).
		Get("/users")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("listing users: unexpected status %d", resp.StatusCode())
	}
	return users, nil
}

func (s *Supabase) GetUser(ctx context.Context, id string) (User, error) {
	var users []User
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"select": "*", "id": "eq." + id}).
		SetResult(&users).
		Get("/users")
	if err != nil {
		return User{}, fmt.Errorf("fetching user %s: %w", id, err)
	}
	if resp.IsError() {
		return User{}, fmt.Errorf("fetching user %s: unexpected status %d", id, resp.StatusCode())
	}
	if len(users) == 0 {
		return User{}, ErrUserNotFound
	}
	return users[0], nil
}

func (s *Supabase) InsertCheckIn(ctx context.Context, userID string, date Date) (CheckIn, error) {
	type newCheckIn struct {
		UserID string `json:"user_id"`
		Date   Date   `json:"check_in_date"`
	}
	var (
		inserted []CheckIn
		pgErr    postgrestError
	)
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(newCheckIn{UserID: userID, Date: date}).
		SetResult(&inserted).
		SetError(&pgErr).
		Post("/check_ins")
	if err != nil {
		return CheckIn{}, fmt.Errorf("inserting check-in: %w", err)
	}
	if resp.StatusCode() == http.StatusConflict && pgErr.Code == pgUniqueViolation {
		return CheckIn{}, ErrDuplicateCheckIn
	}
	if resp.IsError() {
		return CheckIn{}, fmt.Errorf("inserting check-in: %w", pgErr)
	}
	if len(inserted) == 0 {
		return CheckIn{}, fmt.Errorf("inserting check-in: empty representation")
	}
	return inserted[0], nil
}

func (s *Supabase) LatestCheckIn(ctx context.Context, userID string) (*CheckIn, error) {
	checkIns, err := s.queryCheckIns(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(checkIns) == 0 {
		return nil, nil
	}
	return &checkIns[0], nil
}

func (s *Supabase) ListCheckIns(ctx context.Context, userID string) ([]CheckIn, error) {
	return s.queryCheckIns(ctx, userID, 0)
}

func (s *Supabase) queryCheckIns(ctx context.Context, userID string, limit int) ([]CheckIn, error) {
	var checkIns []CheckIn
	params := map[string]string{
		"select":  "*",
		"user_id": "eq." + userID,
		"order":   "check_in_date.desc",
	}
	if limit > 0 {
		params["limit"] = fmt.Sprintf("%d", limit)
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&checkIns).
		Get("/check_ins")
	if err != nil {
		return nil, fmt.Errorf("fetching check-ins for %s: %w", userID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching check-ins for %s: unexpected status %d", userID, resp.StatusCode())
	}
	return checkIns, nil
}

func (s *Supabase) HasCheckedIn(ctx context.Context, userID string, date Date) (bool, error) {
	var checkIns []CheckIn
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select":        "id",
			"user_id":       "eq." + userID,
			"check_in_date": "eq." + date.String(),
		}).
		SetResult(&checkIns).
		Get("/check_ins")
	if err != nil {
		return false, fmt.Errorf("checking today for %s: %w", userID, err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("checking today for %s: unexpected status %d", userID, resp.StatusCode())
	}
	return len(checkIns) > 0, nil
}

type escalationRow struct {
	UserID         string    `json:"user_id"`
	LastNotifiedAt time.Time `json:"last_notified_at"`
}

func (s *Supabase) LastNotified(ctx context.Context, userID string) (time.Time, bool, error) {
	var rows []escalationRow
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"select": "*", "user_id": "eq." + userID}).
		SetResult(&rows).
		Get("/escalations")
	if err != nil {
		return time.Time{}, false, fmt.Errorf("fetching escalation state for %s: %w", userID, err)
	}
	if resp.IsError() {
		return time.Time{}, false, fmt.Errorf("fetching escalation state for %s: unexpected status %d", userID, resp.StatusCode())
	}
	if len(rows) == 0 {
		return time.Time{}, false, nil
	}
	return rows[0].LastNotifiedAt, true, nil
}

func (s *Supabase) MarkNotified(ctx context.Context, userID string, at time.Time) error {
	var pgErr postgrestError
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates").
		SetBody(escalationRow{UserID: userID, LastNotifiedAt: at}).
		SetError(&pgErr).
		Post("/escalations")
	if err != nil {
		return fmt.Errorf("recording notification for %s: %w", userID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("recording notification for %s: %w", userID, pgErr)
	}
	return nil
}

func (s *Supabase) Close() error {
	return nil
}
