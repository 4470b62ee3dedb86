package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store used in tests and for local development. It
// enforces the same (user, date) uniqueness contract as the real backends.
type Memory struct {
	mu       sync.RWMutex
	users    []User
	checkIns map[string][]CheckIn // keyed by user ID, kept newest first
	notified map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{
		checkIns: make(map[string][]CheckIn),
		notified: make(map[string]time.Time),
	}
}

// AddUser seeds a user row.
func (m *Memory) AddUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.users = append(m.users, u)
}

func (m *Memory) ListUsers(ctx context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, len(m.users))
	copy(out, m.users)
	return out, nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *Memory) InsertCheckIn(ctx context.Context, userID string, date Date) (CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ci := range m.checkIns[userID] {
		if ci.Date == date {
			return CheckIn{}, ErrDuplicateCheckIn
		}
	}
	ci := CheckIn{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
	m.checkIns[userID] = append(m.checkIns[userID], ci)
	sort.Slice(m.checkIns[userID], func(i, j int) bool {
		return m.checkIns[userID][j].Date.Before(m.checkIns[userID][i].Date)
	})
	return ci, nil
}

func (m *Memory) LatestCheckIn(ctx context.Context, userID string) (*CheckIn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	checkIns := m.checkIns[userID]
	if len(checkIns) == 0 {
		return nil, nil
	}
	ci := checkIns[0]
	return &ci, nil
}

func (m *Memory) ListCheckIns(ctx context.Context, userID string) ([]CheckIn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CheckIn, len(m.checkIns[userID]))
	copy(out, m.checkIns[userID])
	return out, nil
}

func (m *Memory) HasCheckedIn(ctx context.Context, userID string, date Date) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ci := range m.checkIns[userID] {
		if ci.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) LastNotified(ctx context.Context, userID string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.notified[userID]
	return at, ok, nil
}

func (m *Memory) MarkNotified(ctx context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified[userID] = at
	return nil
}

func (m *Memory) Close() error {
	return nil
}
