package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const pgUniqueViolation = "23505"

// Postgres is a Store backed by a Postgres database via the pgx stdlib
// driver. The (user_id, check_in_date) uniqueness invariant lives in the
// schema (see migrations), never in this code.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool for the given DSN.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an existing connection, mainly for tests.
func NewPostgresFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// RunMigrations applies the embedded goose migrations.
func (p *Postgres) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, p.db, "migrations")
}

func (p *Postgres) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, emergency_email, created_at FROM users`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.EmergencyContact, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

func (p *Postgres) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, emergency_email, created_at FROM users WHERE id = $1`,
		id).Scan(&u.ID, &u.DisplayName, &u.EmergencyContact, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (p *Postgres) InsertCheckIn(ctx context.Context, userID string, date Date) (CheckIn, error) {
	ci := CheckIn{UserID: userID, Date: date}
	var created time.Time
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO check_ins (user_id, check_in_date)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		userID, date.String()).Scan(&ci.ID, &created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return CheckIn{}, ErrDuplicateCheckIn
		}
		return CheckIn{}, fmt.Errorf("db error: %w", err)
	}
	ci.CreatedAt = created
	return ci, nil
}

func (p *Postgres) LatestCheckIn(ctx context.Context, userID string) (*CheckIn, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, user_id, check_in_date, created_at FROM check_ins
		 WHERE user_id = $1
		 ORDER BY check_in_date DESC
		 LIMIT 1`,
		userID)
	ci, err := scanCheckIn(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ci, nil
}

func (p *Postgres) ListCheckIns(ctx context.Context, userID string) ([]CheckIn, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, user_id, check_in_date, created_at FROM check_ins
		 WHERE user_id = $1
		 ORDER BY check_in_date DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var checkIns []CheckIn
	for rows.Next() {
		ci, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		checkIns = append(checkIns, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return checkIns, nil
}

func (p *Postgres) HasCheckedIn(ctx context.Context, userID string, date Date) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM check_ins WHERE user_id = $1 AND check_in_date = $2)`,
		userID, date.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (p *Postgres) LastNotified(ctx context.Context, userID string) (time.Time, bool, error) {
	var at time.Time
	err := p.db.QueryRowContext(ctx,
		`SELECT last_notified_at FROM escalations WHERE user_id = $1`,
		userID).Scan(&at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("db error: %w", err)
	}
	return at, true, nil
}

func (p *Postgres) MarkNotified(ctx context.Context, userID string, at time.Time) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO escalations (user_id, last_notified_at)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET last_notified_at = EXCLUDED.last_notified_at`,
		userID, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckIn(row rowScanner) (CheckIn, error) {
	var (
		ci      CheckIn
		rawDate string
	)
	if err := row.Scan(&ci.ID, &ci.UserID, &rawDate, &ci.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CheckIn{}, err
		}
		return CheckIn{}, fmt.Errorf("db error: %w", err)
	}
	// Postgres DATE columns come back as "2006-01-02" or a full timestamp
	// depending on driver settings; keep only the calendar part.
	if len(rawDate) > len("2006-01-02") {
		rawDate = rawDate[:len("2006-01-02")]
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return CheckIn{}, err
	}
	ci.Date = date
	return ci, nil
}
