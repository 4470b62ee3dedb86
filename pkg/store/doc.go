// Package store defines the backend boundary for users, check-ins and
// escalation state, with adapters for Postgres (pgx), a hosted Supabase
// project (PostgREST over HTTP) and an in-memory implementation for tests.
// All adapters rely on the database-level (user_id, check_in_date)
// uniqueness constraint and surface violations as ErrDuplicateCheckIn.
package store
