// Package checkin implements the daily check-in write path: the ledger that
// records liveness and the HTTP controller that exposes it.
package checkin
