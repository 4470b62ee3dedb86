// Package metrics defines the Prometheus counters for the check-in write
// path, the escalation scan pipeline and the mail transport.
package metrics
