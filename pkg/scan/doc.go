// Package scan implements the missed-check-in escalation pipeline: the
// scanner that enumerates users and evaluates staleness, the dispatcher
// that alerts emergency contacts, and the run report returned to the
// external scheduler.
package scan
