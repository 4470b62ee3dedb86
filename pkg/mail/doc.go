// Package mail delivers escalation notifications over SMTP, including
// optional transport-level retries and HTML template rendering.
package mail
