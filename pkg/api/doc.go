// Package api wires the gin HTTP server: request logging, recovery,
// health and metrics endpoints, and controller registration.
package api
