// Package apiresponses provides standardized HTTP API response helpers
// (error, not-found, conflict, etc.) shared by the controller packages
// without import cycles.
package apiresponses
