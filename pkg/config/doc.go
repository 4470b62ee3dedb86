// Package config loads the lifecheck YAML configuration and applies
// defaults for the server, store, mail and escalation sections.
package config
