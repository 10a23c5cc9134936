// Package config handles loading and validating application configuration
// from environment variables and optional config files. Environment
// variables use the CREWLOG_ prefix with underscores separating sections,
// e.g. CREWLOG_DATABASE_URL.
package config
