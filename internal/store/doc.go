// Package store defines the persistence interfaces for the job queue and
// the narrow domain write-back contracts the workers depend on, along with
// shared error types and transaction helpers. Concrete implementations
// live in internal/platform/postgres.
package store
