// Package api contains the HTTP handlers for the enqueue API: creating
// background jobs, polling their status, and minting presigned upload URLs.
// Handlers validate and translate requests, delegate to the service layer,
// and never touch the database directly.
package api
