// Package main implements the entry point for the crewlog enqueue API
// server, which accepts background job submissions, reports job status,
// and mints presigned upload URLs for client media uploads.
package main

import (
	"log"
)

// main is the entry point for the crewlog API server.
// It initializes configuration, logging, the database connection, and the
// service layer, then starts the HTTP server.
func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
