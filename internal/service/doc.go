// Package service implements the application's business operations on top
// of the store interfaces. It owns transaction boundaries: operations that
// touch multiple records, such as creating an update together with its
// transcription job, run inside a single database transaction here.
package service
