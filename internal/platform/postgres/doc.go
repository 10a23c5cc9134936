// Package postgres provides PostgreSQL implementations of the store
// interfaces. The job store realizes the atomic claim-with-skip semantics
// the queue relies on: a single UPDATE over a FOR UPDATE SKIP LOCKED
// subselect, so concurrent claimants never block on each other and never
// receive the same row.
package postgres
