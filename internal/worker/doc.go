// Package worker implements the claim loop that drives background job
// execution. Each Runner loop atomically claims the oldest eligible
// pending job from the store, dispatches it to the handler registered for
// its type, and applies the retry/backoff policy to the outcome. Any
// number of worker processes may run against the same store; coordination
// happens entirely through the store's atomic claim.
package worker
