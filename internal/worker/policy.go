package worker

import "time"

// RetryPolicy decides, after a failed handler invocation, whether a job is
// re-queued with a delay or marked permanently failed.
type RetryPolicy struct {
	// MaxAttempts is the claim-attempt cap. A job whose attempt count has
	// reached it is marked FAILED instead of being re-queued.
	MaxAttempts int

	// BaseDelay scales the exponential backoff. The delay before a job's
	// next claim is BaseDelay * 2^attempts.
	BaseDelay time.Duration
}

// DefaultRetryPolicy returns the standard policy: three attempts with
// minute-based exponential backoff (first retry after 2 minutes, second
// after 4).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Minute,
	}
}

// ShouldFail reports whether a job with the given post-claim attempt count
// has exhausted its retry budget.
func (p RetryPolicy) ShouldFail(attempts int) bool {
	return attempts >= p.MaxAttempts
}

// Delay returns the backoff before a job with the given post-claim attempt
// count becomes eligible again. The delay grows exponentially with the
// attempt count and is always positive.
func (p RetryPolicy) Delay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return p.BaseDelay * time.Duration(1<<attempts)
}

// NextRunAt returns the retry eligibility time for a job failing now.
func (p RetryPolicy) NextRunAt(now time.Time, attempts int) time.Time {
	return now.Add(p.Delay(attempts))
}
