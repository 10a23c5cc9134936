package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/metrics"
	"github.com/crewlog/crewlog/internal/platform/logger"
	"github.com/crewlog/crewlog/internal/redact"
	"github.com/crewlog/crewlog/internal/store"
)

// RunnerConfig holds configuration for the claim loop.
type RunnerConfig struct {
	// Loops is the number of concurrent claim loops to run in this
	// process. Each loop is strictly sequential: claim, dispatch, outcome.
	Loops int

	// PollInterval is the sleep between claim attempts when no eligible
	// job is found.
	PollInterval time.Duration

	// ErrorPause is the longer sleep after a store-level claim error.
	ErrorPause time.Duration

	// HandlerTimeout bounds a single handler invocation. Zero disables
	// the timeout.
	HandlerTimeout time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with the reference pacing:
// a 3 second poll interval and a 5 second pause after store errors.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Loops:          1,
		PollInterval:   3 * time.Second,
		ErrorPause:     5 * time.Second,
		HandlerTimeout: 10 * time.Minute,
	}
}

// Runner drives background job processing against a JobStore.
type Runner struct {
	store    store.JobStore
	config   RunnerConfig
	policy   RetryPolicy
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers map[domain.JobType]Handler
}

// NewRunner creates a Runner with the given store, configuration, and
// retry policy.
func NewRunner(jobStore store.JobStore, config RunnerConfig, policy RetryPolicy, log *slog.Logger) *Runner {
	if config.Loops <= 0 {
		config.Loops = 1
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 3 * time.Second
	}
	if config.ErrorPause <= 0 {
		config.ErrorPause = 5 * time.Second
	}

	return &Runner{
		store:    jobStore,
		config:   config,
		policy:   policy,
		logger:   log,
		handlers: make(map[domain.JobType]Handler),
	}
}

// Register associates a handler with a job type. Must be called before Start.
func (r *Runner) Register(jobType domain.JobType, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = h
}

// Start launches the configured number of claim loops and blocks until ctx
// is cancelled. Any in-flight job completes before Start returns.
func (r *Runner) Start(ctx context.Context) {
	var wg sync.WaitGroup

	for i := 0; i < r.config.Loops; i++ {
		wg.Add(1)
		go func(loopID int) {
			defer wg.Done()
			r.runLoop(ctx, loopID)
		}(i)
	}

	wg.Wait()
	r.logger.Info("worker runner stopped")
}

// runLoop is one sequential claim loop. It never terminates on a store
// error: claim failures are logged and followed by a longer pause before
// the next cycle.
func (r *Runner) runLoop(ctx context.Context, loopID int) {
	log := r.logger.With("loop_id", loopID)
	log.Info("claim loop started",
		"poll_interval", r.config.PollInterval,
		"error_pause", r.config.ErrorPause)

	for {
		if ctx.Err() != nil {
			log.Info("claim loop stopping")
			return
		}

		job, err := r.store.Claim(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("claim loop stopping")
				return
			}
			metrics.ClaimErrorsTotal.Inc()
			log.Error("claim cycle failed", "error", err)
			sleepCtx(ctx, r.config.ErrorPause)
			continue
		}

		if job == nil {
			// No eligible job; wait for the next poll.
			sleepCtx(ctx, r.config.PollInterval)
			continue
		}

		r.processJob(ctx, log, job)
	}
}

// processJob dispatches one claimed job and applies the outcome. Handler
// errors never escape: every failure path ends in the retry policy.
func (r *Runner) processJob(ctx context.Context, log *slog.Logger, job *domain.Job) {
	log = log.With(
		"job_id", job.ID,
		"job_type", job.Type,
		"attempts", job.Attempts,
	)
	jobCtx := logger.WithContext(ctx, log)

	metrics.JobsClaimedTotal.WithLabelValues(string(job.Type)).Inc()
	log.Info("processing job")

	start := time.Now()
	err := r.dispatch(jobCtx, job)
	metrics.JobDurationSeconds.WithLabelValues(string(job.Type)).
		Observe(time.Since(start).Seconds())

	// Outcome writes use a fresh context so a cancelled handler context
	// cannot strand the job in RUNNING.
	outcomeCtx, cancel := context.WithTimeout(logger.WithContext(context.Background(), log), 30*time.Second)
	defer cancel()

	if err != nil {
		log.Error("job execution failed", "error", err)
		r.applyFailure(outcomeCtx, log, job, err)
		return
	}

	if markErr := r.store.MarkSucceeded(outcomeCtx, job.ID); markErr != nil {
		log.Error("failed to mark job succeeded", "error", markErr)
		return
	}
	metrics.JobsSucceededTotal.WithLabelValues(string(job.Type)).Inc()
	log.Info("job completed")
}

// dispatch runs the registered handler for the job's type under the
// configured execution timeout. A missing handler and a timeout are both
// ordinary handler failures.
func (r *Runner) dispatch(ctx context.Context, job *domain.Job) error {
	r.mu.RLock()
	h := r.handlers[job.Type]
	r.mu.RUnlock()

	if h == nil {
		return ErrUnknownJobType
	}

	if r.config.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.HandlerTimeout)
		defer cancel()
	}

	return h(ctx, job)
}

// applyFailure feeds a handler failure to the retry policy: re-queue with
// exponential backoff, or FAILED once the attempt cap is reached. The
// persisted last_error is redacted since handler errors can carry provider
// keys or presigned URLs.
func (r *Runner) applyFailure(ctx context.Context, log *slog.Logger, job *domain.Job, handlerErr error) {
	lastError := redact.Error(handlerErr)

	if r.policy.ShouldFail(job.Attempts) {
		if err := r.store.MarkFailed(ctx, job.ID, lastError); err != nil {
			log.Error("failed to mark job failed", "error", err)
			return
		}
		metrics.JobsFailedTotal.WithLabelValues(string(job.Type)).Inc()
		log.Warn("job failed permanently", "last_error", lastError)
		return
	}

	runAt := r.policy.NextRunAt(time.Now().UTC(), job.Attempts)
	if err := r.store.Reschedule(ctx, job.ID, lastError, runAt); err != nil {
		log.Error("failed to reschedule job", "error", err)
		return
	}
	metrics.JobsRetriedTotal.WithLabelValues(string(job.Type)).Inc()
	log.Info("job re-queued for retry", "run_at", runAt)
}

// sleepCtx sleeps for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
