package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderhub/backend/internal/application/orders"
	"github.com/orderhub/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Reconcile Job Types
// ---------------------------------------------------------------------------

// ReconcileJobStatus represents the status of a reconciliation job
type ReconcileJobStatus string

const (
	ReconcileJobStatusPending ReconcileJobStatus = "PENDING"
	ReconcileJobStatusRunning ReconcileJobStatus = "RUNNING"
	ReconcileJobStatusSuccess ReconcileJobStatus = "SUCCESS"
	ReconcileJobStatusPartial ReconcileJobStatus = "PARTIAL"
	ReconcileJobStatusFailed  ReconcileJobStatus = "FAILED"
)

// ReconcileJob represents one scheduled reconciliation pass
type ReconcileJob struct {
	ID          uuid.UUID
	Scope       orders.ReconcileScope
	Policy      integration.ResolutionPolicy
	Status      ReconcileJobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time

	// Pass results
	FromRemoteCount int
	ToRemoteCount   int
	ConflictCount   int
	ErrorCount      int
}

// NewReconcileJob creates a new pending reconciliation job
func NewReconcileJob(scope orders.ReconcileScope, policy integration.ResolutionPolicy) *ReconcileJob {
	return &ReconcileJob{
		ID:     uuid.New(),
		Scope:  scope,
		Policy: policy,
		Status: ReconcileJobStatusPending,
	}
}

// Start marks the job as running
func (j *ReconcileJob) Start() {
	now := time.Now()
	j.Status = ReconcileJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the pass outcome on the job
func (j *ReconcileJob) Complete(result *integration.ReconcileResult) {
	now := time.Now()
	j.CompletedAt = &now
	j.FromRemoteCount = result.FromRemoteCount
	j.ToRemoteCount = result.ToRemoteCount
	j.ConflictCount = len(result.Conflicts)
	j.ErrorCount = len(result.Errors)

	if len(result.Errors) == 0 {
		j.Status = ReconcileJobStatusSuccess
	} else if result.FromRemoteCount > 0 || result.ToRemoteCount > 0 {
		j.Status = ReconcileJobStatusPartial
		j.Error = result.Errors[0]
	} else {
		j.Status = ReconcileJobStatusFailed
		j.Error = result.Errors[0]
	}
}

// ---------------------------------------------------------------------------
// ReconcileRunner Interface
// ---------------------------------------------------------------------------

// ReconcileRunner executes one reconciliation pass
type ReconcileRunner interface {
	Reconcile(ctx context.Context, scope orders.ReconcileScope, policy integration.ResolutionPolicy) *integration.ReconcileResult
}

// ---------------------------------------------------------------------------
// ReconcileSchedulerConfig
// ---------------------------------------------------------------------------

// ReconcileSchedulerConfig holds configuration for the reconcile scheduler
type ReconcileSchedulerConfig struct {
	// Enabled indicates if the periodic pass is enabled
	Enabled bool
	// Interval is the time between automatic passes
	Interval time.Duration
	// JobTimeout is the maximum time one pass can run
	JobTimeout time.Duration
	// QueueSize is the job queue capacity
	QueueSize int
	// Policy is the conflict resolution policy for automatic passes
	Policy integration.ResolutionPolicy
}

// DefaultReconcileSchedulerConfig returns default configuration
func DefaultReconcileSchedulerConfig() ReconcileSchedulerConfig {
	return ReconcileSchedulerConfig{
		Enabled:    true,
		Interval:   15 * time.Minute,
		JobTimeout: 10 * time.Minute,
		QueueSize:  32,
		Policy:     integration.PolicyMarketplaceWins,
	}
}

// Validate validates the configuration
func (c *ReconcileSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if !c.Policy.IsValid() {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// ReconcileScheduler
// ---------------------------------------------------------------------------

// ReconcileScheduler runs periodic reconciliation passes over registered
// tenant scopes and accepts ad-hoc passes via RunNow.
type ReconcileScheduler struct {
	config ReconcileSchedulerConfig
	runner ReconcileRunner
	logger *zap.Logger

	jobs      chan *ReconcileJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Registered scopes picked up by every automatic pass
	scopesMu sync.RWMutex
	scopes   []orders.ReconcileScope

	// Job history for monitoring (in-memory, limited size)
	historyMu  sync.RWMutex
	history    []*ReconcileJob
	maxHistory int
}

// NewReconcileScheduler creates a new reconcile scheduler
func NewReconcileScheduler(config ReconcileSchedulerConfig, runner ReconcileRunner, logger *zap.Logger) (*ReconcileScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ReconcileScheduler{
		config:     config,
		runner:     runner,
		logger:     logger,
		jobs:       make(chan *ReconcileJob, config.QueueSize),
		history:    make([]*ReconcileJob, 0, 100),
		maxHistory: 100,
	}, nil
}

// RegisterScope adds a tenant scope to every automatic pass
func (s *ReconcileScheduler) RegisterScope(scope orders.ReconcileScope) {
	s.scopesMu.Lock()
	defer s.scopesMu.Unlock()
	s.scopes = append(s.scopes, scope)
}

// Start starts the worker and, when enabled, the interval ticker
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.worker(ctx)

	if s.config.Enabled {
		s.wg.Add(1)
		go s.tickerLoop(ctx)
	}

	s.logger.Info("Reconcile scheduler started",
		zap.Bool("periodic", s.config.Enabled),
		zap.Duration("interval", s.config.Interval),
		zap.String("policy", string(s.config.Policy)),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	// Closing under the same lock that guards the RunNow send keeps a
	// concurrent submit from racing the close.
	close(s.jobs)
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reconcile scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reconcile scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow submits an ad-hoc pass for the scope with the given policy
func (s *ReconcileScheduler) RunNow(scope orders.ReconcileScope, policy integration.ResolutionPolicy) (*ReconcileJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return nil, ErrSchedulerNotRunning
	}

	job := NewReconcileJob(scope, policy)
	select {
	case s.jobs <- job:
		s.logger.Debug("Reconcile job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("tenant_id", scope.TenantID.String()),
			zap.String("provider", scope.Provider),
		)
		return job, nil
	default:
		return nil, ErrJobQueueFull
	}
}

// tickerLoop enqueues one job per registered scope on every tick
func (s *ReconcileScheduler) tickerLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scopesMu.RLock()
			scopes := make([]orders.ReconcileScope, len(s.scopes))
			copy(scopes, s.scopes)
			s.scopesMu.RUnlock()

			for _, scope := range scopes {
				if _, err := s.RunNow(scope, s.config.Policy); err != nil {
					s.logger.Warn("Failed to enqueue periodic reconcile pass",
						zap.String("tenant_id", scope.TenantID.String()),
						zap.Error(err),
					)
				}
			}
		}
	}
}

// worker processes jobs from the queue
func (s *ReconcileScheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job)
		}
	}
}

// processJob executes a single reconciliation pass
func (s *ReconcileScheduler) processJob(ctx context.Context, job *ReconcileJob) {
	job.Start()
	s.logger.Info("Processing reconcile job",
		zap.String("job_id", job.ID.String()),
		zap.String("tenant_id", job.Scope.TenantID.String()),
		zap.String("provider", job.Scope.Provider),
		zap.String("policy", string(job.Policy)),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	result := s.runner.Reconcile(jobCtx, job.Scope, job.Policy)
	job.Complete(result)

	if job.Status == ReconcileJobStatusFailed {
		s.logger.Error("Reconcile job failed",
			zap.String("job_id", job.ID.String()),
			zap.String("tenant_id", job.Scope.TenantID.String()),
			zap.String("error", job.Error),
		)
	} else {
		s.logger.Info("Reconcile job completed",
			zap.String("job_id", job.ID.String()),
			zap.String("status", string(job.Status)),
			zap.Int("from_remote", job.FromRemoteCount),
			zap.Int("to_remote", job.ToRemoteCount),
			zap.Int("conflicts", job.ConflictCount),
			zap.Int("errors", job.ErrorCount),
		)
	}

	s.addToHistory(job)
}

// addToHistory adds a completed job to history
func (s *ReconcileScheduler) addToHistory(job *ReconcileJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*ReconcileJob{job}, s.history...)
	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// GetJobHistory returns recent job history
func (s *ReconcileScheduler) GetJobHistory(limit int) []*ReconcileJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}

	result := make([]*ReconcileJob, limit)
	copy(result, s.history[:limit])
	return result
}
