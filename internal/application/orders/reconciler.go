package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
)

// ReconcilerConfig holds reconciliation tuning
type ReconcilerConfig struct {
	// WorkerCount bounds how many orders are reconciled concurrently
	WorkerCount int
	// CallTimeout bounds every remote status fetch
	CallTimeout time.Duration
}

// DefaultReconcilerConfig returns the default reconciler configuration
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		WorkerCount: 4,
		CallTimeout: 30 * time.Second,
	}
}

// Reconciler detects and resolves disagreement between the internal order
// status and the marketplace's reported status. One order's failure never
// aborts the rest of the pass; errors accumulate in the result.
//
// Remote-driven corrections under the marketplace_wins policy bypass the
// transition table: the marketplace is treated as the authority for orders it
// owns, so a remote status the table cannot reach (such as delivered straight
// from pending) is still adopted. The correction is recorded in the ledger
// with the reconciler actor, which keeps the audit trail honest about where
// the jump came from.
type Reconciler struct {
	repo         order.Repository
	history      order.StatusHistoryRepository
	marketplaces integration.MarketplaceRegistry
	dispatcher   *Dispatcher
	logger       *zap.Logger
	cfg          ReconcilerConfig
}

// NewReconciler creates a new reconciler
func NewReconciler(
	cfg ReconcilerConfig,
	repo order.Repository,
	history order.StatusHistoryRepository,
	marketplaces integration.MarketplaceRegistry,
	dispatcher *Dispatcher,
	logger *zap.Logger,
) *Reconciler {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultReconcilerConfig().WorkerCount
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultReconcilerConfig().CallTimeout
	}
	return &Reconciler{
		repo:         repo,
		history:      history,
		marketplaces: marketplaces,
		dispatcher:   dispatcher,
		logger:       logger,
		cfg:          cfg,
	}
}

// Reconcile runs one full pass: remote→internal over every linked order,
// then internal→remote over every order flagged for a status push.
func (r *Reconciler) Reconcile(ctx context.Context, scope ReconcileScope, policy integration.ResolutionPolicy) *integration.ReconcileResult {
	start := time.Now()
	result := &integration.ReconcileResult{
		Conflicts: make([]integration.ConflictRecord, 0),
		Errors:    make([]string, 0),
	}
	if !policy.IsValid() {
		result.Errors = append(result.Errors, fmt.Sprintf("unknown resolution policy %q", policy))
		result.Duration = time.Since(start)
		return result
	}

	r.reconcileFromRemote(ctx, scope, policy, result)
	r.reconcileToRemote(ctx, scope, result)

	result.Duration = time.Since(start)

	r.logger.Info("Reconciliation pass finished",
		zap.String("tenant_id", scope.TenantID.String()),
		zap.String("policy", string(policy)),
		zap.Int("from_remote", result.FromRemoteCount),
		zap.Int("to_remote", result.ToRemoteCount),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Int("errors", len(result.Errors)),
	)

	return result
}

// reconcileFromRemote walks linked orders, compares the mapped remote status
// against the internal one, and applies the policy where they disagree
func (r *Reconciler) reconcileFromRemote(ctx context.Context, scope ReconcileScope, policy integration.ResolutionPolicy, result *integration.ReconcileResult) {
	linked, err := r.repo.FindLinked(ctx, scope.TenantID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("listing linked orders: %v", err))
		return
	}

	var mu sync.Mutex
	jobs := make(chan *order.Order)
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for o := range jobs {
				conflict, applied, err := r.reconcileOne(ctx, o, policy)
				mu.Lock()
				if err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("order %s: %v", o.ID, err))
				}
				if conflict != nil {
					result.Conflicts = append(result.Conflicts, *conflict)
				}
				if applied {
					result.FromRemoteCount++
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i := range linked {
		if scope.Provider != "" && linked[i].Provider != scope.Provider {
			continue
		}
		select {
		case jobs <- &linked[i]:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
}

// reconcileOne compares one order against its remote record. Returns the
// conflict if statuses disagree and whether a correction was applied.
func (r *Reconciler) reconcileOne(ctx context.Context, o *order.Order, policy integration.ResolutionPolicy) (*integration.ConflictRecord, bool, error) {
	adapter, err := r.marketplaces.Get(integration.ProviderCode(o.Provider))
	if err != nil {
		return nil, false, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	remote, err := adapter.GetOrderStatus(callCtx, o.TenantID, o.ExternalOrderID)
	cancel()
	if err != nil {
		return nil, false, integration.NewExternalServiceError(destMarketplace, err)
	}

	mapped := integration.MapRemoteStatus(remote)
	if mapped == o.Status {
		return nil, false, nil
	}

	conflict := &integration.ConflictRecord{
		OrderID:        o.ID,
		InternalStatus: o.Status,
		RemoteStatus:   remote,
		MappedStatus:   mapped,
		Resolution:     policy,
		DetectedAt:     time.Now(),
	}

	switch policy {
	case integration.PolicyManual:
		return conflict, false, nil

	case integration.PolicyInternalWins:
		// Keep the internal status and push it back to the remote side
		pushCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
		_, _, err := r.dispatcher.PushMarketplaceStatus(pushCtx, o, o.Status)
		cancel()
		if err != nil {
			return conflict, false, err
		}
		return conflict, false, nil

	case integration.PolicyMarketplaceWins:
		note := fmt.Sprintf("Adopted marketplace status %q (was %s)", remote, o.Status)
		corrected, note, err := o.ForceStatus(mapped, note)
		if err != nil {
			return conflict, false, err
		}
		if err := r.repo.Save(ctx, corrected); err != nil {
			return conflict, false, err
		}
		entry := order.NewStatusHistoryEntry(o, corrected, note, order.ActorReconciler)
		if err := r.history.Append(ctx, entry); err != nil {
			return conflict, false, err
		}
		// The marketplace already holds this status; fan out to the
		// remaining destinations only.
		dispatch := r.dispatcher.Dispatch(ctx, corrected, mapped, integration.DispatchFlags{
			Notification: true,
		}, order.ActorReconciler)
		for _, msg := range dispatch.Errors {
			r.logger.Warn("Dispatch after reconciliation correction failed",
				zap.String("order_id", o.ID.String()),
				zap.String("error", msg),
			)
		}
		return conflict, true, nil
	}

	return conflict, false, nil
}

// reconcileToRemote pushes the internal status for every order flagged as
// needing a push, independently of the remote→internal pass
func (r *Reconciler) reconcileToRemote(ctx context.Context, scope ReconcileScope, result *integration.ReconcileResult) {
	pending, err := r.repo.FindNeedingStatusPush(ctx, scope.TenantID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("listing orders needing push: %v", err))
		return
	}

	for i := range pending {
		o := &pending[i]
		if scope.Provider != "" && o.Provider != scope.Provider {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
		_, fired, err := r.dispatcher.PushMarketplaceStatus(callCtx, o, o.Status)
		cancel()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("order %s: %v", o.ID, err))
			continue
		}

		cleared := o.WithNeedsStatusPush(false)
		if err := r.repo.Save(ctx, cleared); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("order %s: %v", o.ID, err))
			continue
		}
		if fired {
			result.ToRemoteCount++
		}
	}
}
