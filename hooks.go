package tablemerge

import "sync"

// Hook function types for reconciliation events
type (
	// ReconciledHook is called after every successful reconciliation.
	ReconciledHook func(result *Result)

	// ReviewRequiredHook is called when a reconciliation escalates to review.
	ReviewRequiredHook func(result *Result)
)

// hooks manages event callbacks.
type hooks struct {
	mu               sync.RWMutex
	onReconciled     []ReconciledHook
	onReviewRequired []ReviewRequiredHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnReconciled registers a callback for completed reconciliations.
func (h *hooks) OnReconciled(fn ReconciledHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReconciled = append(h.onReconciled, fn)
}

// OnReviewRequired registers a callback for reconciliations that need review.
func (h *hooks) OnReviewRequired(fn ReviewRequiredHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReviewRequired = append(h.onReviewRequired, fn)
}

// trigger runs the hooks that apply to result.
func (h *hooks) trigger(result *Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, hook := range h.onReconciled {
		hook(result)
	}
	if result.Review.RequiresReview {
		for _, hook := range h.onReviewRequired {
			hook(result)
		}
	}
}
