package memory

import (
	"context"
	"sync"

	"github.com/openlearn/coursegate/domain/access"
	"github.com/openlearn/coursegate/ports"
)

// PlanProvider is an in-memory stand-in for the external profile
// collaborator. Reads are always fresh, so plan changes take effect on the
// next access decision.
type PlanProvider struct {
	mu    sync.RWMutex
	plans map[string]access.Plan
}

// NewPlanProvider creates a plan provider where every user starts on free.
func NewPlanProvider() *PlanProvider {
	return &PlanProvider{plans: make(map[string]access.Plan)}
}

// Plan returns the user's plan; unknown users are on the free plan.
func (p *PlanProvider) Plan(ctx context.Context, userID string) (access.Plan, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if plan, ok := p.plans[userID]; ok {
		return plan, nil
	}
	return access.PlanFree, nil
}

// SetPlan assigns a plan to a user.
func (p *PlanProvider) SetPlan(userID string, plan access.Plan) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plans[userID] = plan
}

// Ensure interface compliance.
var _ ports.PlanProvider = (*PlanProvider)(nil)
