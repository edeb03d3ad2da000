package remote

import (
	"context"
	"fmt"

	"github.com/openlearn/coursegate/domain/access"
	"github.com/openlearn/coursegate/ports"
)

// PlanProvider resolves a user's plan from the identity service. Plans are
// read fresh on every access decision so upgrades and downgrades take
// effect promptly.
type PlanProvider struct {
	client *Client
}

// NewPlanProvider creates a plan provider backed by the identity service.
func NewPlanProvider(client *Client) *PlanProvider {
	return &PlanProvider{client: client}
}

type planResponse struct {
	Plan string `json:"plan"`
}

// Plan returns the user's plan. Users unknown to the identity service
// evaluate as free.
func (p *PlanProvider) Plan(ctx context.Context, userID string) (access.Plan, error) {
	var resp planResponse
	err := p.client.Request(ctx, "GET", "/v1/users/"+userID+"/plan", nil, &resp)
	if err != nil {
		if IsNotFound(err) {
			return access.PlanFree, nil
		}
		return access.PlanFree, fmt.Errorf("fetch plan for %s: %w", userID, err)
	}

	if resp.Plan == string(access.PlanPro) {
		return access.PlanPro, nil
	}
	return access.PlanFree, nil
}

// Ensure interface compliance.
var _ ports.PlanProvider = (*PlanProvider)(nil)
