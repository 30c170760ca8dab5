package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
)

// FreePlanClientLimit is the number of clients a tenant on the free plan may hold.
const FreePlanClientLimit = 10

type Store interface {
	GetOrCreateSubscription(ctx context.Context, ownerID string) (*models.Subscription, error)
	UpsertSubscription(ctx context.Context, ownerID, plan, billingCycle string, start time.Time) (*models.Subscription, error)
	CountClients(ctx context.Context, ownerID string) (int64, error)
}

// Decision is the answer to "may this tenant add one more client". Limit is nil for
// plans without a quota.
type Decision struct {
	Allowed      bool   `json:"allowed"`
	Plan         string `json:"plan"`
	CurrentCount int64  `json:"currentCount"`
	Limit        *int   `json:"limit"`
}

// Gate reads subscriptions and evaluates plan quotas. It does not reserve slots: two
// concurrent adds at the boundary can both be allowed.
type Gate struct {
	store Store
	now   func() time.Time
}

func NewGate(store Store) *Gate {
	return &Gate{store: store, now: time.Now}
}

func (g *Gate) Get(ctx context.Context, tenantID string) (*models.Subscription, error) {
	return g.store.GetOrCreateSubscription(ctx, tenantID)
}

func (g *Gate) CanAddClient(ctx context.Context, tenantID string) (*Decision, error) {
	sub, err := g.store.GetOrCreateSubscription(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	count, err := g.store.CountClients(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if sub.Plan != models.PlanFree {
		return &Decision{Allowed: true, Plan: sub.Plan, CurrentCount: count}, nil
	}
	limit := FreePlanClientLimit
	return &Decision{
		Allowed:      count < int64(limit),
		Plan:         sub.Plan,
		CurrentCount: count,
		Limit:        &limit,
	}, nil
}

// Update switches the tenant's plan. An empty billing cycle means monthly.
func (g *Gate) Update(ctx context.Context, tenantID, plan, billingCycle string) (*models.Subscription, error) {
	if plan == "" {
		return nil, fmt.Errorf("%w: plan is required", utils.ErrValidation)
	}
	if billingCycle == "" {
		billingCycle = models.BillingMonthly
	}
	if billingCycle != models.BillingMonthly && billingCycle != models.BillingYearly {
		return nil, fmt.Errorf("%w: billingCycle must be one of: monthly, yearly", utils.ErrValidation)
	}
	return g.store.UpsertSubscription(ctx, tenantID, plan, billingCycle, g.now())
}
