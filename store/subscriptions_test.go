package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bareOwner inserts a bare owner row with no subscription.
func bareOwner(t *testing.T, s *Store, id string) {
	t.Helper()
	require.NoError(t, s.db.Create(&models.User{
		ID: id, Name: id, Email: id + "@example.com", PasswordHash: "hash",
		Role: models.RoleOwner, Status: models.StatusActive, GymType: "unisex",
	}).Error)
}

func TestGetOrCreateSubscriptionConcurrent(t *testing.T) {
	s := newTestStore(t)
	bareOwner(t, s, "owner-1")

	var wg sync.WaitGroup
	subs := make([]*models.Subscription, 6)
	errs := make([]error, 6)
	for i := range subs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			subs[i], errs[i] = s.GetOrCreateSubscription(context.Background(), "owner-1")
		}(i)
	}
	wg.Wait()

	for i := range subs {
		require.NoError(t, errs[i])
		assert.Equal(t, subs[0].ID, subs[i].ID)
		assert.Equal(t, models.PlanFree, subs[i].Plan)
	}

	var count int64
	require.NoError(t, s.db.Model(&models.Subscription{}).Where("owner_id = ?", "owner-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertSubscription(t *testing.T) {
	s := newTestStore(t)
	seedOwner(t, s, "owner-1")
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	sub, err := s.UpsertSubscription(ctx, "owner-1", "premium", models.BillingYearly, start)
	require.NoError(t, err)
	assert.Equal(t, "premium", sub.Plan)
	assert.Equal(t, models.BillingYearly, sub.BillingCycle)

	again, err := s.GetOrCreateSubscription(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
	assert.Equal(t, "premium", again.Plan)

	var count int64
	require.NoError(t, s.db.Model(&models.Subscription{}).Where("owner_id = ?", "owner-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
