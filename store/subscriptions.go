package store

import (
	"context"
	"errors"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetOrCreateSubscription returns the owner's subscription, creating a free one on first access.
// The lookup and insert are not one atomic step; a lost insert race is resolved by re-reading.
func (s *Store) GetOrCreateSubscription(ctx context.Context, ownerID string) (*models.Subscription, error) {
	db := s.db.WithContext(ctx)

	var sub models.Subscription
	err := db.Where("owner_id = ?", ownerID).First(&sub).Error
	if err == nil {
		return &sub, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err, "subscription")
	}

	sub = models.Subscription{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Plan:         models.PlanFree,
		BillingCycle: models.BillingMonthly,
		StartDate:    time.Now(),
		IsActive:     1,
	}
	if err := db.Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := db.Where("owner_id = ?", ownerID).First(&sub).Error; err != nil {
				return nil, translate(err, "subscription")
			}
			return &sub, nil
		}
		return nil, translate(err, "create subscription")
	}
	return &sub, nil
}

// UpsertSubscription sets the owner's plan, creating the row if it does not exist.
func (s *Store) UpsertSubscription(ctx context.Context, ownerID, plan, billingCycle string, start time.Time) (*models.Subscription, error) {
	sub := models.Subscription{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Plan:         plan,
		BillingCycle: billingCycle,
		StartDate:    start,
		IsActive:     1,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"plan", "billing_cycle", "start_date", "is_active"}),
	}).Create(&sub).Error
	if err != nil {
		return nil, translate(err, "upsert subscription")
	}

	var saved models.Subscription
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&saved).Error; err != nil {
		return nil, translate(err, "subscription")
	}
	return &saved, nil
}
