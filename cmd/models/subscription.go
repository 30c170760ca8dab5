package models

import (
	"time"
)

const (
	PlanFree = "free"

	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// Subscription is the owner's platform plan. There is exactly one row per owner.
type Subscription struct {
	ID           string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	OwnerID      string     `gorm:"column:owner_id;size:36;not null;uniqueIndex" json:"owner_id"`
	Plan         string     `gorm:"column:plan;size:50;not null;default:free" json:"plan"`
	BillingCycle string     `gorm:"column:billing_cycle;size:20;not null;default:monthly" json:"billing_cycle"`
	StartDate    time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EndDate      *time.Time `gorm:"column:end_date" json:"end_date"`
	IsActive     int        `gorm:"column:is_active;not null;default:1" json:"is_active"`

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}
