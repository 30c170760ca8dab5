package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleOwner  = "owner"
	RoleWorker = "worker"

	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusInactive  = "inactive"
)

// User is either a gym owner (the tenant) or a worker acting on behalf of one.
// Workers carry no gym profile of their own; it is resolved from the owner at read time.
type User struct {
	ID           string          `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name         string          `gorm:"column:name;size:255;not null" json:"name"`
	Email        string          `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string          `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role         string          `gorm:"column:role;size:20;not null;default:owner" json:"role"`
	OwnerID      *string         `gorm:"column:owner_id;size:36;index" json:"owner_id,omitempty"`
	ProfileImage *string         `gorm:"column:profile_image;size:500" json:"profile_image"`
	Status       string          `gorm:"column:status;size:20;not null;default:active" json:"status"`
	TotalRevenue decimal.Decimal `gorm:"column:total_revenue;type:numeric(14,2);not null;default:0" json:"total_revenue"`

	GymName    *string `gorm:"column:gym_name;size:255" json:"gym_name"`
	GymAddress *string `gorm:"column:gym_address;type:text" json:"gym_address"`
	GymType    string  `gorm:"column:gym_type;size:20;not null;default:unisex" json:"gym_type"`
	GymLogo    *string `gorm:"column:gym_logo;size:500" json:"gym_logo"`

	MembershipPlans []MembershipPlan `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"membership_plans,omitempty"`
	Owner           *User            `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// MembershipPlan is one entry of an owner's plan catalog, shown to workers and clients.
type MembershipPlan struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OwnerID        string          `gorm:"column:owner_id;size:36;not null;index" json:"-"`
	Name           string          `gorm:"column:name;size:100;not null" json:"name"`
	DurationMonths int             `gorm:"column:duration;not null" json:"duration"`
	Fee            decimal.Decimal `gorm:"column:fee;type:numeric(12,2);not null" json:"fee"`
}

// SuperAdmin is a platform administrator. It never owns gym data.
type SuperAdmin struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name         string    `gorm:"column:name;size:255;not null" json:"name"`
	Email        string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (SuperAdmin) TableName() string {
	return "super_admins"
}
