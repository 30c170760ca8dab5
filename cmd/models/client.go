package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	MembershipMonthly   = "monthly"
	MembershipQuarterly = "quarterly"
	MembershipYearly    = "yearly"
)

const (
	ClientStatusPending = "pending"
	ClientStatusActive  = "active"
	ClientStatusExpired = "expired"
)

// Client is a gym member. It belongs to exactly one owner; deleting the owner cascades.
type Client struct {
	ID              string          `gorm:"column:id;primaryKey;size:36" json:"id"`
	OwnerID         string          `gorm:"column:owner_id;size:36;not null;index" json:"owner_id"`
	CreatedByID     string          `gorm:"column:created_by_id;size:36;not null" json:"created_by_id"`
	Name            string          `gorm:"column:name;size:255;not null" json:"name"`
	Phone           string          `gorm:"column:phone;size:32;not null" json:"phone"`
	Email           *string         `gorm:"column:email;size:255" json:"email"`
	PhotoRefs       pq.StringArray  `gorm:"column:photo_refs;type:text[]" json:"photos"`
	MembershipType  string          `gorm:"column:membership_type;size:20;not null" json:"membership_type"`
	StartDate       time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	EndDate         time.Time       `gorm:"column:end_date;not null;index" json:"end_date"`
	Fee             decimal.Decimal `gorm:"column:fee;type:numeric(12,2);not null" json:"fee"`
	IsActive        int             `gorm:"column:is_active;not null;default:0" json:"is_active"`
	TermsAccepted   bool            `gorm:"column:terms_accepted;not null;default:false" json:"terms_accepted"`
	TermsAcceptedAt *time.Time      `gorm:"column:terms_accepted_at" json:"terms_accepted_at"`
	CreatedAt       time.Time       `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updated_at"`

	// Status is derived on read, never stored.
	Status string `gorm:"-" json:"status"`

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

// Activated reports whether the membership was switched on by consent, renewal or
// administrative creation. A client that is neither is pending.
func (c *Client) Activated() bool {
	return c.TermsAccepted || c.IsActive == 1
}

// Refresh derives Status and IsActive from the stored flags and EndDate as of now.
// IsActive always ends up equal to EndDate > now.
func (c *Client) Refresh(now time.Time) {
	live := c.EndDate.After(now)
	switch {
	case !c.Activated():
		c.Status = ClientStatusPending
	case live:
		c.Status = ClientStatusActive
	default:
		c.Status = ClientStatusExpired
	}
	if live {
		c.IsActive = 1
	} else {
		c.IsActive = 0
	}
}
