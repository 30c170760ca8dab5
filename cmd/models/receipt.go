package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is a frozen snapshot of a client's membership at issuance time. ClientID is a
// plain reference: receipts outlive the client they were issued for.
type Receipt struct {
	ID             string          `gorm:"column:id;primaryKey;size:64" json:"id"`
	ClientID       string          `gorm:"column:client_id;size:36;not null;index" json:"client_id"`
	OwnerID        string          `gorm:"column:owner_id;size:36;not null;index" json:"owner_id"`
	ClientName     string          `gorm:"column:client_name;size:255;not null" json:"client_name"`
	ClientPhone    string          `gorm:"column:client_phone;size:32" json:"client_phone"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	MembershipType string          `gorm:"column:membership_type;size:20;not null" json:"membership_type"`
	StartDate      time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	EndDate        time.Time       `gorm:"column:end_date;not null" json:"end_date"`
	ReceiptURL     *string         `gorm:"column:receipt_url;size:1000" json:"receipt_url"`
	GeneratedAt    time.Time       `gorm:"column:generated_at;not null;index" json:"generated_at"`
}

func (r *Receipt) HasArtifact() bool {
	return r.ReceiptURL != nil && *r.ReceiptURL != ""
}
