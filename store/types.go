package store

import (
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/shopspring/decimal"
)

// ClientFilter narrows a tenant's client listing.
type ClientFilter struct {
	Search string
	// Status is one of models.ClientStatus*, or empty for all.
	Status string
	Page   utils.Page
}

type ClientStats struct {
	Total   int64 `json:"total"`
	Active  int64 `json:"active"`
	Pending int64 `json:"pending"`
	Expired int64 `json:"expired"`
}

type TenantFilter struct {
	Search string
	Status string
}

// TenantSummary is an owner row as seen by a platform administrator.
type TenantSummary struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	GymName          *string         `json:"gym_name"`
	Status           string          `json:"status"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	ClientCount      int64           `json:"client_count"`
	SubscriptionPlan string          `json:"subscription_plan"`
	CreatedAt        time.Time       `json:"created_at"`
}

type PlatformStats struct {
	TotalAdmins     int64           `json:"totalAdmins"`
	ActiveAdmins    int64           `json:"activeAdmins"`
	SuspendedAdmins int64           `json:"suspendedAdmins"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	MonthlyRevenue  decimal.Decimal `json:"monthlyRevenue"`
	TotalClients    int64           `json:"totalClients"`
}
