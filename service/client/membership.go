package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/shopspring/decimal"
)

var membershipMonths = map[string]int{
	models.MembershipMonthly:   1,
	models.MembershipQuarterly: 3,
	models.MembershipYearly:    12,
}

var membershipFees = map[string]decimal.Decimal{
	models.MembershipMonthly:   decimal.NewFromInt(1500),
	models.MembershipQuarterly: decimal.NewFromInt(4000),
	models.MembershipYearly:    decimal.NewFromInt(15000),
}

// EndDate is start plus the membership's length in calendar months.
func EndDate(membershipType string, start time.Time) (time.Time, error) {
	months, ok := membershipMonths[membershipType]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown membership type %q", utils.ErrValidation, membershipType)
	}
	return start.AddDate(0, months, 0), nil
}

// DefaultFee is the list price of a membership type.
func DefaultFee(membershipType string) (decimal.Decimal, error) {
	fee, ok := membershipFees[membershipType]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unknown membership type %q", utils.ErrValidation, membershipType)
	}
	return fee, nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts a calendar date (read as UTC midnight) or a full timestamp.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", utils.ErrValidation, field)
}

func checkRange(start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("%w: endDate must be after startDate", utils.ErrValidation)
	}
	return nil
}
