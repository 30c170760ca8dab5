// Package store is the gorm-backed persistence layer. Every per-tenant query takes the
// resolved owner id and filters by it; that filter is the only isolation between tenants.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps gorm errors onto the service error taxonomy.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, utils.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, utils.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func addRevenue(tx *gorm.DB, ownerID string, amount decimal.Decimal) error {
	return tx.Model(&models.User{}).
		Where("id = ?", ownerID).
		UpdateColumn("total_revenue", gorm.Expr("total_revenue + ?", amount)).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches term literally inside a LIKE/ILIKE pattern.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
