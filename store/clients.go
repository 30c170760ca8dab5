package store

import (
	"context"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"gorm.io/gorm"
)

const activatedSQL = "(clients.is_active = 1 OR clients.terms_accepted = TRUE)"

// CreateClient inserts the client and its admission receipt in one transaction and books
// the receipt amount on the owner's revenue counter.
func (s *Store) CreateClient(ctx context.Context, client *models.Client, receipt *models.Receipt) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(client).Error; err != nil {
			return translate(err, "create client")
		}
		if err := tx.Create(receipt).Error; err != nil {
			return translate(err, "create receipt")
		}
		return addRevenue(tx, receipt.OwnerID, receipt.Amount)
	})
}

func (s *Store) CountClients(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Client{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, translate(err, "count clients")
}

func applyClientStatus(query *gorm.DB, status string, now time.Time) *gorm.DB {
	switch status {
	case models.ClientStatusPending:
		return query.Where("NOT " + activatedSQL)
	case models.ClientStatusActive:
		return query.Where(activatedSQL+" AND clients.end_date > ?", now)
	case models.ClientStatusExpired:
		return query.Where(activatedSQL+" AND clients.end_date <= ?", now)
	default:
		return query
	}
}

func (s *Store) ListClients(ctx context.Context, ownerID string, filter ClientFilter, now time.Time) ([]models.Client, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Client{}).Where("clients.owner_id = ?", ownerID)
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		query = query.Where("(clients.name ILIKE ? OR clients.phone LIKE ?)", like, like)
	}
	query = applyClientStatus(query, filter.Status, now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count clients")
	}

	var clients []models.Client
	err := query.Order("clients.created_at DESC").
		Limit(filter.Page.Size).
		Offset(filter.Page.Offset()).
		Find(&clients).Error
	if err != nil {
		return nil, 0, translate(err, "list clients")
	}
	return clients, total, nil
}

func (s *Store) ClientStats(ctx context.Context, ownerID string, now time.Time) (*ClientStats, error) {
	var stats ClientStats
	err := s.db.WithContext(ctx).Model(&models.Client{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE `+activatedSQL+` AND clients.end_date > ?) AS active,
			COUNT(*) FILTER (WHERE NOT `+activatedSQL+`) AS pending,
			COUNT(*) FILTER (WHERE `+activatedSQL+` AND clients.end_date <= ?) AS expired`, now, now).
		Where("clients.owner_id = ?", ownerID).
		Scan(&stats).Error
	if err != nil {
		return nil, translate(err, "client stats")
	}
	return &stats, nil
}

func (s *Store) FindClient(ctx context.Context, ownerID, id string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&client).Error
	if err != nil {
		return nil, translate(err, "client")
	}
	return &client, nil
}

// FindClientByID is the unscoped lookup used by the public consent flow, where the
// client id itself is the capability.
func (s *Store) FindClientByID(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, translate(err, "client")
	}
	return &client, nil
}

func (s *Store) UpdateClient(ctx context.Context, ownerID, id string, updates map[string]interface{}) (*models.Client, error) {
	result := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)
	if result.Error != nil {
		return nil, translate(result.Error, "update client")
	}
	if result.RowsAffected == 0 {
		return nil, translate(gorm.ErrRecordNotFound, "client")
	}
	return s.FindClient(ctx, ownerID, id)
}

// DeleteClient hard-deletes the client. Its receipts are kept as billing history.
func (s *Store) DeleteClient(ctx context.Context, ownerID, id string) error {
	result := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Client{})
	if result.Error != nil {
		return translate(result.Error, "delete client")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "client")
	}
	return nil
}

// RenewClient applies the renewal and inserts the renewal receipt atomically.
func (s *Store) RenewClient(ctx context.Context, ownerID, id string, updates map[string]interface{}, receipt *models.Receipt) (*models.Client, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Client{}).Where("id = ? AND owner_id = ?", id, ownerID).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Create(receipt).Error; err != nil {
			return err
		}
		return addRevenue(tx, ownerID, receipt.Amount)
	})
	if err != nil {
		return nil, translate(err, "renew client")
	}
	return s.FindClient(ctx, ownerID, id)
}

func (s *Store) AppendClientPhoto(ctx context.Context, ownerID, id, ref string) (*models.Client, error) {
	return s.UpdateClient(ctx, ownerID, id, map[string]interface{}{
		"photo_refs": gorm.Expr("array_append(COALESCE(photo_refs, '{}'::text[]), ?)", ref),
	})
}

// AcceptTerms flips the consent flags only if they are still unset. It reports whether
// this call performed the transition; concurrent callers see false.
func (s *Store) AcceptTerms(ctx context.Context, id string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ? AND terms_accepted = ?", id, false).
		Updates(map[string]interface{}{
			"terms_accepted":    true,
			"terms_accepted_at": at,
			"is_active":         1,
		})
	if result.Error != nil {
		return false, translate(result.Error, "accept terms")
	}
	return result.RowsAffected == 1, nil
}
