package store

import (
	"context"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"gorm.io/gorm"
)

func (s *Store) ListReceipts(ctx context.Context, ownerID string, page utils.Page) ([]models.Receipt, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Receipt{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count receipts")
	}

	var receipts []models.Receipt
	err := query.Order("generated_at DESC").Limit(page.Size).Offset(page.Offset()).Find(&receipts).Error
	return receipts, total, translate(err, "list receipts")
}

func (s *Store) FindReceipt(ctx context.Context, ownerID, id string) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&receipt).Error; err != nil {
		return nil, translate(err, "receipt")
	}
	return &receipt, nil
}

func (s *Store) ListClientReceipts(ctx context.Context, ownerID, clientID string) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND owner_id = ?", clientID, ownerID).
		Order("generated_at DESC").
		Find(&receipts).Error
	return receipts, translate(err, "list client receipts")
}

// AdmissionReceipt returns the first receipt issued for a client, the one created with it.
func (s *Store) AdmissionReceipt(ctx context.Context, clientID string) (*models.Receipt, error) {
	var receipt models.Receipt
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("generated_at ASC").
		First(&receipt).Error
	if err != nil {
		return nil, translate(err, "receipt")
	}
	return &receipt, nil
}

// SetReceiptURL attaches the artifact URL if none is set yet and returns the URL the
// receipt ends up with. An existing URL is never replaced.
func (s *Store) SetReceiptURL(ctx context.Context, id, url string) (string, error) {
	result := s.db.WithContext(ctx).Model(&models.Receipt{}).
		Where("id = ? AND receipt_url IS NULL", id).
		Update("receipt_url", url)
	if result.Error != nil {
		return "", translate(result.Error, "set receipt url")
	}
	if result.RowsAffected == 1 {
		return url, nil
	}

	var receipt models.Receipt
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&receipt).Error; err != nil {
		return "", translate(err, "receipt")
	}
	if !receipt.HasArtifact() {
		return "", translate(gorm.ErrRecordNotFound, "receipt url")
	}
	return *receipt.ReceiptURL, nil
}

func (s *Store) DeleteReceipt(ctx context.Context, ownerID, id string) error {
	result := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Receipt{})
	if result.Error != nil {
		return translate(result.Error, "delete receipt")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "receipt")
	}
	return nil
}
