package store

import (
	"context"
	"errors"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"gorm.io/gorm"
)

// SaveDevice registers a push token for a user, refreshing it if already known.
func (s *Store) SaveDevice(ctx context.Context, device *models.Device) (*models.Device, error) {
	db := s.db.WithContext(ctx)

	var existing models.Device
	err := db.Where("token = ? AND user_id = ?", device.Token, device.UserID).First(&existing).Error
	switch {
	case err == nil:
		existing.DeviceType = device.DeviceType
		existing.DeviceName = device.DeviceName
		if err := db.Save(&existing).Error; err != nil {
			return nil, translate(err, "update device")
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.Create(device).Error; err != nil {
			return nil, translate(err, "create device")
		}
		return device, nil
	default:
		return nil, translate(err, "device")
	}
}

func (s *Store) ListDevices(ctx context.Context, userID string) ([]models.Device, error) {
	var devices []models.Device
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&devices).Error
	return devices, translate(err, "list devices")
}

func (s *Store) DeleteDevice(ctx context.Context, userID string, id uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Device{})
	if result.Error != nil {
		return translate(result.Error, "delete device")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "device")
	}
	return nil
}

func (s *Store) RecordNotification(ctx context.Context, history *models.NotificationHistory) error {
	return translate(s.db.WithContext(ctx).Create(history).Error, "record notification")
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]models.NotificationHistory, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.NotificationHistory{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count notifications")
	}

	var history []models.NotificationHistory
	err := query.Order("sent_at DESC").Limit(limit).Offset(offset).Find(&history).Error
	return history, total, translate(err, "list notifications")
}
