package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"go.uber.org/zap"
)

type pushPublisher interface {
	Publish(message *expo.PushMessage) (expo.PushResponse, error)
}

type DeviceStore interface {
	SaveDevice(ctx context.Context, device *models.Device) (*models.Device, error)
	ListDevices(ctx context.Context, userID string) ([]models.Device, error)
	DeleteDevice(ctx context.Context, userID string, id uint) error
	RecordNotification(ctx context.Context, history *models.NotificationHistory) error
	ListNotifications(ctx context.Context, userID string, limit, offset int) ([]models.NotificationHistory, int64, error)
}

// Pusher sends Expo push notifications to every device a user registered and keeps a
// history row per attempt.
type Pusher struct {
	client pushPublisher
	store  DeviceStore
	logger *zap.Logger
}

func NewPusher(store DeviceStore, logger *zap.Logger) *Pusher {
	return newPusher(expo.NewPushClient(nil), store, logger)
}

func newPusher(client pushPublisher, store DeviceStore, logger *zap.Logger) *Pusher {
	return &Pusher{client: client, store: store, logger: logger.With(zap.String("channel", "push"))}
}

// Push notifies userID. Having no registered devices is not an error.
func (p *Pusher) Push(ctx context.Context, userID, title, body string, data map[string]string) error {
	devices, err := p.store.ListDevices(ctx, userID)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	if len(devices) == 0 {
		return nil
	}

	var tokens []expo.ExponentPushToken
	for _, d := range devices {
		token, err := expo.NewExponentPushToken(d.Token)
		if err != nil {
			p.logger.Warn("skipping invalid push token", zap.Uint("device_id", d.ID), zap.Error(err))
			continue
		}
		tokens = append(tokens, token)
	}

	sendErr := p.publish(tokens, title, body, data)

	status := "sent"
	if sendErr != nil {
		status = "failed"
	}
	history := &models.NotificationHistory{
		UserID: userID,
		Title:  title,
		Body:   body,
		Status: status,
		SentAt: time.Now(),
	}
	if dataJSON, err := json.Marshal(data); err != nil {
		p.logger.Warn("encoding notification data", zap.Error(err))
	} else {
		history.Data = string(dataJSON)
	}
	if err := p.store.RecordNotification(ctx, history); err != nil {
		p.logger.Warn("failed to record notification history", zap.Error(err))
	}
	return sendErr
}

func (p *Pusher) publish(tokens []expo.ExponentPushToken, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return fmt.Errorf("no valid push tokens found")
	}

	response, err := p.client.Publish(&expo.PushMessage{
		To:       tokens,
		Title:    title,
		Body:     body,
		Sound:    "default",
		Priority: expo.DefaultPriority,
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	if err := response.ValidateResponse(); err != nil {
		return fmt.Errorf("notification validation failed: %w", err)
	}
	return nil
}
