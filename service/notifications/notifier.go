// Package notification delivers best-effort messages about receipts and consents. Nothing
// here ever fails the workflow that triggered it.
package notification

import (
	"context"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/metrics"
	"go.uber.org/zap"
)

// ReceiptNotice is what a client is told once their receipt PDF exists.
type ReceiptNotice struct {
	ClientName string
	Phone      string
	Email      string
	GymName    string
	ReceiptURL string
}

// Sender is one client-facing channel.
type Sender interface {
	Channel() string
	SendReceipt(ctx context.Context, notice ReceiptNotice) error
}

type Notifier struct {
	senders []Sender
	pusher  *Pusher
	timeout time.Duration
	logger  *zap.Logger
}

// NewNotifier fans out to senders; pusher may be nil.
func NewNotifier(senders []Sender, pusher *Pusher, timeout time.Duration, logger *zap.Logger) *Notifier {
	return &Notifier{senders: senders, pusher: pusher, timeout: timeout, logger: logger}
}

// NewReceiptNotice builds the notice for a client whose receipt is at url.
func NewReceiptNotice(client *models.Client, gymName, url string) ReceiptNotice {
	notice := ReceiptNotice{
		ClientName: client.Name,
		Phone:      client.Phone,
		GymName:    gymName,
		ReceiptURL: url,
	}
	if client.Email != nil {
		notice.Email = *client.Email
	}
	return notice
}

// ReceiptIssued sends the notice through every channel. Failures are logged and counted.
func (n *Notifier) ReceiptIssued(ctx context.Context, notice ReceiptNotice) {
	for _, sender := range n.senders {
		sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
		err := sender.SendReceipt(sendCtx, notice)
		cancel()
		if err != nil {
			metrics.NotificationFailures.WithLabelValues(sender.Channel()).Inc()
			n.logger.Warn("receipt notification failed",
				zap.String("channel", sender.Channel()),
				zap.String("client", notice.ClientName),
				zap.Error(err),
			)
		}
	}
}

// ConsentAccepted tells the owner's devices that a pending client activated.
func (n *Notifier) ConsentAccepted(ctx context.Context, client *models.Client) {
	if n.pusher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	err := n.pusher.Push(ctx, client.OwnerID,
		"Membership activated",
		client.Name+" accepted the terms",
		map[string]string{"type": "consent_accepted", "clientId": client.ID},
	)
	if err != nil {
		metrics.NotificationFailures.WithLabelValues("push").Inc()
		n.logger.Warn("consent push failed", zap.String("client_id", client.ID), zap.Error(err))
	}
}
