// Package receipt turns receipt records into rendered, uploaded PDF artifacts and serves
// the tenant's receipt history.
package receipt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/metrics"
	"github.com/KAsare1/Gymhub-server/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Renderer interface {
	Render(doc Document) ([]byte, error)
}

type Storage interface {
	Put(ctx context.Context, data []byte, namespace, key string) (string, error)
}

type LogoFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Store interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
	SetReceiptURL(ctx context.Context, id, url string) (string, error)
	ListReceipts(ctx context.Context, ownerID string, page utils.Page) ([]models.Receipt, int64, error)
	FindReceipt(ctx context.Context, ownerID, id string) (*models.Receipt, error)
	ListClientReceipts(ctx context.Context, ownerID, clientID string) ([]models.Receipt, error)
	DeleteReceipt(ctx context.Context, ownerID, id string) error
}

var _ Store = (*store.Store)(nil)

// NewID returns a receipt identifier of the form RCP-<unix millis>-<8 hex>.
func NewID(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("RCP-%d-%s", now.UnixMilli(), suffix)
}

// Snapshot freezes the client's current membership into a new receipt.
func Snapshot(client *models.Client, now time.Time) *models.Receipt {
	return &models.Receipt{
		ID:             NewID(now),
		ClientID:       client.ID,
		OwnerID:        client.OwnerID,
		ClientName:     client.Name,
		ClientPhone:    client.Phone,
		Amount:         client.Fee,
		MembershipType: client.MembershipType,
		StartDate:      client.StartDate,
		EndDate:        client.EndDate,
		GeneratedAt:    now,
	}
}

// Issuer runs the artifact pipeline: tenant display data, render, upload, persist.
type Issuer struct {
	store     Store
	renderer  Renderer
	storage   Storage
	logos     LogoFetcher
	namespace string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewIssuer(store Store, renderer Renderer, storage Storage, logos LogoFetcher, namespace string, timeout time.Duration, logger *zap.Logger) *Issuer {
	return &Issuer{
		store:     store,
		renderer:  renderer,
		storage:   storage,
		logos:     logos,
		namespace: namespace,
		timeout:   timeout,
		logger:    logger.With(zap.String("component", "receipt-issuer")),
	}
}

// IssueArtifact returns the receipt's artifact URL, producing it first if needed. A receipt
// that already has a URL is returned as is without rendering or uploading. Render and
// upload failures are wrapped in utils.ErrArtifactPipeline.
func (i *Issuer) IssueArtifact(ctx context.Context, rcpt *models.Receipt) (string, error) {
	if rcpt.HasArtifact() {
		return *rcpt.ReceiptURL, nil
	}
	log := i.logger.With(zap.String("receipt_id", rcpt.ID), zap.String("client_id", rcpt.ClientID))

	doc := Document{Receipt: *rcpt}
	owner, err := i.store.FindUser(ctx, rcpt.OwnerID)
	if err != nil {
		log.Warn("tenant profile unavailable, rendering with defaults", zap.Error(err))
	} else {
		doc.GymName = deref(owner.GymName)
		doc.GymAddress = deref(owner.GymAddress)
		if logo := deref(owner.GymLogo); logo != "" && i.logos != nil {
			doc.Logo = i.fetchLogo(ctx, logo, log)
		}
	}

	data, err := i.renderer.Render(doc)
	if err != nil {
		metrics.ArtifactFailures.WithLabelValues("render").Inc()
		return "", fmt.Errorf("%w: render: %v", utils.ErrArtifactPipeline, err)
	}

	uploadCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	url, err := i.storage.Put(uploadCtx, data, i.namespace, rcpt.ID+".pdf")
	if err != nil {
		metrics.ArtifactFailures.WithLabelValues("upload").Inc()
		return "", fmt.Errorf("%w: upload: %v", utils.ErrArtifactPipeline, err)
	}

	stored, err := i.store.SetReceiptURL(ctx, rcpt.ID, url)
	if err != nil {
		metrics.ArtifactFailures.WithLabelValues("persist").Inc()
		return "", fmt.Errorf("persist receipt url: %w", err)
	}
	rcpt.ReceiptURL = &stored

	metrics.ArtifactsIssued.Inc()
	log.Info("receipt artifact issued", zap.String("url", stored))
	return stored, nil
}

// fetchLogo never fails the pipeline; a missing logo renders without one.
func (i *Issuer) fetchLogo(ctx context.Context, url string, log *zap.Logger) []byte {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	logo, err := i.logos.Fetch(ctx, url)
	if err != nil {
		log.Warn("logo fetch failed, rendering without logo", zap.String("logo_url", url), zap.Error(err))
		return nil
	}
	return logo
}

// IssueBestEffort runs the pipeline and logs a failure instead of returning it.
// The returned URL is nil when no artifact could be produced.
func (i *Issuer) IssueBestEffort(ctx context.Context, rcpt *models.Receipt) *string {
	url, err := i.IssueArtifact(ctx, rcpt)
	if err != nil {
		i.logger.Error("receipt artifact pipeline failed",
			zap.String("receipt_id", rcpt.ID),
			zap.String("client_id", rcpt.ClientID),
			zap.Error(err),
		)
		return nil
	}
	return &url
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
