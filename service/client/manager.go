// Package client owns the gym client lifecycle: pending admission, activation, renewal,
// edits and removal, always scoped to the resolved tenant.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/metrics"
	"github.com/KAsare1/Gymhub-server/service/notifications"
	"github.com/KAsare1/Gymhub-server/service/receipt"
	"github.com/KAsare1/Gymhub-server/service/subscription"
	"github.com/KAsare1/Gymhub-server/service/tenancy"
	"github.com/KAsare1/Gymhub-server/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Store interface {
	CreateClient(ctx context.Context, client *models.Client, receipt *models.Receipt) error
	ListClients(ctx context.Context, ownerID string, filter store.ClientFilter, now time.Time) ([]models.Client, int64, error)
	ClientStats(ctx context.Context, ownerID string, now time.Time) (*store.ClientStats, error)
	FindClient(ctx context.Context, ownerID, id string) (*models.Client, error)
	UpdateClient(ctx context.Context, ownerID, id string, updates map[string]interface{}) (*models.Client, error)
	DeleteClient(ctx context.Context, ownerID, id string) error
	RenewClient(ctx context.Context, ownerID, id string, updates map[string]interface{}, receipt *models.Receipt) (*models.Client, error)
	AppendClientPhoto(ctx context.Context, ownerID, id, ref string) (*models.Client, error)
}

type Gate interface {
	CanAddClient(ctx context.Context, tenantID string) (*subscription.Decision, error)
}

type Issuer interface {
	IssueBestEffort(ctx context.Context, rcpt *models.Receipt) *string
}

type Notifier interface {
	ReceiptIssued(ctx context.Context, notice notification.ReceiptNotice)
}

type PhotoStorage interface {
	Put(ctx context.Context, data []byte, namespace, key string) (string, error)
}

// QuotaError reports a rejected add under a plan limit.
type QuotaError struct {
	Decision *subscription.Decision
}

func (e *QuotaError) Error() string {
	return utils.ErrQuotaExceeded.Error()
}

func (e *QuotaError) Unwrap() error {
	return utils.ErrQuotaExceeded
}

type Options struct {
	// PublicURL is the base the consent link is built on.
	PublicURL      string
	PhotoNamespace string
}

type Manager struct {
	store    Store
	gate     Gate
	issuer   Issuer
	notifier Notifier
	photos   PhotoStorage
	opts     Options
	now      func() time.Time
	logger   *zap.Logger
}

func NewManager(store Store, gate Gate, issuer Issuer, notifier Notifier, photos PhotoStorage, opts Options, logger *zap.Logger) *Manager {
	return &Manager{
		store:    store,
		gate:     gate,
		issuer:   issuer,
		notifier: notifier,
		photos:   photos,
		opts:     opts,
		now:      time.Now,
		logger:   logger.With(zap.String("component", "client-manager")),
	}
}

type AddClientInput struct {
	Name           string           `json:"name" validate:"required"`
	Phone          string           `json:"phone" validate:"required"`
	Email          *string          `json:"email" validate:"omitempty,email"`
	Photos         []string         `json:"photos" validate:"omitempty,dive,url"`
	MembershipType string           `json:"membershipType" validate:"required,oneof=monthly quarterly yearly"`
	StartDate      string           `json:"startDate" validate:"required"`
	EndDate        string           `json:"endDate"`
	Fee            *decimal.Decimal `json:"fee"`
	// SkipConsent activates the client immediately. Owners only.
	SkipConsent bool `json:"skipConsent"`
}

type AddClientResult struct {
	Client          *models.Client
	Receipt         *models.Receipt
	ConsentLink     string
	WhatsAppMessage string
}

// AddClient admits a new client with its receipt. Without SkipConsent the client is
// pending and the caller gets a consent link to share; with it the client is active and
// the receipt PDF is produced before returning, on a best-effort basis.
func (m *Manager) AddClient(ctx context.Context, scope *tenancy.Scope, in AddClientInput) (*AddClientResult, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	if in.SkipConsent && !scope.IsOwner() {
		return nil, fmt.Errorf("%w: only the owner can activate clients without consent", utils.ErrForbidden)
	}

	start, err := ParseDate("startDate", in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := EndDate(in.MembershipType, start)
	if err != nil {
		return nil, err
	}
	if in.EndDate != "" {
		if end, err = ParseDate("endDate", in.EndDate); err != nil {
			return nil, err
		}
	}
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	fee, err := DefaultFee(in.MembershipType)
	if err != nil {
		return nil, err
	}
	if in.Fee != nil {
		if in.Fee.IsNegative() {
			return nil, fmt.Errorf("%w: fee must not be negative", utils.ErrValidation)
		}
		fee = *in.Fee
	}

	decision, err := m.gate.CanAddClient(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &QuotaError{Decision: decision}
	}

	now := m.now()
	c := &models.Client{
		ID:             uuid.New().String(),
		OwnerID:        scope.TenantID,
		CreatedByID:    scope.Actor.ID,
		Name:           strings.TrimSpace(in.Name),
		Phone:          strings.TrimSpace(in.Phone),
		Email:          in.Email,
		PhotoRefs:      in.Photos,
		MembershipType: in.MembershipType,
		StartDate:      start,
		EndDate:        end,
		Fee:            fee,
	}
	if in.SkipConsent {
		c.IsActive = 1
	}
	rcpt := receipt.Snapshot(c, now)

	if err := m.store.CreateClient(ctx, c, rcpt); err != nil {
		return nil, err
	}
	metrics.ReceiptsCreated.WithLabelValues("admission").Inc()

	gymName := displayName(scope.Tenant)
	result := &AddClientResult{Client: c, Receipt: rcpt}
	if in.SkipConsent {
		c.Refresh(now)
		m.deliver(ctx, c, rcpt, gymName)
	} else {
		c.Status = models.ClientStatusPending
		result.ConsentLink = m.ConsentLink(c.ID)
		result.WhatsAppMessage = fmt.Sprintf(
			"Hello %s, welcome to %s! Please accept our Terms & Conditions to activate your membership and receive your receipt: %s",
			c.Name, gymName, result.ConsentLink,
		)
	}

	m.logger.Info("client added",
		zap.String("client_id", c.ID),
		zap.String("tenant_id", scope.TenantID),
		zap.String("receipt_id", rcpt.ID),
		zap.Bool("skip_consent", in.SkipConsent),
	)
	return result, nil
}

// deliver produces the receipt PDF and, if that worked, sends it to the client.
func (m *Manager) deliver(ctx context.Context, c *models.Client, rcpt *models.Receipt, gymName string) {
	url := m.issuer.IssueBestEffort(ctx, rcpt)
	if url == nil {
		return
	}
	rcpt.ReceiptURL = url
	m.notifier.ReceiptIssued(ctx, notification.NewReceiptNotice(c, gymName, *url))
}

// ConsentLink is the public page a pending client opens to accept the terms.
func (m *Manager) ConsentLink(clientID string) string {
	return strings.TrimRight(m.opts.PublicURL, "/") + "/api/v1/public/terms/" + clientID
}

func displayName(owner *models.User) string {
	if owner == nil {
		return "Gym Hub"
	}
	if owner.GymName != nil && *owner.GymName != "" {
		return *owner.GymName
	}
	if owner.Name != "" {
		return owner.Name
	}
	return "Gym Hub"
}

// List returns one page of the tenant's clients with status and is_active derived as of now.
func (m *Manager) List(ctx context.Context, scope *tenancy.Scope, filter store.ClientFilter) ([]models.Client, int64, error) {
	switch filter.Status {
	case "", models.ClientStatusActive, models.ClientStatusExpired, models.ClientStatusPending:
	default:
		return nil, 0, fmt.Errorf("%w: status must be one of: active, expired, pending", utils.ErrValidation)
	}

	now := m.now()
	clients, total, err := m.store.ListClients(ctx, scope.TenantID, filter, now)
	if err != nil {
		return nil, 0, err
	}
	for i := range clients {
		clients[i].Refresh(now)
	}
	return clients, total, nil
}

func (m *Manager) Stats(ctx context.Context, scope *tenancy.Scope) (*store.ClientStats, error) {
	return m.store.ClientStats(ctx, scope.TenantID, m.now())
}

func (m *Manager) Get(ctx context.Context, scope *tenancy.Scope, id string) (*models.Client, error) {
	c, err := m.store.FindClient(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	c.Refresh(m.now())
	return c, nil
}

// UpdateClientInput is a partial update; nil fields are left untouched.
type UpdateClientInput struct {
	Name           *string          `json:"name" validate:"omitempty,min=1"`
	Phone          *string          `json:"phone" validate:"omitempty,min=1"`
	Email          *string          `json:"email" validate:"omitempty,email"`
	MembershipType *string          `json:"membershipType" validate:"omitempty,oneof=monthly quarterly yearly"`
	StartDate      *string          `json:"startDate"`
	EndDate        *string          `json:"endDate"`
	Fee            *decimal.Decimal `json:"fee"`
}

func (m *Manager) Update(ctx context.Context, scope *tenancy.Scope, id string, in UpdateClientInput) (*models.Client, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		updates["email"] = in.Email
	}
	if in.MembershipType != nil {
		updates["membership_type"] = *in.MembershipType
	}
	if in.Fee != nil {
		if in.Fee.IsNegative() {
			return nil, fmt.Errorf("%w: fee must not be negative", utils.ErrValidation)
		}
		updates["fee"] = *in.Fee
	}
	if len(updates) == 0 && in.StartDate == nil && in.EndDate == nil {
		return nil, fmt.Errorf("%w: no fields to update", utils.ErrValidation)
	}

	if in.StartDate != nil || in.EndDate != nil {
		current, err := m.store.FindClient(ctx, scope.TenantID, id)
		if err != nil {
			return nil, err
		}
		start, end := current.StartDate, current.EndDate
		if in.StartDate != nil {
			if start, err = ParseDate("startDate", *in.StartDate); err != nil {
				return nil, err
			}
			updates["start_date"] = start
		}
		if in.EndDate != nil {
			if end, err = ParseDate("endDate", *in.EndDate); err != nil {
				return nil, err
			}
			updates["end_date"] = end
		}
		if err := checkRange(start, end); err != nil {
			return nil, err
		}
	}

	c, err := m.store.UpdateClient(ctx, scope.TenantID, id, updates)
	if err != nil {
		return nil, err
	}
	c.Refresh(m.now())
	return c, nil
}

// Delete removes the client. Its receipts stay as billing history.
func (m *Manager) Delete(ctx context.Context, scope *tenancy.Scope, id string) error {
	if err := m.store.DeleteClient(ctx, scope.TenantID, id); err != nil {
		return err
	}
	m.logger.Info("client deleted", zap.String("client_id", id), zap.String("tenant_id", scope.TenantID))
	return nil
}

type RenewInput struct {
	MembershipType string           `json:"membershipType" validate:"required,oneof=monthly quarterly yearly"`
	Fee            *decimal.Decimal `json:"fee"`
}

// Renew starts a new membership period now and issues a new receipt for it. Earlier
// receipts are untouched. Clients that already went through consent or administrative
// activation get their PDF right away.
func (m *Manager) Renew(ctx context.Context, scope *tenancy.Scope, id string, in RenewInput) (*models.Client, *models.Receipt, error) {
	if err := utils.Validate(in); err != nil {
		return nil, nil, err
	}

	current, err := m.store.FindClient(ctx, scope.TenantID, id)
	if err != nil {
		return nil, nil, err
	}

	now := m.now()
	end, err := EndDate(in.MembershipType, now)
	if err != nil {
		return nil, nil, err
	}
	fee, err := DefaultFee(in.MembershipType)
	if err != nil {
		return nil, nil, err
	}
	if in.Fee != nil {
		if in.Fee.IsNegative() {
			return nil, nil, fmt.Errorf("%w: fee must not be negative", utils.ErrValidation)
		}
		fee = *in.Fee
	}

	renewed := *current
	renewed.MembershipType = in.MembershipType
	renewed.StartDate = now
	renewed.EndDate = end
	renewed.Fee = fee
	rcpt := receipt.Snapshot(&renewed, now)

	c, err := m.store.RenewClient(ctx, scope.TenantID, id, map[string]interface{}{
		"membership_type": in.MembershipType,
		"start_date":      now,
		"end_date":        end,
		"fee":             fee,
		"is_active":       1,
	}, rcpt)
	if err != nil {
		return nil, nil, err
	}
	metrics.ReceiptsCreated.WithLabelValues("renewal").Inc()

	if current.Activated() {
		m.deliver(ctx, c, rcpt, displayName(scope.Tenant))
	}
	c.Refresh(now)

	m.logger.Info("client renewed",
		zap.String("client_id", c.ID),
		zap.String("receipt_id", rcpt.ID),
		zap.String("membership_type", in.MembershipType),
	)
	return c, rcpt, nil
}

// UploadPhoto stores an image for the client and appends its URL to the client's photos.
func (m *Manager) UploadPhoto(ctx context.Context, scope *tenancy.Scope, id string, data []byte, contentType string) (*models.Client, error) {
	if _, err := m.store.FindClient(ctx, scope.TenantID, id); err != nil {
		return nil, err
	}

	key := id + "/" + uuid.New().String() + utils.ImageExtension(contentType)
	url, err := m.photos.Put(ctx, data, m.opts.PhotoNamespace, key)
	if err != nil {
		m.logger.Error("photo upload failed", zap.String("client_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", utils.ErrStorage, err)
	}

	c, err := m.store.AppendClientPhoto(ctx, scope.TenantID, id, url)
	if err != nil {
		return nil, err
	}
	c.Refresh(m.now())
	return c, nil
}

// IsQuotaError reports whether err is a plan-limit rejection and returns its decision.
func IsQuotaError(err error) (*subscription.Decision, bool) {
	var qe *QuotaError
	if errors.As(err, &qe) {
		return qe.Decision, true
	}
	return nil, false
}
