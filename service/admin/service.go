// Package admin is the platform administrator surface: it sees every gym but owns none.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/config"
	"github.com/KAsare1/Gymhub-server/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Store interface {
	CreateSuperAdmin(ctx context.Context, admin *models.SuperAdmin) error
	FindSuperAdmin(ctx context.Context, id string) (*models.SuperAdmin, error)
	FindSuperAdminByEmail(ctx context.Context, email string) (*models.SuperAdmin, error)
	ListTenants(ctx context.Context, filter store.TenantFilter) ([]store.TenantSummary, error)
	SetOwnerStatus(ctx context.Context, ownerID, status string) error
	PlatformStats(ctx context.Context, since time.Time) (*store.PlatformStats, error)
}

// revenueWindow is how far back "monthly" revenue looks.
const revenueWindow = 30 * 24 * time.Hour

type Service struct {
	store  Store
	tokens *utils.TokenIssuer
	auth   config.AuthConfig
	now    func() time.Time
	logger *zap.Logger
}

func NewService(store Store, tokens *utils.TokenIssuer, auth config.AuthConfig, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		auth:   auth,
		now:    time.Now,
		logger: logger.With(zap.String("component", "super-admin")),
	}
}

// CreateAdmin registers a platform administrator. It is only reachable from the CLI.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (*models.SuperAdmin, error) {
	name, email = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || len(password) < 6 {
		return nil, fmt.Errorf("%w: name, email and a password of at least 6 characters are required", utils.ErrValidation)
	}
	hash, err := utils.HashPassword(password, s.auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	admin := &models.SuperAdmin{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateSuperAdmin(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.Info("super admin created", zap.String("admin_id", admin.ID))
	return admin, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, *models.SuperAdmin, error) {
	admin, err := s.store.FindSuperAdminByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", nil, utils.ErrInvalidCredential
		}
		return "", nil, err
	}
	if err := utils.CheckPassword(admin.PasswordHash, password); err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Generate(admin.ID, utils.RoleSuperAdmin, s.auth.AdminTTL)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, admin, nil
}

func (s *Service) Me(ctx context.Context, id string) (*models.SuperAdmin, error) {
	admin, err := s.store.FindSuperAdmin(ctx, id)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown administrator", utils.ErrUnauthorized)
	}
	return admin, err
}

func (s *Service) Tenants(ctx context.Context, filter store.TenantFilter) ([]store.TenantSummary, error) {
	switch filter.Status {
	case "", "all", models.StatusActive, models.StatusSuspended, models.StatusInactive:
	default:
		return nil, fmt.Errorf("%w: status must be one of: all, active, suspended, inactive", utils.ErrValidation)
	}
	return s.store.ListTenants(ctx, filter)
}

// SetStatus changes a gym owner's account status. Suspension takes effect on the owner's
// and its workers' next request.
func (s *Service) SetStatus(ctx context.Context, ownerID, status string) error {
	switch status {
	case models.StatusActive, models.StatusSuspended, models.StatusInactive:
	default:
		return fmt.Errorf("%w: status must be one of: active, suspended, inactive", utils.ErrValidation)
	}
	if err := s.store.SetOwnerStatus(ctx, ownerID, status); err != nil {
		return err
	}
	s.logger.Info("owner status changed", zap.String("owner_id", ownerID), zap.String("status", status))
	return nil
}

func (s *Service) Overview(ctx context.Context) (*store.PlatformStats, error) {
	return s.store.PlatformStats(ctx, s.now().Add(-revenueWindow))
}
