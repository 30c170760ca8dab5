// Package user handles gym accounts: owner signup, login for owners and workers, and
// profile maintenance.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/config"
	"github.com/KAsare1/Gymhub-server/service/tenancy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Store interface {
	CreateOwner(ctx context.Context, owner *models.User, sub *models.Subscription) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	UpdateUser(ctx context.Context, id string, updates map[string]interface{}) (*models.User, error)
	ReplaceGymProfile(ctx context.Context, ownerID string, updates map[string]interface{}, plans []models.MembershipPlan) (*models.User, error)
}

// Account is the profile returned to a signed-in owner or worker. Gym fields always come
// from the tenant, so a worker sees its owner's gym.
type Account struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	Email           string                  `json:"email"`
	Role            string                  `json:"role"`
	OwnerID         *string                 `json:"owner_id,omitempty"`
	ProfileImage    *string                 `json:"profile_image"`
	Status          string                  `json:"status"`
	TotalRevenue    *decimal.Decimal        `json:"total_revenue,omitempty"`
	GymName         *string                 `json:"gym_name"`
	GymAddress      *string                 `json:"gym_address"`
	GymType         string                  `json:"gym_type"`
	GymLogo         *string                 `json:"gym_logo"`
	MembershipPlans []models.MembershipPlan `json:"membership_plans"`
	CreatedAt       time.Time               `json:"created_at"`
}

type PlanInput struct {
	Name     string          `json:"name" validate:"required"`
	Duration int             `json:"duration" validate:"required,min=1"`
	Fee      decimal.Decimal `json:"fee"`
}

type SignupInput struct {
	Name            string      `json:"name" validate:"required"`
	Email           string      `json:"email" validate:"required,email"`
	Password        string      `json:"password" validate:"required,min=6"`
	GymName         *string     `json:"gymName"`
	GymAddress      *string     `json:"gymAddress"`
	GymType         string      `json:"gymType" validate:"omitempty,oneof=male female unisex"`
	GymLogo         *string     `json:"gymLogo" validate:"omitempty,url"`
	MembershipPlans []PlanInput `json:"membershipPlans" validate:"omitempty,dive"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Email        *string `json:"email" validate:"omitempty,email"`
	ProfileImage *string `json:"profileImage" validate:"omitempty,url"`
}

type GymInput struct {
	GymName         *string      `json:"gymName"`
	GymAddress      *string      `json:"gymAddress"`
	GymType         *string      `json:"gymType" validate:"omitempty,oneof=male female unisex"`
	GymLogo         *string      `json:"gymLogo" validate:"omitempty,url"`
	MembershipPlans *[]PlanInput `json:"membershipPlans"`
}

type Service struct {
	store    Store
	resolver *tenancy.Resolver
	tokens   *utils.TokenIssuer
	auth     config.AuthConfig
	logger   *zap.Logger
}

func NewService(store Store, resolver *tenancy.Resolver, tokens *utils.TokenIssuer, auth config.AuthConfig, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		tokens:   tokens,
		auth:     auth,
		logger:   logger.With(zap.String("component", "accounts")),
	}
}

func plans(in []PlanInput) []models.MembershipPlan {
	out := make([]models.MembershipPlan, 0, len(in))
	for _, p := range in {
		out = append(out, models.MembershipPlan{Name: strings.TrimSpace(p.Name), DurationMonths: p.Duration, Fee: p.Fee})
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an owner on the free plan and signs it in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (string, *Account, error) {
	if err := utils.Validate(in); err != nil {
		return "", nil, err
	}
	email := normalizeEmail(in.Email)
	taken, err := s.store.EmailTaken(ctx, email, "")
	if err != nil {
		return "", nil, err
	}
	if taken {
		return "", nil, fmt.Errorf("%w: email already registered", utils.ErrConflict)
	}

	hash, err := utils.HashPassword(in.Password, s.auth.BcryptCost)
	if err != nil {
		return "", nil, err
	}
	gymType := in.GymType
	if gymType == "" {
		gymType = "unisex"
	}
	owner := &models.User{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(in.Name),
		Email:           email,
		PasswordHash:    hash,
		Role:            models.RoleOwner,
		Status:          models.StatusActive,
		TotalRevenue:    decimal.Zero,
		GymName:         in.GymName,
		GymAddress:      in.GymAddress,
		GymType:         gymType,
		GymLogo:         in.GymLogo,
		MembershipPlans: plans(in.MembershipPlans),
	}
	sub := &models.Subscription{
		ID:           uuid.New().String(),
		OwnerID:      owner.ID,
		Plan:         models.PlanFree,
		BillingCycle: models.BillingMonthly,
		StartDate:    time.Now(),
		IsActive:     1,
	}
	if err := s.store.CreateOwner(ctx, owner, sub); err != nil {
		return "", nil, err
	}
	s.logger.Info("owner signed up", zap.String("user_id", owner.ID))

	return s.signIn(ctx, owner.ID)
}

// Login checks credentials and returns a token with the effective profile. Accounts of
// suspended or inactive gyms, and their workers, are refused.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, *Account, error) {
	if err := utils.Validate(in); err != nil {
		return "", nil, err
	}
	u, err := s.store.FindUserByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", nil, utils.ErrInvalidCredential
		}
		return "", nil, err
	}
	if err := utils.CheckPassword(u.PasswordHash, in.Password); err != nil {
		return "", nil, err
	}
	return s.signIn(ctx, u.ID)
}

func (s *Service) signIn(ctx context.Context, userID string) (string, *Account, error) {
	scope, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	account, err := s.Account(ctx, scope)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Generate(userID, "", s.auth.TokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, account, nil
}

// Account builds the profile of the scope's actor with the tenant's gym profile.
func (s *Service) Account(ctx context.Context, scope *tenancy.Scope) (*Account, error) {
	profile, err := s.resolver.EffectiveProfile(ctx, scope)
	if err != nil {
		return nil, err
	}
	u := scope.Actor
	account := &Account{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		OwnerID:         u.OwnerID,
		ProfileImage:    u.ProfileImage,
		Status:          u.Status,
		GymName:         profile.GymName,
		GymAddress:      profile.GymAddress,
		GymType:         profile.GymType,
		GymLogo:         profile.GymLogo,
		MembershipPlans: profile.MembershipPlans,
		CreatedAt:       u.CreatedAt,
	}
	if u.IsOwner() {
		revenue := u.TotalRevenue
		account.TotalRevenue = &revenue
	}
	return account, nil
}

func (s *Service) UpdateProfile(ctx context.Context, scope *tenancy.Scope, in ProfileInput) (*Account, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		taken, err := s.store.EmailTaken(ctx, email, scope.Actor.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: email already in use", utils.ErrConflict)
		}
		updates["email"] = email
	}
	if in.ProfileImage != nil {
		updates["profile_image"] = in.ProfileImage
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", utils.ErrValidation)
	}

	u, err := s.store.UpdateUser(ctx, scope.Actor.ID, updates)
	if err != nil {
		return nil, err
	}
	next := *scope
	next.Actor = u
	if u.IsOwner() {
		next.Tenant = u
	}
	return s.Account(ctx, &next)
}

// UpdateGym replaces the owner's gym profile. A supplied plan list replaces the whole catalog.
func (s *Service) UpdateGym(ctx context.Context, scope *tenancy.Scope, in GymInput) (*Account, error) {
	if !scope.IsOwner() {
		return nil, fmt.Errorf("%w: only the owner can edit the gym profile", utils.ErrForbidden)
	}
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.GymName != nil {
		updates["gym_name"] = in.GymName
	}
	if in.GymAddress != nil {
		updates["gym_address"] = in.GymAddress
	}
	if in.GymType != nil {
		updates["gym_type"] = *in.GymType
	}
	if in.GymLogo != nil {
		updates["gym_logo"] = in.GymLogo
	}
	var catalog []models.MembershipPlan
	if in.MembershipPlans != nil {
		for _, p := range *in.MembershipPlans {
			if err := utils.Validate(p); err != nil {
				return nil, err
			}
		}
		catalog = plans(*in.MembershipPlans)
	}

	owner, err := s.store.ReplaceGymProfile(ctx, scope.TenantID, updates, catalog)
	if err != nil {
		return nil, err
	}
	return s.Account(ctx, &tenancy.Scope{Actor: owner, Tenant: owner, TenantID: owner.ID})
}
