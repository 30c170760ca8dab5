// Package tenancy maps an authenticated gym actor to the owner whose data it may touch.
package tenancy

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
)

type Store interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
	ListMembershipPlans(ctx context.Context, ownerID string) ([]models.MembershipPlan, error)
}

// Scope is the result of resolving an actor. TenantID filters every downstream query.
type Scope struct {
	Actor    *models.User
	Tenant   *models.User
	TenantID string
}

func (s *Scope) IsOwner() bool {
	return s.Actor.IsOwner()
}

// Profile is the gym identity shown to an actor. Workers see their owner's.
type Profile struct {
	GymName         *string                 `json:"gym_name"`
	GymAddress      *string                 `json:"gym_address"`
	GymType         string                  `json:"gym_type"`
	GymLogo         *string                 `json:"gym_logo"`
	MembershipPlans []models.MembershipPlan `json:"membership_plans"`
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve loads the actor and its tenant. Unknown actors, orphaned workers and workers of
// a deleted owner are Unauthorized; actors of a suspended or inactive tenant are Forbidden.
func (r *Resolver) Resolve(ctx context.Context, actorID string) (*Scope, error) {
	actor, err := r.store.FindUser(ctx, actorID)
	if err != nil {
		return nil, unauthorized(err)
	}

	tenant := actor
	if !actor.IsOwner() {
		if actor.Role != models.RoleWorker || actor.OwnerID == nil {
			return nil, fmt.Errorf("%w: actor has no tenant", utils.ErrUnauthorized)
		}
		tenant, err = r.store.FindUser(ctx, *actor.OwnerID)
		if err != nil {
			return nil, unauthorized(err)
		}
		if !tenant.IsOwner() {
			return nil, fmt.Errorf("%w: tenant is not an owner", utils.ErrUnauthorized)
		}
	}

	if tenant.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: account is %s", utils.ErrForbidden, tenant.Status)
	}

	return &Scope{Actor: actor, Tenant: tenant, TenantID: tenant.ID}, nil
}

func unauthorized(err error) error {
	if errors.Is(err, utils.ErrNotFound) {
		return fmt.Errorf("%w: unknown actor", utils.ErrUnauthorized)
	}
	return err
}

// EffectiveProfile returns the tenant's gym profile and plan catalog.
func (r *Resolver) EffectiveProfile(ctx context.Context, scope *Scope) (*Profile, error) {
	return r.ProfileOf(ctx, scope.Tenant)
}

// ProfileOf builds the display profile of an owner record.
func (r *Resolver) ProfileOf(ctx context.Context, owner *models.User) (*Profile, error) {
	plans, err := r.store.ListMembershipPlans(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []models.MembershipPlan{}
	}
	return &Profile{
		GymName:         owner.GymName,
		GymAddress:      owner.GymAddress,
		GymType:         owner.GymType,
		GymLogo:         owner.GymLogo,
		MembershipPlans: plans,
	}, nil
}

// Middleware resolves the authenticated actor into a Scope. It must run after
// utils.AuthMiddleware.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		actorID, err := utils.GetUserIDFromContext(req)
		if err != nil || utils.GetRoleFromContext(req) == utils.RoleSuperAdmin {
			utils.RespondWithMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		scope, err := r.Resolve(req.Context(), actorID)
		if err != nil {
			utils.RespondWithError(w, req, err)
			return
		}
		next.ServeHTTP(w, req.WithContext(WithScope(req.Context(), scope)))
	})
}

type scopeKey struct{}

func WithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

func FromContext(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(scopeKey{}).(*Scope)
	return scope, ok
}

// MustScope returns the request's scope. Handlers mounted behind Middleware always have one.
func MustScope(r *http.Request) *Scope {
	scope, ok := FromContext(r.Context())
	if !ok {
		panic("tenancy: request has no resolved scope")
	}
	return scope
}

// RequireOwner rejects workers.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, ok := FromContext(r.Context())
		if !ok || !scope.IsOwner() {
			utils.RespondWithMessage(w, http.StatusForbidden, "Access denied. Owner only.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOwnerFunc is RequireOwner for a single handler function.
func RequireOwnerFunc(fn http.HandlerFunc) http.HandlerFunc {
	return RequireOwner(fn).ServeHTTP
}
