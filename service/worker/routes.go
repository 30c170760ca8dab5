// Package worker lets an owner manage the staff accounts that act on behalf of its gym.
package worker

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/service/tenancy"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Store interface {
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	CreateWorker(ctx context.Context, worker *models.User) error
	ListWorkers(ctx context.Context, ownerID string) ([]models.User, error)
	DeleteWorker(ctx context.Context, ownerID, workerID string) error
}

type WorkerHandler struct {
	store      Store
	bcryptCost int
	logger     *zap.Logger
}

func NewWorkerHandler(store Store, bcryptCost int, logger *zap.Logger) *WorkerHandler {
	return &WorkerHandler{store: store, bcryptCost: bcryptCost, logger: logger.With(zap.String("component", "workers"))}
}

// RegisterRoutes mounts the worker routes. Every route is owner-only.
func (h *WorkerHandler) RegisterRoutes(router *mux.Router) {
	workerRouter := router.PathPrefix("/workers").Subrouter()
	workerRouter.Use(tenancy.RequireOwner)

	workerRouter.HandleFunc("", h.AddWorker).Methods("POST")
	workerRouter.HandleFunc("", h.GetWorkers).Methods("GET")
	workerRouter.HandleFunc("/{id}", h.DeleteWorker).Methods("DELETE")
}

type AddWorkerInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *WorkerHandler) AddWorker(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)

	var in AddWorkerInput
	if err := utils.Decode(r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	taken, err := h.store.EmailTaken(r.Context(), email, "")
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	if taken {
		utils.RespondWithError(w, r, fmt.Errorf("%w: email already registered", utils.ErrConflict))
		return
	}

	hash, err := utils.HashPassword(in.Password, h.bcryptCost)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	ownerID := scope.TenantID
	worker := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleWorker,
		OwnerID:      &ownerID,
		Status:       models.StatusActive,
	}
	if err := h.store.CreateWorker(r.Context(), worker); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	h.logger.Info("worker added", zap.String("worker_id", worker.ID), zap.String("tenant_id", ownerID))
	utils.RespondWithJSON(w, http.StatusCreated, utils.Envelope{"worker": worker})
}

func (h *WorkerHandler) GetWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.store.ListWorkers(r.Context(), tenancy.MustScope(r).TenantID)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	if workers == nil {
		workers = []models.User{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"workers": workers})
}

func (h *WorkerHandler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)
	id := mux.Vars(r)["id"]

	if err := h.store.DeleteWorker(r.Context(), scope.TenantID, id); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	h.logger.Info("worker removed", zap.String("worker_id", id), zap.String("tenant_id", scope.TenantID))
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"message": "Worker deleted successfully"})
}
