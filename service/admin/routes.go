package admin

import (
	"net/http"

	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/store"
	"github.com/gorilla/mux"
)

type AdminHandler struct {
	service *Service
}

func NewAdminHandler(service *Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes mounts login on public and the rest on protected, which must carry
// utils.AuthMiddleware. The super-admin guard is applied here.
func (h *AdminHandler) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc("/super-admin/login", h.handleLogin).Methods("POST")

	adminRouter := protected.PathPrefix("/super-admin").Subrouter()
	adminRouter.Use(utils.RequireSuperAdmin)
	adminRouter.HandleFunc("/me", h.GetMe).Methods("GET")
	adminRouter.HandleFunc("/admins", h.GetAdmins).Methods("GET")
	adminRouter.HandleFunc("/admins/{id}/status", h.UpdateStatus).Methods("PUT")
	adminRouter.HandleFunc("/analytics/overview", h.GetOverview).Methods("GET")
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AdminHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := utils.Decode(r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	token, admin, err := h.service.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"token": token, "admin": admin})
}

func (h *AdminHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.RespondWithError(w, r, utils.ErrUnauthorized)
		return
	}
	admin, err := h.service.Me(r.Context(), id)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"admin": admin})
}

// GetAdmins lists gym owners with their client counts and plans.
func (h *AdminHandler) GetAdmins(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tenants, err := h.service.Tenants(r.Context(), store.TenantFilter{
		Search: query.Get("search"),
		Status: query.Get("status"),
	})
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	if tenants == nil {
		tenants = []store.TenantSummary{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"admins": tenants, "count": len(tenants)})
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended inactive"`
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if err := utils.Decode(r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.service.SetStatus(r.Context(), id, in.Status); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{
		"message": "Status updated to " + in.Status,
		"admin":   map[string]string{"id": id, "status": in.Status},
	})
}

func (h *AdminHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Overview(r.Context())
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"stats": stats})
}
