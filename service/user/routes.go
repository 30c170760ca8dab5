package user

import (
	"net/http"

	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/service/tenancy"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts signup and login on public and the profile routes on protected,
// which must carry the tenancy middleware.
func (h *Handler) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc("/auth/signup", h.handleSignup).Methods("POST")
	public.HandleFunc("/auth/login", h.handleLogin).Methods("POST")

	authRouter := protected.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/me", h.GetMe).Methods("GET")
	authRouter.HandleFunc("/me", h.UpdateMe).Methods("PUT")
	authRouter.HandleFunc("/gym", tenancy.RequireOwnerFunc(h.UpdateGym)).Methods("PUT")
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in SignupInput
	if err := utils.Decode(r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	token, account, err := h.service.Signup(r.Context(), in)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.Envelope{"token": token, "user": account})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := utils.Decode(r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	token, account, err := h.service.Login(r.Context(), in)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"token": token, "user": account})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Account(r.Context(), tenancy.MustScope(r))
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"user": account})
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in ProfileInput
	if err := utils.Decode(r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	account, err := h.service.UpdateProfile(r.Context(), tenancy.MustScope(r), in)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"user": account})
}

func (h *Handler) UpdateGym(w http.ResponseWriter, r *http.Request) {
	var in GymInput
	if err := utils.Decode(r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	account, err := h.service.UpdateGym(r.Context(), tenancy.MustScope(r), in)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"user": account})
}
