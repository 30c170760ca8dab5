package subscription

import (
	"net/http"

	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/service/tenancy"
	"github.com/gorilla/mux"
)

type SubscriptionHandler struct {
	gate *Gate
}

func NewSubscriptionHandler(gate *Gate) *SubscriptionHandler {
	return &SubscriptionHandler{gate: gate}
}

// RegisterRoutes mounts the subscription routes on a router that already resolves tenancy.
func (h *SubscriptionHandler) RegisterRoutes(router *mux.Router) {
	subscriptionRouter := router.PathPrefix("/subscription").Subrouter()

	subscriptionRouter.HandleFunc("", h.GetSubscription).Methods("GET")
	subscriptionRouter.HandleFunc("", tenancy.RequireOwnerFunc(h.UpdateSubscription)).Methods("PUT")
	subscriptionRouter.HandleFunc("/can-add-client", h.CanAddClient).Methods("GET")
}

// GetSubscription returns the tenant's subscription, creating the free one if missing.
func (h *SubscriptionHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)

	sub, err := h.gate.Get(r.Context(), scope.TenantID)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"subscription": sub})
}

type updateSubscriptionRequest struct {
	Plan         string `json:"plan" validate:"required"`
	BillingCycle string `json:"billingCycle" validate:"omitempty,oneof=monthly yearly"`
}

func (h *SubscriptionHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)

	var req updateSubscriptionRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	sub, err := h.gate.Update(r.Context(), scope.TenantID, req.Plan, req.BillingCycle)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{
		"message":      "Subscription updated successfully",
		"subscription": sub,
	})
}

func (h *SubscriptionHandler) CanAddClient(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)

	decision, err := h.gate.CanAddClient(r.Context(), scope.TenantID)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{
		"allowed":      decision.Allowed,
		"plan":         decision.Plan,
		"currentCount": decision.CurrentCount,
		"limit":        decision.Limit,
	})
}
