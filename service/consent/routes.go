package consent

import (
	"errors"
	"net/http"

	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/gorilla/mux"
)

// ConsentHandler serves the unauthenticated consent endpoints.
type ConsentHandler struct {
	gateway *Gateway
}

func NewConsentHandler(gateway *Gateway) *ConsentHandler {
	return &ConsentHandler{gateway: gateway}
}

func (h *ConsentHandler) RegisterRoutes(router *mux.Router) {
	publicRouter := router.PathPrefix("/public").Subrouter()

	publicRouter.HandleFunc("/terms/{clientId}", h.GetTerms).Methods("GET")
	publicRouter.HandleFunc("/accept/{clientId}", h.AcceptTerms).Methods("POST")
}

func (h *ConsentHandler) GetTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := h.gateway.GetConsentContext(r.Context(), mux.Vars(r)["clientId"])
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.RespondWithMessage(w, http.StatusNotFound, "Link Expired or Invalid")
			return
		}
		utils.RespondWithError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{
		"gymName":       terms.GymName,
		"clientName":    terms.ClientName,
		"termsAccepted": terms.TermsAccepted,
		"termsText":     terms.TermsText,
	})
}

// AcceptTerms activates the membership. receipt_url is null when the PDF could not be made,
// or while it is still being made, which receipt_pending reports.
func (h *ConsentHandler) AcceptTerms(w http.ResponseWriter, r *http.Request) {
	result, err := h.gateway.AcceptConsent(r.Context(), mux.Vars(r)["clientId"])
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.RespondWithMessage(w, http.StatusNotFound, "Client not found")
			return
		}
		utils.RespondWithError(w, r, err)
		return
	}

	message := "Membership activated"
	if result.Replayed {
		message = "Terms already accepted"
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{
		"receipt_url":     result.ReceiptURL,
		"receipt_pending": result.Pending,
		"message":         message,
	})
}
