package receipt

import (
	"net/http"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/service/tenancy"
	"github.com/gorilla/mux"
)

type ReceiptHandler struct {
	store  Store
	issuer *Issuer
}

func NewReceiptHandler(store Store, issuer *Issuer) *ReceiptHandler {
	return &ReceiptHandler{store: store, issuer: issuer}
}

func (h *ReceiptHandler) RegisterRoutes(router *mux.Router) {
	receiptRouter := router.PathPrefix("/receipts").Subrouter()

	receiptRouter.HandleFunc("", h.GetReceipts).Methods("GET")
	receiptRouter.HandleFunc("/client/{clientId}", h.GetClientReceipts).Methods("GET")
	receiptRouter.HandleFunc("/{id}", h.GetReceipt).Methods("GET")
	receiptRouter.HandleFunc("/{id}", tenancy.RequireOwnerFunc(h.DeleteReceipt)).Methods("DELETE")
	receiptRouter.HandleFunc("/{id}/artifact", h.GenerateArtifact).Methods("POST")
}

// GetReceipts lists the tenant's receipts, newest first.
func (h *ReceiptHandler) GetReceipts(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)
	page := utils.ParsePage(r)

	receipts, total, err := h.store.ListReceipts(r.Context(), scope.TenantID, page)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	if receipts == nil {
		receipts = []models.Receipt{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{
		"receipts": receipts,
		"meta":     page.Meta(total),
	})
}

func (h *ReceiptHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)

	rcpt, err := h.store.FindReceipt(r.Context(), scope.TenantID, mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"receipt": rcpt})
}

func (h *ReceiptHandler) GetClientReceipts(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)

	receipts, err := h.store.ListClientReceipts(r.Context(), scope.TenantID, mux.Vars(r)["clientId"])
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	if receipts == nil {
		receipts = []models.Receipt{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"receipts": receipts})
}

func (h *ReceiptHandler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)

	if err := h.store.DeleteReceipt(r.Context(), scope.TenantID, mux.Vars(r)["id"]); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"message": "Receipt deleted successfully"})
}

// GenerateArtifact produces the PDF for a receipt that has none yet. Unlike the
// consent and creation flows, a pipeline failure here is reported to the caller.
func (h *ReceiptHandler) GenerateArtifact(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)

	rcpt, err := h.store.FindReceipt(r.Context(), scope.TenantID, mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	url, err := h.issuer.IssueArtifact(r.Context(), rcpt)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{
		"receipt_id":  rcpt.ID,
		"receipt_url": url,
	})
}
