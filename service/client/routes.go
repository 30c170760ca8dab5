package client

import (
	"io"
	"net/http"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/service/tenancy"
	"github.com/KAsare1/Gymhub-server/store"
	"github.com/gorilla/mux"
)

type ClientHandler struct {
	manager *Manager
}

func NewClientHandler(manager *Manager) *ClientHandler {
	return &ClientHandler{manager: manager}
}

func (h *ClientHandler) RegisterRoutes(router *mux.Router) {
	clientRouter := router.PathPrefix("/clients").Subrouter()

	clientRouter.HandleFunc("", h.GetClients).Methods("GET")
	clientRouter.HandleFunc("", h.AddClient).Methods("POST")
	clientRouter.HandleFunc("/stats", h.GetStats).Methods("GET")
	clientRouter.HandleFunc("/{id}", h.GetClient).Methods("GET")
	clientRouter.HandleFunc("/{id}", h.UpdateClient).Methods("PUT")
	clientRouter.HandleFunc("/{id}", h.DeleteClient).Methods("DELETE")
	clientRouter.HandleFunc("/{id}/renew", h.RenewMembership).Methods("POST")
	clientRouter.HandleFunc("/{id}/photos", h.UploadPhoto).Methods("POST")
}

// GetClients lists clients with optional search, status and pagination.
func (h *ClientHandler) GetClients(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)
	query := r.URL.Query()
	page := utils.ParsePage(r)

	clients, total, err := h.manager.List(r.Context(), scope, store.ClientFilter{
		Search: query.Get("search"),
		Status: query.Get("status"),
		Page:   page,
	})
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{
		"clients": clients,
		"meta":    page.Meta(total),
	})
}

func (h *ClientHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.Stats(r.Context(), tenancy.MustScope(r))
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"stats": stats})
}

func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.manager.Get(r.Context(), tenancy.MustScope(r), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"client": c})
}

// AddClient admits a client. Over the plan limit it answers 403 with the current usage.
func (h *ClientHandler) AddClient(w http.ResponseWriter, r *http.Request) {
	var in AddClientInput
	if err := utils.Decode(r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	result, err := h.manager.AddClient(r.Context(), tenancy.MustScope(r), in)
	if err != nil {
		if decision, ok := IsQuotaError(err); ok {
			utils.RespondWithErrorDetails(w, r, err, utils.Envelope{
				"currentCount": decision.CurrentCount,
				"limit":        decision.Limit,
				"plan":         decision.Plan,
			})
			return
		}
		utils.RespondWithError(w, r, err)
		return
	}

	body := utils.Envelope{
		"client":      result.Client,
		"receipt":     result.Receipt,
		"receipt_url": result.Receipt.ReceiptURL,
	}
	if result.ConsentLink != "" {
		body["consent_link"] = result.ConsentLink
		body["whatsapp_message"] = result.WhatsAppMessage
	}
	utils.RespondWithJSON(w, http.StatusCreated, body)
}

func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var in UpdateClientInput
	if err := utils.Decode(r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	c, err := h.manager.Update(r.Context(), tenancy.MustScope(r), mux.Vars(r)["id"], in)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"client": c})
}

func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.Context(), tenancy.MustScope(r), mux.Vars(r)["id"]); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"message": "Client deleted successfully"})
}

func (h *ClientHandler) RenewMembership(w http.ResponseWriter, r *http.Request) {
	var in RenewInput
	if err := utils.Decode(r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	c, rcpt, err := h.manager.Renew(r.Context(), tenancy.MustScope(r), mux.Vars(r)["id"], in)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{
		"client":      c,
		"receipt":     rcpt,
		"receipt_url": rcpt.ReceiptURL,
	})
}

// UploadPhoto accepts a multipart "photo" file and attaches it to the client.
func (h *ClientHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, utils.MaxImageSize+(1<<20))
	if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	contentType, err := utils.ImageContentType(header)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	c, err := h.manager.UploadPhoto(r.Context(), tenancy.MustScope(r), mux.Vars(r)["id"], data, contentType)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"client": c})
}
