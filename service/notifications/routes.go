package notification

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/service/tenancy"
	"github.com/gorilla/mux"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

// NotificationHandler manages the actor's push devices and notification history.
type NotificationHandler struct {
	store DeviceStore
}

func NewNotificationHandler(store DeviceStore) *NotificationHandler {
	return &NotificationHandler{store: store}
}

func (h *NotificationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/devices", h.RegisterDevice).Methods("POST")
	router.HandleFunc("/devices", h.GetDevices).Methods("GET")
	router.HandleFunc("/devices/{id:[0-9]+}", h.DeleteDevice).Methods("DELETE")
	router.HandleFunc("/notifications/history", h.GetNotificationHistory).Methods("GET")
}

type registerDeviceRequest struct {
	Token      string `json:"token" validate:"required"`
	DeviceType string `json:"deviceType" validate:"omitempty,max=50"`
	DeviceName string `json:"deviceName" validate:"omitempty,max=100"`
}

// RegisterDevice registers the actor's device for push notifications.
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)

	var req registerDeviceRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	if _, err := expo.NewExponentPushToken(req.Token); err != nil {
		utils.RespondWithError(w, r, fmt.Errorf("%w: invalid Expo push token format", utils.ErrValidation))
		return
	}

	device, err := h.store.SaveDevice(r.Context(), &models.Device{
		Token:      req.Token,
		UserID:     scope.Actor.ID,
		DeviceType: req.DeviceType,
		DeviceName: req.DeviceName,
	})
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{
		"message": "Device registered successfully",
		"device":  device,
	})
}

func (h *NotificationHandler) GetDevices(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)

	devices, err := h.store.ListDevices(r.Context(), scope.Actor.ID)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"devices": devices})
}

func (h *NotificationHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)

	deviceID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, r, fmt.Errorf("%w: invalid device ID", utils.ErrValidation))
		return
	}
	if err := h.store.DeleteDevice(r.Context(), scope.Actor.ID, uint(deviceID)); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"message": "Device deleted successfully"})
}

// GetNotificationHistory lists the push notifications sent to the actor, newest first.
func (h *NotificationHandler) GetNotificationHistory(w http.ResponseWriter, r *http.Request) {
	scope := tenancy.MustScope(r)
	page := utils.ParsePage(r)

	history, total, err := h.store.ListNotifications(r.Context(), scope.Actor.ID, page.Size, page.Offset())
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	if history == nil {
		history = []models.NotificationHistory{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{
		"history": history,
		"meta":    page.Meta(total),
	})
}
