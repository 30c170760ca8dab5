package utils

import (
	"encoding/json"
	"net/http"

	"github.com/KAsare1/Gymhub-server/logger"
	"go.uber.org/zap"
)

// Envelope is the body of every JSON response: {"success": bool, ...fields}.
type Envelope map[string]interface{}

// RespondWithJSON writes payload with success=true merged in.
func RespondWithJSON(w http.ResponseWriter, code int, payload Envelope) {
	body := Envelope{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, code, body)
}

// RespondWithError writes {"success": false, "error": ...} with the status derived from err.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
	}
	writeJSON(w, code, Envelope{"success": false, "error": PublicMessage(err)})
}

// RespondWithErrorDetails is RespondWithError with extra fields merged into the body.
func RespondWithErrorDetails(w http.ResponseWriter, r *http.Request, err error, details Envelope) {
	body := Envelope{}
	for k, v := range details {
		body[k] = v
	}
	body["success"] = false
	body["error"] = PublicMessage(err)
	writeJSON(w, StatusFor(err), body)
}

// RespondWithMessage writes a plain error message with an explicit status.
func RespondWithMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, Envelope{"success": false, "error": message})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
