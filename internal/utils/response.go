package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ms-station/internal/apperr"
)

type APIResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Data      interface{}       `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

// WriteJSON writes data as a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError maps an application error onto the HTTP status and
// envelope the client sees.
func WriteError(w http.ResponseWriter, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		resp := ErrorResponse("validation failed", ve.Error())
		resp.Fields = ve.Fields
		WriteJSON(w, http.StatusBadRequest, resp)
		return
	}

	var pe *apperr.PermissionError
	if errors.As(err, &pe) {
		status := http.StatusForbidden
		if !pe.Authenticated {
			status = http.StatusUnauthorized
		}
		WriteJSON(w, status, ErrorResponse("permission denied", pe.Error()))
		return
	}

	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		WriteJSON(w, http.StatusNotFound, ErrorResponse("not found", nf.Error()))
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse("internal error", err.Error()))
}
