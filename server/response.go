package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nanhai/arena/errors"
)

// envelope is the JSON wrapper every API response uses
type envelope struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// writeSuccess wraps data in the standard envelope with code 200
func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeEnvelope(w, http.StatusOK, "success", data)
}

// writeFailure maps a domain error onto the envelope: not-found errors
// become 404, invalid requests 400, everything else 500.
func writeFailure(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFoundError(err):
		status = http.StatusNotFound
	case errors.IsInvalidRequestError(err):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError && logger != nil {
		logger.Errorw("Request failed", "error", err)
	}

	writeEnvelope(w, status, err.Error(), nil)
}

func writeEnvelope(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(envelope{
		Code:      code,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

// requireMethod checks if the request method matches the expected method
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeEnvelope(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return false
	}
	return true
}
