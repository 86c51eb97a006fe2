package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/models"
	"github.com/EaziLuizi/raceradar/internal/service"
)

const (
	codeNotFound           = "not_found"
	codeInvalidParameter   = "invalid_parameter"
	codeCatalogUnavailable = "catalog_unavailable"
	codeCanceled           = "request_canceled"
	codeInternal           = "internal_error"
)

// ErrorBody is the payload of every non-2xx response
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: chimw.GetReqID(r.Context()),
	}})
}

// writeServiceError maps finder errors onto HTTP statuses
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, r, http.StatusNotFound, codeNotFound, "race not found")
	case errors.Is(err, service.ErrCatalogUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, codeCatalogUnavailable,
			"the race catalog is temporarily unavailable, please try again")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, codeCanceled, "request canceled")
	default:
		s.logger.WithFields(logrus.Fields{
			"request_id": chimw.GetReqID(r.Context()),
			"error":      err.Error(),
		}).Error("Unhandled API error")
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
