package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/models"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ListResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch models.KindOf(err) {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindDuplicate:
		return http.StatusConflict
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// WriteError logs err against the request and writes the client-facing
// message with the matching status.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	logger := logging.FromContext(r.Context()).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed")
	} else {
		logger.Info("Request rejected")
	}
	RespondWithJSON(w, status, ErrorResponse{Message: models.MessageOf(err)})
}
