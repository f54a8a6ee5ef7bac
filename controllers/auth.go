package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/services"
)

type AuthResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Token   string        `json:"token,omitempty"`
	Admin   *models.Admin `json:"admin,omitempty"`
}

func RegisterAdmin(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg services.Registration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			logging.FromContext(r.Context()).WithError(err).Info("Error decoding registration payload")
			WriteError(w, r, models.ValidationError("invalid request payload"))
			return
		}

		admin, err := auth.Register(r.Context(), reg)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		RespondWithJSON(w, http.StatusCreated, AuthResponse{
			Success: true,
			Message: "Admin registered successfully",
			Admin:   admin,
		})
	}
}

func LoginAdmin(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials services.Credentials
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			logging.FromContext(r.Context()).WithError(err).Info("Error decoding login credentials")
			WriteError(w, r, models.ValidationError("invalid request payload"))
			return
		}

		token, admin, err := auth.Login(r.Context(), credentials)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		RespondWithJSON(w, http.StatusOK, AuthResponse{
			Success: true,
			Message: "Login successful",
			Token:   token,
			Admin:   admin,
		})
	}
}

func AdminProfile(auth *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := AccountFromContext(r.Context())
		if !ok {
			WriteError(w, r, models.UnauthorizedError("not authorized"))
			return
		}

		admin, err := auth.Profile(r.Context(), account.ID)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, admin)
	}
}
