package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/services"
)

type UserAuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

type UsersResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Count   int           `json:"count"`
	Users   []models.User `json:"users"`
}

func RegisterUser(users *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg services.Registration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			logging.FromContext(r.Context()).WithError(err).Info("Error decoding user registration")
			WriteError(w, r, models.ValidationError("invalid request payload"))
			return
		}

		user, err := users.Register(r.Context(), reg)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusCreated, UserAuthResponse{
			Success: true,
			Message: "User registered successfully",
			User:    user,
		})
	}
}

func LoginUser(users *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials services.Credentials
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			logging.FromContext(r.Context()).WithError(err).Info("Error decoding user credentials")
			WriteError(w, r, models.ValidationError("invalid request payload"))
			return
		}

		token, user, err := users.Login(r.Context(), credentials)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, UserAuthResponse{
			Success: true,
			Message: "Login successful",
			Token:   token,
			User:    user,
		})
	}
}

// ListUsers serves the admin panel client list.
func ListUsers(users *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.List(r.Context())
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, UsersResponse{
			Success: true,
			Message: "All users fetched successfully",
			Count:   len(list),
			Users:   list,
		})
	}
}
