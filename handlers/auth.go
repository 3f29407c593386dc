package handlers

import (
	"errors"
	"net/http"

	"taskhub/config"
	"taskhub/database"
	"taskhub/logging"
	"taskhub/middleware"
	"taskhub/models"
	"taskhub/response"
	"taskhub/validation"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	config *config.Config
	users  database.UserStore
	auth   *middleware.Authenticator
}

func NewAuthHandler(cfg *config.Config, users database.UserStore, auth *middleware.Authenticator) *AuthHandler {
	return &AuthHandler{
		config: cfg,
		users:  users,
		auth:   auth,
	}
}

type loginData struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	email := models.NormalizeEmail(req.Email)
	if _, err := h.users.UserByEmail(r.Context(), email); err == nil {
		writeError(w, r, badRequest("User already exists"))
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		writeError(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleMember,
	}
	if err := h.users.CreateUser(r.Context(), &user); err != nil {
		writeError(w, r, mapStoreError(err, "", "User already exists"))
		return
	}

	logging.Logger.WithField("user_id", user.ID).Info("User registered")
	response.Created(w, "User registered successfully", user.Public())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.UserByEmail(r.Context(), models.NormalizeEmail(req.Email))
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, r, unauthorized("Invalid email or password"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, r, unauthorized("Invalid email or password"))
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, "Login successful", loginData{Token: token, User: user.Public()})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	response.OK(w, "", user.Public())
}

// UpdateRole changes another user's role. Owners cannot change their own
// role, so at least one owner always remains.
func (h *AuthHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	current := middleware.GetUserFromContext(r.Context())
	if current != nil && current.ID == id {
		writeError(w, r, badRequest("You cannot change your own role"))
		return
	}

	user, err := h.users.UpdateUserRole(r.Context(), id, models.Role(req.Role))
	if err != nil {
		writeError(w, r, mapStoreError(err, "User not found", ""))
		return
	}

	logging.Logger.WithField("user_id", user.ID).WithField("role", user.Role).Info("User role updated")
	response.OK(w, "User role updated successfully", user.Public())
}
