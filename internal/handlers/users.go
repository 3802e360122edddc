package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/privchat/privchat-backend/internal/models"
	"github.com/privchat/privchat-backend/internal/services"
)

type userService interface {
	Register(ctx context.Context, username, password, email string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	GetUser(ctx context.Context, username string) (*models.User, error)
	AddContact(ctx context.Context, username, contactUsername string) (*models.User, error)
}

type sessionIssuer interface {
	Create(ctx context.Context, username string) (string, error)
}

// UserHandlers exposes the account REST surface: register, login, profile
// lookup, and contact-add. Register and login also issue the bearer token
// the protected endpoints require.
type UserHandlers struct {
	users    userService
	sessions sessionIssuer
}

func NewUserHandlers(users userService, sessions sessionIssuer) *UserHandlers {
	return &UserHandlers{users: users, sessions: sessions}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type addContactRequest struct {
	User       string `json:"user"`
	NewContact string `json:"newContact"`
}

type authResponse struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Contacts []string `json:"contacts"`
}

// Register handles POST /users/register.
func (h *UserHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, services.ErrMissingData.Error())
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.sessions.Create(r.Context(), user.Username)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
		Contacts: user.Contacts,
	})
}

// Login handles POST /users/login.
func (h *UserHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, services.ErrMissingData.Error())
		return
	}

	user, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.sessions.Create(r.Context(), user.Username)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
		Contacts: user.Contacts,
	})
}

// GetUser handles GET /users?username=.
func (h *UserHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// AddContact handles POST /users/addContact.
func (h *UserHandlers) AddContact(w http.ResponseWriter, r *http.Request) {
	var req addContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, services.ErrMissingData.Error())
		return
	}

	user, err := h.users.AddContact(r.Context(), req.User, req.NewContact)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, user)
}
