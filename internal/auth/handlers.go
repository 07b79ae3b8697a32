package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"fsm-backend/internal/models"
	"fsm-backend/internal/storage"
)

type Handler struct {
	users  UserStore
	tokens *TokenManager
}

func NewHandler(users UserStore, tokens *TokenManager) *Handler {
	return &Handler{users: users, tokens: tokens}
}

type registerRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Organization *string `json:"organization"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a new user account
// @Summary Register user
// @Description Creates a user with a bcrypt-hashed password, role defaults to owner
// @Tags auth
// @Accept json
// @Produce json
// @Param user body registerRequest true "New user"
// @Success 200 {object} models.PublicUser "Public user record"
// @Failure 400 {string} string "Invalid request body or email already registered"
// @Failure 500 {string} string "Database unavailable"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Name, email and password required", http.StatusBadRequest)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         "owner",
		IsActive:     true,
		Organization: req.Organization,
	}

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			http.Error(w, "Email already registered", http.StatusBadRequest)
			return
		}
		http.Error(w, "Database unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.Public())
}

// Login authenticates a user and returns a bearer token
// @Summary User login
// @Description Verifies form credentials and returns a signed access token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} tokenResponse "Access token"
// @Failure 400 {string} string "Incorrect email or password"
// @Failure 500 {string} string "Database unavailable"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		http.Error(w, "Username and password required", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), username)
	if err != nil {
		http.Error(w, "Database unavailable", http.StatusInternalServerError)
		return
	}

	// Unknown email and wrong password collapse into one message so a
	// caller cannot probe which addresses exist.
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		http.Error(w, "Incorrect email or password", http.StatusBadRequest)
		return
	}

	token, err := h.tokens.Generate(user.Email)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the current authenticated user
// @Summary Get current user
// @Description Returns the identity resolved from the bearer token
// @Tags auth
// @Produce json
// @Success 200 {object} models.PublicUser "Public user record"
// @Failure 401 {string} string "Could not validate credentials"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(identity)
}
