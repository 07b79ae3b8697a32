package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fsm-backend/internal/auth"
	"fsm-backend/internal/bus"
	"fsm-backend/internal/models"
)

// Jobs and inventory listings are capped per request.
const listLimit = 50

// Store is the slice of storage the business handlers need.
type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	ListJobsByOrganization(ctx context.Context, organization string, limit int) ([]models.Job, error)
	ListJobsByCreator(ctx context.Context, createdBy string, limit int) ([]models.Job, error)
	CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	ListInventoryItems(ctx context.Context, organization string, limit int) ([]models.InventoryItem, error)
	Tables(ctx context.Context) ([]string, error)
	Ping() error
}

type Handler struct {
	store     Store
	publisher *bus.Publisher
}

func New(store Store, publisher *bus.Publisher) *Handler {
	return &Handler{store: store, publisher: publisher}
}

func (h *Handler) RegisterRoutes(r chi.Router, authHandler *auth.Handler, authn *auth.Authenticator) {
	r.Get("/", h.Root)
	r.Get("/test", h.Status)

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(authn.Middleware)
		r.Get("/auth/me", authHandler.Me)
		r.Post("/jobs", h.CreateJob)
		r.Get("/jobs", h.ListJobs)
		r.Post("/inventory", h.CreateInventoryItem)
		r.Get("/inventory", h.ListInventory)
	})
}

func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "FSM Backend Running"})
}

// Status reports backend and database health, with the visible tables.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"backend":           "running",
		"database":          "not available",
		"connection_status": "not connected",
		"tables":            []string{},
	}

	if h.store != nil {
		if err := h.store.Ping(); err != nil {
			response["database"] = "error: " + err.Error()
		} else {
			response["database"] = "connected"
			response["connection_status"] = "connected"
			if tables, err := h.store.Tables(r.Context()); err == nil {
				if len(tables) > 10 {
					tables = tables[:10]
				}
				response["tables"] = tables
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type createJobRequest struct {
	Title         string  `json:"title"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	Address       string  `json:"address"`
	ScheduledAt   *string `json:"scheduled_at"`
	Technician    *string `json:"technician"`
}

// CreateJob creates a job for the caller's organization
// @Summary Create job
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body createJobRequest true "New job"
// @Success 200 {object} map[string]string "Job id"
// @Failure 400 {string} string "Invalid request body"
// @Failure 401 {string} string "Could not validate credentials"
// @Security BearerAuth
// @Router /jobs [post]
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" || req.CustomerName == "" || req.CustomerPhone == "" || req.Address == "" {
		http.Error(w, "Title, customer name, phone and address required", http.StatusBadRequest)
		return
	}

	job := &models.Job{
		Title:         req.Title,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Address:       req.Address,
		Status:        models.JobStatusScheduled,
		ScheduledAt:   req.ScheduledAt,
		Technician:    req.Technician,
		CreatedBy:     identity.Email,
		Organization:  identity.Organization,
	}

	if err := h.store.CreateJob(r.Context(), job); err != nil {
		http.Error(w, "Database unavailable", http.StatusInternalServerError)
		return
	}

	if err := h.publisher.JobCreated(job); err != nil {
		log.Printf("WARN Failed to publish job.created event: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": job.ID, "message": "Job created"})
}

// ListJobs lists jobs visible to the caller
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Success 200 {object} map[string]interface{} "Job items"
// @Failure 401 {string} string "Could not validate credentials"
// @Security BearerAuth
// @Router /jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	var (
		jobs []models.Job
		err  error
	)
	// Tenancy scoping: members of an organization see its jobs; users
	// without one only see their own.
	if identity.Organization != nil && *identity.Organization != "" {
		jobs, err = h.store.ListJobsByOrganization(r.Context(), *identity.Organization, listLimit)
	} else {
		jobs, err = h.store.ListJobsByCreator(r.Context(), identity.Email, listLimit)
	}
	if err != nil {
		http.Error(w, "Database unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"items": jobs})
}

type createInventoryItemRequest struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
	Location *string `json:"location"`
}

func (h *Handler) CreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	var req createInventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.SKU == "" || req.Name == "" {
		http.Error(w, "SKU and name required", http.StatusBadRequest)
		return
	}
	if req.Quantity < 0 || req.UnitCost < 0 {
		http.Error(w, "Quantity and unit cost must be non-negative", http.StatusBadRequest)
		return
	}

	item := &models.InventoryItem{
		SKU:          req.SKU,
		Name:         req.Name,
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		Location:     req.Location,
		Organization: identity.Organization,
	}

	if err := h.store.CreateInventoryItem(r.Context(), item); err != nil {
		http.Error(w, "Database unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": item.ID, "message": "Item created"})
}

func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	organization := ""
	if identity.Organization != nil {
		organization = *identity.Organization
	}

	items, err := h.store.ListInventoryItems(r.Context(), organization, listLimit)
	if err != nil {
		http.Error(w, "Database unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"items": items})
}
