package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsm-backend/internal/auth"
	"fsm-backend/internal/handlers"
	"fsm-backend/internal/models"
)

type fakeStore struct {
	jobs    []models.Job
	items   []models.InventoryItem
	pingErr error
}

func (f *fakeStore) CreateJob(_ context.Context, job *models.Job) error {
	job.ID = fmt.Sprintf("job-%d", len(f.jobs)+1)
	job.CreatedAt = time.Now()
	f.jobs = append(f.jobs, *job)
	return nil
}

func (f *fakeStore) ListJobsByOrganization(_ context.Context, organization string, limit int) ([]models.Job, error) {
	out := make([]models.Job, 0)
	for _, job := range f.jobs {
		if job.Organization != nil && *job.Organization == organization {
			out = append(out, job)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) ListJobsByCreator(_ context.Context, createdBy string, limit int) ([]models.Job, error) {
	out := make([]models.Job, 0)
	for _, job := range f.jobs {
		if job.CreatedBy == createdBy {
			out = append(out, job)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) CreateInventoryItem(_ context.Context, item *models.InventoryItem) error {
	item.ID = fmt.Sprintf("item-%d", len(f.items)+1)
	item.CreatedAt = time.Now()
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeStore) ListInventoryItems(_ context.Context, organization string, limit int) ([]models.InventoryItem, error) {
	out := make([]models.InventoryItem, 0)
	for _, item := range f.items {
		switch {
		case organization == "" && item.Organization == nil:
			out = append(out, item)
		case organization != "" && item.Organization != nil && *item.Organization == organization:
			out = append(out, item)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) Tables(context.Context) ([]string, error) {
	return []string{"inventory_items", "jobs", "users"}, nil
}

func (f *fakeStore) Ping() error {
	return f.pingErr
}

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, user *models.User) error {
	user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	copied := *user
	f.users[user.Email] = &copied
	return nil
}

func strPtr(s string) *string { return &s }

type env struct {
	router *chi.Mux
	store  *fakeStore
	tokens *auth.TokenManager
	users  *fakeUsers
}

func newEnv() *env {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	users := &fakeUsers{users: make(map[string]*models.User)}
	store := &fakeStore{}

	h := handlers.New(store, nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r, auth.NewHandler(users, tokens), auth.NewAuthenticator(users, tokens))

	return &env{router: r, store: store, tokens: tokens, users: users}
}

// tokenFor registers the user directly in the fake store and issues a token.
func (e *env) tokenFor(t *testing.T, email string, organization *string) string {
	t.Helper()
	e.users.users[email] = &models.User{
		ID:           "user-" + email,
		Name:         "Test",
		Email:        email,
		Role:         "owner",
		IsActive:     true,
		Organization: organization,
	}
	token, err := e.tokens.Generate(email)
	require.NoError(t, err)
	return token
}

func (e *env) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	e.router.ServeHTTP(rec, req)
	return rec
}

const jobBody = `{"title":"Fix heater","customer_name":"John","customer_phone":"+1-555-0100","address":"1 Main St"}`

func TestRoot(t *testing.T) {
	e := newEnv()

	rec := e.do(t, "GET", "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FSM Backend Running")
}

func TestStatusEndpoint(t *testing.T) {
	e := newEnv()

	rec := e.do(t, "GET", "/test", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "running", status["backend"])
	assert.Equal(t, "connected", status["database"])
	assert.Contains(t, status["tables"], "jobs")
}

func TestCreateJob(t *testing.T) {
	e := newEnv()
	token := e.tokenFor(t, "a@x.com", strPtr("Acme"))

	rec := e.do(t, "POST", "/jobs", token, jobBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["id"])
	assert.Equal(t, "Job created", resp["message"])

	require.Len(t, e.store.jobs, 1)
	job := e.store.jobs[0]
	assert.Equal(t, models.JobStatusScheduled, job.Status)
	assert.Equal(t, "a@x.com", job.CreatedBy)
	require.NotNil(t, job.Organization)
	assert.Equal(t, "Acme", *job.Organization)
}

func TestCreateJobUnauthenticated(t *testing.T) {
	e := newEnv()

	rec := e.do(t, "POST", "/jobs", "", jobBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, e.store.jobs)
}

func TestCreateJobMissingFields(t *testing.T) {
	e := newEnv()
	token := e.tokenFor(t, "a@x.com", nil)

	rec := e.do(t, "POST", "/jobs", token, `{"title":"Fix heater"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListJobsOrganizationScoping(t *testing.T) {
	e := newEnv()
	acme := e.tokenFor(t, "a@acme.com", strPtr("Acme"))
	globex := e.tokenFor(t, "b@globex.com", strPtr("Globex"))
	solo := e.tokenFor(t, "solo@x.com", nil)

	require.Equal(t, http.StatusOK, e.do(t, "POST", "/jobs", acme, jobBody).Code)
	require.Equal(t, http.StatusOK, e.do(t, "POST", "/jobs", globex, jobBody).Code)
	require.Equal(t, http.StatusOK, e.do(t, "POST", "/jobs", solo, jobBody).Code)

	listFor := func(token string) []models.Job {
		rec := e.do(t, "GET", "/jobs", token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Items []models.Job `json:"items"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Items
	}

	acmeJobs := listFor(acme)
	require.Len(t, acmeJobs, 1)
	assert.Equal(t, "a@acme.com", acmeJobs[0].CreatedBy)

	// Another Acme member sees the same job through the organization scope.
	colleague := e.tokenFor(t, "c@acme.com", strPtr("Acme"))
	assert.Len(t, listFor(colleague), 1)

	// A user without an organization only sees jobs they created.
	soloJobs := listFor(solo)
	require.Len(t, soloJobs, 1)
	assert.Equal(t, "solo@x.com", soloJobs[0].CreatedBy)
}

func TestInventory(t *testing.T) {
	e := newEnv()
	token := e.tokenFor(t, "a@x.com", strPtr("Acme"))

	rec := e.do(t, "POST", "/inventory", token, `{"sku":"VLV-01","name":"Valve","quantity":4,"unit_cost":12.5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, "GET", "/inventory", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []models.InventoryItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "VLV-01", resp.Items[0].SKU)
	assert.Equal(t, 4, resp.Items[0].Quantity)
}

func TestInventoryRejectsNegativeQuantity(t *testing.T) {
	e := newEnv()
	token := e.tokenFor(t, "a@x.com", nil)

	rec := e.do(t, "POST", "/inventory", token, `{"sku":"VLV-01","name":"Valve","quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
