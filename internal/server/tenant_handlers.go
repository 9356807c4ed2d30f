package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vetdesk/vetdesk/internal/auth"
	"github.com/vetdesk/vetdesk/internal/httpx"
	"github.com/vetdesk/vetdesk/internal/models"
	"github.com/vetdesk/vetdesk/internal/store"
)

type createTenantRequest struct {
	Name string `json:"name"`
}

type tenantResponse struct {
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	APIKey    string    `json:"api_key,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// handleCreateTenant provisions a tenant with a fresh API key. The key is
// returned once, here; it is never listed afterwards.
func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	tenantID, err := uuid.NewV7()
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	apiKey, err := auth.NewAPIKey()
	if err != nil {
		log.Error().Err(err).Msg("API key generation failed")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	tenant := &models.Tenant{
		TenantID:  tenantID,
		Name:      req.Name,
		APIKey:    apiKey,
		Status:    models.TenantStatusActive,
		CreatedAt: time.Now(),
	}

	if err := s.reg.Tenants.Create(r.Context(), tenant); err != nil {
		if errors.Is(err, store.ErrTenantAlreadyExists) {
			httpx.WriteError(w, http.StatusConflict, "tenant already exists")
			return
		}
		log.Error().Err(err).Msg("Failed to create tenant")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("name", req.Name).
		Msg("Tenant created")

	httpx.WriteJSON(w, http.StatusCreated, tenantResponse{
		TenantID:  tenantID.String(),
		Name:      tenant.Name,
		APIKey:    apiKey,
		Status:    string(tenant.Status),
		CreatedAt: tenant.CreatedAt,
	})
}

type rotateKeyResponse struct {
	TenantID string `json:"tenant_id"`
	APIKey   string `json:"api_key"`
}

// handleRotateAPIKey replaces a tenant's API key. The old key stops
// resolving immediately on this instance; other instances converge within
// the cache TTL.
func (s *Server) handleRotateAPIKey(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := s.tenantIDFromPath(w, r)
	if !ok {
		return
	}

	tenant, err := s.reg.Tenants.Get(r.Context(), tenantID)
	if err != nil {
		s.writeTenantError(w, err)
		return
	}

	apiKey, err := auth.NewAPIKey()
	if err != nil {
		log.Error().Err(err).Msg("API key generation failed")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.reg.Tenants.UpdateAPIKey(r.Context(), tenantID, apiKey); err != nil {
		s.writeTenantError(w, err)
		return
	}

	if s.cache != nil {
		s.cache.Invalidate(tenant.APIKey)
	}

	log.Info().Str("tenant_id", tenantID.String()).Msg("Tenant API key rotated")

	httpx.WriteJSON(w, http.StatusOK, rotateKeyResponse{
		TenantID: tenantID.String(),
		APIKey:   apiKey,
	})
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// handleSetTenantStatus activates or deactivates a tenant. Deactivation
// also drops the tenant's API key from the resolution cache so the change
// bites locally without waiting out the TTL.
func (s *Server) handleSetTenantStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := s.tenantIDFromPath(w, r)
	if !ok {
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "status is required")
		return
	}

	status := models.TenantStatus(req.Status)
	if status != models.TenantStatusActive && status != models.TenantStatusInactive {
		httpx.WriteError(w, http.StatusBadRequest, "status must be active or inactive")
		return
	}

	tenant, err := s.reg.Tenants.Get(r.Context(), tenantID)
	if err != nil {
		s.writeTenantError(w, err)
		return
	}

	if err := s.reg.Tenants.SetStatus(r.Context(), tenantID, status); err != nil {
		s.writeTenantError(w, err)
		return
	}

	if status == models.TenantStatusInactive && s.cache != nil {
		s.cache.Invalidate(tenant.APIKey)
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("status", string(status)).
		Msg("Tenant status changed")

	httpx.WriteJSON(w, http.StatusOK, tenantResponse{
		TenantID:  tenantID.String(),
		Name:      tenant.Name,
		Status:    string(status),
		CreatedAt: tenant.CreatedAt,
	})
}

func (s *Server) tenantIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	tenantID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid tenant id")
		return uuid.Nil, false
	}
	return tenantID, true
}

func (s *Server) writeTenantError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrTenantNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "tenant not found")
		return
	}
	log.Error().Err(err).Msg("Tenant registry error")
	httpx.WriteError(w, http.StatusInternalServerError, "internal error")
}
