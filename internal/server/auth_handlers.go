package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vetdesk/vetdesk/internal/auth"
	"github.com/vetdesk/vetdesk/internal/httpx"
	"github.com/vetdesk/vetdesk/internal/models"
	"github.com/vetdesk/vetdesk/internal/password"
	"github.com/vetdesk/vetdesk/internal/store"
	"github.com/vetdesk/vetdesk/internal/telemetry"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleUserLogin authenticates a tenant employee and issues a session.
// Unknown email, wrong password, and deactivated account all answer with
// the same 401 so the endpoint does not enumerate accounts.
func (s *Server) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.reg.Users.GetByEmail(r.Context(), req.Email)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		rejectLogin(w)
		return
	case err != nil:
		log.Error().Err(err).Msg("User lookup failed during login")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ok, err := password.Verify(req.Password, user.PasswordHash)
	if err != nil || !ok || !user.Active {
		rejectLogin(w)
		return
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		log.Error().Err(err).Msg("Session token generation failed")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	session := &models.UserSession{
		Token:     token,
		UserID:    user.UserID,
		TenantID:  user.TenantID,
		Role:      user.Role,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.sessionTTL),
		IPAddress: httpx.ClientIPFromContext(r.Context()),
		UserAgent: r.UserAgent(),
	}

	if err := s.reg.UserSessions.Create(r.Context(), session); err != nil {
		log.Error().Err(err).Msg("Failed to create user session")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	telemetry.GetMetrics().SessionsCreatedTotal.Add(r.Context(), 1)
	log.Info().
		Str("user_id", user.UserID.String()).
		Str("tenant_id", user.TenantID.String()).
		Msg("User logged in")

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	})
}

// handleAdminLogin authenticates a platform admin and issues a session.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	admin, err := s.reg.Admins.GetByEmail(r.Context(), req.Email)
	switch {
	case errors.Is(err, store.ErrAdminNotFound):
		rejectLogin(w)
		return
	case err != nil:
		log.Error().Err(err).Msg("Admin lookup failed during login")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ok, err := password.Verify(req.Password, admin.PasswordHash)
	if err != nil || !ok || !admin.Active {
		rejectLogin(w)
		return
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		log.Error().Err(err).Msg("Session token generation failed")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	session := &models.AdminSession{
		Token:     token,
		AdminID:   admin.AdminID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.sessionTTL),
		IPAddress: httpx.ClientIPFromContext(r.Context()),
		UserAgent: r.UserAgent(),
	}

	if err := s.reg.AdminSessions.Create(r.Context(), session); err != nil {
		log.Error().Err(err).Msg("Failed to create admin session")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	telemetry.GetMetrics().SessionsCreatedTotal.Add(r.Context(), 1)
	log.Info().Str("admin_id", admin.AdminID.String()).Msg("Admin logged in")

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	})
}

// handleLogout deletes the caller's session and drops it from the
// resolution cache so revocation takes effect on this instance immediately.
// Only session credentials can log out; API-key and master-key callers have
// nothing to revoke.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	token, err := auth.ExtractBearer(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	switch {
	case id.IsPlatformAdmin:
		err = s.reg.AdminSessions.Delete(r.Context(), token)
	case id.IsTenantUser:
		err = s.reg.UserSessions.Delete(r.Context(), token)
	default:
		httpx.WriteError(w, http.StatusBadRequest, "not a session credential")
		return
	}

	if err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		log.Error().Err(err).Msg("Failed to delete session")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if s.cache != nil {
		s.cache.Invalidate(token)
	}
	telemetry.GetMetrics().SessionsDeletedTotal.Add(r.Context(), 1)

	w.WriteHeader(http.StatusNoContent)
}

type whoamiResponse struct {
	TenantID        *string `json:"tenant_id"`
	Role            string  `json:"role,omitempty"`
	AdminID         *string `json:"admin_id,omitempty"`
	UserID          *string `json:"user_id,omitempty"`
	IsPlatformAdmin bool    `json:"is_platform_admin"`
	IsTenantUser    bool    `json:"is_tenant_user"`
	IsMasterKey     bool    `json:"is_master_key"`
}

// handleWhoami echoes the resolved identity back to the caller.
func (s *Server) handleWhoami(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	resp := whoamiResponse{
		Role:            id.Role,
		IsPlatformAdmin: id.IsPlatformAdmin,
		IsTenantUser:    id.IsTenantUser,
		IsMasterKey:     id.IsMasterKey,
	}
	if id.TenantID != nil {
		v := id.TenantID.String()
		resp.TenantID = &v
	}
	if id.AdminID != nil {
		v := id.AdminID.String()
		resp.AdminID = &v
	}
	if id.UserID != nil {
		v := id.UserID.String()
		resp.UserID = &v
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// rejectLogin writes the uniform failed-login response.
func rejectLogin(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
}
