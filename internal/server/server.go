package server

import (
	"net/http"
	"time"

	"github.com/vetdesk/vetdesk/internal/auth"
	"github.com/vetdesk/vetdesk/internal/httpx"
	"github.com/vetdesk/vetdesk/internal/store"
)

// DefaultSessionTTL is how long a login session lives unless configured
// otherwise.
const DefaultSessionTTL = 24 * time.Hour

// Registries bundles the credential registries the server operates on. Both
// the memory and postgres implementations satisfy it.
type Registries struct {
	Tenants       store.TenantStore
	Admins        store.AdminStore
	Users         store.UserStore
	AdminSessions store.AdminSessionStore
	UserSessions  store.UserSessionStore
}

// Server hosts the identity API: login lifecycle, whoami, and tenant
// administration. Authentication itself happens in the gate middleware in
// front of the handler; the server trusts the Identity on the request
// context.
type Server struct {
	reg        Registries
	cache      *auth.Cache
	sessionTTL time.Duration
}

// NewServer creates a server over the given registries. cache may be nil
// when no resolution cache is in front of the resolver; a zero sessionTTL
// falls back to DefaultSessionTTL.
func NewServer(reg Registries, cache *auth.Cache, sessionTTL time.Duration) *Server {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	return &Server{
		reg:        reg,
		cache:      cache,
		sessionTTL: sessionTTL,
	}
}

// Handler returns the HTTP handler for the server. Routes under /v1/admin/
// (other than login) require a platform-admin or master-key identity; the
// rest require any authenticated identity, except the allow-listed login
// and health routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer. No registry I/O.
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /v1/auth/login", s.handleUserLogin)
	mux.HandleFunc("POST /v1/admin/login", s.handleAdminLogin)
	mux.HandleFunc("POST /v1/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /v1/whoami", s.handleWhoami)

	mux.HandleFunc("POST /v1/admin/tenants", s.requireAdmin(s.handleCreateTenant))
	mux.HandleFunc("POST /v1/admin/tenants/{id}/rotate-key", s.requireAdmin(s.handleRotateAPIKey))
	mux.HandleFunc("POST /v1/admin/tenants/{id}/status", s.requireAdmin(s.handleSetTenantStatus))

	return mux
}

// ExemptRoutes returns the allow-list entries this server needs in front of
// it: health and the login endpoints, which by definition run before the
// caller has a credential.
func (s *Server) ExemptRoutes() *auth.ExemptRoutes {
	return auth.NewExemptRoutes([]string{
		"/healthz",
		"/v1/auth/login",
		"/v1/admin/login",
	}, nil)
}

// requireAdmin admits platform admins and master-key holders only. Tenant
// administration is a platform surface; tenant-scoped callers never reach
// these handlers.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		if id == nil || (!id.IsPlatformAdmin && !id.IsMasterKey) {
			httpx.WriteError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r)
	}
}
