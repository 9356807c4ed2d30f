package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vetdesk/vetdesk/internal/telemetry"
)

var (
	// ErrNoCredential is returned when a request carries no bearer header.
	ErrNoCredential = errors.New("no credential")

	// ErrMalformedCredential is returned when the header is present but is
	// not "Bearer <token>" shaped.
	ErrMalformedCredential = errors.New("malformed credential")
)

// CredentialResolver resolves a raw credential to a principal.
type CredentialResolver interface {
	Resolve(ctx context.Context, credential string) (*Principal, error)
}

// Gate is the authentication middleware. It extracts the bearer credential,
// consults the resolution cache, falls back to the resolver, and attaches
// the resulting Identity to the request context. Any failure terminates the
// request here; no handler behind the gate runs unauthenticated.
type Gate struct {
	resolver CredentialResolver
	cache    *Cache
	exempt   *ExemptRoutes
	dev      bool
}

// NewGate creates an authentication gate. In dev mode rejections carry a
// debug object with non-sensitive request metadata; in production they
// never do.
func NewGate(resolver CredentialResolver, cache *Cache, exempt *ExemptRoutes, dev bool) *Gate {
	if exempt == nil {
		exempt = NewExemptRoutes(nil, nil)
	}

	return &Gate{
		resolver: resolver,
		cache:    cache,
		exempt:   exempt,
		dev:      dev,
	}
}

// Middleware returns the HTTP middleware enforcing authentication.
func (g *Gate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Allow-list check happens before any credential work, so
			// exempt routes cost zero lookups.
			if g.exempt.Contains(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			m := telemetry.GetMetrics()

			credential, err := ExtractBearer(r)
			if err != nil {
				switch {
				case errors.Is(err, ErrNoCredential):
					m.AuthRejectionsTotal.Add(r.Context(), 1, metric.WithAttributes(attribute.String("reason", "missing")))
					g.reject(w, r, "authentication required")
				default:
					m.AuthRejectionsTotal.Add(r.Context(), 1, metric.WithAttributes(attribute.String("reason", "malformed")))
					g.reject(w, r, "invalid token format")
				}
				return
			}

			if principal, ok := g.cache.Get(credential); ok {
				m.AuthCacheHitsTotal.Add(r.Context(), 1)
				g.admit(w, r, next, principal)
				return
			}
			m.AuthCacheMissesTotal.Add(r.Context(), 1)

			started := time.Now()
			principal, err := g.resolver.Resolve(r.Context(), credential)
			m.ResolveDuration.Record(r.Context(), float64(time.Since(started).Milliseconds()))

			if err != nil {
				switch {
				case errors.Is(err, ErrUnresolved):
					log.Debug().Str("path", r.URL.Path).Msg("Credential matched no registry")
					m.AuthRejectionsTotal.Add(r.Context(), 1, metric.WithAttributes(attribute.String("reason", "unresolved")))
					g.reject(w, r, "invalid token")
				case errors.Is(err, ErrPrincipalDisabled):
					// Same status and message as unresolved: a caller
					// probing keys must not learn which tenants exist.
					log.Debug().Str("path", r.URL.Path).Msg("Credential belongs to a disabled principal")
					m.AuthRejectionsTotal.Add(r.Context(), 1, metric.WithAttributes(attribute.String("reason", "disabled")))
					g.reject(w, r, "invalid token")
				default:
					// Registry failure is an outage, not a lockout. Log in
					// full, answer generically.
					log.Error().Err(err).Str("path", r.URL.Path).Msg("Credential registry unavailable")
					m.RegistryErrorsTotal.Add(r.Context(), 1)
					writeGateJSON(w, http.StatusInternalServerError, map[string]any{
						"error": "internal error",
					})
				}
				return
			}

			g.cache.Put(credential, principal)
			m.AuthResolutionsTotal.Add(r.Context(), 1, metric.WithAttributes(attribute.String("kind", principal.Kind.String())))

			g.admit(w, r, next, principal)
		})
	}
}

// admit attaches the identity and passes the request on.
func (g *Gate) admit(w http.ResponseWriter, r *http.Request, next http.Handler, principal *Principal) {
	if principal.Kind == KindMasterKey {
		// Privileged, unscoped path; always worth an audit line.
		log.Info().Str("path", r.URL.Path).Str("method", r.Method).Msg("Master key access")
	}

	ctx := WithIdentity(r.Context(), NewIdentity(principal))
	next.ServeHTTP(w, r.WithContext(ctx))
}

// reject writes the uniform 401 response. All authentication failures share
// the status code; only the dev-mode debug object varies.
func (g *Gate) reject(w http.ResponseWriter, r *http.Request, message string) {
	body := map[string]any{
		"error": message,
	}

	if g.dev {
		headers := make([]string, 0, len(r.Header))
		for name := range r.Header {
			headers = append(headers, name)
		}
		body["debug"] = map[string]any{
			"path":    r.URL.Path,
			"method":  r.Method,
			"headers": headers,
		}
	}

	writeGateJSON(w, http.StatusUnauthorized, body)
}

func writeGateJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("Failed to write rejection body")
	}
}

// ExtractBearer pulls the credential out of the Authorization header. It
// tolerates non-canonical header casing from intermediaries that bypass
// net/http canonicalization, and accepts any case for the Bearer scheme.
func ExtractBearer(r *http.Request) (string, error) {
	value := r.Header.Get("Authorization")
	if value == "" {
		// Raw header scan for same-origin diagnostic tooling that sets
		// keys directly on the header map.
		for name, values := range r.Header {
			if strings.EqualFold(name, "Authorization") && len(values) > 0 {
				value = values[0]
				break
			}
		}
	}

	if value == "" {
		return "", ErrNoCredential
	}

	parts := strings.Fields(value)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedCredential
	}

	return parts[1], nil
}
