package auth

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExemptRoutes is the allow-list of paths served without a credential
// (health checks, login endpoints, static assets). It is consulted before
// credential extraction; everything not listed requires a credential.
type ExemptRoutes struct {
	exact    map[string]struct{}
	prefixes []string
}

// NewExemptRoutes builds an allow-list from exact paths and path prefixes.
func NewExemptRoutes(exact []string, prefixes []string) *ExemptRoutes {
	e := &ExemptRoutes{
		exact: make(map[string]struct{}, len(exact)),
	}
	for _, path := range exact {
		e.exact[path] = struct{}{}
	}
	e.prefixes = append(e.prefixes, prefixes...)
	return e
}

type exemptRoutesFile struct {
	Routes   []string `yaml:"routes"`
	Prefixes []string `yaml:"prefixes"`
}

// LoadExemptRoutes reads an allow-list from a YAML file:
//
//	routes:
//	  - /healthz
//	  - /v1/auth/login
//	prefixes:
//	  - /static/
func LoadExemptRoutes(path string) (*ExemptRoutes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exempt routes file: %w", err)
	}

	var file exemptRoutesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse exempt routes file: %w", err)
	}

	return NewExemptRoutes(file.Routes, file.Prefixes), nil
}

// Contains reports whether the path is exempt from authentication.
func (e *ExemptRoutes) Contains(path string) bool {
	if _, ok := e.exact[path]; ok {
		return true
	}
	for _, prefix := range e.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Merge returns a new allow-list containing both lists' entries.
func (e *ExemptRoutes) Merge(other *ExemptRoutes) *ExemptRoutes {
	merged := &ExemptRoutes{
		exact: make(map[string]struct{}, len(e.exact)+len(other.exact)),
	}
	for path := range e.exact {
		merged.exact[path] = struct{}{}
	}
	for path := range other.exact {
		merged.exact[path] = struct{}{}
	}
	merged.prefixes = append(merged.prefixes, e.prefixes...)
	merged.prefixes = append(merged.prefixes, other.prefixes...)
	return merged
}
