package http

import (
	"github.com/nats-io/nats.go"

	"github.com/jobbmapper/jobbmapper-api/internal/adapters/valkey"
	"github.com/jobbmapper/jobbmapper-api/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. NATS and Cache
// are optional.
type Dependencies struct {
	Search *usecases.SearchService
	NATS   *nats.Conn
	Cache  *valkey.Cache

	// CORSOrigins lists the origins allowed to call /get-cities-in-view.
	// Empty disables CORS.
	CORSOrigins string

	// DocsPath locates openapi.yaml; defaults to api/openapi.yaml.
	DocsPath string
	Version  string
}
