package http

import (
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/bookcatalog/internal/metrics"
	"github.com/mrlokans/bookcatalog/internal/pagination"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Books BookRepository
	Pages pagination.Parser

	// Application info, also used as the alert header prefix
	AppName string
	Version string
	Commit  string

	// Authentication. Tokens nil disables bearer checks.
	Tokens        TokenParser
	Authenticator Authenticator
	LoginThrottle LoginThrottle

	// Audit trail (optional)
	Changes  ChangeRecorder
	AuditLog AuditReader

	// Observability
	Metrics      *metrics.Metrics
	Logger       logrus.FieldLogger
	HealthChecks map[string]Pinger

	// Request shaping
	RateLimiter *IPRateLimiter
	ReadOnly    bool
}
