package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/cache"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/database/users"
	"github.com/mrlokans/bookcatalog/internal/http"
	"github.com/mrlokans/bookcatalog/internal/metrics"
	"github.com/mrlokans/bookcatalog/internal/scheduler"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// BookRepository implementations
var _ http.BookRepository = (*books.Repository)(nil)
var _ http.BookRepository = (*cache.BookRepository)(nil)
var _ cache.BookStore = (*books.Repository)(nil)

// UserStore implementations
var _ auth.UserStore = (*users.Repository)(nil)

// =============================================================================
// Security
// =============================================================================

var _ http.TokenParser = (*auth.TokenProvider)(nil)
var _ http.Authenticator = (*auth.Service)(nil)
var _ http.LoginThrottle = (*auth.LoginLimiter)(nil)

// =============================================================================
// Audit & Observability
// =============================================================================

var _ http.ChangeRecorder = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ http.OperationRecorder = (*metrics.Metrics)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)
var _ http.Pinger = (*cache.BookRepository)(nil)
var _ http.Pinger = (*tasks.Client)(nil)

// =============================================================================
// Background Jobs
// =============================================================================

var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.CleanupRecorder = (*metrics.Metrics)(nil)
var _ scheduler.AuditCleanupEnqueuer = (*tasks.Client)(nil)
var _ scheduler.AuditCleanupEnqueuer = (*tasks.InlineAuditCleanup)(nil)
