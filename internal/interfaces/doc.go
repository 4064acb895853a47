// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookRepository: paged, sorted and single-entity book access (internal/http/books.go)
//   - BookStore: the store decorated by the Redis cache (internal/cache/books.go)
//   - UserStore: local accounts (internal/auth/service.go)
//   - AuditReader: paginated audit events (internal/http/audit.go)
//
// ## Security Interfaces
//
//   - TokenParser: bearer token validation (internal/http/security.go)
//   - Authenticator: credential exchange for a token (internal/http/security.go)
//   - LoginThrottle: failed-login lockout (internal/http/security.go)
//
// ## Observability Interfaces
//
//   - ChangeRecorder: audit trail of successful writes (internal/http/books.go)
//   - OperationRecorder: per-operation counters (internal/http/books.go)
//   - Pinger: health check components (internal/http/health.go)
//
// ## Background Job Interfaces
//
//   - AuditEventCleaner, CleanupRecorder: retention task (internal/tasks/cleanup_audit.go)
//   - AuditCleanupEnqueuer: cron trigger target (internal/scheduler/audit_cleanup.go)
//
// # Adding a New Entity Resource
//
//  1. Add the model in internal/entities/ and register it in database.Migrate.
//
//  2. Create sub-package internal/database/<entity>/ with a Repository
//     exposing FindAll(ctx, pageable), FindByID, ExistsByID, Save and DeleteByID.
//
//  3. Declare the validation schema in internal/validation/.
//
//  4. Create the controller in internal/http/, reusing the problem
//     responders and alert headers, and register routes in router.go.
//
//  5. Add compile-time checks:
//
//     var _ http.AuthorRepository = (*authors.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
