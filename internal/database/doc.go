// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── books/           # Book CRUD and pagination
//	├── users/           # Local accounts for token authentication
//	└── audit/           # Entity audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type over the shared *gorm.DB:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	book, err := booksRepo.FindByID(ctx, 123)
//
// # Interface Implementations
//
//   - books.Repository: implements http.BookRepository
//   - users.Repository: implements auth.UserStore
//   - audit.Repository: backs audit.Service, which implements http.AuditReader
//
// Compile-time checks live in internal/interfaces.
package database
