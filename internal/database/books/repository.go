// Package books provides database operations for the book catalog.
//
// This package implements the BookRepository interface defined in
// internal/http/books.go.
//
// # Interface Implementation
//
//	var _ http.BookRepository = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.FindByID(ctx, 123)
//	if errors.Is(err, books.ErrNotFound) { ... }
package books

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/pagination"
)

// ErrNotFound is returned when no book has the requested id.
var ErrNotFound = errors.New("book not found")

// SortableProperties maps the public sort properties to their columns.
var SortableProperties = map[string]string{
	"id":          "id",
	"title":       "title",
	"description": "description",
}

// DefaultSort keeps pages stable when the caller does not ask for an order.
var DefaultSort = []pagination.Order{{Property: "id", Column: "id", Direction: pagination.Asc}}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindAll returns one page of books in the requested order.
func (r *Repository) FindAll(ctx context.Context, pageable pagination.Pageable) (pagination.Page[entities.Book], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&total).Error; err != nil {
		return pagination.Page[entities.Book]{}, fmt.Errorf("count books: %w", err)
	}

	query := r.db.WithContext(ctx).Limit(pageable.Size).Offset(pageable.Offset())
	for _, order := range pageable.Sort {
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Name: order.Column},
			Desc:   order.Direction == pagination.Desc,
		})
	}

	books := make([]entities.Book, 0, pageable.Size)
	if err := query.Find(&books).Error; err != nil {
		return pagination.Page[entities.Book]{}, fmt.Errorf("list books: %w", err)
	}

	return pagination.Page[entities.Book]{
		Content:       books,
		Number:        pageable.Page,
		Size:          pageable.Size,
		TotalElements: total,
	}, nil
}

// FindByID retrieves a book by its id. Returns ErrNotFound when absent.
func (r *Repository) FindByID(ctx context.Context, id int64) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find book %d: %w", id, err)
	}
	return &book, nil
}

// ExistsByID reports whether a book with the id is stored.
func (r *Repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check book %d: %w", id, err)
	}
	return count > 0, nil
}

// Save inserts a new book (id assigned by the store) or replaces every
// column of an existing one.
func (r *Repository) Save(ctx context.Context, book *entities.Book) (*entities.Book, error) {
	db := r.db.WithContext(ctx)
	if book.IsNew() {
		if err := db.Create(book).Error; err != nil {
			return nil, fmt.Errorf("create book: %w", err)
		}
		return book, nil
	}
	if err := db.Save(book).Error; err != nil {
		return nil, fmt.Errorf("update book %d: %w", book.ID, err)
	}
	return book, nil
}

// DeleteByID hard-deletes the book. Deleting an absent id is a no-op.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&entities.Book{}, id).Error; err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return nil
}

// Count returns the number of stored books.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return count, nil
}
