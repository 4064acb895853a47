package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/metrics"
	"github.com/mrlokans/bookcatalog/internal/pagination"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

const bookEntityName = "book"

// Book operation names used for metrics labels.
const (
	opCreate = "create"
	opUpdate = "update"
	opPatch  = "patch"
	opGet    = "get"
	opList   = "list"
	opDelete = "delete"
)

// BookRepository is the store behind the book resource.
// Implemented by books.Repository and cache.BookRepository.
type BookRepository interface {
	FindAll(ctx context.Context, pageable pagination.Pageable) (pagination.Page[entities.Book], error)
	FindByID(ctx context.Context, id int64) (*entities.Book, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Save(ctx context.Context, book *entities.Book) (*entities.Book, error)
	DeleteByID(ctx context.Context, id int64) error
}

// ChangeRecorder receives successful writes for the audit trail.
type ChangeRecorder interface {
	LogChange(change audit.Change)
}

// OperationRecorder counts resource operations.
type OperationRecorder interface {
	RecordBookOperation(operation, outcome string)
}

// bookPayload is the request body. Pointers distinguish absent from empty.
type bookPayload struct {
	ID          *int64  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (p bookPayload) fields() map[string]*string {
	return map[string]*string{
		"title":       p.Title,
		"description": p.Description,
	}
}

// BookResource serves /api/books.
type BookResource struct {
	repo    BookRepository
	pages   pagination.Parser
	alerts  alertHeaders
	changes ChangeRecorder
	metrics OperationRecorder
}

// NewBookResource creates the controller. changes and ops may be nil.
func NewBookResource(repo BookRepository, pages pagination.Parser, appName string, changes ChangeRecorder, ops OperationRecorder) *BookResource {
	return &BookResource{
		repo:    repo,
		pages:   pages,
		alerts:  alertHeaders{app: appName},
		changes: changes,
		metrics: ops,
	}
}

// CreateBook handles POST /api/books.
func (r *BookResource) CreateBook(c *gin.Context) {
	payload, ok := r.bind(c, opCreate)
	if !ok {
		return
	}
	if errs := validation.Book.Validate(payload.fields()); errs != nil {
		r.record(opCreate, metrics.OutcomeClientError)
		respondValidation(c, errs)
		return
	}
	if payload.ID != nil {
		r.record(opCreate, metrics.OutcomeClientError)
		respondBadRequestAlert(c, r.alerts, bookEntityName, ErrKeyIDExists, "A new book cannot already have an ID")
		return
	}

	saved, err := r.repo.Save(c.Request.Context(), &entities.Book{
		Title:       *payload.Title,
		Description: payload.Description,
	})
	if err != nil {
		r.record(opCreate, metrics.OutcomeError)
		respondInternalError(c, err, "create book")
		return
	}

	r.record(opCreate, metrics.OutcomeSuccess)
	r.audit(c, entities.AuditActionCreated, saved.ID)
	r.alerts.entityCreated(c, bookEntityName, saved.ID)
	c.Header("Location", "/api/books/"+strconv.FormatInt(saved.ID, 10))
	c.JSON(http.StatusCreated, saved)
}

// UpdateBook handles PUT /api/books/:id and replaces every field.
func (r *BookResource) UpdateBook(c *gin.Context) {
	payload, ok := r.bind(c, opUpdate)
	if !ok {
		return
	}
	if errs := validation.Book.Validate(payload.fields()); errs != nil {
		r.record(opUpdate, metrics.OutcomeClientError)
		respondValidation(c, errs)
		return
	}
	id, ok := r.checkIDs(c, opUpdate, payload)
	if !ok {
		return
	}

	saved, err := r.repo.Save(c.Request.Context(), &entities.Book{
		ID:          id,
		Title:       *payload.Title,
		Description: payload.Description,
	})
	if err != nil {
		r.record(opUpdate, metrics.OutcomeError)
		respondInternalError(c, err, "update book")
		return
	}

	r.record(opUpdate, metrics.OutcomeSuccess)
	r.audit(c, entities.AuditActionUpdated, saved.ID)
	r.alerts.entityUpdated(c, bookEntityName, saved.ID)
	c.JSON(http.StatusOK, saved)
}

// PatchBook handles PATCH /api/books/:id with merge-patch semantics: only
// non-null fields in the body overwrite stored values.
//
// The existence check and the fetch are separate store calls without a
// surrounding transaction. A row deleted in between yields 404, and two
// concurrent patches of one row are last-write-wins.
func (r *BookResource) PatchBook(c *gin.Context) {
	switch c.ContentType() {
	case "application/merge-patch+json", "application/json":
	default:
		r.record(opPatch, metrics.OutcomeClientError)
		respondUnsupportedMediaType(c, "Content-Type must be application/merge-patch+json")
		return
	}

	payload, ok := r.bind(c, opPatch)
	if !ok {
		return
	}
	if errs := validation.Book.ValidatePresent(payload.fields()); errs != nil {
		r.record(opPatch, metrics.OutcomeClientError)
		respondValidation(c, errs)
		return
	}
	id, ok := r.checkIDs(c, opPatch, payload)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	existing, err := r.repo.FindByID(ctx, id)
	if errors.Is(err, books.ErrNotFound) {
		r.record(opPatch, metrics.OutcomeNotFound)
		respondNotFound(c)
		return
	}
	if err != nil {
		r.record(opPatch, metrics.OutcomeError)
		respondInternalError(c, err, "fetch book for patch")
		return
	}

	if payload.Title != nil {
		existing.Title = *payload.Title
	}
	if payload.Description != nil {
		existing.Description = payload.Description
	}

	saved, err := r.repo.Save(ctx, existing)
	if err != nil {
		r.record(opPatch, metrics.OutcomeError)
		respondInternalError(c, err, "patch book")
		return
	}

	r.record(opPatch, metrics.OutcomeSuccess)
	r.audit(c, entities.AuditActionPatched, saved.ID)
	r.alerts.entityUpdated(c, bookEntityName, saved.ID)
	c.JSON(http.StatusOK, saved)
}

// GetAllBooks handles GET /api/books?page=&size=&sort=.
func (r *BookResource) GetAllBooks(c *gin.Context) {
	pageable, err := r.pages.Parse(c.Request.URL.Query())
	if err != nil {
		r.record(opList, metrics.OutcomeClientError)
		respondBadRequest(c, err.Error())
		return
	}

	page, err := r.repo.FindAll(c.Request.Context(), pageable)
	if err != nil {
		r.record(opList, metrics.OutcomeError)
		respondInternalError(c, err, "list books")
		return
	}

	content := page.Content
	if content == nil {
		content = []entities.Book{}
	}

	r.record(opList, metrics.OutcomeSuccess)
	c.Header("X-Total-Count", strconv.FormatInt(page.TotalElements, 10))
	c.Header("Link", pagination.LinkHeader(c.Request.URL, page))
	c.JSON(http.StatusOK, content)
}

// GetBook handles GET /api/books/:id.
func (r *BookResource) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		r.record(opGet, metrics.OutcomeClientError)
		return
	}

	book, err := r.repo.FindByID(c.Request.Context(), id)
	if errors.Is(err, books.ErrNotFound) {
		r.record(opGet, metrics.OutcomeNotFound)
		respondNotFound(c)
		return
	}
	if err != nil {
		r.record(opGet, metrics.OutcomeError)
		respondInternalError(c, err, "get book")
		return
	}

	r.record(opGet, metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, book)
}

// DeleteBook handles DELETE /api/books/:id. Absent rows still yield 204.
func (r *BookResource) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		r.record(opDelete, metrics.OutcomeClientError)
		return
	}

	if err := r.repo.DeleteByID(c.Request.Context(), id); err != nil {
		r.record(opDelete, metrics.OutcomeError)
		respondInternalError(c, err, "delete book")
		return
	}

	r.record(opDelete, metrics.OutcomeSuccess)
	r.audit(c, entities.AuditActionDeleted, id)
	r.alerts.entityDeleted(c, bookEntityName, id)
	c.Status(http.StatusNoContent)
}

func (r *BookResource) bind(c *gin.Context, op string) (bookPayload, bool) {
	var payload bookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		r.record(op, metrics.OutcomeClientError)
		respondBadRequest(c, "Malformed JSON request body")
		return bookPayload{}, false
	}
	return payload, true
}

// checkIDs enforces the update/patch id rules: the body id is set, matches
// the path id, and names an existing row.
func (r *BookResource) checkIDs(c *gin.Context, op string, payload bookPayload) (int64, bool) {
	if payload.ID == nil {
		r.record(op, metrics.OutcomeClientError)
		respondBadRequestAlert(c, r.alerts, bookEntityName, ErrKeyIDNull, "Invalid id")
		return 0, false
	}

	pathID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || pathID != *payload.ID {
		r.record(op, metrics.OutcomeClientError)
		respondBadRequestAlert(c, r.alerts, bookEntityName, ErrKeyIDInvalid, "Invalid ID")
		return 0, false
	}

	exists, err := r.repo.ExistsByID(c.Request.Context(), pathID)
	if err != nil {
		r.record(op, metrics.OutcomeError)
		respondInternalError(c, err, "check book exists")
		return 0, false
	}
	if !exists {
		r.record(op, metrics.OutcomeClientError)
		respondBadRequestAlert(c, r.alerts, bookEntityName, ErrKeyIDNotFound, "Entity not found")
		return 0, false
	}
	return pathID, true
}

func (r *BookResource) record(op, outcome string) {
	if r.metrics != nil {
		r.metrics.RecordBookOperation(op, outcome)
	}
}

func (r *BookResource) audit(c *gin.Context, action entities.AuditAction, id int64) {
	if r.changes == nil {
		return
	}
	r.changes.LogChange(audit.Change{
		Principal:  Principal(c),
		Action:     action,
		EntityType: bookEntityName,
		EntityID:   id,
		IPAddress:  c.ClientIP(),
		RequestID:  requestID(c),
	})
}
