package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/pagination"
)

// AuditReader lists recorded entity changes.
type AuditReader interface {
	GetEvents(ctx context.Context, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	reader AuditReader
	pages  pagination.Parser
}

func NewAuditController(reader AuditReader, pages pagination.Parser) *AuditController {
	return &AuditController{reader: reader, pages: pages}
}

// GetAuditEvents handles GET /management/audits?page=&size=, newest first.
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	query := c.Request.URL.Query()
	// Audit events have a fixed order
	query.Del("sort")

	pageable, err := ac.pages.Parse(query)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	events, total, err := ac.reader.GetEvents(c.Request.Context(), pageable.Size, pageable.Offset())
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	page := pagination.Page[entities.AuditEvent]{
		Content:       events,
		Number:        pageable.Page,
		Size:          pageable.Size,
		TotalElements: total,
	}
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.Header("Link", pagination.LinkHeader(c.Request.URL, page))
	c.JSON(http.StatusOK, events)
}
