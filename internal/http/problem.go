package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/bookcatalog/internal/validation"
)

// Problem types, following the JHipster problem catalogue.
const (
	problemBaseURL         = "https://www.jhipster.tech/problem"
	ProblemTypeDefault     = "about:blank"
	ProblemTypeWithMessage = problemBaseURL + "/problem-with-message"
	ProblemTypeConstraint  = problemBaseURL + "/constraint-violation"
	problemContentType     = "application/problem+json"
	errValidationMessage   = "error.validation"
	errInternalMessage     = "error.http.500"
)

// Error keys carried by BadRequestAlert problems.
const (
	ErrKeyIDExists   = "idexists"
	ErrKeyIDNull     = "idnull"
	ErrKeyIDInvalid  = "idinvalid"
	ErrKeyIDNotFound = "idnotfound"
)

// Problem is an RFC 7807 body with the JHipster extension members.
type Problem struct {
	Type        string                  `json:"type"`
	Title       string                  `json:"title"`
	Status      int                     `json:"status"`
	Detail      string                  `json:"detail,omitempty"`
	Instance    string                  `json:"instance"`
	Message     string                  `json:"message,omitempty"`
	Params      string                  `json:"params,omitempty"`
	EntityName  string                  `json:"entityName,omitempty"`
	ErrorKey    string                  `json:"errorKey,omitempty"`
	FieldErrors []validation.FieldError `json:"fieldErrors,omitempty"`
}

func writeProblem(c *gin.Context, p Problem) {
	if p.Type == "" {
		p.Type = ProblemTypeDefault
	}
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	p.Instance = c.Request.URL.Path
	c.Header("Content-Type", problemContentType)
	c.AbortWithStatusJSON(p.Status, p)
}

// respondBadRequestAlert sends a 400 tied to an entity and error key, and
// mirrors it in the X-<app>-error header.
func respondBadRequestAlert(c *gin.Context, alerts alertHeaders, entity, key, detail string) {
	alerts.failure(c, entity, key)
	writeProblem(c, Problem{
		Type:       ProblemTypeWithMessage,
		Title:      detail,
		Status:     http.StatusBadRequest,
		Detail:     detail,
		Message:    "error." + key,
		Params:     entity,
		EntityName: entity,
		ErrorKey:   key,
	})
}

// respondValidation sends a 400 listing every failed field constraint.
func respondValidation(c *gin.Context, errs validation.Errors) {
	writeProblem(c, Problem{
		Type:        ProblemTypeConstraint,
		Title:       "Method argument not valid",
		Status:      http.StatusBadRequest,
		Message:     errValidationMessage,
		FieldErrors: errs,
	})
}

// respondBadRequest sends a generic 400, e.g. for unreadable bodies.
func respondBadRequest(c *gin.Context, detail string) {
	writeProblem(c, Problem{
		Status:  http.StatusBadRequest,
		Detail:  detail,
		Message: "error.http.400",
	})
}

// respondNotFound sends a 404 problem.
func respondNotFound(c *gin.Context) {
	writeProblem(c, Problem{
		Status:  http.StatusNotFound,
		Message: "error.http.404",
	})
}

func respondUnauthorized(c *gin.Context, detail string) {
	writeProblem(c, Problem{
		Status:  http.StatusUnauthorized,
		Detail:  detail,
		Message: "error.http.401",
	})
}

func respondForbidden(c *gin.Context, detail string) {
	writeProblem(c, Problem{
		Status:  http.StatusForbidden,
		Detail:  detail,
		Message: "error.http.403",
	})
}

func respondUnsupportedMediaType(c *gin.Context, detail string) {
	writeProblem(c, Problem{
		Status:  http.StatusUnsupportedMediaType,
		Detail:  detail,
		Message: "error.http.415",
	})
}

func respondTooManyRequests(c *gin.Context, detail string) {
	writeProblem(c, Problem{
		Status:  http.StatusTooManyRequests,
		Detail:  detail,
		Message: "error.http.429",
	})
}

// respondInternalError logs the cause and sends a 500 that never echoes it.
func respondInternalError(c *gin.Context, err error, operation string) {
	requestLogger(c).WithError(err).WithField("operation", operation).Error("request failed")
	writeProblem(c, Problem{
		Status:  http.StatusInternalServerError,
		Detail:  "An unexpected error occurred",
		Message: errInternalMessage,
	})
}

// requestLogger returns a logger carrying the request id when one is set.
func requestLogger(c *gin.Context) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if id := requestID(c); id != "" {
		entry = entry.WithField("request_id", id)
	}
	return entry
}
