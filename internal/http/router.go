package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

const authenticatePath = "/api/authenticate"

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	authEnabled := cfg.Tokens != nil

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(logger))
	router.Use(SecurityHeaders())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}

	router.NoRoute(respondNotFound)
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		writeProblem(c, Problem{Status: http.StatusMethodNotAllowed, Message: "error.http.405"})
	})

	api := router.Group("/api")
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware())
	}
	api.Use(ReadOnly(cfg.ReadOnly, authenticatePath))
	if authEnabled {
		api.Use(RequireBearer(cfg.Tokens, authenticatePath))
		if cfg.Authenticator != nil {
			login := NewAuthenticateController(cfg.Authenticator, cfg.LoginThrottle)
			api.POST("/authenticate", login.Authorize)
		}
	}

	var ops OperationRecorder
	if cfg.Metrics != nil {
		ops = cfg.Metrics
	}
	resource := NewBookResource(cfg.Books, cfg.Pages, cfg.AppName, cfg.Changes, ops)
	api.POST("/books", resource.CreateBook)
	api.PUT("/books/:id", resource.UpdateBook)
	api.PATCH("/books/:id", resource.PatchBook)
	api.GET("/books", resource.GetAllBooks)
	api.GET("/books/:id", resource.GetBook)
	api.DELETE("/books/:id", RequireAuthority(authEnabled, entities.AuthorityAdmin), resource.DeleteBook)

	management := router.Group("/management")
	health := NewHealthController(cfg.HealthChecks)
	management.GET("/health", health.Status)

	info := NewInfoController(InfoResponse{
		App:     cfg.AppName,
		Version: cfg.Version,
		Commit:  cfg.Commit,
		Auth:    authMode(authEnabled),
	})
	management.GET("/info", info.Info)

	if cfg.Metrics != nil {
		management.GET("/prometheus", gin.WrapH(cfg.Metrics.Handler()))
	}

	if cfg.AuditLog != nil {
		audits := NewAuditController(cfg.AuditLog, cfg.Pages)
		protected := []gin.HandlerFunc{}
		if authEnabled {
			protected = append(protected, RequireBearer(cfg.Tokens), RequireAuthority(true, entities.AuthorityAdmin))
		}
		management.GET("/audits", append(protected, audits.GetAuditEvents)...)
	}

	return router
}

func authMode(enabled bool) string {
	if enabled {
		return "jwt"
	}
	return "none"
}
