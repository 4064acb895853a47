package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"
)

// Pinger is a dependency whose reachability is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ComponentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}

type HealthController struct {
	components map[string]Pinger
	timeout    time.Duration
}

// NewHealthController checks each named component. Nil entries are skipped.
func NewHealthController(components map[string]Pinger) *HealthController {
	active := make(map[string]Pinger, len(components))
	for name, p := range components {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthController{components: active, timeout: 2 * time.Second}
}

// Status handles GET /management/health.
func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	response := HealthResponse{Status: statusUp, Components: make(map[string]ComponentHealth, len(h.components))}
	for name, p := range h.components {
		if err := p.Ping(ctx); err != nil {
			response.Status = statusDown
			response.Components[name] = ComponentHealth{Status: statusDown, Error: err.Error()}
			continue
		}
		response.Components[name] = ComponentHealth{Status: statusUp}
	}

	code := http.StatusOK
	if response.Status != statusUp {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}

type InfoResponse struct {
	App     string `json:"app"`
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Auth    string `json:"authMode"`
}

type InfoController struct {
	info InfoResponse
}

func NewInfoController(info InfoResponse) *InfoController {
	return &InfoController{info: info}
}

// Info handles GET /management/info.
func (i *InfoController) Info(c *gin.Context) {
	c.JSON(http.StatusOK, i.info)
}
