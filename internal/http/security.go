package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(raw string) (auth.Principal, error)
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Authenticate(ctx context.Context, login, password string, rememberMe bool) (string, *entities.User, error)
}

// LoginThrottle limits failed login attempts per client.
type LoginThrottle interface {
	Allow(ip, login string) (bool, time.Duration)
	RecordFailure(ip, login string) (bool, time.Duration)
	RecordSuccess(ip, login string)
}

// RequireBearer rejects requests without a valid bearer token and stores
// the principal in the context. Paths in public skip the check.
func RequireBearer(tokens TokenParser, public ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(public))
	for _, p := range public {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondUnauthorized(c, "Full authentication is required to access this resource")
			return
		}

		principal, err := tokens.Parse(raw)
		if err != nil {
			detail := "Invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				detail = "Token expired"
			}
			respondUnauthorized(c, detail)
			return
		}

		c.Set(ContextKeyPrincipal, principal.Login)
		c.Set(ContextKeyAuthorities, principal.Authorities)
		c.Next()
	}
}

// RequireAuthority rejects authenticated requests lacking authority. It is
// a no-op when authentication is disabled.
func RequireAuthority(enabled bool, authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		for _, a := range authorities(c) {
			if a == authority {
				c.Next()
				return
			}
		}
		respondForbidden(c, "Access is denied")
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type tokenResponse struct {
	IDToken string `json:"id_token"`
}

// AuthenticateController serves POST /api/authenticate.
type AuthenticateController struct {
	service  Authenticator
	throttle LoginThrottle
}

// NewAuthenticateController creates the login endpoint. throttle may be nil.
func NewAuthenticateController(service Authenticator, throttle LoginThrottle) *AuthenticateController {
	return &AuthenticateController{service: service, throttle: throttle}
}

// Authorize checks credentials and returns a signed token.
func (a *AuthenticateController) Authorize(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Malformed JSON request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondBadRequest(c, "username and password are required")
		return
	}

	ip := c.ClientIP()
	login := strings.ToLower(strings.TrimSpace(req.Username))

	if a.throttle != nil {
		if allowed, retryAfter := a.throttle.Allow(ip, login); !allowed {
			rejectThrottled(c, retryAfter)
			return
		}
	}

	token, _, err := a.service.Authenticate(c.Request.Context(), login, req.Password, req.RememberMe)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			respondInternalError(c, err, "authenticate")
			return
		}
		requestLogger(c).WithField("login", login).WithField("ip", ip).Warn("failed login attempt")
		if a.throttle != nil {
			if locked, retryAfter := a.throttle.RecordFailure(ip, login); locked {
				rejectThrottled(c, retryAfter)
				return
			}
		}
		respondUnauthorized(c, "Bad credentials")
		return
	}

	if a.throttle != nil {
		a.throttle.RecordSuccess(ip, login)
	}
	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusOK, tokenResponse{IDToken: token})
}

func rejectThrottled(c *gin.Context, retryAfter time.Duration) {
	seconds := int(retryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(seconds))
	respondTooManyRequests(c, "Too many failed login attempts")
}
