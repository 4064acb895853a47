package http

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Context keys set by middleware.
const (
	ContextKeyRequestID   = "request_id"
	ContextKeyPrincipal   = "auth_principal"
	ContextKeyAuthorities = "auth_authorities"
)

const anonymousPrincipal = "anonymousUser"

// alertHeaders writes the X-<app>-alert / -error / -params response headers
// clients use to show notifications.
type alertHeaders struct {
	app string
}

func (a alertHeaders) alert(c *gin.Context, message, param string) {
	c.Header("X-"+a.app+"-alert", message)
	c.Header("X-"+a.app+"-params", url.QueryEscape(param))
}

func (a alertHeaders) entityCreated(c *gin.Context, entity string, id int64) {
	a.alert(c, a.app+"."+entity+".created", strconv.FormatInt(id, 10))
}

func (a alertHeaders) entityUpdated(c *gin.Context, entity string, id int64) {
	a.alert(c, a.app+"."+entity+".updated", strconv.FormatInt(id, 10))
}

func (a alertHeaders) entityDeleted(c *gin.Context, entity string, id int64) {
	a.alert(c, a.app+"."+entity+".deleted", strconv.FormatInt(id, 10))
}

func (a alertHeaders) failure(c *gin.Context, entity, key string) {
	c.Header("X-"+a.app+"-error", "error."+key)
	c.Header("X-"+a.app+"-params", entity)
}

// parseIDParam extracts an int64 path parameter.
// Responds with 400 and returns false when it is not a number. Non-positive
// ids are passed through and simply never match a stored book.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// Principal returns the authenticated login, or "anonymousUser".
func Principal(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyPrincipal); ok {
		if login, ok := v.(string); ok && login != "" {
			return login
		}
	}
	return anonymousPrincipal
}

func authorities(c *gin.Context) []string {
	if v, ok := c.Get(ContextKeyAuthorities); ok {
		if list, ok := v.([]string); ok {
			return list
		}
	}
	return nil
}

func requestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
