package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/macrolog/backend/internal/middleware"
)

// authCookieMaxAge matches the JWT lifetime.
const authCookieMaxAge = int(24 * time.Hour / time.Second)

// currentUserID reads the authenticated user's id set by the auth middleware.
func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet("user_id").(uuid.UUID)
}

// parseIDParam parses the :id path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// parseDateRange reads optional from/to query parameters in RFC 3339 or
// date-only form. A zero time means the bound was not supplied.
func parseDateRange(c *gin.Context) (from, to time.Time, ok bool) {
	from, ok = parseDateParam(c, "from")
	if !ok {
		return
	}
	to, ok = parseDateParam(c, "to")
	return
}

func parseDateParam(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " date"})
	return time.Time{}, false
}

// setAuthCookie stores the session token. The frontend may also send it as
// a bearer header; both are accepted.
func setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, token, authCookieMaxAge, "/", "", false, true)
}

func clearAuthCookie(c *gin.Context) {
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", false, true)
}
