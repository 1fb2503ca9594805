package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vamgard/vamgard-backend/internal/auth"
)

// adminKey is the Gin context key holding the verified *auth.Claims.
const adminKey = "adminUser"

// SessionOptions configures AdminSession.
//
// LoginPath, when set, makes unauthenticated browser navigations (Accept
// containing text/html) redirect there with ?returnUrl=<original path>;
// everything else receives a JSON 401.
type SessionOptions struct {
	Sessions   *auth.Sessions
	CookieName string
	LoginPath  string
}

// AdminSession requires a valid admin session cookie. The verified claims are
// available through AdminClaims and AdminUsername.
func AdminSession(opt SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(opt.CookieName)
		if err == nil && tok != "" {
			if claims, perr := opt.Sessions.Parse(tok); perr == nil {
				c.Set(adminKey, claims)
				c.Next()
				return
			}
			LoggerFrom(c).Debug().Msg("admin session rejected")
		}

		if opt.LoginPath != "" && c.Request.Method == http.MethodGet &&
			strings.Contains(c.GetHeader("Accept"), "text/html") {
			c.Redirect(http.StatusFound, opt.LoginPath+"?returnUrl="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		rid, _ := c.Get(requestIDKey)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success":    false,
			"request_id": asString(rid),
			"code":       "unauthorized",
			"message":    "ابتدا وارد حساب مدیریت شوید",
		})
	}
}

// AdminClaims returns the session claims set by AdminSession, or nil.
func AdminClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(adminKey); ok {
		if cl, ok := v.(*auth.Claims); ok {
			return cl
		}
	}
	return nil
}

// AdminUsername returns the signed-in admin's username, or "".
func AdminUsername(c *gin.Context) string {
	if cl := AdminClaims(c); cl != nil {
		return cl.Username
	}
	return ""
}
