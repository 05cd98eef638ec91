package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookieName = "cart_session"
	sessionContextKey = "session_id"
)

// EnsureSession は匿名セッションのCookieを保証する。
// Cookieが無ければUUIDを発行して付与し、ハンドラにはセッションIDを渡す。
func EnsureSession(ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var sessionID string

			cookie, err := c.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				sessionID = cookie.Value
			} else {
				sessionID = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(sessionContextKey, sessionID)
			return next(c)
		}
	}
}

// ハンドラからセッションIDを取り出す
func SessionIDFromContext(c echo.Context) (string, bool) {
	v, ok := c.Get(sessionContextKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
