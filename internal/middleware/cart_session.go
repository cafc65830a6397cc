package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxCartSessionKey = "cart_session" // string
	cartSessionCookie = "cart_session"
	cartSessionTTL    = 7 * 24 * time.Hour
)

// 未ログインのカート操作にもセッションIDを必ず発行する。
// これが無いと匿名の全員が同じカートを共有してしまう。
func CartSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cartSessionCookie)
			if err == nil && cookie.Value != "" {
				c.Set(CtxCartSessionKey, cookie.Value)
				return next(c)
			}

			//初回アクセス：opaqueなIDを発行してcookieで返す
			sid := uuid.NewString()
			c.SetCookie(&http.Cookie{
				Name:     cartSessionCookie,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(cartSessionTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(CtxCartSessionKey, sid)
			return next(c)
		}
	}
}
