package server

import (
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// New はecho本体を作る。ルート登録は各handlerのRegisterRoutesで行う。
func New(lg *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(requestLogger(lg))

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}

// 1リクエスト1行の構造化ログ
func requestLogger(lg *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			lg.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.String("remote_ip", v.RemoteIP),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	})
}
