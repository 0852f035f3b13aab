package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"mangareader/pkg/logger"
)

// RequestLogger writes one structured line per request.
func RequestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.RequestID != "" {
				fields = append(fields, zap.String("request_id", v.RequestID))
			}
			if uid := UID(c); uid != "" {
				fields = append(fields, zap.String("uid", uid))
			}

			switch {
			case v.Status >= 500:
				logger.L().Error("request", append(fields, zap.Error(v.Error))...)
			case v.Status >= 400:
				logger.L().Warn("request", fields...)
			default:
				logger.L().Info("request", fields...)
			}
			return nil
		},
	})
}
