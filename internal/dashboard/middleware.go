package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// requestLogger logs one structured line per request, tagged with a request id
func (s *implServer) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()

		c.Locals("requestid", requestID)
		c.Set("X-Request-ID", requestID)

		err := c.Next()

		latency := time.Since(start)
		statusCode := c.Response().StatusCode()

		log := s.logger.With(map[string]interface{}{
			"request_id":  requestID,
			"http_method": c.Method(),
			"uri":         c.OriginalURL(),
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.IP(),
		})

		ctx := c.UserContext()
		switch {
		case err != nil:
			log.Error(ctx, "Request processing failed: %v", err)
		case statusCode >= 500:
			log.Error(ctx, "Request completed with server error")
		case statusCode >= 400:
			log.Warn(ctx, "Request completed with client error")
		default:
			log.Debug(ctx, "Request completed successfully")
		}

		return err
	}
}
