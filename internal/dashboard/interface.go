package dashboard

import "github.com/gofiber/fiber/v2"

// Server is the browser dashboard: an HTML page over a local JSON API.
type Server interface {
	// App exposes the fiber application, mainly for tests.
	App() *fiber.App
	Listen(addr string) error
	Shutdown() error
}
