package dashboard

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/devices"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/internal/studio"
)

// Deps are the components behind the API. Catalog may be nil.
type Deps struct {
	Devices devices.Lister
	Studio  studio.Studio
	Catalog catalog.Catalog
}

type implServer struct {
	cfg      *config.Config
	devices  devices.Lister
	studio   studio.Studio
	catalog  catalog.Catalog
	logger   logger.Logger
	validate *validator.Validate
	app      *fiber.App
}

// New creates the dashboard server and registers its routes
func New(cfg *config.Config, deps Deps, log logger.Logger) Server {
	s := &implServer{
		cfg:      cfg,
		devices:  deps.Devices,
		studio:   deps.Studio,
		catalog:  deps.Catalog,
		logger:   log,
		validate: validator.New(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "lesson-recorder",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()
	return s
}

func (s *implServer) App() *fiber.App {
	return s.app
}

func (s *implServer) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *implServer) Shutdown() error {
	return s.app.Shutdown()
}

// errorHandler renders any error that escaped a handler as a JSON error body
func (s *implServer) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return respondWithError(c, code, err.Error())
}
