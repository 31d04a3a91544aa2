package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/auth"
	"github.com/cuidarbem/cuidarbem-api/controllers"
	"github.com/cuidarbem/cuidarbem-api/middleware"
	"github.com/cuidarbem/cuidarbem-api/notify"
	"github.com/cuidarbem/cuidarbem-api/repository"
	"github.com/cuidarbem/cuidarbem-api/routes"
	"github.com/cuidarbem/cuidarbem-api/services"
	"github.com/cuidarbem/cuidarbem-api/storage"
)

const bodyLimit = 10 << 20

// UploadsPrefix is the URL prefix of documents kept on local disk.
const UploadsPrefix = "/uploads"

// Deps are the collaborators the HTTP server is assembled from.
type Deps struct {
	Store       repository.Store
	Tokens      *auth.TokenIssuer
	Revocations auth.RevocationStore
	Notifier    notify.Notifier
	Documents   storage.DocumentStore
	Location    *time.Location
	Log         *zap.Logger

	CORSOrigins string
	// UploadDir holds disk-stored documents, served under /uploads to
	// their owner when set.
	UploadDir string
}

// Services exposes the services so background jobs share them with the API.
type Services struct {
	Auth         *services.AuthService
	Offers       *services.OfferService
	Appointments *services.AppointmentService
	Requests     *services.ServiceRequestService
	Notes        *services.MedicalNoteService
}

func NewServices(d Deps) *Services {
	return &Services{
		Auth:         services.NewAuthService(d.Store, d.Tokens, d.Revocations, d.Documents, d.Log),
		Offers:       services.NewOfferService(d.Store, d.Location, d.Log),
		Appointments: services.NewAppointmentService(d.Store, d.Notifier, d.Location, d.Log),
		Requests:     services.NewServiceRequestService(d.Store, d.Log),
		Notes:        services.NewMedicalNoteService(d.Store, d.Log),
	}
}

// New builds the fiber app with middleware and every route mounted.
func New(d Deps, svc *Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "cuidarbem-api",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler(d.Log),
	})

	origins := d.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))
	app.Use(middleware.Logger(d.Log))

	handlers := routes.Handlers{
		Auth:         controllers.NewAuthController(svc.Auth, d.Log),
		Services:     controllers.NewServiceController(svc.Offers, svc.Requests, d.Log),
		Appointments: controllers.NewAppointmentController(svc.Appointments, d.Log),
		Notes:        controllers.NewNoteController(svc.Notes, d.Log),
	}
	if d.UploadDir != "" {
		handlers.Documents = controllers.NewDocumentController(svc.Auth, d.UploadDir, UploadsPrefix, d.Log)
	}
	routes.Setup(app, handlers, middleware.Protected(d.Tokens, d.Revocations, d.Log))

	return app
}

// errorHandler keeps fiber's own errors (405, 413, malformed requests) in the
// API's JSON shape and hides everything else behind a 500.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
