package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/middleware"
	"github.com/cuidarbem/cuidarbem-api/services"
)

type AuthController struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthController(auth *services.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{auth: auth, log: log}
}

// Register accepts JSON, or multipart form data when a doctor attaches
// documents.
func (ctl *AuthController) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cannot parse request body")
	}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return badRequest(c, "cannot parse multipart form")
		}
		for _, fh := range form.File["documents"] {
			f, err := fh.Open()
			if err != nil {
				return badRequest(c, "cannot read uploaded document")
			}
			defer f.Close()
			in.Uploads = append(in.Uploads, services.Upload{Filename: fh.Filename, Content: f})
		}
	}

	user, err := ctl.auth.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "user registered successfully",
		"user":    user,
	})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var in loginInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cannot parse request body")
	}

	result, err := ctl.auth.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(result)
}

func (ctl *AuthController) Logout(c *fiber.Ctx) error {
	if err := ctl.auth.Logout(c.UserContext(), middleware.CurrentClaims(c)); err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(fiber.Map{"message": "logged out successfully"})
}

func (ctl *AuthController) Me(c *fiber.Ctx) error {
	user, err := ctl.auth.CurrentUser(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(user)
}

func (ctl *AuthController) GetUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}
	user, err := ctl.auth.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.JSON(user)
}
