package controllers

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/middleware"
	"github.com/cuidarbem/cuidarbem-api/services"
)

// DocumentController serves uploaded registration documents from disk.
type DocumentController struct {
	auth   *services.AuthService
	dir    string
	prefix string
	log    *zap.Logger
}

// NewDocumentController serves files under dir that were stored with URLs
// beginning with prefix.
func NewDocumentController(auth *services.AuthService, dir, prefix string, log *zap.Logger) *DocumentController {
	return &DocumentController{auth: auth, dir: dir, prefix: strings.TrimRight(prefix, "/"), log: log}
}

func (ctl *DocumentController) GetDocument(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "document not found"})
	}

	if err := ctl.auth.AuthorizeDocument(c.UserContext(), middleware.CurrentUserID(c), ctl.prefix+"/"+name); err != nil {
		return respondError(c, ctl.log, err)
	}
	return c.SendFile(filepath.Join(ctl.dir, name))
}
