package controller

import (
	"agora-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) IHealthController {
	return &healthController{db: db}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	dbStatus := "ok"
	if sqlDB, err := c.db.DB(); err != nil || sqlDB.PingContext(ctx.Context()) != nil {
		dbStatus = "unreachable"
	}

	status := fiber.StatusOK
	if dbStatus != "ok" {
		status = fiber.StatusServiceUnavailable
	}

	return ctx.Status(status).JSON(serverutils.SuccessResponse("ok", map[string]string{
		"service":  "agora-be",
		"database": dbStatus,
	}))
}
