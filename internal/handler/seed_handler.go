package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ysxx86/classreport-go-api/internal/service"
	"github.com/ysxx86/classreport-go-api/internal/utils"
)

// SeedHandler exposes the token-gated demo data loader.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seeding routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/demo", h.seedDemo)
}

func (h *SeedHandler) seedDemo(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")

	seeded, err := h.service.SeedDemo(c.UserContext(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrSeedUnauthorized):
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("seeding failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "seeding failed")
		}
	}

	return utils.SendSuccess(c, "demo data seeded", fiber.Map{"seeded": seeded})
}
