package controllers

import (
	"eduledger/backend/config"
	"eduledger/backend/middleware"
	"eduledger/backend/models"
	"eduledger/backend/services"
	"eduledger/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type StatsController struct {
	Aggregator *services.Aggregator
	Cfg        *config.Config
}

func NewStatsController(aggregator *services.Aggregator, cfg *config.Config) *StatsController {
	return &StatsController{Aggregator: aggregator, Cfg: cfg}
}

// GetMyStats godoc
// @Summary Get own statistics
// @Description Returns the authenticated user's progress statistics
// @Tags stats
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /stats/me [get]
func (sc *StatsController) GetMyStats(c *fiber.Ctx) error {
	stats, err := sc.Aggregator.GetUserStatistics(c.UserContext(), middleware.Username(c))
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, stats)
}

// GetUserStats godoc
// @Summary Get a user's statistics
// @Description Returns progress statistics for a username; admins only, except for one's own record
// @Tags stats
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /stats/users/{username} [get]
func (sc *StatsController) GetUserStats(c *fiber.Ctx) error {
	target := c.Params("username")
	if target != middleware.Username(c) && middleware.Role(c) != models.RoleAdmin {
		return utils.Forbidden(c, "Admin access required")
	}

	stats, err := sc.Aggregator.GetUserStatistics(c.UserContext(), target)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, stats)
}

// GetFleetStats godoc
// @Summary Get fleet statistics
// @Description Returns cross-user metrics for the admin dashboard
// @Tags stats
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /stats/fleet [get]
func (sc *StatsController) GetFleetStats(c *fiber.Ctx) error {
	stats, err := sc.Aggregator.GetFleetStatistics(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, stats)
}
