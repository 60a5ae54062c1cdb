package handlers

import (
	"fss-elibrary/internal/core/services"
	"fss-elibrary/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats returns library-wide statistics
// @Summary Library statistics
// @Description Get library-wide statistics (admin only)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.GetStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}

// Activity returns the recent loan activity feed
// @Summary Recent activity
// @Description Get the most recent loans across all members (admin only)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Feed size (default 50, max 200)"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/activity [get]
func (h *DashboardHandler) Activity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.DefaultActivityLimit)

	entries, err := h.dashboardService.GetActivityFeed(c.Context(), limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to get activity feed")
	}

	return response.Success(c, "Activity retrieved successfully", entries)
}

// Overdue returns active loans past their due date
// @Summary Overdue loans
// @Description List active loans past their due date (admin only)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/overdue [get]
func (h *DashboardHandler) Overdue(c *fiber.Ctx) error {
	entries, err := h.dashboardService.GetOverdueLoans(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get overdue loans")
	}

	return response.Success(c, "Overdue loans retrieved successfully", entries)
}
