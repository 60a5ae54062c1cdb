package handlers

import (
	"errors"
	"strconv"

	"fss-elibrary/internal/core/services"
	"fss-elibrary/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LendingHandler handles borrow and return endpoints
type LendingHandler struct {
	lendingService *services.LendingService
}

// NewLendingHandler creates a new lending handler
func NewLendingHandler(lendingService *services.LendingService) *LendingHandler {
	return &LendingHandler{lendingService: lendingService}
}

// BorrowRequest represents borrow request body
type BorrowRequest struct {
	ResourceID uint `json:"resource_id"`
}

// Borrow borrows a resource for the authenticated user
// @Summary Borrow resource
// @Description Borrow one copy of a resource
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BorrowRequest true "Borrow data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans [post]
func (h *LendingHandler) Borrow(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req BorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ResourceID == 0 {
		return response.BadRequest(c, "Resource ID is required")
	}

	loan, err := h.lendingService.Borrow(c.Context(), userID, req.ResourceID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrResourceNotFound):
			return response.NotFound(c, "Resource not found")
		case errors.Is(err, services.ErrAlreadyBorrowed):
			return response.Conflict(c, "You already have this resource on loan")
		case errors.Is(err, services.ErrBorrowLimitReached):
			return response.UnprocessableEntity(c, "Borrow limit reached, return a resource first")
		case errors.Is(err, services.ErrResourceUnavailable):
			return response.UnprocessableEntity(c, "No copies available")
		default:
			return response.InternalServerError(c, "Failed to borrow resource")
		}
	}

	return response.Created(c, "Resource borrowed successfully", loan.ToResponse())
}

// Return returns a borrowed resource
// @Summary Return loan
// @Description Return an active loan (owner or admin)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/return [put]
func (h *LendingHandler) Return(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.lendingService.Return(c.Context(), userID, uint(id), role == "ADMIN")
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, services.ErrLoanAlreadyReturned):
			return response.Conflict(c, "Loan already returned")
		default:
			return response.InternalServerError(c, "Failed to return resource")
		}
	}

	return response.Success(c, "Resource returned successfully", loan.ToResponse())
}

// ListActive lists the authenticated user's active loans
// @Summary List my active loans
// @Description List the current user's active loans with due classification
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/my [get]
func (h *LendingHandler) ListActive(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	loans, err := h.lendingService.ListActive(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", loans)
}

// Get fetches one of the user's loans
// @Summary Get loan
// @Description Get one of the current user's loans by ID
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LendingHandler) Get(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.lendingService.GetLoan(c.Context(), userID, uint(id))
	if err != nil {
		if errors.Is(err, services.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", loan)
}
