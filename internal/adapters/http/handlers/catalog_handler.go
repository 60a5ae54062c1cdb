package handlers

import (
	"errors"
	"strconv"

	"fss-elibrary/internal/adapters/persistence/models"
	"fss-elibrary/internal/core/services"
	"fss-elibrary/internal/pkg/pagination"
	"fss-elibrary/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles catalog endpoints
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CreateResourceRequest represents catalog creation request body
type CreateResourceRequest struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	ResourceType string `json:"resource_type"`
	ISBN         string `json:"isbn"`
	Description  string `json:"description"`
	Quantity     int    `json:"quantity"`
	CoverURL     string `json:"cover_url"`
	FilePath     string `json:"file_path"`
}

// Create adds a resource to the catalog
// @Summary Create resource
// @Description Add a new resource to the catalog (admin only)
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateResourceRequest true "Resource data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /resources [post]
func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	var req CreateResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.CreateResourceInput{
		Title:        req.Title,
		Author:       req.Author,
		ResourceType: req.ResourceType,
		ISBN:         req.ISBN,
		Description:  req.Description,
		Quantity:     req.Quantity,
		CoverURL:     req.CoverURL,
		FilePath:     req.FilePath,
	}

	resource, err := h.catalogService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTitleRequired):
			return response.BadRequest(c, "Title is required")
		case errors.Is(err, services.ErrInvalidQuantity):
			return response.BadRequest(c, "Quantity must be at least 1")
		case errors.Is(err, services.ErrInvalidResourceType):
			return response.BadRequest(c, "Resource type must be book, journal or audio")
		default:
			return response.InternalServerError(c, "Failed to create resource")
		}
	}

	return response.Created(c, "Resource created successfully", resource.ToResponse())
}

// List lists catalog entries
// @Summary List resources
// @Description List catalog entries, optionally filtered by type or search query
// @Tags Catalog
// @Accept json
// @Produce json
// @Param q query string false "Search query (title or author)"
// @Param type query string false "Resource type filter (book, journal, audio)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /resources [get]
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	query := c.Query("q")
	resourceType := c.Query("type")

	resources, total, err := h.catalogService.Search(c.Context(), query, resourceType, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list resources")
	}

	responses := make([]*models.ResourceResponse, len(resources))
	for i, r := range resources {
		responses[i] = r.ToResponse()
	}

	return response.Success(c, "Resources retrieved successfully",
		pagination.NewResponse(responses, params, total))
}

// Get fetches a single catalog entry
// @Summary Get resource
// @Description Get a catalog entry by ID
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /resources/{id} [get]
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid resource ID")
	}

	resource, err := h.catalogService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrResourceNotFound) {
			return response.NotFound(c, "Resource not found")
		}
		return response.InternalServerError(c, "Failed to get resource")
	}

	return response.Success(c, "Resource retrieved successfully", resource.ToResponse())
}
