package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"fss-elibrary/internal/adapters/persistence/models"
	"fss-elibrary/internal/adapters/persistence/repositories"
	"fss-elibrary/internal/core/domain"

	"gorm.io/gorm"
)

// Catalog errors
var (
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidResourceType = errors.New("invalid resource type")
	ErrTitleRequired       = errors.New("title is required")
)

// CatalogService handles catalog business logic
type CatalogService struct {
	resourceRepo repositories.ResourceRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(resourceRepo repositories.ResourceRepository) *CatalogService {
	return &CatalogService{resourceRepo: resourceRepo}
}

// CreateResourceInput represents catalog creation input
type CreateResourceInput struct {
	Title        string `json:"title" validate:"required"`
	Author       string `json:"author"`
	ResourceType string `json:"resource_type" validate:"required"`
	ISBN         string `json:"isbn"`
	Description  string `json:"description"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	CoverURL     string `json:"cover_url"`
	FilePath     string `json:"file_path"`
}

// Create adds a new resource to the catalog. All copies of a new
// resource start available.
func (s *CatalogService) Create(ctx context.Context, input *CreateResourceInput) (*models.Resource, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if !domain.ResourceType(input.ResourceType).IsValid() {
		return nil, ErrInvalidResourceType
	}

	resource := &models.Resource{
		Title:        title,
		Author:       strings.TrimSpace(input.Author),
		ResourceType: input.ResourceType,
		ISBN:         strings.TrimSpace(input.ISBN),
		Description:  input.Description,
		Quantity:     input.Quantity,
		Available:    input.Quantity,
		CoverURL:     input.CoverURL,
		FilePath:     input.FilePath,
	}

	if err := s.resourceRepo.Create(ctx, resource); err != nil {
		return nil, err
	}

	log.Printf("✅ Resource created: %s (%s)", resource.Title, resource.ResourceType)
	return resource, nil
}

// List lists catalog entries in insertion order, optionally filtered
// by resource type
func (s *CatalogService) List(ctx context.Context, resourceType string, offset, limit int) ([]*models.Resource, int64, error) {
	return s.resourceRepo.List(ctx, resourceType, offset, limit)
}

// Search matches a query against title and author, case-insensitively.
// An empty query behaves like List.
func (s *CatalogService) Search(ctx context.Context, query, resourceType string, offset, limit int) ([]*models.Resource, int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.resourceRepo.List(ctx, resourceType, offset, limit)
	}
	return s.resourceRepo.Search(ctx, query, resourceType, offset, limit)
}

// GetByID fetches a single catalog entry
func (s *CatalogService) GetByID(ctx context.Context, id uint) (*models.Resource, error) {
	resource, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return resource, nil
}
