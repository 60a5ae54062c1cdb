package repositories

import (
	"context"
	"strings"

	"fss-elibrary/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// resourceRepository implements ResourceRepository interface
type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

// Create inserts a new resource
func (r *resourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

// GetByID gets a resource by ID
func (r *resourceRepository) GetByID(ctx context.Context, id uint) (*models.Resource, error) {
	var resource models.Resource
	err := r.db.WithContext(ctx).First(&resource, id).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// List lists resources in insertion order, optionally filtered by type
func (r *resourceRepository) List(ctx context.Context, resourceType string, offset, limit int) ([]*models.Resource, int64, error) {
	var resources []*models.Resource
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Resource{})
	if resourceType != "" && resourceType != "all" {
		query = query.Where("resource_type = ?", resourceType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&resources).Error

	return resources, total, err
}

// Search does a case-insensitive substring match on title or author,
// optionally filtered by type
func (r *resourceRepository) Search(ctx context.Context, query, resourceType string, offset, limit int) ([]*models.Resource, int64, error) {
	var resources []*models.Resource
	var total int64

	pattern := "%" + strings.ToLower(query) + "%"
	q := r.db.WithContext(ctx).Model(&models.Resource{}).
		Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", pattern, pattern)
	if resourceType != "" && resourceType != "all" {
		q = q.Where("resource_type = ?", resourceType)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&resources).Error

	return resources, total, err
}

// CountAll counts catalog entries
func (r *resourceRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Resource{}).Count(&count).Error
	return count, err
}

// SumCopies sums total copies across the catalog
func (r *resourceRepository) SumCopies(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&models.Resource{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	return sum, err
}
