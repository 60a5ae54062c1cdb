package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"fss-elibrary/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memCatalog is an in-memory repositories.ResourceRepository
type memCatalog struct {
	mu        sync.Mutex
	resources []*models.Resource
	nextID    uint
}

func newMemCatalog() *memCatalog {
	return &memCatalog{nextID: 1}
}

func (c *memCatalog) Create(ctx context.Context, resource *models.Resource) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	resource.ID = c.nextID
	c.nextID++
	copied := *resource
	c.resources = append(c.resources, &copied)
	return nil
}

func (c *memCatalog) GetByID(ctx context.Context, id uint) (*models.Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.resources {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (c *memCatalog) List(ctx context.Context, resourceType string, offset, limit int) ([]*models.Resource, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var matched []*models.Resource
	for _, r := range c.resources {
		if resourceType != "" && resourceType != "all" && r.ResourceType != resourceType {
			continue
		}
		copied := *r
		matched = append(matched, &copied)
	}
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (c *memCatalog) Search(ctx context.Context, query, resourceType string, offset, limit int) ([]*models.Resource, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	needle := strings.ToLower(query)
	var matched []*models.Resource
	for _, r := range c.resources {
		if resourceType != "" && resourceType != "all" && r.ResourceType != resourceType {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Title), needle) &&
			!strings.Contains(strings.ToLower(r.Author), needle) {
			continue
		}
		copied := *r
		matched = append(matched, &copied)
	}
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (c *memCatalog) CountAll(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.resources)), nil
}

func (c *memCatalog) SumCopies(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum int64
	for _, r := range c.resources {
		sum += int64(r.Quantity)
	}
	return sum, nil
}

func page(resources []*models.Resource, offset, limit int) []*models.Resource {
	if offset >= len(resources) {
		return nil
	}
	end := offset + limit
	if end > len(resources) {
		end = len(resources)
	}
	return resources[offset:end]
}

func TestCreateResource(t *testing.T) {
	svc := NewCatalogService(newMemCatalog())

	resource, err := svc.Create(context.Background(), &CreateResourceInput{
		Title:        "  Clean Code  ",
		Author:       "Robert C. Martin",
		ResourceType: "book",
		Quantity:     4,
	})

	require.NoError(t, err)
	assert.Equal(t, "Clean Code", resource.Title)
	assert.Equal(t, 4, resource.Quantity)
	assert.Equal(t, 4, resource.Available, "all copies of a new resource start available")
}

func TestCreateResourceValidation(t *testing.T) {
	svc := NewCatalogService(newMemCatalog())

	tests := []struct {
		name    string
		input   *CreateResourceInput
		wantErr error
	}{
		{
			name:    "blank title",
			input:   &CreateResourceInput{Title: "   ", ResourceType: "book", Quantity: 1},
			wantErr: ErrTitleRequired,
		},
		{
			name:    "zero quantity",
			input:   &CreateResourceInput{Title: "X", ResourceType: "book", Quantity: 0},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			input:   &CreateResourceInput{Title: "X", ResourceType: "book", Quantity: -2},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "unknown type",
			input:   &CreateResourceInput{Title: "X", ResourceType: "vinyl", Quantity: 1},
			wantErr: ErrInvalidResourceType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSearchEmptyQueryListsAll(t *testing.T) {
	catalog := newMemCatalog()
	svc := NewCatalogService(catalog)

	for _, title := range []string{"Go in Action", "The Go Programming Language", "SICP"} {
		_, err := svc.Create(context.Background(), &CreateResourceInput{
			Title: title, ResourceType: "book", Quantity: 1,
		})
		require.NoError(t, err)
	}

	all, total, err := svc.Search(context.Background(), "   ", "", 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	matched, total, err := svc.Search(context.Background(), "go", "", 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, matched, 2)
}

func TestGetResourceNotFound(t *testing.T) {
	svc := NewCatalogService(newMemCatalog())

	_, err := svc.GetByID(context.Background(), 77)

	assert.ErrorIs(t, err, ErrResourceNotFound)
}
