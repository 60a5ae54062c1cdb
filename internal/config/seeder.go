package config

import (
	"log"

	"fss-elibrary/internal/adapters/persistence/models"
	"fss-elibrary/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedCatalog(); err != nil {
		log.Printf("⚠️ Catalog seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if admin already exists
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@fss.edu",
		Password: hashedPassword,
		Role:     "ADMIN",
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedCatalog seeds a small starter catalog so a fresh install is browsable
func (s *Seeder) seedCatalog() error {
	var count int64
	s.db.Model(&models.Resource{}).Count(&count)
	if count > 0 {
		return nil // Catalog already populated
	}

	resources := []*models.Resource{
		{
			Title:        "Introduction to Algorithms",
			Author:       "Thomas H. Cormen",
			ResourceType: "book",
			ISBN:         "9780262033848",
			Quantity:     3,
			Available:    3,
		},
		{
			Title:        "The Pragmatic Programmer",
			Author:       "Andrew Hunt",
			ResourceType: "book",
			ISBN:         "9780201616224",
			Quantity:     2,
			Available:    2,
		},
		{
			Title:        "Journal of Educational Technology",
			Author:       "FSS Press",
			ResourceType: "journal",
			Quantity:     1,
			Available:    1,
		},
	}

	for _, r := range resources {
		if err := s.db.Create(r).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Starter catalog created: %d resources", len(resources))
	return nil
}
