package repositories

import (
	"context"
	"time"

	"fss-elibrary/internal/adapters/persistence/models"
	"fss-elibrary/internal/core/domain"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// GetByID gets a loan by ID with its resource
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Resource").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ActiveByUser lists a user's active loans, most recently borrowed first
func (r *loanRepository) ActiveByUser(ctx context.Context, userID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Resource").
		Where("user_id = ? AND status = ?", userID, domain.LoanActive).
		Order("borrowed_at DESC").
		Find(&loans).Error
	return loans, err
}

// Recent lists the newest loans across all users, bounded by limit
func (r *loanRepository) Recent(ctx context.Context, limit int) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Resource").
		Order("borrowed_at DESC").
		Limit(limit).
		Find(&loans).Error
	return loans, err
}

// CountActive counts active loans across all users
func (r *loanRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status = ?", domain.LoanActive).
		Count(&count).Error
	return count, err
}

// OverdueActive lists active loans whose due date has passed
func (r *loanRepository) OverdueActive(ctx context.Context, now time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Resource").
		Where("status = ? AND due_at <= ?", domain.LoanActive, now).
		Order("due_at ASC").
		Find(&loans).Error
	return loans, err
}
