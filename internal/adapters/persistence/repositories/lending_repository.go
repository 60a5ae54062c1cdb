package repositories

import (
	"context"
	"time"

	"fss-elibrary/internal/adapters/persistence/models"
	"fss-elibrary/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lendingUnitOfWork implements LendingUnitOfWork on top of a GORM
// transaction. Every LendingStore call inside InTx shares the same
// transaction handle, so SELECT ... FOR UPDATE locks are held until
// commit.
type lendingUnitOfWork struct {
	db *gorm.DB
}

// NewLendingUnitOfWork creates the transactional lending store factory
func NewLendingUnitOfWork(db *gorm.DB) LendingUnitOfWork {
	return &lendingUnitOfWork{db: db}
}

// InTx runs fn inside a database transaction. fn returning an error
// rolls everything back.
func (u *lendingUnitOfWork) InTx(ctx context.Context, fn func(store LendingStore) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&lendingStore{tx: tx})
	})
}

// lendingStore implements LendingStore bound to one transaction
type lendingStore struct {
	tx *gorm.DB
}

// LockUser takes a row lock on the borrowing user. Serializes
// duplicate-borrow and limit checks for the same user; lock order is
// always user first, then loan/resource.
func (s *lendingStore) LockUser(ctx context.Context, userID uint) error {
	var user models.User
	return s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&user, userID).Error
}

// GetResourceForUpdate fetches a resource under a row lock
func (s *lendingStore) GetResourceForUpdate(ctx context.Context, id uint) (*models.Resource, error) {
	var resource models.Resource
	err := s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&resource, id).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// AdjustAvailability moves available by delta. The WHERE clause
// re-checks the bounds so the 0 <= available <= quantity invariant
// holds even if the caller's snapshot went stale.
func (s *lendingStore) AdjustAvailability(ctx context.Context, resourceID uint, delta int) error {
	result := s.tx.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ? AND available + ? >= 0 AND available + ? <= quantity", resourceID, delta, delta).
		UpdateColumn("available", gorm.Expr("available + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAvailabilityRange
	}
	return nil
}

// HasActiveLoan reports whether the user already holds this resource
func (s *lendingStore) HasActiveLoan(ctx context.Context, userID, resourceID uint) (bool, error) {
	var count int64
	err := s.tx.WithContext(ctx).Model(&models.Loan{}).
		Where("user_id = ? AND resource_id = ? AND status = ?", userID, resourceID, domain.LoanActive).
		Count(&count).Error
	return count > 0, err
}

// CountActiveByUser counts the user's active loans
func (s *lendingStore) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.tx.WithContext(ctx).Model(&models.Loan{}).
		Where("user_id = ? AND status = ?", userID, domain.LoanActive).
		Count(&count).Error
	return count, err
}

// InsertLoan records a new active loan
func (s *lendingStore) InsertLoan(ctx context.Context, loan *models.Loan) error {
	return s.tx.WithContext(ctx).Create(loan).Error
}

// GetLoanForUpdate fetches a loan under a row lock
func (s *lendingStore) GetLoanForUpdate(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// MarkReturned flips the loan to returned and stamps the return time
func (s *lendingStore) MarkReturned(ctx context.Context, loanID uint, returnedAt time.Time) error {
	return s.tx.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ?", loanID).
		Updates(map[string]interface{}{
			"status":      string(domain.LoanReturned),
			"returned_at": returnedAt,
		}).Error
}
