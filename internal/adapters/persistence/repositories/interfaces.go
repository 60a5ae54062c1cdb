package repositories

import (
	"context"
	"errors"
	"time"

	"fss-elibrary/internal/adapters/persistence/models"
)

// ErrAvailabilityRange is returned by AdjustAvailability when the
// requested delta would push a resource's available count below zero
// or above its total quantity.
var ErrAvailabilityRange = errors.New("availability adjustment out of range")

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// ResourceRepository defines read/insert access to the catalog
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByID(ctx context.Context, id uint) (*models.Resource, error)
	List(ctx context.Context, resourceType string, offset, limit int) ([]*models.Resource, int64, error)
	Search(ctx context.Context, query, resourceType string, offset, limit int) ([]*models.Resource, int64, error)
	CountAll(ctx context.Context) (int64, error)
	SumCopies(ctx context.Context) (int64, error)
}

// LoanRepository defines read access to the lending ledger
type LoanRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	ActiveByUser(ctx context.Context, userID uint) ([]*models.Loan, error)
	Recent(ctx context.Context, limit int) ([]*models.Loan, error)
	CountActive(ctx context.Context) (int64, error)
	OverdueActive(ctx context.Context, now time.Time) ([]*models.Loan, error)
}

// LendingStore is the write surface of a single lending transaction.
// Implementations back every call with the same transaction handle, so
// row locks taken by GetResourceForUpdate / GetLoanForUpdate /
// LockUser are held until the unit of work commits or rolls back.
type LendingStore interface {
	// LockUser serializes concurrent borrows by the same user.
	LockUser(ctx context.Context, userID uint) error
	GetResourceForUpdate(ctx context.Context, id uint) (*models.Resource, error)
	// AdjustAvailability moves available by delta, failing with
	// ErrAvailabilityRange rather than breaking 0 <= available <= quantity.
	AdjustAvailability(ctx context.Context, resourceID uint, delta int) error
	HasActiveLoan(ctx context.Context, userID, resourceID uint) (bool, error)
	CountActiveByUser(ctx context.Context, userID uint) (int64, error)
	InsertLoan(ctx context.Context, loan *models.Loan) error
	GetLoanForUpdate(ctx context.Context, id uint) (*models.Loan, error)
	MarkReturned(ctx context.Context, loanID uint, returnedAt time.Time) error
}

// LendingUnitOfWork runs fn inside one atomic transaction. Either
// every store mutation made by fn commits, or none do.
type LendingUnitOfWork interface {
	InTx(ctx context.Context, fn func(store LendingStore) error) error
}
