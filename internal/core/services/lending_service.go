package services

import (
	"context"
	"errors"
	"log"
	"time"

	"fss-elibrary/internal/adapters/persistence/models"
	"fss-elibrary/internal/adapters/persistence/repositories"
	"fss-elibrary/internal/config"
	"fss-elibrary/internal/core/domain"

	"gorm.io/gorm"
)

// Lending errors
var (
	ErrResourceNotFound    = errors.New("resource not found")
	ErrAlreadyBorrowed     = errors.New("resource already borrowed by this user")
	ErrBorrowLimitReached  = errors.New("borrow limit reached")
	ErrResourceUnavailable = errors.New("no copies available")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrLoanAlreadyReturned = errors.New("loan already returned")
)

// LendingService handles borrow and return business logic. Every
// mutation runs inside one unit of work so the availability counter
// and the loan ledger never disagree.
type LendingService struct {
	uow      repositories.LendingUnitOfWork
	loanRepo repositories.LoanRepository
	policy   config.LendingConfig
	now      func() time.Time
}

// NewLendingService creates a new lending service
func NewLendingService(
	uow repositories.LendingUnitOfWork,
	loanRepo repositories.LoanRepository,
	policy config.LendingConfig,
) *LendingService {
	return &LendingService{
		uow:      uow,
		loanRepo: loanRepo,
		policy:   policy,
		now:      time.Now,
	}
}

// Borrow checks the lending policy and, if every check passes, creates
// an active loan and decrements availability atomically. Checks run in
// a fixed order so a request failing several rules always reports the
// same one: duplicate loan, then borrow limit, then availability.
func (s *LendingService) Borrow(ctx context.Context, userID, resourceID uint) (*models.Loan, error) {
	now := s.now()
	loan := &models.Loan{
		UserID:     userID,
		ResourceID: resourceID,
		BorrowedAt: now,
		DueAt:      now.AddDate(0, 0, s.policy.LoanPeriodDays),
		Status:     string(domain.LoanActive),
	}

	err := s.uow.InTx(ctx, func(store repositories.LendingStore) error {
		// Lock the user row first so concurrent borrows by the same
		// user serialize before the duplicate and limit checks.
		if err := store.LockUser(ctx, userID); err != nil {
			return err
		}

		hasLoan, err := store.HasActiveLoan(ctx, userID, resourceID)
		if err != nil {
			return err
		}
		if hasLoan {
			return ErrAlreadyBorrowed
		}

		activeCount, err := store.CountActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if activeCount >= int64(s.policy.MaxActiveLoans) {
			return ErrBorrowLimitReached
		}

		resource, err := store.GetResourceForUpdate(ctx, resourceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResourceNotFound
			}
			return err
		}

		if resource.Available < 1 {
			return ErrResourceUnavailable
		}

		if err := store.AdjustAvailability(ctx, resourceID, -1); err != nil {
			if errors.Is(err, repositories.ErrAvailabilityRange) {
				return ErrResourceUnavailable
			}
			return err
		}

		return store.InsertLoan(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Loan created: user=%d resource=%d due=%s", userID, resourceID, loan.DueAt.Format("2006-01-02"))
	return loan, nil
}

// Return closes an active loan and gives the copy back to the catalog.
// Only the borrower may return their own loan unless asAdmin is set.
func (s *LendingService) Return(ctx context.Context, actorID, loanID uint, asAdmin bool) (*models.Loan, error) {
	returnedAt := s.now()
	var returned *models.Loan

	err := s.uow.InTx(ctx, func(store repositories.LendingStore) error {
		loan, err := store.GetLoanForUpdate(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}

		// Do not reveal other users' loans
		if !asAdmin && loan.UserID != actorID {
			return ErrLoanNotFound
		}

		if !loan.IsActive() {
			return ErrLoanAlreadyReturned
		}

		if err := store.MarkReturned(ctx, loanID, returnedAt); err != nil {
			return err
		}

		if err := store.AdjustAvailability(ctx, loan.ResourceID, 1); err != nil {
			return err
		}

		loan.Status = string(domain.LoanReturned)
		loan.ReturnedAt = &returnedAt
		returned = loan
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Loan returned: actor=%d loan=%d", actorID, loanID)
	return returned, nil
}

// ListActive lists a user's active loans with the due classification
// computed against the current time.
func (s *LendingService) ListActive(ctx context.Context, userID uint) ([]*models.LoanResponse, error) {
	loans, err := s.loanRepo.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	responses := make([]*models.LoanResponse, len(loans))
	for i, loan := range loans {
		resp := loan.ToResponse()
		resp.DueStatus = string(domain.ClassifyDue(loan.DueAt, now, s.policy.DueSoonDays))
		resp.DaysUntilDue = domain.DaysUntilDue(loan.DueAt, now)
		responses[i] = resp
	}
	return responses, nil
}

// GetLoan fetches one of the user's loans with its due classification
func (s *LendingService) GetLoan(ctx context.Context, userID, loanID uint) (*models.LoanResponse, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	if loan.UserID != userID {
		return nil, ErrLoanNotFound
	}

	resp := loan.ToResponse()
	if loan.IsActive() {
		now := s.now()
		resp.DueStatus = string(domain.ClassifyDue(loan.DueAt, now, s.policy.DueSoonDays))
		resp.DaysUntilDue = domain.DaysUntilDue(loan.DueAt, now)
	}
	return resp, nil
}
