package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"fss-elibrary/internal/adapters/persistence/models"
	"fss-elibrary/internal/adapters/persistence/repositories"
	"fss-elibrary/internal/config"
	"fss-elibrary/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memLedger is an in-memory stand-in for the persistence layer. InTx
// holds one mutex for the whole unit of work, which mirrors the row
// locking the real store relies on.
type memLedger struct {
	mu        sync.Mutex
	users     map[uint]*models.User
	resources map[uint]*models.Resource
	loans     map[uint]*models.Loan
	nextLoan  uint
}

func newMemLedger() *memLedger {
	return &memLedger{
		users:     make(map[uint]*models.User),
		resources: make(map[uint]*models.Resource),
		loans:     make(map[uint]*models.Loan),
		nextLoan:  1,
	}
}

func (l *memLedger) addUser(id uint) {
	l.users[id] = &models.User{ID: id, Role: "MEMBER", IsActive: true}
}

func (l *memLedger) addResource(id uint, quantity, available int) {
	l.resources[id] = &models.Resource{
		ID:        id,
		Title:     "Resource",
		Quantity:  quantity,
		Available: available,
	}
}

// InTx implements repositories.LendingUnitOfWork
func (l *memLedger) InTx(ctx context.Context, fn func(store repositories.LendingStore) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn((*memStore)(l))
}

// memStore implements repositories.LendingStore. The ledger mutex is
// already held when these methods run.
type memStore memLedger

func (s *memStore) LockUser(ctx context.Context, userID uint) error {
	if _, ok := s.users[userID]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *memStore) GetResourceForUpdate(ctx context.Context, id uint) (*models.Resource, error) {
	resource, ok := s.resources[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *resource
	return &copied, nil
}

func (s *memStore) AdjustAvailability(ctx context.Context, resourceID uint, delta int) error {
	resource, ok := s.resources[resourceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	next := resource.Available + delta
	if next < 0 || next > resource.Quantity {
		return repositories.ErrAvailabilityRange
	}
	resource.Available = next
	return nil
}

func (s *memStore) HasActiveLoan(ctx context.Context, userID, resourceID uint) (bool, error) {
	for _, loan := range s.loans {
		if loan.UserID == userID && loan.ResourceID == resourceID && loan.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, loan := range s.loans {
		if loan.UserID == userID && loan.IsActive() {
			count++
		}
	}
	return count, nil
}

func (s *memStore) InsertLoan(ctx context.Context, loan *models.Loan) error {
	loan.ID = s.nextLoan
	s.nextLoan++
	copied := *loan
	s.loans[loan.ID] = &copied
	return nil
}

func (s *memStore) GetLoanForUpdate(ctx context.Context, id uint) (*models.Loan, error) {
	loan, ok := s.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *loan
	return &copied, nil
}

func (s *memStore) MarkReturned(ctx context.Context, loanID uint, returnedAt time.Time) error {
	loan, ok := s.loans[loanID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	loan.Status = string(domain.LoanReturned)
	at := returnedAt
	loan.ReturnedAt = &at
	return nil
}

// memLoanRepo implements repositories.LoanRepository over the ledger
type memLoanRepo struct {
	ledger *memLedger
}

func (r *memLoanRepo) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	loan, ok := r.ledger.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *loan
	copied.Resource = r.ledger.resources[loan.ResourceID]
	return &copied, nil
}

func (r *memLoanRepo) ActiveByUser(ctx context.Context, userID uint) ([]*models.Loan, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var loans []*models.Loan
	for _, loan := range r.ledger.loans {
		if loan.UserID == userID && loan.IsActive() {
			copied := *loan
			copied.Resource = r.ledger.resources[loan.ResourceID]
			loans = append(loans, &copied)
		}
	}
	return loans, nil
}

func (r *memLoanRepo) Recent(ctx context.Context, limit int) ([]*models.Loan, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var loans []*models.Loan
	for _, loan := range r.ledger.loans {
		copied := *loan
		loans = append(loans, &copied)
		if len(loans) == limit {
			break
		}
	}
	return loans, nil
}

func (r *memLoanRepo) CountActive(ctx context.Context) (int64, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var count int64
	for _, loan := range r.ledger.loans {
		if loan.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *memLoanRepo) OverdueActive(ctx context.Context, now time.Time) ([]*models.Loan, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var loans []*models.Loan
	for _, loan := range r.ledger.loans {
		if loan.IsActive() && !loan.DueAt.After(now) {
			copied := *loan
			loans = append(loans, &copied)
		}
	}
	return loans, nil
}

var testPolicy = config.LendingConfig{
	MaxActiveLoans: 5,
	LoanPeriodDays: 14,
	DueSoonDays:    3,
}

func newTestLendingService(ledger *memLedger, now time.Time) *LendingService {
	svc := NewLendingService(ledger, &memLoanRepo{ledger: ledger}, testPolicy)
	svc.now = func() time.Time { return now }
	return svc
}

func (l *memLedger) availability(t *testing.T, resourceID uint) int {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	resource, ok := l.resources[resourceID]
	require.True(t, ok)
	assert.GreaterOrEqual(t, resource.Available, 0)
	assert.LessOrEqual(t, resource.Available, resource.Quantity)
	return resource.Available
}

func TestBorrowCreatesActiveLoan(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger := newMemLedger()
	ledger.addUser(1)
	ledger.addResource(10, 2, 2)
	svc := newTestLendingService(ledger, now)

	loan, err := svc.Borrow(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, uint(1), loan.UserID)
	assert.Equal(t, uint(10), loan.ResourceID)
	assert.Equal(t, now, loan.BorrowedAt)
	assert.Equal(t, now.AddDate(0, 0, 14), loan.DueAt)
	assert.True(t, loan.IsActive())
	assert.Nil(t, loan.ReturnedAt)
	assert.Equal(t, 1, ledger.availability(t, 10))
}

func TestBorrowUnknownResource(t *testing.T) {
	ledger := newMemLedger()
	ledger.addUser(1)
	svc := newTestLendingService(ledger, time.Now())

	_, err := svc.Borrow(context.Background(), 1, 99)

	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestBorrowSameResourceTwice(t *testing.T) {
	ledger := newMemLedger()
	ledger.addUser(1)
	ledger.addResource(10, 3, 3)
	svc := newTestLendingService(ledger, time.Now())

	_, err := svc.Borrow(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = svc.Borrow(context.Background(), 1, 10)

	assert.ErrorIs(t, err, ErrAlreadyBorrowed)
	assert.Equal(t, 2, ledger.availability(t, 10))
}

func TestBorrowLimitReached(t *testing.T) {
	ledger := newMemLedger()
	ledger.addUser(1)
	for id := uint(10); id < 16; id++ {
		ledger.addResource(id, 1, 1)
	}
	svc := newTestLendingService(ledger, time.Now())

	for id := uint(10); id < 15; id++ {
		_, err := svc.Borrow(context.Background(), 1, id)
		require.NoError(t, err)
	}

	_, err := svc.Borrow(context.Background(), 1, 15)

	assert.ErrorIs(t, err, ErrBorrowLimitReached)
	assert.Equal(t, 1, ledger.availability(t, 15))
}

func TestBorrowNoCopiesAvailable(t *testing.T) {
	ledger := newMemLedger()
	ledger.addUser(1)
	ledger.addUser(2)
	ledger.addResource(10, 1, 1)
	svc := newTestLendingService(ledger, time.Now())

	_, err := svc.Borrow(context.Background(), 2, 10)
	require.NoError(t, err)

	_, err = svc.Borrow(context.Background(), 1, 10)

	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestBorrowRejectionOrder(t *testing.T) {
	t.Run("duplicate wins over limit", func(t *testing.T) {
		ledger := newMemLedger()
		ledger.addUser(1)
		for id := uint(10); id < 15; id++ {
			ledger.addResource(id, 1, 1)
		}
		svc := newTestLendingService(ledger, time.Now())
		for id := uint(10); id < 15; id++ {
			_, err := svc.Borrow(context.Background(), 1, id)
			require.NoError(t, err)
		}

		// At the limit AND already holding resource 10
		_, err := svc.Borrow(context.Background(), 1, 10)
		assert.ErrorIs(t, err, ErrAlreadyBorrowed)
	})

	t.Run("limit wins over availability", func(t *testing.T) {
		ledger := newMemLedger()
		ledger.addUser(1)
		ledger.addUser(2)
		for id := uint(10); id < 15; id++ {
			ledger.addResource(id, 1, 1)
		}
		ledger.addResource(20, 1, 1)
		svc := newTestLendingService(ledger, time.Now())
		for id := uint(10); id < 15; id++ {
			_, err := svc.Borrow(context.Background(), 1, id)
			require.NoError(t, err)
		}
		_, err := svc.Borrow(context.Background(), 2, 20)
		require.NoError(t, err)

		// At the limit AND resource 20 has no copies left
		_, err = svc.Borrow(context.Background(), 1, 20)
		assert.ErrorIs(t, err, ErrBorrowLimitReached)
	})

	t.Run("limit wins over unknown resource", func(t *testing.T) {
		ledger := newMemLedger()
		ledger.addUser(1)
		for id := uint(10); id < 15; id++ {
			ledger.addResource(id, 1, 1)
		}
		svc := newTestLendingService(ledger, time.Now())
		for id := uint(10); id < 15; id++ {
			_, err := svc.Borrow(context.Background(), 1, id)
			require.NoError(t, err)
		}

		_, err := svc.Borrow(context.Background(), 1, 99)
		assert.ErrorIs(t, err, ErrBorrowLimitReached)
	})
}

func TestReturnRestoresAvailability(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger := newMemLedger()
	ledger.addUser(1)
	ledger.addResource(10, 1, 1)
	svc := newTestLendingService(ledger, now)

	loan, err := svc.Borrow(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 0, ledger.availability(t, 10))

	returned, err := svc.Return(context.Background(), 1, loan.ID, false)

	require.NoError(t, err)
	assert.False(t, returned.IsActive())
	require.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, now, *returned.ReturnedAt)
	assert.Equal(t, 1, ledger.availability(t, 10))
}

func TestReturnTwice(t *testing.T) {
	ledger := newMemLedger()
	ledger.addUser(1)
	ledger.addResource(10, 1, 1)
	svc := newTestLendingService(ledger, time.Now())

	loan, err := svc.Borrow(context.Background(), 1, 10)
	require.NoError(t, err)
	_, err = svc.Return(context.Background(), 1, loan.ID, false)
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), 1, loan.ID, false)

	assert.ErrorIs(t, err, ErrLoanAlreadyReturned)
	assert.Equal(t, 1, ledger.availability(t, 10))
}

func TestReturnUnknownLoan(t *testing.T) {
	ledger := newMemLedger()
	ledger.addUser(1)
	svc := newTestLendingService(ledger, time.Now())

	_, err := svc.Return(context.Background(), 1, 42, false)

	assert.ErrorIs(t, err, ErrLoanNotFound)
}

func TestReturnOtherUsersLoan(t *testing.T) {
	ledger := newMemLedger()
	ledger.addUser(1)
	ledger.addUser(2)
	ledger.addResource(10, 1, 1)
	svc := newTestLendingService(ledger, time.Now())

	loan, err := svc.Borrow(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), 2, loan.ID, false)

	assert.ErrorIs(t, err, ErrLoanNotFound)
	assert.Equal(t, 0, ledger.availability(t, 10))
}

func TestAdminReturnsMembersLoan(t *testing.T) {
	ledger := newMemLedger()
	ledger.addUser(1)
	ledger.addUser(9)
	ledger.addResource(10, 1, 1)
	svc := newTestLendingService(ledger, time.Now())

	loan, err := svc.Borrow(context.Background(), 1, 10)
	require.NoError(t, err)

	returned, err := svc.Return(context.Background(), 9, loan.ID, true)

	require.NoError(t, err)
	assert.False(t, returned.IsActive())
	assert.Equal(t, 1, ledger.availability(t, 10))
}

func TestBorrowAgainAfterReturn(t *testing.T) {
	ledger := newMemLedger()
	ledger.addUser(1)
	ledger.addResource(10, 1, 1)
	svc := newTestLendingService(ledger, time.Now())

	first, err := svc.Borrow(context.Background(), 1, 10)
	require.NoError(t, err)
	_, err = svc.Return(context.Background(), 1, first.ID, false)
	require.NoError(t, err)

	second, err := svc.Borrow(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 0, ledger.availability(t, 10))

	// Ledger keeps both rows
	loans, err := (&memLoanRepo{ledger: ledger}).Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, loans, 2)
}

func TestSingleCopyLendingScenario(t *testing.T) {
	// Two members compete for the only copy of one title.
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger := newMemLedger()
	ledger.addUser(1)
	ledger.addUser(2)
	ledger.addResource(10, 1, 1)
	svc := newTestLendingService(ledger, now)

	loanA, err := svc.Borrow(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 14), loanA.DueAt)
	assert.Equal(t, 0, ledger.availability(t, 10))

	_, err = svc.Borrow(context.Background(), 2, 10)
	assert.ErrorIs(t, err, ErrResourceUnavailable)

	_, err = svc.Return(context.Background(), 1, loanA.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.availability(t, 10))

	loanB, err := svc.Borrow(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.True(t, loanB.IsActive())
	assert.Equal(t, 0, ledger.availability(t, 10))
}

func TestConcurrentBorrowsSingleCopy(t *testing.T) {
	const borrowers = 20

	ledger := newMemLedger()
	ledger.addResource(10, 1, 1)
	for id := uint(1); id <= borrowers; id++ {
		ledger.addUser(id)
	}
	svc := newTestLendingService(ledger, time.Now())

	errs := make(chan error, borrowers)
	var wg sync.WaitGroup
	for id := uint(1); id <= borrowers; id++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := svc.Borrow(context.Background(), userID, 10)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var succeeded, unavailable int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrResourceUnavailable):
			unavailable++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, borrowers-1, unavailable)
	assert.Equal(t, 0, ledger.availability(t, 10))
}

func TestListActiveClassifiesDue(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger := newMemLedger()
	ledger.addUser(1)
	ledger.addResource(10, 1, 1)
	ledger.addResource(11, 1, 1)
	ledger.addResource(12, 1, 1)

	ledger.loans[1] = &models.Loan{
		ID: 1, UserID: 1, ResourceID: 10,
		BorrowedAt: now.AddDate(0, 0, -4), DueAt: now.AddDate(0, 0, 10),
		Status: string(domain.LoanActive),
	}
	ledger.loans[2] = &models.Loan{
		ID: 2, UserID: 1, ResourceID: 11,
		BorrowedAt: now.AddDate(0, 0, -12), DueAt: now.AddDate(0, 0, 2),
		Status: string(domain.LoanActive),
	}
	ledger.loans[3] = &models.Loan{
		ID: 3, UserID: 1, ResourceID: 12,
		BorrowedAt: now.AddDate(0, 0, -15), DueAt: now.AddDate(0, 0, -1),
		Status: string(domain.LoanActive),
	}
	ledger.nextLoan = 4
	svc := newTestLendingService(ledger, now)

	loans, err := svc.ListActive(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, loans, 3)

	byID := make(map[uint]string, len(loans))
	for _, loan := range loans {
		byID[loan.ID] = loan.DueStatus
	}
	assert.Equal(t, "on_time", byID[1])
	assert.Equal(t, "due_soon", byID[2])
	assert.Equal(t, "overdue", byID[3])
}
