package services

import (
	"context"
	"time"

	"fss-elibrary/internal/adapters/persistence/repositories"
	"fss-elibrary/internal/core/domain"
)

// DefaultActivityLimit is the default size of the admin activity feed
const DefaultActivityLimit = 50

// MaxActivityLimit caps how many entries one request may ask for
const MaxActivityLimit = 200

// DashboardService handles library statistics and the admin activity feed
type DashboardService struct {
	resourceRepo repositories.ResourceRepository
	loanRepo     repositories.LoanRepository
	userRepo     repositories.UserRepository
	dueSoonDays  int
	now          func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	resourceRepo repositories.ResourceRepository,
	loanRepo repositories.LoanRepository,
	userRepo repositories.UserRepository,
	dueSoonDays int,
) *DashboardService {
	return &DashboardService{
		resourceRepo: resourceRepo,
		loanRepo:     loanRepo,
		userRepo:     userRepo,
		dueSoonDays:  dueSoonDays,
		now:          time.Now,
	}
}

// LibraryStats represents library-wide statistics
type LibraryStats struct {
	TotalResources int64 `json:"total_resources"`
	TotalCopies    int64 `json:"total_copies"`
	ActiveLoans    int64 `json:"active_loans"`
	TotalMembers   int64 `json:"total_members"`
}

// GetStats returns library-wide statistics
func (s *DashboardService) GetStats(ctx context.Context) (*LibraryStats, error) {
	stats := &LibraryStats{}
	var err error

	if stats.TotalResources, err = s.resourceRepo.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.TotalCopies, err = s.resourceRepo.SumCopies(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveLoans, err = s.loanRepo.CountActive(ctx); err != nil {
		return nil, err
	}
	if stats.TotalMembers, err = s.userRepo.CountByRole(ctx, "MEMBER"); err != nil {
		return nil, err
	}

	return stats, nil
}

// ActivityEntry represents one row of the admin activity feed
type ActivityEntry struct {
	LoanID        uint       `json:"loan_id"`
	Username      string     `json:"username"`
	ResourceTitle string     `json:"resource_title"`
	BorrowedAt    time.Time  `json:"borrowed_at"`
	DueAt         time.Time  `json:"due_at"`
	ReturnedAt    *time.Time `json:"returned_at,omitempty"`
	Status        string     `json:"status"`
	DueStatus     string     `json:"due_status,omitempty"`
}

// GetActivityFeed returns the most recent loans across all members,
// newest first. A non-positive limit falls back to the default.
func (s *DashboardService) GetActivityFeed(ctx context.Context, limit int) ([]*ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}

	loans, err := s.loanRepo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]*ActivityEntry, len(loans))
	for i, loan := range loans {
		entry := &ActivityEntry{
			LoanID:     loan.ID,
			BorrowedAt: loan.BorrowedAt,
			DueAt:      loan.DueAt,
			ReturnedAt: loan.ReturnedAt,
			Status:     loan.Status,
		}
		if loan.User != nil {
			entry.Username = loan.User.Username
		}
		if loan.Resource != nil {
			entry.ResourceTitle = loan.Resource.Title
		}
		if loan.IsActive() {
			entry.DueStatus = string(domain.ClassifyDue(loan.DueAt, now, s.dueSoonDays))
		}
		entries[i] = entry
	}
	return entries, nil
}

// OverdueLoan represents one overdue loan for reporting
type OverdueLoan struct {
	LoanID        uint      `json:"loan_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	ResourceTitle string    `json:"resource_title"`
	DueAt         time.Time `json:"due_at"`
	DaysOverdue   int       `json:"days_overdue"`
}

// GetOverdueLoans lists active loans past their due date, most overdue first
func (s *DashboardService) GetOverdueLoans(ctx context.Context) ([]*OverdueLoan, error) {
	now := s.now()
	loans, err := s.loanRepo.OverdueActive(ctx, now)
	if err != nil {
		return nil, err
	}

	entries := make([]*OverdueLoan, len(loans))
	for i, loan := range loans {
		entry := &OverdueLoan{
			LoanID:      loan.ID,
			DueAt:       loan.DueAt,
			DaysOverdue: -domain.DaysUntilDue(loan.DueAt, now),
		}
		if loan.User != nil {
			entry.Username = loan.User.Username
			entry.Email = loan.User.Email
		}
		if loan.Resource != nil {
			entry.ResourceTitle = loan.Resource.Title
		}
		entries[i] = entry
	}
	return entries, nil
}
