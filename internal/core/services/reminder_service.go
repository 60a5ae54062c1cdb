package services

import (
	"context"
	"log"
	"time"

	"fss-elibrary/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// ReminderService runs a daily sweep over the ledger and logs overdue
// loans. It also prunes expired refresh tokens as housekeeping.
type ReminderService struct {
	loanRepo         repositories.LoanRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cron             *cron.Cron
}

// NewReminderService creates a new reminder service
func NewReminderService(
	loanRepo repositories.LoanRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *ReminderService {
	return &ReminderService{
		loanRepo:         loanRepo,
		refreshTokenRepo: refreshTokenRepo,
		cron:             cron.New(),
	}
}

// Start schedules the daily jobs. The overdue sweep runs every morning
// at 08:30 server time.
func (s *ReminderService) Start() error {
	if _, err := s.cron.AddFunc("30 8 * * *", s.sweepOverdue); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 3 * * *", s.pruneTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Reminder scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✅ Reminder scheduler stopped")
}

// sweepOverdue logs every active loan past its due date
func (s *ReminderService) sweepOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	loans, err := s.loanRepo.OverdueActive(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Overdue sweep failed: %v", err)
		return
	}

	if len(loans) == 0 {
		log.Println("✅ Overdue sweep: no overdue loans")
		return
	}

	log.Printf("⚠️ Overdue sweep: %d overdue loans", len(loans))
	for _, loan := range loans {
		username := "?"
		title := "?"
		if loan.User != nil {
			username = loan.User.Username
		}
		if loan.Resource != nil {
			title = loan.Resource.Title
		}
		log.Printf("⚠️ Overdue: loan=%d user=%s resource=%q due=%s",
			loan.ID, username, title, loan.DueAt.Format("2006-01-02"))
	}
}

// pruneTokens deletes expired refresh tokens
func (s *ReminderService) pruneTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Refresh token prune failed: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens pruned")
}
