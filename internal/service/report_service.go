// internal/service/report_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
)

// ReportService defines the interface for on-demand reporting.
type ReportService interface {
	// Generate builds the owner's report for the raw timeRange selector.
	Generate(ctx context.Context, ownerID uuid.UUID, timeRange string) (*domain.Report, error)
}

// reportService implements the ReportService interface.
type reportService struct {
	transactionRepo repository.TransactionRepository
	now             func() time.Time
}

// NewReportService creates a new instance of ReportService.
func NewReportService(transactionRepo repository.TransactionRepository) ReportService {
	return &reportService{
		transactionRepo: transactionRepo,
		now:             time.Now,
	}
}

func (s *reportService) Generate(ctx context.Context, ownerID uuid.UUID, timeRange string) (*domain.Report, error) {
	selected := domain.ParseTimeRange(timeRange)
	window := selected.Window(s.now().UTC())

	var inWindow, recent []domain.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := s.transactionRepo.ListByOwnerInRange(gctx, ownerID, window)
		if err != nil {
			return fmt.Errorf("load window %s..%s: %w", window.From, window.To, err)
		}
		inWindow = txs
		return nil
	})
	g.Go(func() error {
		txs, err := s.transactionRepo.ListRecentByOwner(gctx, ownerID, domain.RecentTransactionsLimit)
		if err != nil {
			return fmt.Errorf("load recent transactions: %w", err)
		}
		recent = txs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	if recent == nil {
		recent = []domain.Transaction{}
	}
	return &domain.Report{
		TimeRange:          selected,
		From:               window.From,
		To:                 window.To,
		Summary:            domain.Summarize(inWindow),
		ByCategory:         domain.GroupByCategory(inWindow),
		RecentTransactions: recent,
	}, nil
}
