package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the daily overdue invoice sweep.
type Scheduler struct {
	cron          *cron.Cron
	invoices      *InvoiceService
	notifications *NotificationService
	logger        *zap.Logger
}

func NewScheduler(spec string, invoices *InvoiceService, notifications *NotificationService, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:          cron.New(),
		invoices:      invoices,
		notifications: notifications,
		logger:        logger,
	}
	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunOverdueSweep(context.Background(), time.Now()); err != nil {
			s.logger.Error("overdue sweep failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOverdueSweep marks past-due invoices overdue and raises a notification
// for each one.
func (s *Scheduler) RunOverdueSweep(ctx context.Context, now time.Time) (int, error) {
	// Invoices flipped before a failed write are still notified.
	overdue, sweepErr := s.invoices.MarkOverdue(now)
	for _, inv := range overdue {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		s.notifications.InvoiceOverdue(ctx, inv)
	}
	if sweepErr != nil {
		return len(overdue), sweepErr
	}
	s.logger.Info("overdue sweep finished", zap.Int("invoices", len(overdue)))
	return len(overdue), nil
}
