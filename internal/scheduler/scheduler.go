package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/sitekhata/sitekhata/internal/clock"
	invoicedomain "github.com/sitekhata/sitekhata/internal/invoice/domain"
	obsmetrics "github.com/sitekhata/sitekhata/internal/observability/metrics"
	"github.com/sitekhata/sitekhata/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	InvoiceRepo invoicedomain.Repository
	Metrics     *obsmetrics.HTTPMetrics
	Limiter     *ratelimit.AttendanceMarkLimiter `optional:"true"`
	Config      Config                           `optional:"true"`
}

// Scheduler runs the periodic overdue sweep. The sweep is read-only: it
// counts open invoices past due and reports them; invoice status itself is
// only ever derived from payments at mutation time.
type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         Config
	clock       clock.Clock
	invoiceRepo invoicedomain.Repository
	metrics     *obsmetrics.HTTPMetrics
	limiter     *ratelimit.AttendanceMarkLimiter
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.InvoiceRepo == nil || p.Metrics == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         p.Config.withDefaults(),
		clock:       p.Clock,
		invoiceRepo: p.InvoiceRepo,
		metrics:     p.Metrics,
		limiter:     p.Limiter,
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("overdue sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single sweep pass. When redis is configured a lock
// keeps concurrent replicas from double-counting; without redis the lock is
// a no-op.
func (s *Scheduler) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	if s.limiter != nil {
		token, ok, err := s.limiter.TrySweepLock(ctx)
		if err != nil {
			return err
		}
		if !ok {
			s.log.Debug("overdue sweep skipped, lock held elsewhere")
			return nil
		}
		defer func() {
			_ = s.limiter.ReleaseSweepLock(ctx, token)
		}()
	}

	today := s.clock.Today()
	count, err := s.invoiceRepo.CountOverdue(ctx, s.db, today)
	if err != nil {
		return err
	}

	s.metrics.SetOverdueInvoices(count)
	s.metrics.IncSweepRun()
	s.log.Info("overdue sweep completed",
		zap.String("as_of", today.Format("2006-01-02")),
		zap.Int64("overdue_invoices", count),
	)
	return nil
}
