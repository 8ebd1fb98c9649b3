package scheduler

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sitekhata/sitekhata/internal/clock"
	invoicedomain "github.com/sitekhata/sitekhata/internal/invoice/domain"
	invoicerepo "github.com/sitekhata/sitekhata/internal/invoice/repository"
	"github.com/sitekhata/sitekhata/internal/migration"
	obsmetrics "github.com/sitekhata/sitekhata/internal/observability/metrics"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupScheduler(t *testing.T, fakeNow time.Time) (*Scheduler, *gorm.DB, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fc := clock.NewFakeClock(fakeNow)

	sched, err := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Clock:       fc,
		InvoiceRepo: invoicerepo.Provide(),
		Metrics:     obsmetrics.New(),
	})
	require.NoError(t, err)

	return sched, conn, fc, node
}

func seedInvoice(t *testing.T, conn *gorm.DB, node *snowflake.Node, due time.Time, status invoicedomain.PaymentStatus) {
	t.Helper()
	inv := invoicedomain.Invoice{
		ID:            node.Generate(),
		ProjectID:     node.Generate(),
		InvoiceNumber: fmt.Sprintf("INV-%d", node.Generate()),
		ClientName:    "Acme Builders",
		InvoiceItem:   "Civil work",
		Amount:        500,
		DueDate:       due,
		PaymentStatus: status,
		CreatedBy:     node.Generate(),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, conn.Create(&inv).Error)
}

func TestRunOnceCountsOverdueInvoices(t *testing.T) {
	now := time.Date(2025, time.June, 15, 3, 0, 0, 0, time.UTC)
	sched, conn, _, node := setupScheduler(t, now)

	seedInvoice(t, conn, node, now.AddDate(0, 0, -5), invoicedomain.PaymentStatusNotPaid)
	seedInvoice(t, conn, node, now.AddDate(0, 0, -2), invoicedomain.PaymentStatusPartiallyPaid)
	// settled and future invoices do not count
	seedInvoice(t, conn, node, now.AddDate(0, 0, -5), invoicedomain.PaymentStatusFullyPaid)
	seedInvoice(t, conn, node, now.AddDate(0, 0, 5), invoicedomain.PaymentStatusNotPaid)
	// due today is not yet overdue
	seedInvoice(t, conn, node, clock.Truncate(now), invoicedomain.PaymentStatusNotPaid)

	require.NoError(t, sched.RunOnce(context.Background()))

	count, err := sched.invoiceRepo.CountOverdue(context.Background(), conn, sched.clock.Today())
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestRunOnceAdvancingClock(t *testing.T) {
	now := time.Date(2025, time.June, 15, 3, 0, 0, 0, time.UTC)
	sched, conn, fc, node := setupScheduler(t, now)

	seedInvoice(t, conn, node, now.AddDate(0, 0, 1), invoicedomain.PaymentStatusNotPaid)
	require.NoError(t, sched.RunOnce(context.Background()))

	count, err := sched.invoiceRepo.CountOverdue(context.Background(), conn, sched.clock.Today())
	require.NoError(t, err)
	require.Zero(t, count)

	// two days later the same invoice has crossed its due date
	fc.Advance(48 * time.Hour)
	require.NoError(t, sched.RunOnce(context.Background()))

	count, err = sched.invoiceRepo.CountOverdue(context.Background(), conn, sched.clock.Today())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestNewRejectsMissingDeps(t *testing.T) {
	_, err := New(Params{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	require.Positive(t, cfg.RunInterval)
	require.Positive(t, cfg.JobTimeout)
}
