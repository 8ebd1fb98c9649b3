package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sitekhata/sitekhata/internal/actorctx"
	"github.com/sitekhata/sitekhata/internal/authorization"
	"github.com/sitekhata/sitekhata/internal/clock"
	"github.com/sitekhata/sitekhata/internal/config"
	invoicedomain "github.com/sitekhata/sitekhata/internal/invoice/domain"
	"github.com/sitekhata/sitekhata/internal/invoice/render"
	"github.com/sitekhata/sitekhata/internal/invoice/repository"
	"github.com/sitekhata/sitekhata/internal/migration"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type invoiceFixture struct {
	svc     invoicedomain.Service
	db      *gorm.DB
	clock   *clock.FakeClock
	node    *snowflake.Node
	project projectdomain.Project
}

func setupInvoice(t *testing.T, fakeNow time.Time) invoiceFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fc := clock.NewFakeClock(fakeNow)

	adapter, err := authorization.NewAdapter(conn)
	require.NoError(t, err)
	enforcer, err := authorization.NewEnforcer(adapter)
	require.NoError(t, err)
	authz := authorization.NewService(authorization.Params{
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fc,
		Repo:        repository.Provide(),
		AuthzSvc:    authz,
		AgingHolder: config.NewStaticAgingConfigHolder(config.DefaultAgingConfig()),
		Renderer:    render.NewPDFRenderer(),
	})

	project := projectdomain.Project{
		ID:        node.Generate(),
		Code:      fmt.Sprintf("site-%d", node.Generate()),
		Name:      "Site A",
		CreatedBy: node.Generate(),
		CreatedAt: fakeNow,
		UpdatedAt: fakeNow,
	}
	require.NoError(t, conn.Create(&project).Error)

	return invoiceFixture{svc: svc, db: conn, clock: fc, node: node, project: project}
}

func (f invoiceFixture) actorCtx(role string) context.Context {
	return actorctx.WithActor(context.Background(), actorctx.Actor{
		ID:   f.node.Generate(),
		Name: "tester",
		Role: role,
	})
}

func (f invoiceFixture) createInvoice(t *testing.T, ctx context.Context, amount float64, due time.Time) *invoicedomain.Response {
	t.Helper()
	resp, err := f.svc.Create(ctx, f.project.ID.String(), invoicedomain.CreateRequest{
		ClientName:  "Acme Builders",
		InvoiceItem: "Civil work",
		Amount:      amount,
		DueDate:     &due,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateInvoiceAssignsNumber(t *testing.T) {
	now := time.Date(2025, time.May, 2, 11, 0, 0, 0, time.UTC)
	f := setupInvoice(t, now)
	ctx := f.actorCtx(authorization.RoleAccountant)

	first := f.createInvoice(t, ctx, 500, now.AddDate(0, 0, 30))
	require.Equal(t, "INV-20250502-0001", first.InvoiceNumber)
	require.Equal(t, invoicedomain.PaymentStatusNotPaid, first.PaymentStatus)
	require.Equal(t, float64(500), first.Outstanding)

	second := f.createInvoice(t, ctx, 700, now.AddDate(0, 0, 30))
	require.Equal(t, "INV-20250502-0002", second.InvoiceNumber)
}

func TestCreateInvoiceValidation(t *testing.T) {
	now := time.Date(2025, time.May, 2, 11, 0, 0, 0, time.UTC)
	f := setupInvoice(t, now)
	ctx := f.actorCtx(authorization.RoleAccountant)
	due := now.AddDate(0, 0, 30)

	_, err := f.svc.Create(ctx, f.project.ID.String(), invoicedomain.CreateRequest{
		InvoiceItem: "Civil work", Amount: 100, DueDate: &due,
	})
	require.ErrorIs(t, err, invoicedomain.ErrInvalidClientName)

	_, err = f.svc.Create(ctx, f.project.ID.String(), invoicedomain.CreateRequest{
		ClientName: "Acme", InvoiceItem: "Civil work", Amount: -5, DueDate: &due,
	})
	require.ErrorIs(t, err, invoicedomain.ErrInvalidAmount)

	_, err = f.svc.Create(ctx, f.project.ID.String(), invoicedomain.CreateRequest{
		ClientName: "Acme", InvoiceItem: "Civil work", Amount: 100,
	})
	require.ErrorIs(t, err, invoicedomain.ErrInvalidDueDate)
}

func TestPaymentsDriveDerivedStatus(t *testing.T) {
	now := time.Date(2025, time.May, 2, 11, 0, 0, 0, time.UTC)
	f := setupInvoice(t, now)
	ctx := f.actorCtx(authorization.RoleAccountant)
	inv := f.createInvoice(t, ctx, 500, now.AddDate(0, 0, 30))

	resp, err := f.svc.AddPayment(ctx, inv.ID.String(), invoicedomain.PaymentRequest{Amount: 300})
	require.NoError(t, err)
	require.Equal(t, invoicedomain.PaymentStatusPartiallyPaid, resp.PaymentStatus)
	require.Equal(t, float64(300), resp.TotalPaidAmount)
	require.Equal(t, float64(200), resp.Outstanding)

	// overpayment is accepted and reported, not rejected
	resp, err = f.svc.AddPayment(ctx, inv.ID.String(), invoicedomain.PaymentRequest{Amount: 250})
	require.NoError(t, err)
	require.Equal(t, invoicedomain.PaymentStatusFullyPaid, resp.PaymentStatus)
	require.Equal(t, float64(550), resp.TotalPaidAmount)
	require.Equal(t, float64(0), resp.Outstanding)
}

func TestUpdateAndRemovePaymentRecompute(t *testing.T) {
	now := time.Date(2025, time.May, 2, 11, 0, 0, 0, time.UTC)
	f := setupInvoice(t, now)
	ctx := f.actorCtx(authorization.RoleAccountant)
	inv := f.createInvoice(t, ctx, 500, now.AddDate(0, 0, 30))

	resp, err := f.svc.AddPayment(ctx, inv.ID.String(), invoicedomain.PaymentRequest{Amount: 500})
	require.NoError(t, err)
	require.Equal(t, invoicedomain.PaymentStatusFullyPaid, resp.PaymentStatus)
	require.Len(t, resp.Payments, 1)
	paymentID := resp.Payments[0].ID

	resp, err = f.svc.UpdatePayment(ctx, inv.ID.String(), paymentID.String(), invoicedomain.PaymentRequest{Amount: 200})
	require.NoError(t, err)
	require.Equal(t, invoicedomain.PaymentStatusPartiallyPaid, resp.PaymentStatus)
	require.Equal(t, float64(200), resp.TotalPaidAmount)

	resp, err = f.svc.RemovePayment(ctx, inv.ID.String(), paymentID.String())
	require.NoError(t, err)
	require.Equal(t, invoicedomain.PaymentStatusNotPaid, resp.PaymentStatus)
	require.Equal(t, float64(0), resp.TotalPaidAmount)
	require.Empty(t, resp.Payments)
}

func TestPaymentOnWrongInvoice(t *testing.T) {
	now := time.Date(2025, time.May, 2, 11, 0, 0, 0, time.UTC)
	f := setupInvoice(t, now)
	ctx := f.actorCtx(authorization.RoleAccountant)
	first := f.createInvoice(t, ctx, 500, now.AddDate(0, 0, 30))
	second := f.createInvoice(t, ctx, 700, now.AddDate(0, 0, 30))

	resp, err := f.svc.AddPayment(ctx, first.ID.String(), invoicedomain.PaymentRequest{Amount: 100})
	require.NoError(t, err)
	paymentID := resp.Payments[0].ID

	_, err = f.svc.UpdatePayment(ctx, second.ID.String(), paymentID.String(), invoicedomain.PaymentRequest{Amount: 50})
	require.ErrorIs(t, err, invoicedomain.ErrPaymentNotFound)
}

func TestLatenessOnSettlement(t *testing.T) {
	now := time.Date(2025, time.May, 2, 11, 0, 0, 0, time.UTC)
	f := setupInvoice(t, now)
	ctx := f.actorCtx(authorization.RoleAccountant)
	due := time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC)
	inv := f.createInvoice(t, ctx, 500, due)

	// settled before the due date
	payDate := time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)
	resp, err := f.svc.AddPayment(ctx, inv.ID.String(), invoicedomain.PaymentRequest{
		Amount:      500,
		PaymentDate: &payDate,
	})
	require.NoError(t, err)
	require.Equal(t, invoicedomain.LatenessOnTime, resp.Lateness)

	// settled after the due date
	late := f.createInvoice(t, ctx, 500, due)
	latePayDate := time.Date(2025, time.May, 25, 0, 0, 0, 0, time.UTC)
	resp, err = f.svc.AddPayment(ctx, late.ID.String(), invoicedomain.PaymentRequest{
		Amount:      500,
		PaymentDate: &latePayDate,
	})
	require.NoError(t, err)
	require.Equal(t, invoicedomain.LatenessLate, resp.Lateness)
}

func TestLatenessForOpenInvoices(t *testing.T) {
	now := time.Date(2025, time.May, 2, 11, 0, 0, 0, time.UTC)
	f := setupInvoice(t, now)
	ctx := f.actorCtx(authorization.RoleAccountant)
	due := time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC)
	inv := f.createInvoice(t, ctx, 500, due)

	// before the due date nothing can be said yet
	resp, err := f.svc.Get(ctx, inv.ID.String())
	require.NoError(t, err)
	require.Equal(t, invoicedomain.LatenessUndetermined, resp.Lateness)

	// past due and still unpaid
	f.clock.SetNow(time.Date(2025, time.May, 21, 8, 0, 0, 0, time.UTC))
	resp, err = f.svc.Get(ctx, inv.ID.String())
	require.NoError(t, err)
	require.Equal(t, invoicedomain.LatenessLate, resp.Lateness)
}

func TestAgingBuckets(t *testing.T) {
	now := time.Date(2025, time.June, 15, 11, 0, 0, 0, time.UTC)
	f := setupInvoice(t, now)
	ctx := f.actorCtx(authorization.RoleAccountant)

	f.createInvoice(t, ctx, 500, now.AddDate(0, 0, -5))  // 5 days overdue
	f.createInvoice(t, ctx, 700, now.AddDate(0, 0, -45)) // 45 days overdue
	f.createInvoice(t, ctx, 900, now.AddDate(0, 0, 10))  // not yet due

	aging, err := f.svc.Aging(ctx, f.project.ID.String())
	require.NoError(t, err)
	require.Equal(t, "2025-06-15", aging.AsOf)

	byLabel := map[string]invoicedomain.AgingBucketRow{}
	for _, row := range aging.Buckets {
		byLabel[row.Label] = row
	}
	require.Equal(t, int64(1), byLabel["0-30"].Count)
	require.Equal(t, float64(500), byLabel["0-30"].Outstanding)
	require.Equal(t, int64(1), byLabel["31-60"].Count)
	require.Equal(t, float64(700), byLabel["31-60"].Outstanding)
	require.Zero(t, byLabel["61-90"].Count)
	require.Zero(t, byLabel["90+"].Count)
}

func TestAgingExcludesSettledInvoices(t *testing.T) {
	now := time.Date(2025, time.June, 15, 11, 0, 0, 0, time.UTC)
	f := setupInvoice(t, now)
	ctx := f.actorCtx(authorization.RoleAccountant)

	inv := f.createInvoice(t, ctx, 500, now.AddDate(0, 0, -5))
	_, err := f.svc.AddPayment(ctx, inv.ID.String(), invoicedomain.PaymentRequest{Amount: 500})
	require.NoError(t, err)

	aging, err := f.svc.Aging(ctx, f.project.ID.String())
	require.NoError(t, err)
	for _, row := range aging.Buckets {
		require.Zero(t, row.Count)
	}
}

func TestCreateInvoiceForbiddenForSiteEngineer(t *testing.T) {
	now := time.Date(2025, time.May, 2, 11, 0, 0, 0, time.UTC)
	f := setupInvoice(t, now)
	ctx := f.actorCtx(authorization.RoleSiteEngineer)
	due := now.AddDate(0, 0, 30)

	_, err := f.svc.Create(ctx, f.project.ID.String(), invoicedomain.CreateRequest{
		ClientName: "Acme", InvoiceItem: "Civil work", Amount: 100, DueDate: &due,
	})
	require.ErrorIs(t, err, authorization.ErrForbidden)
}

func TestRenderPDF(t *testing.T) {
	now := time.Date(2025, time.May, 2, 11, 0, 0, 0, time.UTC)
	f := setupInvoice(t, now)
	ctx := f.actorCtx(authorization.RoleAccountant)
	inv := f.createInvoice(t, ctx, 500, now.AddDate(0, 0, 30))

	pdf, err := f.svc.RenderPDF(ctx, inv.ID.String())
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	require.True(t, strings.HasPrefix(string(pdf[:5]), "%PDF-"))
}
