package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sitekhata/sitekhata/internal/actorctx"
	"github.com/sitekhata/sitekhata/internal/authorization"
	"github.com/sitekhata/sitekhata/internal/clock"
	"github.com/sitekhata/sitekhata/internal/config"
	invoicedomain "github.com/sitekhata/sitekhata/internal/invoice/domain"
	"github.com/sitekhata/sitekhata/internal/invoice/format"
	"github.com/sitekhata/sitekhata/internal/invoice/render"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	"github.com/sitekhata/sitekhata/pkg/db/option"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
	"github.com/sitekhata/sitekhata/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        invoicedomain.Repository
	AuthzSvc    authorization.Service
	AgingHolder *config.AgingConfigHolder
	Renderer    *render.PDFRenderer
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        invoicedomain.Repository
	authzSvc    authorization.Service
	agingHolder *config.AgingConfigHolder
	renderer    *render.PDFRenderer
	projectRepo repository.Repository[projectdomain.Project]
}

func New(p Params) invoicedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invoice.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		authzSvc:    p.AuthzSvc,
		agingHolder: p.AgingHolder,
		renderer:    p.Renderer,
		projectRepo: repository.ProvideStore[projectdomain.Project](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, projectID string, req invoicedomain.CreateRequest) (*invoicedomain.Response, error) {
	actor, ok := actorctx.ActorFromContext(ctx)
	if !ok {
		return nil, authorization.ErrInvalidActor
	}
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectInvoice, authorization.ActionInvoiceCreate); err != nil {
		return nil, err
	}

	pid, err := parseID(projectID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}
	if err := s.projectExists(ctx, pid); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.ClientName) == "" {
		return nil, invoicedomain.ErrInvalidClientName
	}
	if strings.TrimSpace(req.InvoiceItem) == "" {
		return nil, invoicedomain.ErrInvalidInvoiceItem
	}
	if req.Amount <= 0 {
		return nil, invoicedomain.ErrInvalidAmount
	}
	if req.DueDate == nil {
		return nil, invoicedomain.ErrInvalidDueDate
	}

	now := s.clock.Now()
	today := s.clock.Today()

	var inv *invoicedomain.Invoice
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.repo.NextSequence(ctx, tx, pid, today)
		if err != nil {
			return err
		}
		number, err := format.InvoiceNumber(format.DefaultInvoiceNumberTemplate, today, seq)
		if err != nil {
			return err
		}

		inv = &invoicedomain.Invoice{
			ID:            s.genID.Generate(),
			ProjectID:     pid,
			InvoiceNumber: number,
			ClientName:    strings.TrimSpace(req.ClientName),
			InvoiceItem:   strings.TrimSpace(req.InvoiceItem),
			Amount:        req.Amount,
			Description:   req.Description,
			DueDate:       clock.Truncate(*req.DueDate),
			PaymentStatus: invoicedomain.PaymentStatusNotPaid,
			CreatedBy:     actor.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return s.repo.InsertInvoice(ctx, tx, inv)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("invoice created",
		zap.String("project_id", pid.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Float64("amount", inv.Amount),
	)

	return s.toResponse(inv, nil), nil
}

func (s *Service) Get(ctx context.Context, invoiceID string) (*invoicedomain.Response, error) {
	iid, err := parseID(invoiceID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	inv, err := s.repo.FindInvoiceByID(ctx, s.db, iid)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invoicedomain.ErrNotFound
	}

	payments, err := s.repo.ListPayments(ctx, s.db, iid)
	if err != nil {
		return nil, err
	}

	return s.toResponse(inv, payments), nil
}

func (s *Service) List(ctx context.Context, projectID string, page pagination.Pagination) ([]invoicedomain.Response, *pagination.PageInfo, error) {
	pid, err := parseID(projectID)
	if err != nil {
		return nil, nil, invoicedomain.ErrInvalidID
	}
	if err := s.projectExists(ctx, pid); err != nil {
		return nil, nil, err
	}

	page = page.Normalize()
	total, err := s.repo.CountInvoices(ctx, s.db, pid)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.repo.ListInvoices(ctx, s.db, pid, page.Limit, page.Offset())
	if err != nil {
		return nil, nil, err
	}

	resp := make([]invoicedomain.Response, 0, len(items))
	for i := range items {
		item := s.toResponse(&items[i], nil)
		// fully paid invoices need their payment history to classify lateness
		if items[i].PaymentStatus == invoicedomain.PaymentStatusFullyPaid {
			payments, err := s.repo.ListPayments(ctx, s.db, items[i].ID)
			if err != nil {
				return nil, nil, err
			}
			item.Lateness = invoicedomain.ClassifyLateness(&items[i], payments, s.clock.Today())
		}
		resp = append(resp, *item)
	}

	return resp, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) AddPayment(ctx context.Context, invoiceID string, req invoicedomain.PaymentRequest) (*invoicedomain.Response, error) {
	actor, ok := actorctx.ActorFromContext(ctx)
	if !ok {
		return nil, authorization.ErrInvalidActor
	}
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectInvoice, authorization.ActionInvoiceRecordPayment); err != nil {
		return nil, err
	}

	iid, err := parseID(invoiceID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}
	if req.Amount <= 0 {
		return nil, invoicedomain.ErrInvalidPaymentAmount
	}

	now := s.clock.Now()
	paymentDate := s.clock.Today()
	if req.PaymentDate != nil {
		paymentDate = clock.Truncate(*req.PaymentDate)
	}

	return s.mutatePayments(ctx, iid, func(tx *gorm.DB, inv *invoicedomain.Invoice) error {
		p := &invoicedomain.InvoicePayment{
			ID:              s.genID.Generate(),
			InvoiceID:       inv.ID,
			Amount:          req.Amount,
			PaymentDate:     paymentDate,
			PaymentMethod:   req.PaymentMethod,
			ReferenceNumber: req.ReferenceNumber,
			Description:     req.Description,
			CreatedBy:       actor.ID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return s.repo.InsertPayment(ctx, tx, p)
	})
}

func (s *Service) UpdatePayment(ctx context.Context, invoiceID, paymentID string, req invoicedomain.PaymentRequest) (*invoicedomain.Response, error) {
	actor, ok := actorctx.ActorFromContext(ctx)
	if !ok {
		return nil, authorization.ErrInvalidActor
	}
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectInvoice, authorization.ActionInvoiceRecordPayment); err != nil {
		return nil, err
	}

	iid, err := parseID(invoiceID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}
	payID, err := parseID(paymentID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}
	if req.Amount <= 0 {
		return nil, invoicedomain.ErrInvalidPaymentAmount
	}

	return s.mutatePayments(ctx, iid, func(tx *gorm.DB, inv *invoicedomain.Invoice) error {
		p, err := s.repo.FindPaymentByID(ctx, tx, payID)
		if err != nil {
			return err
		}
		if p == nil || p.InvoiceID != inv.ID {
			return invoicedomain.ErrPaymentNotFound
		}

		p.Amount = req.Amount
		if req.PaymentDate != nil {
			p.PaymentDate = clock.Truncate(*req.PaymentDate)
		}
		if req.PaymentMethod != "" {
			p.PaymentMethod = req.PaymentMethod
		}
		p.ReferenceNumber = req.ReferenceNumber
		p.Description = req.Description
		p.UpdatedAt = s.clock.Now()

		return s.repo.UpdatePayment(ctx, tx, p)
	})
}

func (s *Service) RemovePayment(ctx context.Context, invoiceID, paymentID string) (*invoicedomain.Response, error) {
	actor, ok := actorctx.ActorFromContext(ctx)
	if !ok {
		return nil, authorization.ErrInvalidActor
	}
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectInvoice, authorization.ActionInvoiceRecordPayment); err != nil {
		return nil, err
	}

	iid, err := parseID(invoiceID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}
	payID, err := parseID(paymentID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	return s.mutatePayments(ctx, iid, func(tx *gorm.DB, inv *invoicedomain.Invoice) error {
		p, err := s.repo.FindPaymentByID(ctx, tx, payID)
		if err != nil {
			return err
		}
		if p == nil || p.InvoiceID != inv.ID {
			return invoicedomain.ErrPaymentNotFound
		}
		return s.repo.SoftDeletePayment(ctx, tx, payID)
	})
}

// mutatePayments runs a payment mutation and the derived-status recompute in
// one transaction. The paid total is re-summed from the payment rows, never
// adjusted from the previous value, so the recompute is idempotent.
func (s *Service) mutatePayments(ctx context.Context, invoiceID snowflake.ID, mutate func(tx *gorm.DB, inv *invoicedomain.Invoice) error) (*invoicedomain.Response, error) {
	var inv *invoicedomain.Invoice
	var payments []invoicedomain.InvoicePayment

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		inv, err = s.repo.FindInvoiceByID(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return invoicedomain.ErrNotFound
		}

		if err := mutate(tx, inv); err != nil {
			return err
		}

		totalPaid, err := s.repo.SumPayments(ctx, tx, inv.ID)
		if err != nil {
			return err
		}
		status := invoicedomain.DerivePaymentStatus(totalPaid, inv.Amount)

		now := s.clock.Now()
		if err := s.repo.UpdateDerived(ctx, tx, inv.ID, status, totalPaid, now); err != nil {
			return err
		}
		inv.PaymentStatus = status
		inv.TotalPaidAmount = totalPaid
		inv.UpdatedAt = now

		payments, err = s.repo.ListPayments(ctx, tx, inv.ID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("invoice payments updated",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("payment_status", string(inv.PaymentStatus)),
		zap.Float64("total_paid", inv.TotalPaidAmount),
	)

	return s.toResponse(inv, payments), nil
}

func (s *Service) Aging(ctx context.Context, projectID string) (*invoicedomain.AgingResponse, error) {
	pid, err := parseID(projectID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}
	if err := s.projectExists(ctx, pid); err != nil {
		return nil, err
	}

	today := s.clock.Today()
	// due today counts as zero days overdue, so include it in the scan
	items, err := s.repo.ListOutstanding(ctx, s.db, pid, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	cfg := s.agingHolder.Get()
	rows := make([]invoicedomain.AgingBucketRow, len(cfg.Buckets))
	for i, b := range cfg.Buckets {
		rows[i] = invoicedomain.AgingBucketRow{Label: b.Label}
	}

	for i := range items {
		overdue := int(today.Sub(clock.Truncate(items[i].DueDate)).Hours() / 24)
		for j, b := range cfg.Buckets {
			if overdue < b.MinDays {
				continue
			}
			if b.MaxDays != nil && overdue > *b.MaxDays {
				continue
			}
			rows[j].Count++
			rows[j].Outstanding += items[i].Outstanding()
			break
		}
	}

	return &invoicedomain.AgingResponse{
		ProjectID: pid,
		AsOf:      today.Format(dateLayout),
		Buckets:   rows,
	}, nil
}

func (s *Service) RenderPDF(ctx context.Context, invoiceID string) ([]byte, error) {
	iid, err := parseID(invoiceID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	inv, err := s.repo.FindInvoiceByID(ctx, s.db, iid)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invoicedomain.ErrNotFound
	}

	payments, err := s.repo.ListPayments(ctx, s.db, iid)
	if err != nil {
		return nil, err
	}

	lateness := invoicedomain.ClassifyLateness(inv, payments, s.clock.Today())
	return s.renderer.Render(inv, payments, lateness)
}

func (s *Service) projectExists(ctx context.Context, projectID snowflake.ID) error {
	item, err := s.projectRepo.FindOne(ctx, &projectdomain.Project{ID: projectID},
		option.WithCondition("is_deleted = ?", false),
	)
	if err != nil {
		return err
	}
	if item == nil {
		return projectdomain.ErrNotFound
	}
	return nil
}

func (s *Service) toResponse(inv *invoicedomain.Invoice, payments []invoicedomain.InvoicePayment) *invoicedomain.Response {
	resp := &invoicedomain.Response{
		ID:              inv.ID,
		ProjectID:       inv.ProjectID,
		InvoiceNumber:   inv.InvoiceNumber,
		ClientName:      inv.ClientName,
		InvoiceItem:     inv.InvoiceItem,
		Amount:          inv.Amount,
		Description:     inv.Description,
		DueDate:         inv.DueDate.Format(dateLayout),
		PaymentStatus:   inv.PaymentStatus,
		TotalPaidAmount: inv.TotalPaidAmount,
		Outstanding:     inv.Outstanding(),
		Lateness:        invoicedomain.ClassifyLateness(inv, payments, s.clock.Today()),
		CreatedBy:       inv.CreatedBy,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, invoicedomain.PaymentResponse{
			ID:              p.ID,
			InvoiceID:       p.InvoiceID,
			Amount:          p.Amount,
			PaymentDate:     p.PaymentDate.Format(dateLayout),
			PaymentMethod:   p.PaymentMethod,
			ReferenceNumber: p.ReferenceNumber,
			Description:     p.Description,
			CreatedAt:       p.CreatedAt,
		})
	}
	return resp
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invoicedomain.ErrInvalidID
	}
	return id, nil
}
