package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sitekhata/sitekhata/internal/actorctx"
	"github.com/sitekhata/sitekhata/internal/authorization"
	"github.com/sitekhata/sitekhata/internal/clock"
	khatabookdomain "github.com/sitekhata/sitekhata/internal/khatabook/domain"
	persondomain "github.com/sitekhata/sitekhata/internal/person/domain"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	"github.com/sitekhata/sitekhata/pkg/db/option"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
	"github.com/sitekhata/sitekhata/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     khatabookdomain.Repository
	AuthzSvc authorization.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        khatabookdomain.Repository
	authzSvc    authorization.Service
	personRepo  repository.Repository[persondomain.Person]
	projectRepo repository.Repository[projectdomain.Project]
}

func New(p Params) khatabookdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("khatabook.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		authzSvc:    p.AuthzSvc,
		personRepo:  repository.ProvideStore[persondomain.Person](p.DB),
		projectRepo: repository.ProvideStore[projectdomain.Project](p.DB),
	}
}

func (s *Service) CreateEntry(ctx context.Context, req khatabookdomain.CreateEntryRequest) (*khatabookdomain.Response, error) {
	actor, ok := actorctx.ActorFromContext(ctx)
	if !ok {
		return nil, authorization.ErrInvalidActor
	}
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectKhatabook, authorization.ActionKhatabookWrite); err != nil {
		return nil, err
	}

	personID, err := parseID(req.PersonID)
	if err != nil {
		return nil, khatabookdomain.ErrInvalidID
	}
	if err := s.personExists(ctx, personID); err != nil {
		return nil, err
	}

	var projectID snowflake.ID
	if strings.TrimSpace(req.ProjectID) != "" {
		projectID, err = parseID(req.ProjectID)
		if err != nil {
			return nil, khatabookdomain.ErrInvalidID
		}
		if err := s.projectExists(ctx, projectID); err != nil {
			return nil, err
		}
	}

	if req.Amount <= 0 {
		return nil, khatabookdomain.ErrInvalidAmount
	}
	if err := validateEntryType(req.EntryType); err != nil {
		return nil, err
	}
	if req.PaymentMode != "" {
		if err := validatePaymentMode(req.PaymentMode); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	entryDate := s.clock.Today()
	if req.EntryDate != nil {
		entryDate = clock.Truncate(*req.EntryDate)
	}

	entry := &khatabookdomain.Entry{
		ID:          s.genID.Generate(),
		PersonID:    personID,
		ProjectID:   projectID,
		Amount:      req.Amount,
		EntryType:   req.EntryType,
		PaymentMode: req.PaymentMode,
		Remarks:     strings.TrimSpace(req.Remarks),
		EntryDate:   entryDate,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		entry.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		return nil, err
	}

	s.log.Info("khatabook entry created",
		zap.String("person_id", personID.String()),
		zap.String("entry_type", string(entry.EntryType)),
		zap.Float64("amount", entry.Amount),
	)

	return toResponse(entry), nil
}

func (s *Service) UpdateEntry(ctx context.Context, entryID string, req khatabookdomain.UpdateEntryRequest) (*khatabookdomain.Response, error) {
	actor, ok := actorctx.ActorFromContext(ctx)
	if !ok {
		return nil, authorization.ErrInvalidActor
	}
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectKhatabook, authorization.ActionKhatabookWrite); err != nil {
		return nil, err
	}

	eid, err := parseID(entryID)
	if err != nil {
		return nil, khatabookdomain.ErrInvalidID
	}

	entry, err := s.repo.FindByID(ctx, s.db, eid)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, khatabookdomain.ErrNotFound
	}

	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, khatabookdomain.ErrInvalidAmount
		}
		entry.Amount = *req.Amount
	}
	if req.EntryType != nil {
		if err := validateEntryType(*req.EntryType); err != nil {
			return nil, err
		}
		entry.EntryType = *req.EntryType
	}
	if req.PaymentMode != nil {
		if err := validatePaymentMode(*req.PaymentMode); err != nil {
			return nil, err
		}
		entry.PaymentMode = *req.PaymentMode
	}
	if req.Remarks != nil {
		entry.Remarks = strings.TrimSpace(*req.Remarks)
	}
	if req.EntryDate != nil {
		entry.EntryDate = clock.Truncate(*req.EntryDate)
	}
	entry.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, entry); err != nil {
		return nil, err
	}

	return toResponse(entry), nil
}

func (s *Service) RemoveEntry(ctx context.Context, entryID string) error {
	actor, ok := actorctx.ActorFromContext(ctx)
	if !ok {
		return authorization.ErrInvalidActor
	}
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectKhatabook, authorization.ActionKhatabookWrite); err != nil {
		return err
	}

	eid, err := parseID(entryID)
	if err != nil {
		return khatabookdomain.ErrInvalidID
	}

	entry, err := s.repo.FindByID(ctx, s.db, eid)
	if err != nil {
		return err
	}
	if entry == nil {
		return khatabookdomain.ErrNotFound
	}

	return s.repo.SoftDelete(ctx, s.db, eid)
}

func (s *Service) List(ctx context.Context, req khatabookdomain.ListRequest) ([]khatabookdomain.Response, *pagination.PageInfo, error) {
	var filter khatabookdomain.ListFilter
	var err error

	if strings.TrimSpace(req.PersonID) != "" {
		filter.PersonID, err = parseID(req.PersonID)
		if err != nil {
			return nil, nil, khatabookdomain.ErrInvalidID
		}
	}
	if strings.TrimSpace(req.ProjectID) != "" {
		filter.ProjectID, err = parseID(req.ProjectID)
		if err != nil {
			return nil, nil, khatabookdomain.ErrInvalidID
		}
	}

	page := req.Page.Normalize()
	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.repo.List(ctx, s.db, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, nil, err
	}

	resp := make([]khatabookdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}

	return resp, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) Balance(ctx context.Context, personID string) (*khatabookdomain.BalanceResponse, error) {
	pid, err := parseID(personID)
	if err != nil {
		return nil, khatabookdomain.ErrInvalidID
	}
	if err := s.personExists(ctx, pid); err != nil {
		return nil, err
	}

	balance, err := s.repo.Balance(ctx, s.db, pid)
	if err != nil {
		return nil, err
	}

	return &khatabookdomain.BalanceResponse{
		PersonID: pid,
		Balance:  balance,
		AsOf:     s.clock.Now(),
	}, nil
}

func (s *Service) personExists(ctx context.Context, personID snowflake.ID) error {
	item, err := s.personRepo.FindOne(ctx, &persondomain.Person{ID: personID},
		option.WithCondition("is_deleted = ?", false),
	)
	if err != nil {
		return err
	}
	if item == nil {
		return persondomain.ErrNotFound
	}
	return nil
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

func validateEntryType(t khatabookdomain.EntryType) error {
	switch t {
	case khatabookdomain.EntryTypeCredit, khatabookdomain.EntryTypeDebit:
		return nil
	default:
		return khatabookdomain.ErrInvalidEntryType
	}
}

func validatePaymentMode(m khatabookdomain.PaymentMode) error {
	switch m {
	case khatabookdomain.PaymentModeCash, khatabookdomain.PaymentModeBank, khatabookdomain.PaymentModeUPI:
		return nil
	default:
		return khatabookdomain.ErrInvalidPaymentMode
	}
}

func toResponse(e *khatabookdomain.Entry) *khatabookdomain.Response {
	resp := &khatabookdomain.Response{
		ID:          e.ID,
		PersonID:    e.PersonID,
		ProjectID:   e.ProjectID,
		Amount:      e.Amount,
		EntryType:   e.EntryType,
		PaymentMode: e.PaymentMode,
		Remarks:     e.Remarks,
		EntryDate:   e.EntryDate.Format(dateLayout),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Metadata != nil {
		resp.Metadata = map[string]any(e.Metadata)
	}
	return resp
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, khatabookdomain.ErrInvalidID
	}
	return id, nil
}
