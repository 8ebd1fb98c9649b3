package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sitekhata/sitekhata/internal/actorctx"
	"github.com/sitekhata/sitekhata/internal/authorization"
	"github.com/sitekhata/sitekhata/internal/clock"
	persondomain "github.com/sitekhata/sitekhata/internal/person/domain"
	"github.com/sitekhata/sitekhata/pkg/db/option"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
	"github.com/sitekhata/sitekhata/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	AuthzSvc authorization.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	authzSvc authorization.Service
	repo     repository.Repository[persondomain.Person]
}

func New(p Params) persondomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("person.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		authzSvc: p.AuthzSvc,
		repo:     repository.ProvideStore[persondomain.Person](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req persondomain.CreateRequest) (*persondomain.Response, error) {
	if err := s.authorizeManage(ctx); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, persondomain.ErrInvalidName
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		return nil, persondomain.ErrInvalidPhone
	}

	now := s.clock.Now()
	entity := &persondomain.Person{
		ID:            s.genID.Generate(),
		Name:          name,
		PhoneNumber:   phone,
		Role:          strings.TrimSpace(req.Role),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		IFSCCode:      strings.TrimSpace(req.IFSCCode),
		UPINumber:     strings.TrimSpace(req.UPINumber),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}

	s.log.Info("person created", zap.String("person_id", entity.ID.String()))

	return toResponse(entity), nil
}

func (s *Service) Get(ctx context.Context, personID string) (*persondomain.Response, error) {
	entity, err := s.find(ctx, personID)
	if err != nil {
		return nil, err
	}
	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context, page pagination.Pagination) ([]persondomain.Response, *pagination.PageInfo, error) {
	page = page.Normalize()

	total, err := s.repo.Count(ctx, &persondomain.Person{},
		option.WithCondition("is_deleted = ?", false),
	)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.repo.Find(ctx, &persondomain.Person{},
		option.WithCondition("is_deleted = ?", false),
		option.WithOrder("name ASC"),
		option.WithOffset(page.Offset()),
		option.WithLimit(page.Limit),
	)
	if err != nil {
		return nil, nil, err
	}

	resp := make([]persondomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, *toResponse(item))
	}

	return resp, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) Update(ctx context.Context, personID string, req persondomain.UpdateRequest) (*persondomain.Response, error) {
	if err := s.authorizeManage(ctx); err != nil {
		return nil, err
	}

	entity, err := s.find(ctx, personID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": s.clock.Now()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, persondomain.ErrInvalidName
		}
		updates["name"] = name
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		if phone == "" {
			return nil, persondomain.ErrInvalidPhone
		}
		updates["phone_number"] = phone
	}
	if req.Role != nil {
		updates["role"] = strings.TrimSpace(*req.Role)
	}
	if req.AccountNumber != nil {
		updates["account_number"] = strings.TrimSpace(*req.AccountNumber)
	}
	if req.IFSCCode != nil {
		updates["ifsc_code"] = strings.TrimSpace(*req.IFSCCode)
	}
	if req.UPINumber != nil {
		updates["upi_number"] = strings.TrimSpace(*req.UPINumber)
	}

	if err := s.repo.Update(ctx, entity.ID.String(), updates); err != nil {
		return nil, err
	}

	return s.Get(ctx, personID)
}

func (s *Service) Remove(ctx context.Context, personID string) error {
	if err := s.authorizeManage(ctx); err != nil {
		return err
	}

	entity, err := s.find(ctx, personID)
	if err != nil {
		return err
	}

	return s.repo.Update(ctx, entity.ID.String(), map[string]any{
		"is_deleted": true,
		"updated_at": s.clock.Now(),
	})
}

func (s *Service) authorizeManage(ctx context.Context) error {
	actor, ok := actorctx.ActorFromContext(ctx)
	if !ok {
		return authorization.ErrInvalidActor
	}
	return s.authzSvc.Authorize(ctx, actor, authorization.ObjectPerson, authorization.ActionPersonManage)
}

func (s *Service) find(ctx context.Context, id string) (*persondomain.Person, error) {
	personID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || personID == 0 {
		return nil, persondomain.ErrInvalidID
	}

	entity, err := s.repo.FindOne(ctx, &persondomain.Person{ID: personID},
		option.WithCondition("is_deleted = ?", false),
	)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, persondomain.ErrNotFound
	}
	return entity, nil
}

func toResponse(p *persondomain.Person) *persondomain.Response {
	return &persondomain.Response{
		ID:            p.ID,
		Name:          p.Name,
		PhoneNumber:   p.PhoneNumber,
		Role:          p.Role,
		AccountNumber: p.AccountNumber,
		IFSCCode:      p.IFSCCode,
		UPINumber:     p.UPINumber,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
