package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/sitekhata/sitekhata/internal/actorctx"
	"github.com/sitekhata/sitekhata/internal/clock"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	"github.com/sitekhata/sitekhata/pkg/db/option"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
	"github.com/sitekhata/sitekhata/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  repository.Repository[projectdomain.Project]
}

func New(p Params) projectdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("project.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  repository.ProvideStore[projectdomain.Project](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req projectdomain.CreateRequest) (*projectdomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, projectdomain.ErrInvalidName
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, projectdomain.ErrInvalidDateRange
	}

	actor, _ := actorctx.ActorFromContext(ctx)

	code := slug.Make(name)
	existing, err := s.repo.FindOne(ctx, &projectdomain.Project{Code: code},
		option.WithCondition("is_deleted = ?", false),
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, projectdomain.ErrDuplicateCode
	}

	now := s.clock.Now()
	entity := &projectdomain.Project{
		ID:          s.genID.Generate(),
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		entity.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}

	s.log.Info("project created",
		zap.String("project_id", entity.ID.String()),
		zap.String("code", entity.Code),
	)

	return toResponse(entity), nil
}

func (s *Service) Get(ctx context.Context, id string) (*projectdomain.Response, error) {
	entity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context, page pagination.Pagination) ([]projectdomain.Response, *pagination.PageInfo, error) {
	page = page.Normalize()

	total, err := s.repo.Count(ctx, &projectdomain.Project{},
		option.WithCondition("is_deleted = ?", false),
	)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.repo.Find(ctx, &projectdomain.Project{},
		option.WithCondition("is_deleted = ?", false),
		option.WithOrder("created_at DESC"),
		option.WithOffset(page.Offset()),
		option.WithLimit(page.Limit),
	)
	if err != nil {
		return nil, nil, err
	}

	resp := make([]projectdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, *toResponse(item))
	}

	return resp, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) Update(ctx context.Context, id string, req projectdomain.UpdateRequest) (*projectdomain.Response, error) {
	entity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": s.clock.Now()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, projectdomain.ErrInvalidName
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}

	if err := s.repo.Update(ctx, entity.ID.String(), updates); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *Service) Remove(ctx context.Context, id string) error {
	entity, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	return s.repo.Update(ctx, entity.ID.String(), map[string]any{
		"is_deleted": true,
		"updated_at": s.clock.Now(),
	})
}

func (s *Service) find(ctx context.Context, id string) (*projectdomain.Project, error) {
	projectID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || projectID == 0 {
		return nil, projectdomain.ErrInvalidID
	}

	entity, err := s.repo.FindOne(ctx, &projectdomain.Project{ID: projectID},
		option.WithCondition("is_deleted = ?", false),
	)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, projectdomain.ErrNotFound
	}
	return entity, nil
}

func toResponse(p *projectdomain.Project) *projectdomain.Response {
	return &projectdomain.Response{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Location:    p.Location,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Metadata:    p.Metadata,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
