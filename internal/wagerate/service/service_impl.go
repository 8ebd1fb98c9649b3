package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sitekhata/sitekhata/internal/actorctx"
	"github.com/sitekhata/sitekhata/internal/authorization"
	"github.com/sitekhata/sitekhata/internal/clock"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	wageratedomain "github.com/sitekhata/sitekhata/internal/wagerate/domain"
	"github.com/sitekhata/sitekhata/pkg/db"
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

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     wageratedomain.Repository
	AuthzSvc authorization.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        wageratedomain.Repository
	authzSvc    authorization.Service
	projectRepo repository.Repository[projectdomain.Project]
}

func New(p Params) wageratedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("wagerate.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		authzSvc:    p.AuthzSvc,
		projectRepo: repository.ProvideStore[projectdomain.Project](p.DB),
	}
}

func (s *Service) Configure(ctx context.Context, projectID string, req wageratedomain.ConfigureRequest) (*wageratedomain.Response, error) {
	actor, ok := actorctx.ActorFromContext(ctx)
	if !ok {
		return nil, authorization.ErrInvalidActor
	}
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectWageRate, authorization.ActionWageRateConfigure); err != nil {
		return nil, err
	}

	pid, err := parseID(projectID)
	if err != nil {
		return nil, wageratedomain.ErrInvalidID
	}
	if err := s.projectExists(ctx, pid); err != nil {
		return nil, err
	}

	if req.DailyRate <= 0 {
		return nil, wageratedomain.ErrInvalidRate
	}

	effective := s.clock.Today()
	if req.EffectiveDate != nil {
		effective = clock.Truncate(*req.EffectiveDate)
	}
	if effective.After(s.clock.Today()) {
		return nil, wageratedomain.ErrFutureEffectiveDate
	}

	existing, err := s.repo.FindByEffectiveDate(ctx, s.db, pid, effective)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, wageratedomain.ErrDuplicateEffectiveDate
	}

	entity := &wageratedomain.WageRate{
		ID:            s.genID.Generate(),
		ProjectID:     pid,
		DailyRate:     req.DailyRate,
		EffectiveDate: effective,
		ConfiguredBy:  actor.ID,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		// two concurrent configures race to the partial unique index; the
		// loser gets the constraint violation, not a second row
		if db.IsDuplicateKeyErr(err) {
			return nil, wageratedomain.ErrDuplicateEffectiveDate
		}
		return nil, err
	}

	s.log.Info("wage rate configured",
		zap.String("project_id", pid.String()),
		zap.Float64("daily_rate", entity.DailyRate),
		zap.String("effective_date", effective.Format(dateLayout)),
		zap.String("configured_by", actor.ID.String()),
	)

	return toResponse(entity), nil
}

func (s *Service) Current(ctx context.Context, projectID string) (*wageratedomain.Response, error) {
	pid, err := parseID(projectID)
	if err != nil {
		return nil, wageratedomain.ErrInvalidID
	}
	if err := s.projectExists(ctx, pid); err != nil {
		return nil, err
	}

	rate, err := s.repo.Resolve(ctx, s.db, pid, s.clock.Today())
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, wageratedomain.ErrNoRateConfigured
	}

	return toResponse(rate), nil
}

func (s *Service) History(ctx context.Context, projectID string, page pagination.Pagination) ([]wageratedomain.Response, *pagination.PageInfo, error) {
	pid, err := parseID(projectID)
	if err != nil {
		return nil, nil, wageratedomain.ErrInvalidID
	}
	if err := s.projectExists(ctx, pid); err != nil {
		return nil, nil, err
	}

	page = page.Normalize()
	total, err := s.repo.CountHistory(ctx, s.db, pid)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.repo.History(ctx, s.db, pid, page.Limit, page.Offset())
	if err != nil {
		return nil, nil, err
	}

	resp := make([]wageratedomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}

	return resp, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) Remove(ctx context.Context, projectID, rateID string) error {
	actor, ok := actorctx.ActorFromContext(ctx)
	if !ok {
		return authorization.ErrInvalidActor
	}
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectWageRate, authorization.ActionWageRateRemove); err != nil {
		return err
	}

	pid, err := parseID(projectID)
	if err != nil {
		return wageratedomain.ErrInvalidID
	}
	rid, err := parseID(rateID)
	if err != nil {
		return wageratedomain.ErrInvalidID
	}

	rate, err := s.repo.FindByID(ctx, s.db, pid, rid)
	if err != nil {
		return err
	}
	if rate == nil {
		return wageratedomain.ErrNotFound
	}

	// rates referenced by pinned calculations stay; removing them would make
	// historical payroll unreproducible
	used, err := s.repo.CountCalculationsUsing(ctx, s.db, rid)
	if err != nil {
		return err
	}
	if used > 0 {
		return wageratedomain.ErrRateInUse
	}

	if err := s.repo.SoftDelete(ctx, s.db, rid); err != nil {
		return err
	}

	s.log.Info("wage rate removed",
		zap.String("project_id", pid.String()),
		zap.String("wage_rate_id", rid.String()),
		zap.String("removed_by", actor.ID.String()),
	)
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

func toResponse(rate *wageratedomain.WageRate) *wageratedomain.Response {
	return &wageratedomain.Response{
		ID:            rate.ID,
		ProjectID:     rate.ProjectID,
		DailyRate:     rate.DailyRate,
		EffectiveDate: rate.EffectiveDate.Format(dateLayout),
		ConfiguredBy:  rate.ConfiguredBy,
		CreatedAt:     rate.CreatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, wageratedomain.ErrInvalidID
	}
	return id, nil
}
