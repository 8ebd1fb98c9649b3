package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sitekhata/sitekhata/internal/actorctx"
	attendancedomain "github.com/sitekhata/sitekhata/internal/attendance/domain"
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

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         attendancedomain.Repository
	WageRateRepo wageratedomain.Repository
	AuthzSvc     authorization.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         attendancedomain.Repository
	wageRateRepo wageratedomain.Repository
	authzSvc     authorization.Service
	projectRepo  repository.Repository[projectdomain.Project]
}

func New(p Params) attendancedomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("attendance.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		wageRateRepo: p.WageRateRepo,
		authzSvc:     p.AuthzSvc,
		projectRepo:  repository.ProvideStore[projectdomain.Project](p.DB),
	}
}

func (s *Service) Mark(ctx context.Context, projectID string, req attendancedomain.MarkRequest) (*attendancedomain.Response, error) {
	actor, ok := actorctx.ActorFromContext(ctx)
	if !ok {
		return nil, authorization.ErrInvalidActor
	}
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectAttendance, authorization.ActionAttendanceMark); err != nil {
		return nil, err
	}

	pid, err := parseID(projectID)
	if err != nil {
		return nil, attendancedomain.ErrInvalidID
	}
	if err := s.projectExists(ctx, pid); err != nil {
		return nil, err
	}

	if req.LabourCount <= 0 {
		return nil, attendancedomain.ErrInvalidLabourCount
	}

	// attendance is recorded for the current day only; the wage calculation
	// therefore always resolves against today's effective rate
	today := s.clock.Today()

	var att *attendancedomain.Attendance
	var calc *attendancedomain.WageCalculation

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindAttendanceByDate(ctx, tx, pid, today)
		if err != nil {
			return err
		}
		if existing != nil {
			return attendancedomain.ErrAlreadyMarked
		}

		att = &attendancedomain.Attendance{
			ID:             s.genID.Generate(),
			ProjectID:      pid,
			AttendanceDate: today,
			LabourCount:    req.LabourCount,
			MarkedBy:       actor.ID,
			CreatedAt:      s.clock.Now(),
		}
		if err := s.repo.InsertAttendance(ctx, tx, att); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return attendancedomain.ErrAlreadyMarked
			}
			return err
		}

		calc, err = s.pinCalculation(ctx, tx, att)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("attendance marked",
		zap.String("project_id", pid.String()),
		zap.Int("labour_count", req.LabourCount),
		zap.Float64("total_wages", calc.TotalAmount),
	)

	resp := toResponse(att)
	resp.Calculation = toCalculationResponse(calc)
	return resp, nil
}

func (s *Service) CalculateAndPin(ctx context.Context, attendanceID string) (*attendancedomain.CalculationResponse, error) {
	aid, err := parseID(attendanceID)
	if err != nil {
		return nil, attendancedomain.ErrInvalidID
	}

	var calc *attendancedomain.WageCalculation
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		att, err := s.repo.FindAttendanceByID(ctx, tx, aid)
		if err != nil {
			return err
		}
		if att == nil {
			return attendancedomain.ErrNotFound
		}

		existing, err := s.repo.FindCalculationByAttendance(ctx, tx, aid)
		if err != nil {
			return err
		}
		if existing != nil {
			return attendancedomain.ErrCalculationExists
		}

		calc, err = s.pinCalculation(ctx, tx, att)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	return toCalculationResponse(calc), nil
}

// pinCalculation resolves the rate in force on the attendance date and writes
// the calculation row. A missing rate aborts the caller's transaction; wages
// are never silently computed at zero.
func (s *Service) pinCalculation(ctx context.Context, tx *gorm.DB, att *attendancedomain.Attendance) (*attendancedomain.WageCalculation, error) {
	rate, err := s.wageRateRepo.Resolve(ctx, tx, att.ProjectID, att.AttendanceDate)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, wageratedomain.ErrNoRateConfigured
	}

	calc := &attendancedomain.WageCalculation{
		ID:           s.genID.Generate(),
		AttendanceID: att.ID,
		WageRateID:   rate.ID,
		LabourCount:  att.LabourCount,
		DailyRate:    rate.DailyRate,
		TotalAmount:  float64(att.LabourCount) * rate.DailyRate,
		CalculatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertCalculation(ctx, tx, calc); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, attendancedomain.ErrCalculationExists
		}
		return nil, err
	}
	return calc, nil
}

func (s *Service) List(ctx context.Context, projectID string, page pagination.Pagination) ([]attendancedomain.Response, *pagination.PageInfo, error) {
	pid, err := parseID(projectID)
	if err != nil {
		return nil, nil, attendancedomain.ErrInvalidID
	}
	if err := s.projectExists(ctx, pid); err != nil {
		return nil, nil, err
	}

	page = page.Normalize()
	total, err := s.repo.CountAttendance(ctx, s.db, pid)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.repo.ListAttendance(ctx, s.db, pid, page.Limit, page.Offset())
	if err != nil {
		return nil, nil, err
	}

	resp := make([]attendancedomain.Response, 0, len(items))
	for i := range items {
		item := toResponse(&items[i])
		calc, err := s.repo.FindCalculationByAttendance(ctx, s.db, items[i].ID)
		if err != nil {
			return nil, nil, err
		}
		if calc != nil {
			item.Calculation = toCalculationResponse(calc)
		}
		resp = append(resp, *item)
	}

	return resp, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) Summary(ctx context.Context, projectID string, from, to time.Time) (*attendancedomain.SummaryResponse, error) {
	pid, err := parseID(projectID)
	if err != nil {
		return nil, attendancedomain.ErrInvalidID
	}
	if err := s.projectExists(ctx, pid); err != nil {
		return nil, err
	}

	from = clock.Truncate(from)
	to = clock.Truncate(to)
	if to.Before(from) {
		return nil, attendancedomain.ErrInvalidDateRange
	}

	rows, err := s.repo.SummaryRows(ctx, s.db, pid, from, to)
	if err != nil {
		return nil, err
	}

	summary := &attendancedomain.SummaryResponse{
		ProjectID: pid,
		From:      from.Format(dateLayout),
		To:        to.Format(dateLayout),
		ByRate:    rows,
	}
	for _, row := range rows {
		summary.TotalDays += row.Days
		summary.TotalLabour += row.Labour
		summary.TotalWages += row.TotalAmount
	}

	return summary, nil
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

func toResponse(att *attendancedomain.Attendance) *attendancedomain.Response {
	return &attendancedomain.Response{
		ID:             att.ID,
		ProjectID:      att.ProjectID,
		AttendanceDate: att.AttendanceDate.Format(dateLayout),
		LabourCount:    att.LabourCount,
		MarkedBy:       att.MarkedBy,
		CreatedAt:      att.CreatedAt,
	}
}

func toCalculationResponse(calc *attendancedomain.WageCalculation) *attendancedomain.CalculationResponse {
	return &attendancedomain.CalculationResponse{
		ID:           calc.ID,
		AttendanceID: calc.AttendanceID,
		WageRateID:   calc.WageRateID,
		LabourCount:  calc.LabourCount,
		DailyRate:    calc.DailyRate,
		TotalAmount:  calc.TotalAmount,
		CalculatedAt: calc.CalculatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, attendancedomain.ErrInvalidID
	}
	return id, nil
}
