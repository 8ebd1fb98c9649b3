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
	attendancedomain "github.com/sitekhata/sitekhata/internal/attendance/domain"
	"github.com/sitekhata/sitekhata/internal/attendance/repository"
	"github.com/sitekhata/sitekhata/internal/authorization"
	"github.com/sitekhata/sitekhata/internal/clock"
	"github.com/sitekhata/sitekhata/internal/migration"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	wageratedomain "github.com/sitekhata/sitekhata/internal/wagerate/domain"
	wageraterepo "github.com/sitekhata/sitekhata/internal/wagerate/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type attendanceFixture struct {
	svc     attendancedomain.Service
	db      *gorm.DB
	clock   *clock.FakeClock
	node    *snowflake.Node
	project projectdomain.Project
}

func setupAttendance(t *testing.T, fakeNow time.Time) attendanceFixture {
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
		DB:           conn,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fc,
		Repo:         repository.Provide(),
		WageRateRepo: wageraterepo.Provide(),
		AuthzSvc:     authz,
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

	return attendanceFixture{svc: svc, db: conn, clock: fc, node: node, project: project}
}

func (f attendanceFixture) actorCtx(role string) context.Context {
	return actorctx.WithActor(context.Background(), actorctx.Actor{
		ID:   f.node.Generate(),
		Name: "tester",
		Role: role,
	})
}

func (f attendanceFixture) configureRate(t *testing.T, rate float64, effective time.Time) wageratedomain.WageRate {
	t.Helper()
	entity := wageratedomain.WageRate{
		ID:            f.node.Generate(),
		ProjectID:     f.project.ID,
		DailyRate:     rate,
		EffectiveDate: effective,
		ConfiguredBy:  f.node.Generate(),
		CreatedAt:     f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&entity).Error)
	return entity
}

func TestMarkPinsCalculation(t *testing.T) {
	day := time.Date(2025, time.April, 10, 9, 30, 0, 0, time.UTC)
	f := setupAttendance(t, day)
	f.configureRate(t, 300, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	ctx := f.actorCtx(authorization.RoleSiteEngineer)

	resp, err := f.svc.Mark(ctx, f.project.ID.String(), attendancedomain.MarkRequest{LabourCount: 10})
	require.NoError(t, err)
	require.Equal(t, "2025-04-10", resp.AttendanceDate)
	require.Equal(t, 10, resp.LabourCount)
	require.NotNil(t, resp.Calculation)
	require.Equal(t, float64(300), resp.Calculation.DailyRate)
	require.Equal(t, float64(3000), resp.Calculation.TotalAmount)
}

func TestMarkTwiceSameDay(t *testing.T) {
	day := time.Date(2025, time.April, 10, 9, 30, 0, 0, time.UTC)
	f := setupAttendance(t, day)
	f.configureRate(t, 300, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	ctx := f.actorCtx(authorization.RoleSiteEngineer)

	_, err := f.svc.Mark(ctx, f.project.ID.String(), attendancedomain.MarkRequest{LabourCount: 10})
	require.NoError(t, err)

	_, err = f.svc.Mark(ctx, f.project.ID.String(), attendancedomain.MarkRequest{LabourCount: 12})
	require.ErrorIs(t, err, attendancedomain.ErrAlreadyMarked)
}

func TestMarkWithoutRateRollsBack(t *testing.T) {
	day := time.Date(2025, time.April, 10, 9, 30, 0, 0, time.UTC)
	f := setupAttendance(t, day)
	ctx := f.actorCtx(authorization.RoleSiteEngineer)

	_, err := f.svc.Mark(ctx, f.project.ID.String(), attendancedomain.MarkRequest{LabourCount: 10})
	require.ErrorIs(t, err, wageratedomain.ErrNoRateConfigured)

	// the attendance row must not survive the aborted transaction
	var count int64
	require.NoError(t, f.db.Model(&attendancedomain.Attendance{}).
		Where("project_id = ?", f.project.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestMarkUsesRateInForceOnEachDay(t *testing.T) {
	day := time.Date(2025, time.April, 10, 9, 30, 0, 0, time.UTC)
	f := setupAttendance(t, day)
	f.configureRate(t, 300, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	ctx := f.actorCtx(authorization.RoleSiteEngineer)

	first, err := f.svc.Mark(ctx, f.project.ID.String(), attendancedomain.MarkRequest{LabourCount: 10})
	require.NoError(t, err)
	require.Equal(t, float64(3000), first.Calculation.TotalAmount)

	// rate change the next day must not touch the pinned calculation
	f.clock.Advance(24 * time.Hour)
	f.configureRate(t, 350, time.Date(2025, time.April, 11, 0, 0, 0, 0, time.UTC))

	second, err := f.svc.Mark(ctx, f.project.ID.String(), attendancedomain.MarkRequest{LabourCount: 10})
	require.NoError(t, err)
	require.Equal(t, float64(3500), second.Calculation.TotalAmount)

	var pinned attendancedomain.WageCalculation
	require.NoError(t, f.db.Where("attendance_id = ?", first.ID).First(&pinned).Error)
	require.Equal(t, float64(3000), pinned.TotalAmount)
	require.Equal(t, float64(300), pinned.DailyRate)
}

func TestMarkRejectsInvalidLabourCount(t *testing.T) {
	day := time.Date(2025, time.April, 10, 9, 30, 0, 0, time.UTC)
	f := setupAttendance(t, day)
	ctx := f.actorCtx(authorization.RoleSiteEngineer)

	_, err := f.svc.Mark(ctx, f.project.ID.String(), attendancedomain.MarkRequest{LabourCount: 0})
	require.ErrorIs(t, err, attendancedomain.ErrInvalidLabourCount)
}

func TestMarkForbiddenForAccountant(t *testing.T) {
	day := time.Date(2025, time.April, 10, 9, 30, 0, 0, time.UTC)
	f := setupAttendance(t, day)
	ctx := f.actorCtx(authorization.RoleAccountant)

	_, err := f.svc.Mark(ctx, f.project.ID.String(), attendancedomain.MarkRequest{LabourCount: 10})
	require.ErrorIs(t, err, authorization.ErrForbidden)
}

func TestCalculateAndPinRefusesRecalculation(t *testing.T) {
	day := time.Date(2025, time.April, 10, 9, 30, 0, 0, time.UTC)
	f := setupAttendance(t, day)
	f.configureRate(t, 300, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	ctx := f.actorCtx(authorization.RoleSiteEngineer)

	resp, err := f.svc.Mark(ctx, f.project.ID.String(), attendancedomain.MarkRequest{LabourCount: 10})
	require.NoError(t, err)

	_, err = f.svc.CalculateAndPin(ctx, resp.ID.String())
	require.ErrorIs(t, err, attendancedomain.ErrCalculationExists)
}

func TestCalculateAndPinBackfillsMissingCalculation(t *testing.T) {
	day := time.Date(2025, time.April, 10, 9, 30, 0, 0, time.UTC)
	f := setupAttendance(t, day)
	f.configureRate(t, 300, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	ctx := f.actorCtx(authorization.RoleSiteEngineer)

	// an attendance row without a calculation, as left by a partial import
	att := attendancedomain.Attendance{
		ID:             f.node.Generate(),
		ProjectID:      f.project.ID,
		AttendanceDate: time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC),
		LabourCount:    8,
		MarkedBy:       f.node.Generate(),
		CreatedAt:      f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&att).Error)

	calc, err := f.svc.CalculateAndPin(ctx, att.ID.String())
	require.NoError(t, err)
	require.Equal(t, float64(300), calc.DailyRate)
	require.Equal(t, float64(2400), calc.TotalAmount)
}

func TestSummaryTotalsByRate(t *testing.T) {
	day := time.Date(2025, time.April, 10, 9, 30, 0, 0, time.UTC)
	f := setupAttendance(t, day)
	f.configureRate(t, 300, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	ctx := f.actorCtx(authorization.RoleSiteEngineer)

	_, err := f.svc.Mark(ctx, f.project.ID.String(), attendancedomain.MarkRequest{LabourCount: 10})
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	_, err = f.svc.Mark(ctx, f.project.ID.String(), attendancedomain.MarkRequest{LabourCount: 6})
	require.NoError(t, err)

	summary, err := f.svc.Summary(ctx, f.project.ID.String(),
		time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Equal(t, int64(2), summary.TotalDays)
	require.Equal(t, int64(16), summary.TotalLabour)
	require.Equal(t, float64(4800), summary.TotalWages)
}

func TestSummaryRejectsInvertedRange(t *testing.T) {
	day := time.Date(2025, time.April, 10, 9, 30, 0, 0, time.UTC)
	f := setupAttendance(t, day)
	ctx := f.actorCtx(authorization.RoleSiteEngineer)

	_, err := f.svc.Summary(ctx, f.project.ID.String(),
		time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	)
	require.ErrorIs(t, err, attendancedomain.ErrInvalidDateRange)
}
