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
	"github.com/sitekhata/sitekhata/internal/clock"
	"github.com/sitekhata/sitekhata/internal/migration"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupProjectService(t *testing.T) (projectdomain.Service, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)),
	})

	ctx := actorctx.WithActor(context.Background(), actorctx.Actor{
		ID:   node.Generate(),
		Name: "tester",
		Role: "admin",
	})
	return svc, ctx
}

func TestProjectCreateSlugsCode(t *testing.T) {
	svc, ctx := setupProjectService(t)

	created, err := svc.Create(ctx, projectdomain.CreateRequest{Name: "Riverside Towers"})
	require.NoError(t, err)
	require.Equal(t, "riverside-towers", created.Code)
}

func TestProjectDuplicateCode(t *testing.T) {
	svc, ctx := setupProjectService(t)

	_, err := svc.Create(ctx, projectdomain.CreateRequest{Name: "Riverside Towers"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, projectdomain.CreateRequest{Name: "Riverside Towers"})
	require.ErrorIs(t, err, projectdomain.ErrDuplicateCode)
}

func TestProjectCodeReusableAfterRemove(t *testing.T) {
	svc, ctx := setupProjectService(t)

	created, err := svc.Create(ctx, projectdomain.CreateRequest{Name: "Riverside Towers"})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, created.ID.String()))

	again, err := svc.Create(ctx, projectdomain.CreateRequest{Name: "Riverside Towers"})
	require.NoError(t, err)
	require.Equal(t, "riverside-towers", again.Code)
	require.NotEqual(t, created.ID, again.ID)
}

func TestProjectDateRangeValidation(t *testing.T) {
	svc, ctx := setupProjectService(t)

	start := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(ctx, projectdomain.CreateRequest{
		Name:      "Riverside Towers",
		StartDate: &start,
		EndDate:   &end,
	})
	require.ErrorIs(t, err, projectdomain.ErrInvalidDateRange)
}

func TestProjectRemoveHidesFromReads(t *testing.T) {
	svc, ctx := setupProjectService(t)

	created, err := svc.Create(ctx, projectdomain.CreateRequest{Name: "Riverside Towers"})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, created.ID.String()))

	_, err = svc.Get(ctx, created.ID.String())
	require.ErrorIs(t, err, projectdomain.ErrNotFound)
}
