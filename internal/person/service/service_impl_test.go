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
	"github.com/sitekhata/sitekhata/internal/migration"
	persondomain "github.com/sitekhata/sitekhata/internal/person/domain"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPersonService(t *testing.T) (persondomain.Service, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	adapter, err := authorization.NewAdapter(conn)
	require.NoError(t, err)
	enforcer, err := authorization.NewEnforcer(adapter)
	require.NoError(t, err)
	authz := authorization.NewService(authorization.Params{
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})

	svc := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)),
		AuthzSvc: authz,
	})
	return svc, node
}

func personActorCtx(node *snowflake.Node, role string) context.Context {
	return actorctx.WithActor(context.Background(), actorctx.Actor{
		ID:   node.Generate(),
		Name: "tester",
		Role: role,
	})
}

func TestPersonLifecycle(t *testing.T) {
	svc, node := setupPersonService(t)
	ctx := personActorCtx(node, authorization.RoleAccountant)

	created, err := svc.Create(ctx, persondomain.CreateRequest{
		Name:        "Ramesh",
		PhoneNumber: "9876543210",
		Role:        "mason",
		UPINumber:   "ramesh@upi",
	})
	require.NoError(t, err)
	require.Equal(t, "Ramesh", created.Name)

	got, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	require.Equal(t, "mason", got.Role)

	newPhone := "9123456789"
	updated, err := svc.Update(ctx, created.ID.String(), persondomain.UpdateRequest{
		PhoneNumber: &newPhone,
	})
	require.NoError(t, err)
	require.Equal(t, newPhone, updated.PhoneNumber)
	require.Equal(t, "Ramesh", updated.Name)

	require.NoError(t, svc.Remove(ctx, created.ID.String()))

	_, err = svc.Get(ctx, created.ID.String())
	require.ErrorIs(t, err, persondomain.ErrNotFound)
}

func TestPersonListOrderedByName(t *testing.T) {
	svc, node := setupPersonService(t)
	ctx := personActorCtx(node, authorization.RoleAccountant)

	for _, name := range []string{"Suresh", "Anita", "Ramesh"} {
		_, err := svc.Create(ctx, persondomain.CreateRequest{
			Name:        name,
			PhoneNumber: "9876543210",
		})
		require.NoError(t, err)
	}

	items, info, err := svc.List(ctx, pagination.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(3), info.TotalCount)
	require.Equal(t, "Anita", items[0].Name)
	require.Equal(t, "Ramesh", items[1].Name)
	require.Equal(t, "Suresh", items[2].Name)
}

func TestPersonValidation(t *testing.T) {
	svc, node := setupPersonService(t)
	ctx := personActorCtx(node, authorization.RoleAccountant)

	_, err := svc.Create(ctx, persondomain.CreateRequest{PhoneNumber: "9876543210"})
	require.ErrorIs(t, err, persondomain.ErrInvalidName)

	_, err = svc.Create(ctx, persondomain.CreateRequest{Name: "Ramesh"})
	require.ErrorIs(t, err, persondomain.ErrInvalidPhone)
}

func TestPersonManageForbiddenForSiteEngineer(t *testing.T) {
	svc, node := setupPersonService(t)
	ctx := personActorCtx(node, authorization.RoleSiteEngineer)

	_, err := svc.Create(ctx, persondomain.CreateRequest{
		Name:        "Ramesh",
		PhoneNumber: "9876543210",
	})
	require.ErrorIs(t, err, authorization.ErrForbidden)
}
