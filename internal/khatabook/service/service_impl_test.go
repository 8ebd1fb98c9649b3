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
	khatabookdomain "github.com/sitekhata/sitekhata/internal/khatabook/domain"
	"github.com/sitekhata/sitekhata/internal/khatabook/repository"
	"github.com/sitekhata/sitekhata/internal/migration"
	persondomain "github.com/sitekhata/sitekhata/internal/person/domain"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type khatabookFixture struct {
	svc    khatabookdomain.Service
	db     *gorm.DB
	clock  *clock.FakeClock
	node   *snowflake.Node
	person persondomain.Person
}

func setupKhatabook(t *testing.T) khatabookFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fc := clock.NewFakeClock(time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC))

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
		Clock:    fc,
		Repo:     repository.Provide(),
		AuthzSvc: authz,
	})

	person := persondomain.Person{
		ID:          node.Generate(),
		Name:        "Ramesh",
		PhoneNumber: "9876543210",
		CreatedAt:   fc.Now(),
		UpdatedAt:   fc.Now(),
	}
	require.NoError(t, conn.Create(&person).Error)

	return khatabookFixture{svc: svc, db: conn, clock: fc, node: node, person: person}
}

func (f khatabookFixture) actorCtx(role string) context.Context {
	return actorctx.WithActor(context.Background(), actorctx.Actor{
		ID:   f.node.Generate(),
		Name: "tester",
		Role: role,
	})
}

func (f khatabookFixture) addEntry(t *testing.T, ctx context.Context, amount float64, entryType khatabookdomain.EntryType) *khatabookdomain.Response {
	t.Helper()
	resp, err := f.svc.CreateEntry(ctx, khatabookdomain.CreateEntryRequest{
		PersonID:  f.person.ID.String(),
		Amount:    amount,
		EntryType: entryType,
	})
	require.NoError(t, err)
	return resp
}

func TestBalanceIsCreditsMinusDebits(t *testing.T) {
	f := setupKhatabook(t)
	ctx := f.actorCtx(authorization.RoleAccountant)

	f.addEntry(t, ctx, 1000, khatabookdomain.EntryTypeCredit)
	f.addEntry(t, ctx, 400, khatabookdomain.EntryTypeDebit)
	f.addEntry(t, ctx, 250, khatabookdomain.EntryTypeCredit)

	balance, err := f.svc.Balance(ctx, f.person.ID.String())
	require.NoError(t, err)
	require.Equal(t, float64(850), balance.Balance)
}

func TestBalanceExcludesRemovedEntries(t *testing.T) {
	f := setupKhatabook(t)
	ctx := f.actorCtx(authorization.RoleAccountant)

	f.addEntry(t, ctx, 1000, khatabookdomain.EntryTypeCredit)
	debit := f.addEntry(t, ctx, 400, khatabookdomain.EntryTypeDebit)

	require.NoError(t, f.svc.RemoveEntry(ctx, debit.ID.String()))

	balance, err := f.svc.Balance(ctx, f.person.ID.String())
	require.NoError(t, err)
	require.Equal(t, float64(1000), balance.Balance)
}

func TestUpdateEntryRecomputesBalance(t *testing.T) {
	f := setupKhatabook(t)
	ctx := f.actorCtx(authorization.RoleAccountant)

	entry := f.addEntry(t, ctx, 1000, khatabookdomain.EntryTypeCredit)

	amount := float64(600)
	_, err := f.svc.UpdateEntry(ctx, entry.ID.String(), khatabookdomain.UpdateEntryRequest{
		Amount: &amount,
	})
	require.NoError(t, err)

	balance, err := f.svc.Balance(ctx, f.person.ID.String())
	require.NoError(t, err)
	require.Equal(t, float64(600), balance.Balance)
}

func TestCreateEntryValidation(t *testing.T) {
	f := setupKhatabook(t)
	ctx := f.actorCtx(authorization.RoleAccountant)

	_, err := f.svc.CreateEntry(ctx, khatabookdomain.CreateEntryRequest{
		PersonID:  f.person.ID.String(),
		Amount:    0,
		EntryType: khatabookdomain.EntryTypeCredit,
	})
	require.ErrorIs(t, err, khatabookdomain.ErrInvalidAmount)

	_, err = f.svc.CreateEntry(ctx, khatabookdomain.CreateEntryRequest{
		PersonID:  f.person.ID.String(),
		Amount:    100,
		EntryType: "loan",
	})
	require.ErrorIs(t, err, khatabookdomain.ErrInvalidEntryType)

	_, err = f.svc.CreateEntry(ctx, khatabookdomain.CreateEntryRequest{
		PersonID:    f.person.ID.String(),
		Amount:      100,
		EntryType:   khatabookdomain.EntryTypeCredit,
		PaymentMode: "crypto",
	})
	require.ErrorIs(t, err, khatabookdomain.ErrInvalidPaymentMode)

	_, err = f.svc.CreateEntry(ctx, khatabookdomain.CreateEntryRequest{
		PersonID:  f.node.Generate().String(),
		Amount:    100,
		EntryType: khatabookdomain.EntryTypeCredit,
	})
	require.ErrorIs(t, err, persondomain.ErrNotFound)
}

func TestCreateEntryForbiddenForSiteEngineer(t *testing.T) {
	f := setupKhatabook(t)
	ctx := f.actorCtx(authorization.RoleSiteEngineer)

	_, err := f.svc.CreateEntry(ctx, khatabookdomain.CreateEntryRequest{
		PersonID:  f.person.ID.String(),
		Amount:    100,
		EntryType: khatabookdomain.EntryTypeCredit,
	})
	require.ErrorIs(t, err, authorization.ErrForbidden)
}

func TestListFiltersByProject(t *testing.T) {
	f := setupKhatabook(t)
	ctx := f.actorCtx(authorization.RoleAccountant)

	project := projectdomain.Project{
		ID:        f.node.Generate(),
		Code:      "site-b",
		Name:      "Site B",
		CreatedBy: f.node.Generate(),
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&project).Error)

	_, err := f.svc.CreateEntry(ctx, khatabookdomain.CreateEntryRequest{
		PersonID:  f.person.ID.String(),
		ProjectID: project.ID.String(),
		Amount:    100,
		EntryType: khatabookdomain.EntryTypeDebit,
	})
	require.NoError(t, err)
	f.addEntry(t, ctx, 200, khatabookdomain.EntryTypeCredit)

	items, info, err := f.svc.List(ctx, khatabookdomain.ListRequest{
		ProjectID: project.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int64(1), info.TotalCount)
	require.Equal(t, project.ID, items[0].ProjectID)
}
