package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/sitekhata/sitekhata/internal/actorctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectProject    = "project"
	ObjectWageRate   = "wage_rate"
	ObjectAttendance = "attendance"
	ObjectInvoice    = "invoice"
	ObjectKhatabook  = "khatabook"
	ObjectPerson     = "person"
)

const (
	ActionProjectView   = "project.view"
	ActionProjectCreate = "project.create"
	ActionProjectUpdate = "project.update"
	ActionProjectDelete = "project.delete"

	ActionWageRateView      = "wage_rate.view"
	ActionWageRateConfigure = "wage_rate.configure"
	ActionWageRateRemove    = "wage_rate.remove"

	ActionAttendanceView = "attendance.view"
	ActionAttendanceMark = "attendance.mark"

	ActionInvoiceView          = "invoice.view"
	ActionInvoiceCreate        = "invoice.create"
	ActionInvoiceRecordPayment = "invoice.record_payment"

	ActionKhatabookView  = "khatabook.view"
	ActionKhatabookWrite = "khatabook.write"

	ActionPersonView   = "person.view"
	ActionPersonManage = "person.manage"
)

const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleSiteEngineer   = "site_engineer"
	RoleAccountant     = "accountant"
)

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

// Service answers "may this actor perform this action on this object kind".
// The actor's role is trusted input supplied by the authenticating layer.
type Service interface {
	Authorize(ctx context.Context, actor actorctx.Actor, object string, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gormadapter.Adapter) (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, db)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor actorctx.Actor, object string, action string) error {
	_ = ctx

	if actor.ID == 0 || strings.TrimSpace(actor.Role) == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := roleSubject(actor.Role)
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Warn("authorization denied",
			zap.String("actor_id", actor.ID.String()),
			zap.String("role", actor.Role),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func roleSubject(role string) string {
	return fmt.Sprintf("role:%s", strings.ToLower(strings.TrimSpace(role)))
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{roleSubject(RoleProjectManager), ObjectProject, ActionProjectView},
		{roleSubject(RoleProjectManager), ObjectProject, ActionProjectCreate},
		{roleSubject(RoleProjectManager), ObjectProject, ActionProjectUpdate},
		{roleSubject(RoleProjectManager), ObjectWageRate, ActionWageRateView},
		{roleSubject(RoleProjectManager), ObjectWageRate, ActionWageRateConfigure},
		{roleSubject(RoleProjectManager), ObjectWageRate, ActionWageRateRemove},
		{roleSubject(RoleProjectManager), ObjectAttendance, ActionAttendanceView},
		{roleSubject(RoleProjectManager), ObjectAttendance, ActionAttendanceMark},
		{roleSubject(RoleProjectManager), ObjectInvoice, ActionInvoiceView},
		{roleSubject(RoleProjectManager), ObjectKhatabook, ActionKhatabookView},
		{roleSubject(RoleProjectManager), ObjectPerson, ActionPersonView},

		{roleSubject(RoleSiteEngineer), ObjectProject, ActionProjectView},
		{roleSubject(RoleSiteEngineer), ObjectWageRate, ActionWageRateView},
		{roleSubject(RoleSiteEngineer), ObjectAttendance, ActionAttendanceView},
		{roleSubject(RoleSiteEngineer), ObjectAttendance, ActionAttendanceMark},

		{roleSubject(RoleAccountant), ObjectProject, ActionProjectView},
		{roleSubject(RoleAccountant), ObjectInvoice, ActionInvoiceView},
		{roleSubject(RoleAccountant), ObjectInvoice, ActionInvoiceCreate},
		{roleSubject(RoleAccountant), ObjectInvoice, ActionInvoiceRecordPayment},
		{roleSubject(RoleAccountant), ObjectKhatabook, ActionKhatabookView},
		{roleSubject(RoleAccountant), ObjectKhatabook, ActionKhatabookWrite},
		{roleSubject(RoleAccountant), ObjectPerson, ActionPersonView},
		{roleSubject(RoleAccountant), ObjectPerson, ActionPersonManage},
	}

	// admin inherits every other role
	groupings := [][]string{
		{roleSubject(RoleAdmin), roleSubject(RoleProjectManager)},
		{roleSubject(RoleAdmin), roleSubject(RoleAccountant)},
		{roleSubject(RoleAdmin), roleSubject(RoleSiteEngineer)},
	}
	adminOnly := [][]string{
		{roleSubject(RoleAdmin), ObjectProject, ActionProjectDelete},
	}

	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	for _, p := range adminOnly {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	for _, g := range groupings {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return err
		}
	}
	return nil
}

func NewAdapter(db *gorm.DB) (*gormadapter.Adapter, error) {
	return gormadapter.NewAdapterByDB(db)
}

// Module wires the casbin enforcer and authorization service.
var Module = fx.Module("authorization",
	fx.Provide(NewAdapter),
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
