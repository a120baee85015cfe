package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/requestctx"
	"github.com/gestorhub/gestor/internal/role/domain"
	"github.com/gestorhub/gestor/pkg/db"
	"github.com/gestorhub/gestor/pkg/db/pagination"
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
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("role.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRoleRequest) (domain.Role, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Role{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Role{}, domain.ErrInvalidName
	}

	permissions := req.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	now := time.Now().UTC()
	role := domain.Role{
		ID:          s.genID.Generate(),
		CompanyID:   companyID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Permissions: datatypes.NewJSONSlice(permissions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &role); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Role{}, domain.ErrNameTaken
		}
		return domain.Role{}, err
	}

	return role, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRoleRequest) (domain.Role, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Role{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Role{}, err
	}

	role, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Role{}, err
	}
	if role == nil {
		return domain.Role{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Role{}, domain.ErrInvalidName
		}
		role.Name = name
	}
	if req.Description != nil {
		role.Description = strings.TrimSpace(*req.Description)
	}
	if req.Permissions != nil {
		role.Permissions = datatypes.NewJSONSlice(*req.Permissions)
	}
	role.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, role); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Role{}, domain.ErrNameTaken
		}
		return domain.Role{}, err
	}

	return *role, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ErrInvalidCompany
	}

	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	role, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if role == nil {
		return domain.ErrNotFound
	}

	employees, err := s.repo.CountEmployees(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if employees > 0 {
		return domain.ErrRoleInUse
	}

	return s.repo.Delete(ctx, s.db, companyID, id)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Role, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Role{}, domain.ErrInvalidCompany
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.Role{}, err
	}

	role, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Role{}, err
	}
	if role == nil {
		return domain.Role{}, domain.ErrNotFound
	}
	return *role, nil
}

func (s *Service) List(ctx context.Context, page pagination.Params) (domain.ListRoleResponse, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ListRoleResponse{}, domain.ErrInvalidCompany
	}

	roles, total, err := s.repo.List(ctx, s.db, companyID, page)
	if err != nil {
		return domain.ListRoleResponse{}, err
	}

	return domain.ListRoleResponse{
		Roles: roles,
		Meta:  pagination.NewMeta(page, total),
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
