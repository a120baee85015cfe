package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/employee/domain"
	"github.com/gestorhub/gestor/internal/requestctx"
	"github.com/gestorhub/gestor/pkg/db"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
		log:   p.Log.Named("employee.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEmployeeRequest) (domain.Employee, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Employee{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Employee{}, domain.ErrInvalidName
	}
	if req.Salary.IsNegative() {
		return domain.Employee{}, domain.ErrInvalidSalary
	}

	roleID, err := s.resolveRole(ctx, companyID, req.RoleID)
	if err != nil {
		return domain.Employee{}, err
	}

	now := time.Now().UTC()
	employee := domain.Employee{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		RoleID:    roleID,
		Name:      name,
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Document:  strings.TrimSpace(req.Document),
		Position:  strings.TrimSpace(req.Position),
		Salary:    req.Salary,
		HiredAt:   req.HiredAt,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &employee); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Employee{}, domain.ErrDocumentTaken
		}
		return domain.Employee{}, err
	}

	return employee, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateEmployeeRequest) (domain.Employee, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Employee{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Employee{}, err
	}

	employee, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Employee{}, err
	}
	if employee == nil {
		return domain.Employee{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Employee{}, domain.ErrInvalidName
		}
		employee.Name = name
	}
	if req.RoleID != nil {
		roleID, err := s.resolveRole(ctx, companyID, *req.RoleID)
		if err != nil {
			return domain.Employee{}, err
		}
		employee.RoleID = roleID
	}
	if req.Email != nil {
		employee.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		employee.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Document != nil {
		employee.Document = strings.TrimSpace(*req.Document)
	}
	if req.Position != nil {
		employee.Position = strings.TrimSpace(*req.Position)
	}
	if req.Salary != nil {
		if req.Salary.IsNegative() {
			return domain.Employee{}, domain.ErrInvalidSalary
		}
		employee.Salary = *req.Salary
	}
	if req.HiredAt != nil {
		employee.HiredAt = req.HiredAt
	}
	if req.Active != nil {
		employee.Active = *req.Active
	}
	employee.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, employee); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Employee{}, domain.ErrDocumentTaken
		}
		return domain.Employee{}, err
	}

	return *employee, nil
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

	employee, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if employee == nil {
		return domain.ErrNotFound
	}

	open, err := s.repo.CountOpenServiceOrders(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return domain.ErrHasOpenWork
	}

	return s.repo.Delete(ctx, s.db, companyID, id)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Employee, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Employee{}, domain.ErrInvalidCompany
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.Employee{}, err
	}

	employee, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Employee{}, err
	}
	if employee == nil {
		return domain.Employee{}, domain.ErrNotFound
	}
	return *employee, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEmployeeRequest) (domain.ListEmployeeResponse, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ListEmployeeResponse{}, domain.ErrInvalidCompany
	}

	filter := domain.ListEmployeeFilter{
		Search: strings.TrimSpace(req.Search),
		RoleID: strings.TrimSpace(req.RoleID),
		Active: req.Active,
	}

	employees, total, err := s.repo.List(ctx, s.db, companyID, filter, req.Params)
	if err != nil {
		return domain.ListEmployeeResponse{}, err
	}

	return domain.ListEmployeeResponse{
		Employees: employees,
		Meta:      pagination.NewMeta(req.Params, total),
	}, nil
}

func (s *Service) resolveRole(ctx context.Context, companyID snowflake.ID, raw string) (*snowflake.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	roleID, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || roleID == 0 {
		return nil, domain.ErrInvalidRole
	}
	ok, err := s.repo.RoleExists(ctx, s.db, companyID, roleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidRole
	}
	return &roleID, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
