package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/customer/domain"
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
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Customer{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = domain.KindIndividual
	}
	if kind != domain.KindIndividual && kind != domain.KindCompany {
		return domain.Customer{}, domain.ErrInvalidKind
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		Name:      name,
		Kind:      kind,
		Document:  strings.TrimSpace(req.Document),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		ZipCode:   strings.TrimSpace(req.ZipCode),
		Notes:     strings.TrimSpace(req.Notes),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Customer{}, domain.ErrDocumentTaken
		}
		return domain.Customer{}, err
	}

	return customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Customer{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	customer, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, domain.ErrInvalidName
		}
		customer.Name = name
	}
	if req.Kind != nil {
		kind := strings.TrimSpace(*req.Kind)
		if kind != domain.KindIndividual && kind != domain.KindCompany {
			return domain.Customer{}, domain.ErrInvalidKind
		}
		customer.Kind = kind
	}
	if req.Document != nil {
		customer.Document = strings.TrimSpace(*req.Document)
	}
	if req.Email != nil {
		customer.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		customer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		customer.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		customer.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		customer.State = strings.TrimSpace(*req.State)
	}
	if req.ZipCode != nil {
		customer.ZipCode = strings.TrimSpace(*req.ZipCode)
	}
	if req.Notes != nil {
		customer.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Active != nil {
		customer.Active = *req.Active
	}
	customer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Customer{}, domain.ErrDocumentTaken
		}
		return domain.Customer{}, err
	}

	return *customer, nil
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

	customer, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrNotFound
	}

	open, err := s.repo.CountOpenOrders(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return domain.ErrHasOpenOrders
	}

	return s.repo.Delete(ctx, s.db, companyID, id)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Customer, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Customer{}, domain.ErrInvalidCompany
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.Customer{}, err
	}

	customer, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ListCustomerResponse{}, domain.ErrInvalidCompany
	}

	filter := domain.ListCustomerFilter{
		Search: strings.TrimSpace(req.Search),
		Kind:   strings.TrimSpace(req.Kind),
		Active: req.Active,
	}

	customers, total, err := s.repo.List(ctx, s.db, companyID, filter, req.Params)
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	return domain.ListCustomerResponse{
		Customers: customers,
		Meta:      pagination.NewMeta(req.Params, total),
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
