package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/carrier/domain"
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
		log:   p.Log.Named("carrier.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCarrierRequest) (domain.Carrier, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Carrier{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Carrier{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	carrier := domain.Carrier{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		Name:      name,
		Document:  strings.TrimSpace(req.Document),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		ZipCode:   strings.TrimSpace(req.ZipCode),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &carrier); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Carrier{}, domain.ErrDocumentTaken
		}
		return domain.Carrier{}, err
	}

	return carrier, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCarrierRequest) (domain.Carrier, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Carrier{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Carrier{}, err
	}

	carrier, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Carrier{}, err
	}
	if carrier == nil {
		return domain.Carrier{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Carrier{}, domain.ErrInvalidName
		}
		carrier.Name = name
	}
	if req.Document != nil {
		carrier.Document = strings.TrimSpace(*req.Document)
	}
	if req.Email != nil {
		carrier.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		carrier.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		carrier.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		carrier.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		carrier.State = strings.TrimSpace(*req.State)
	}
	if req.ZipCode != nil {
		carrier.ZipCode = strings.TrimSpace(*req.ZipCode)
	}
	if req.Active != nil {
		carrier.Active = *req.Active
	}
	carrier.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, carrier); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Carrier{}, domain.ErrDocumentTaken
		}
		return domain.Carrier{}, err
	}

	return *carrier, nil
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

	carrier, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if carrier == nil {
		return domain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, companyID, id)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Carrier, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Carrier{}, domain.ErrInvalidCompany
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.Carrier{}, err
	}

	carrier, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Carrier{}, err
	}
	if carrier == nil {
		return domain.Carrier{}, domain.ErrNotFound
	}
	return *carrier, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCarrierRequest) (domain.ListCarrierResponse, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ListCarrierResponse{}, domain.ErrInvalidCompany
	}

	filter := domain.ListCarrierFilter{
		Search: strings.TrimSpace(req.Search),
		Active: req.Active,
	}

	carriers, total, err := s.repo.List(ctx, s.db, companyID, filter, req.Params)
	if err != nil {
		return domain.ListCarrierResponse{}, err
	}

	return domain.ListCarrierResponse{
		Carriers: carriers,
		Meta:     pagination.NewMeta(req.Params, total),
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
