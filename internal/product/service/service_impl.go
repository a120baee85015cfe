package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/product/domain"
	"github.com/gestorhub/gestor/internal/requestctx"
	"github.com/gestorhub/gestor/internal/stock"
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
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Product{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}
	if req.Price.IsNegative() || req.Cost.IsNegative() {
		return domain.Product{}, domain.ErrInvalidPrice
	}
	if req.Stock < 0 || req.MinStock < 0 {
		return domain.Product{}, domain.ErrInvalidStock
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "un"
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          s.genID.Generate(),
		CompanyID:   companyID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Code:        strings.TrimSpace(req.Code),
		Barcode:     strings.TrimSpace(req.Barcode),
		Unit:        unit,
		Price:       req.Price,
		Cost:        req.Cost,
		MinStock:    req.MinStock,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &product); err != nil {
			return err
		}
		if req.Stock > 0 {
			return stock.Apply(ctx, tx, s.genID, companyID, product.ID, req.Stock, stock.ReasonAdjustment, "initial stock")
		}
		return nil
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrCodeTaken
		}
		return domain.Product{}, err
	}

	product.Stock = req.Stock
	return product, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProductRequest) (domain.Product, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Product{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Product{}, err
	}

	product, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, domain.ErrInvalidName
		}
		product.Name = name
	}
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
	}
	if req.Code != nil {
		product.Code = strings.TrimSpace(*req.Code)
	}
	if req.Barcode != nil {
		product.Barcode = strings.TrimSpace(*req.Barcode)
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit != "" {
			product.Unit = unit
		}
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return domain.Product{}, domain.ErrInvalidPrice
		}
		product.Price = *req.Price
	}
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return domain.Product{}, domain.ErrInvalidPrice
		}
		product.Cost = *req.Cost
	}
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return domain.Product{}, domain.ErrInvalidStock
		}
		product.MinStock = *req.MinStock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrCodeTaken
		}
		return domain.Product{}, err
	}

	return *product, nil
}

func (s *Service) AdjustStock(ctx context.Context, req domain.AdjustStockRequest) (domain.Product, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Product{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Product{}, err
	}
	if req.Quantity == 0 {
		return domain.Product{}, domain.ErrInvalidStock
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return stock.Apply(ctx, tx, s.genID, companyID, id, req.Quantity, stock.ReasonAdjustment, strings.TrimSpace(req.Notes))
	})
	if err != nil {
		return domain.Product{}, err
	}

	product, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *product, nil
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

	product, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}

	active, err := s.repo.CountActiveOrderItems(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.ErrHasActiveOrders
	}

	return s.repo.Delete(ctx, s.db, companyID, id)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Product, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Product{}, domain.ErrInvalidCompany
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.Product{}, err
	}

	product, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) (domain.ListProductResponse, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ListProductResponse{}, domain.ErrInvalidCompany
	}

	filter := domain.ListProductFilter{
		Search:     strings.TrimSpace(req.Search),
		Active:     req.Active,
		BelowStock: req.BelowStock,
	}

	products, total, err := s.repo.List(ctx, s.db, companyID, filter, req.Params)
	if err != nil {
		return domain.ListProductResponse{}, err
	}

	return domain.ListProductResponse{
		Products: products,
		Meta:     pagination.NewMeta(req.Params, total),
	}, nil
}

func (s *Service) ListMovements(ctx context.Context, rawID string, page pagination.Params) (domain.ListMovementsResponse, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ListMovementsResponse{}, domain.ErrInvalidCompany
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.ListMovementsResponse{}, err
	}

	product, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.ListMovementsResponse{}, err
	}
	if product == nil {
		return domain.ListMovementsResponse{}, domain.ErrNotFound
	}

	movements, total, err := s.repo.ListMovements(ctx, s.db, companyID, id, page)
	if err != nil {
		return domain.ListMovementsResponse{}, err
	}

	return domain.ListMovementsResponse{
		Movements: movements,
		Meta:      pagination.NewMeta(page, total),
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
