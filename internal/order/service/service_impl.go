package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/order/domain"
	"github.com/gestorhub/gestor/internal/requestctx"
	"github.com/gestorhub/gestor/internal/sequence"
	"github.com/gestorhub/gestor/internal/stock"
	"github.com/gestorhub/gestor/pkg/db"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Two concurrent creations can draw the same number; the unique index
// on (company_id, number) rejects one and the insert is retried.
const maxNumberRetries = 3

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
		log:   p.Log.Named("order.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Order{}, domain.ErrInvalidCompany
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Order{}, domain.ErrInvalidCustomer
	}
	var carrierID *snowflake.ID
	if strings.TrimSpace(req.CarrierID) != "" {
		id, err := parseID(req.CarrierID)
		if err != nil {
			return domain.Order{}, domain.ErrInvalidCarrier
		}
		carrierID = &id
	}
	if len(req.Items) == 0 {
		return domain.Order{}, domain.ErrInvalidItems
	}
	if req.Discount.IsNegative() || req.Freight.IsNegative() {
		return domain.Order{}, domain.ErrInvalidDiscount
	}

	var created domain.Order
	for attempt := 0; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			order, err := s.buildOrder(ctx, tx, companyID, customerID, carrierID, req)
			if err != nil {
				return err
			}
			created = *order
			return nil
		})
		if err == nil {
			break
		}
		if db.IsDuplicateKeyErr(err) && attempt < maxNumberRetries {
			continue
		}
		return domain.Order{}, err
	}

	s.log.Info("order created",
		zap.String("order_id", created.ID.String()),
		zap.String("number", created.Number),
	)
	return s.GetByID(ctx, created.ID.String())
}

func (s *Service) buildOrder(ctx context.Context, tx *gorm.DB, companyID, customerID snowflake.ID, carrierID *snowflake.ID, req domain.CreateOrderRequest) (*domain.Order, error) {
	ok, err := s.repo.CustomerExists(ctx, tx, companyID, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCustomer
	}
	if carrierID != nil {
		ok, err := s.repo.CarrierExists(ctx, tx, companyID, *carrierID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrInvalidCarrier
		}
	}

	now := time.Now().UTC()
	number, err := sequence.Next(ctx, tx, "orders", companyID, sequence.OrderPrefix(now))
	if err != nil {
		return nil, err
	}

	order := domain.Order{
		ID:         s.genID.Generate(),
		CompanyID:  companyID,
		CustomerID: customerID,
		CarrierID:  carrierID,
		Number:     number,
		Status:     domain.StatusPending,
		Discount:   req.Discount,
		Freight:    req.Freight,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	items, itemsTotal, err := s.buildItems(ctx, tx, companyID, order.ID, req.Items)
	if err != nil {
		return nil, err
	}

	order.Total = itemsTotal.Sub(order.Discount).Add(order.Freight)
	if order.Total.IsNegative() {
		return nil, domain.ErrInvalidDiscount
	}
	order.Items = items

	if err := s.repo.Insert(ctx, tx, &order); err != nil {
		return nil, err
	}
	if err := s.repo.InsertItems(ctx, tx, items); err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := stock.Apply(ctx, tx, s.genID, companyID, item.ProductID, -item.Quantity, stock.ReasonSale, number); err != nil {
			return nil, err
		}
	}

	return &order, nil
}

func (s *Service) buildItems(ctx context.Context, tx *gorm.DB, companyID, orderID snowflake.ID, reqs []domain.ItemRequest) ([]domain.Item, decimal.Decimal, error) {
	items := make([]domain.Item, 0, len(reqs))
	total := decimal.Zero

	for _, itemReq := range reqs {
		productID, err := parseID(itemReq.ProductID)
		if err != nil {
			return nil, decimal.Zero, domain.ErrInvalidItems
		}
		if itemReq.Quantity <= 0 {
			return nil, decimal.Zero, domain.ErrInvalidQuantity
		}
		if itemReq.Discount.IsNegative() {
			return nil, decimal.Zero, domain.ErrInvalidDiscount
		}

		product, err := s.repo.FindSaleProduct(ctx, tx, companyID, productID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if product == nil {
			return nil, decimal.Zero, domain.ErrInvalidItems
		}
		if !product.Active {
			return nil, decimal.Zero, domain.ErrProductInactive
		}

		unitPrice := product.Price
		if itemReq.UnitPrice != nil {
			if itemReq.UnitPrice.IsNegative() {
				return nil, decimal.Zero, domain.ErrInvalidItems
			}
			unitPrice = *itemReq.UnitPrice
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(itemReq.Quantity)).Sub(itemReq.Discount)
		if lineTotal.IsNegative() {
			return nil, decimal.Zero, domain.ErrInvalidDiscount
		}

		items = append(items, domain.Item{
			ID:          s.genID.Generate(),
			OrderID:     orderID,
			ProductID:   productID,
			Quantity:    itemReq.Quantity,
			UnitPrice:   unitPrice,
			Discount:    itemReq.Discount,
			Total:       lineTotal,
			ProductName: product.Name,
		})
		total = total.Add(lineTotal)
	}

	return items, total, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateOrderRequest) (domain.Order, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Order{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Order{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByID(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Status != domain.StatusPending {
			return domain.ErrNotPending
		}

		if req.CustomerID != nil {
			customerID, err := parseID(*req.CustomerID)
			if err != nil {
				return domain.ErrInvalidCustomer
			}
			ok, err := s.repo.CustomerExists(ctx, tx, companyID, customerID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrInvalidCustomer
			}
			order.CustomerID = customerID
		}
		if req.CarrierID != nil {
			if strings.TrimSpace(*req.CarrierID) == "" {
				order.CarrierID = nil
			} else {
				carrierID, err := parseID(*req.CarrierID)
				if err != nil {
					return domain.ErrInvalidCarrier
				}
				ok, err := s.repo.CarrierExists(ctx, tx, companyID, carrierID)
				if err != nil {
					return err
				}
				if !ok {
					return domain.ErrInvalidCarrier
				}
				order.CarrierID = &carrierID
			}
		}
		if req.Discount != nil {
			if req.Discount.IsNegative() {
				return domain.ErrInvalidDiscount
			}
			order.Discount = *req.Discount
		}
		if req.Freight != nil {
			if req.Freight.IsNegative() {
				return domain.ErrInvalidDiscount
			}
			order.Freight = *req.Freight
		}
		if req.Notes != nil {
			order.Notes = strings.TrimSpace(*req.Notes)
		}

		items := order.Items
		itemsTotal := decimal.Zero
		if req.Items != nil {
			if len(req.Items) == 0 {
				return domain.ErrInvalidItems
			}

			newItems, newTotal, err := s.buildItems(ctx, tx, companyID, order.ID, req.Items)
			if err != nil {
				return err
			}

			// Stock moves by the difference between the old and the
			// new quantity of each product, never the full amount.
			if err := s.applyItemDiff(ctx, tx, companyID, order.Number, order.Items, newItems); err != nil {
				return err
			}
			if err := s.repo.DeleteItems(ctx, tx, order.ID); err != nil {
				return err
			}
			if err := s.repo.InsertItems(ctx, tx, newItems); err != nil {
				return err
			}
			items = newItems
			itemsTotal = newTotal
		} else {
			for _, item := range items {
				itemsTotal = itemsTotal.Add(item.Total)
			}
		}

		order.Total = itemsTotal.Sub(order.Discount).Add(order.Freight)
		if order.Total.IsNegative() {
			return domain.ErrInvalidDiscount
		}
		order.UpdatedAt = time.Now().UTC()

		return s.repo.Update(ctx, tx, order)
	})
	if err != nil {
		return domain.Order{}, err
	}

	return s.GetByID(ctx, req.ID)
}

func (s *Service) applyItemDiff(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, number string, oldItems, newItems []domain.Item) error {
	deltas := map[snowflake.ID]int64{}
	for _, item := range oldItems {
		deltas[item.ProductID] += item.Quantity
	}
	for _, item := range newItems {
		deltas[item.ProductID] -= item.Quantity
	}

	for productID, delta := range deltas {
		if delta == 0 {
			continue
		}
		reason := stock.ReasonSale
		if delta > 0 {
			reason = stock.ReasonSaleReversal
		}
		if err := stock.Apply(ctx, tx, s.genID, companyID, productID, delta, reason, number); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Order, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Order{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Order{}, err
	}
	if !req.Status.Valid() {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByID(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !order.Status.CanTransitionTo(req.Status) {
			return domain.ErrInvalidTransition
		}

		if req.Status == domain.StatusCancelled && order.Status.HoldsStock() {
			for _, item := range order.Items {
				if err := stock.Apply(ctx, tx, s.genID, companyID, item.ProductID, item.Quantity, stock.ReasonSaleReversal, order.Number); err != nil {
					return err
				}
			}
		}

		return s.repo.UpdateStatus(ctx, tx, companyID, id, req.Status)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.log.Info("order status changed",
		zap.String("order_id", id.String()),
		zap.String("status", string(req.Status)),
	)
	return s.GetByID(ctx, req.ID)
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

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByID(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Status != domain.StatusPending {
			return domain.ErrNotPending
		}

		for _, item := range order.Items {
			if err := stock.Apply(ctx, tx, s.genID, companyID, item.ProductID, item.Quantity, stock.ReasonSaleReversal, order.Number); err != nil {
				return err
			}
		}

		if err := s.repo.DeleteItems(ctx, tx, order.ID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, companyID, id)
	})
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Order, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Order{}, domain.ErrInvalidCompany
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	return *order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOrderRequest) (domain.ListOrderResponse, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ListOrderResponse{}, domain.ErrInvalidCompany
	}

	filter := domain.ListOrderFilter{
		CustomerID:  strings.TrimSpace(req.CustomerID),
		Number:      strings.TrimSpace(req.Number),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed := domain.Status(status)
		if !parsed.Valid() {
			return domain.ListOrderResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = parsed
	}

	orders, total, err := s.repo.List(ctx, s.db, companyID, filter, req.Params)
	if err != nil {
		return domain.ListOrderResponse{}, err
	}

	return domain.ListOrderResponse{
		Orders: orders,
		Meta:   pagination.NewMeta(req.Params, total),
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
