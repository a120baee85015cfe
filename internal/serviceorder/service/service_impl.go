package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/requestctx"
	"github.com/gestorhub/gestor/internal/sequence"
	"github.com/gestorhub/gestor/internal/serviceorder/domain"
	"github.com/gestorhub/gestor/internal/stock"
	"github.com/gestorhub/gestor/pkg/db"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

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
		log:   p.Log.Named("serviceorder.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateServiceOrderRequest) (domain.ServiceOrder, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ServiceOrder{}, domain.ErrInvalidCompany
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.ServiceOrder{}, domain.ErrInvalidCustomer
	}
	if req.LaborCost.IsNegative() || req.Discount.IsNegative() {
		return domain.ServiceOrder{}, domain.ErrInvalidAmount
	}

	var created domain.ServiceOrder
	for attempt := 0; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			order, err := s.buildServiceOrder(ctx, tx, companyID, customerID, req)
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
		return domain.ServiceOrder{}, err
	}

	s.log.Info("service order created",
		zap.String("service_order_id", created.ID.String()),
		zap.String("number", created.Number),
	)
	return s.GetByID(ctx, created.ID.String())
}

func (s *Service) buildServiceOrder(ctx context.Context, tx *gorm.DB, companyID, customerID snowflake.ID, req domain.CreateServiceOrderRequest) (*domain.ServiceOrder, error) {
	ok, err := s.repo.CustomerExists(ctx, tx, companyID, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCustomer
	}

	priority := domain.PriorityNormal
	if raw := strings.TrimSpace(req.Priority); raw != "" {
		priority = domain.Priority(raw)
		if !priority.Valid() {
			return nil, domain.ErrInvalidPriority
		}
	}

	employeeID, err := s.resolveEmployee(ctx, tx, companyID, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	number, err := sequence.Next(ctx, tx, "service_orders", companyID, sequence.ServiceOrderPrefix(now))
	if err != nil {
		return nil, err
	}

	order := domain.ServiceOrder{
		ID:            s.genID.Generate(),
		CompanyID:     companyID,
		CustomerID:    customerID,
		Number:        number,
		Status:        domain.StatusPending,
		Priority:      priority,
		EmployeeID:    employeeID,
		Equipment:     strings.TrimSpace(req.Equipment),
		ReportedIssue: strings.TrimSpace(req.ReportedIssue),
		Diagnosis:     strings.TrimSpace(req.Diagnosis),
		LaborCost:     req.LaborCost,
		Discount:      req.Discount,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	items, itemsTotal, err := s.buildItems(ctx, tx, companyID, order.ID, req.Items)
	if err != nil {
		return nil, err
	}

	order.Total = itemsTotal.Add(order.LaborCost).Sub(order.Discount)
	if order.Total.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	order.Items = items

	if err := s.repo.Insert(ctx, tx, &order); err != nil {
		return nil, err
	}
	if err := s.repo.InsertItems(ctx, tx, items); err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		if err := stock.Apply(ctx, tx, s.genID, companyID, *item.ProductID, -item.Quantity, stock.ReasonServiceOrder, number); err != nil {
			return nil, err
		}
	}

	event := domain.Event{
		ID:             s.genID.Generate(),
		ServiceOrderID: order.ID,
		UserID:         actorID(ctx),
		ToStatus:       domain.StatusPending,
		CreatedAt:      now,
	}
	if err := s.repo.InsertEvent(ctx, tx, &event); err != nil {
		return nil, err
	}

	return &order, nil
}

func (s *Service) resolveEmployee(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, raw string) (*snowflake.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	employeeID, err := parseID(raw)
	if err != nil {
		return nil, domain.ErrInvalidEmployee
	}
	ok, err := s.repo.EmployeeExists(ctx, tx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidEmployee
	}
	return &employeeID, nil
}

func (s *Service) buildItems(ctx context.Context, tx *gorm.DB, companyID, orderID snowflake.ID, reqs []domain.ItemRequest) ([]domain.Item, decimal.Decimal, error) {
	items := make([]domain.Item, 0, len(reqs))
	total := decimal.Zero

	for _, itemReq := range reqs {
		if itemReq.Quantity <= 0 {
			return nil, decimal.Zero, domain.ErrInvalidQuantity
		}

		item := domain.Item{
			ID:             s.genID.Generate(),
			ServiceOrderID: orderID,
			Description:    strings.TrimSpace(itemReq.Description),
			Quantity:       itemReq.Quantity,
		}

		if strings.TrimSpace(itemReq.ProductID) != "" {
			productID, err := parseID(itemReq.ProductID)
			if err != nil {
				return nil, decimal.Zero, domain.ErrInvalidItems
			}
			product, err := s.repo.FindPartProduct(ctx, tx, companyID, productID)
			if err != nil {
				return nil, decimal.Zero, err
			}
			if product == nil {
				return nil, decimal.Zero, domain.ErrInvalidItems
			}
			if !product.Active {
				return nil, decimal.Zero, domain.ErrProductInactive
			}
			item.ProductID = &productID
			item.ProductName = product.Name
			item.UnitPrice = product.Price
		} else if item.Description == "" {
			return nil, decimal.Zero, domain.ErrInvalidItems
		}

		if itemReq.UnitPrice != nil {
			if itemReq.UnitPrice.IsNegative() {
				return nil, decimal.Zero, domain.ErrInvalidItems
			}
			item.UnitPrice = *itemReq.UnitPrice
		}

		item.Total = item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		items = append(items, item)
		total = total.Add(item.Total)
	}

	return items, total, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateServiceOrderRequest) (domain.ServiceOrder, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ServiceOrder{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByID(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Status.Terminal() {
			return domain.ErrNotEditable
		}

		if req.Priority != nil {
			priority := domain.Priority(strings.TrimSpace(*req.Priority))
			if !priority.Valid() {
				return domain.ErrInvalidPriority
			}
			order.Priority = priority
		}
		if req.EmployeeID != nil {
			// Empty string unassigns the order.
			employeeID, err := s.resolveEmployee(ctx, tx, companyID, *req.EmployeeID)
			if err != nil {
				return err
			}
			order.EmployeeID = employeeID
		}
		if req.Equipment != nil {
			order.Equipment = strings.TrimSpace(*req.Equipment)
		}
		if req.ReportedIssue != nil {
			order.ReportedIssue = strings.TrimSpace(*req.ReportedIssue)
		}
		if req.Diagnosis != nil {
			order.Diagnosis = strings.TrimSpace(*req.Diagnosis)
		}
		if req.LaborCost != nil {
			if req.LaborCost.IsNegative() {
				return domain.ErrInvalidAmount
			}
			order.LaborCost = *req.LaborCost
		}
		if req.Discount != nil {
			if req.Discount.IsNegative() {
				return domain.ErrInvalidAmount
			}
			order.Discount = *req.Discount
		}
		if req.Notes != nil {
			order.Notes = strings.TrimSpace(*req.Notes)
		}

		items := order.Items
		itemsTotal := decimal.Zero
		if req.Items != nil {
			newItems, newTotal, err := s.buildItems(ctx, tx, companyID, order.ID, req.Items)
			if err != nil {
				return err
			}
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

		order.Total = itemsTotal.Add(order.LaborCost).Sub(order.Discount)
		if order.Total.IsNegative() {
			return domain.ErrInvalidAmount
		}
		order.UpdatedAt = time.Now().UTC()

		return s.repo.Update(ctx, tx, order)
	})
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	return s.GetByID(ctx, req.ID)
}

func (s *Service) applyItemDiff(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, number string, oldItems, newItems []domain.Item) error {
	deltas := map[snowflake.ID]int64{}
	for _, item := range oldItems {
		if item.ProductID != nil {
			deltas[*item.ProductID] += item.Quantity
		}
	}
	for _, item := range newItems {
		if item.ProductID != nil {
			deltas[*item.ProductID] -= item.Quantity
		}
	}

	for productID, delta := range deltas {
		if delta == 0 {
			continue
		}
		if err := stock.Apply(ctx, tx, s.genID, companyID, productID, delta, stock.ReasonServiceOrder, number); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.ServiceOrder, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ServiceOrder{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	if !req.Status.Valid() {
		return domain.ServiceOrder{}, domain.ErrInvalidStatus
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

		now := time.Now().UTC()
		fromStatus := order.Status
		order.Status = req.Status
		order.UpdatedAt = now

		switch req.Status {
		case domain.StatusInProgress:
			if order.StartedAt == nil {
				order.StartedAt = &now
			}
		case domain.StatusCompleted:
			order.CompletedAt = &now
		case domain.StatusCancelled:
			// Return every part drawn from stock.
			for _, item := range order.Items {
				if item.ProductID == nil {
					continue
				}
				if err := stock.Apply(ctx, tx, s.genID, companyID, *item.ProductID, item.Quantity, stock.ReasonServiceOrderReversal, order.Number); err != nil {
					return err
				}
			}
		}

		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}

		event := domain.Event{
			ID:             s.genID.Generate(),
			ServiceOrderID: order.ID,
			UserID:         actorID(ctx),
			FromStatus:     fromStatus,
			ToStatus:       req.Status,
			Note:           strings.TrimSpace(req.Note),
			CreatedAt:      now,
		}
		return s.repo.InsertEvent(ctx, tx, &event)
	})
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	s.log.Info("service order status changed",
		zap.String("service_order_id", id.String()),
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
			return domain.ErrNotEditable
		}

		for _, item := range order.Items {
			if item.ProductID == nil {
				continue
			}
			if err := stock.Apply(ctx, tx, s.genID, companyID, *item.ProductID, item.Quantity, stock.ReasonServiceOrderReversal, order.Number); err != nil {
				return err
			}
		}

		if err := s.repo.DeleteEvents(ctx, tx, order.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteItems(ctx, tx, order.ID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, companyID, id)
	})
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.ServiceOrder, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ServiceOrder{}, domain.ErrInvalidCompany
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	order, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	if order == nil {
		return domain.ServiceOrder{}, domain.ErrNotFound
	}
	return *order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListServiceOrderRequest) (domain.ListServiceOrderResponse, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ListServiceOrderResponse{}, domain.ErrInvalidCompany
	}

	filter := domain.ListServiceOrderFilter{
		CustomerID:  strings.TrimSpace(req.CustomerID),
		EmployeeID:  strings.TrimSpace(req.EmployeeID),
		Number:      strings.TrimSpace(req.Number),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed := domain.Status(status)
		if !parsed.Valid() {
			return domain.ListServiceOrderResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = parsed
	}
	if priority := strings.TrimSpace(req.Priority); priority != "" {
		parsed := domain.Priority(priority)
		if !parsed.Valid() {
			return domain.ListServiceOrderResponse{}, domain.ErrInvalidPriority
		}
		filter.Priority = parsed
	}

	orders, total, err := s.repo.List(ctx, s.db, companyID, filter, req.Params)
	if err != nil {
		return domain.ListServiceOrderResponse{}, err
	}

	return domain.ListServiceOrderResponse{
		ServiceOrders: orders,
		Meta:          pagination.NewMeta(req.Params, total),
	}, nil
}

func actorID(ctx context.Context) *snowflake.ID {
	actor, ok := requestctx.ActorFromContext(ctx)
	if !ok || actor.UserID == 0 {
		return nil
	}
	id := actor.UserID
	return &id
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
