package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/financial/domain"
	"github.com/gestorhub/gestor/internal/requestctx"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"github.com/shopspring/decimal"
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
		log:   p.Log.Named("financial.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTransactionRequest) (domain.Transaction, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Transaction{}, domain.ErrInvalidCompany
	}

	if !req.Kind.Valid() {
		return domain.Transaction{}, domain.ErrInvalidKind
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.Transaction{}, domain.ErrInvalidDescription
	}
	if !req.Amount.IsPositive() {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}
	if req.DueDate.IsZero() {
		return domain.Transaction{}, domain.ErrInvalidDueDate
	}

	customerID, err := parseOptionalID(req.CustomerID)
	if err != nil {
		return domain.Transaction{}, err
	}
	orderID, err := parseOptionalID(req.OrderID)
	if err != nil {
		return domain.Transaction{}, err
	}
	serviceOrderID, err := parseOptionalID(req.ServiceOrderID)
	if err != nil {
		return domain.Transaction{}, err
	}

	now := time.Now().UTC()
	transaction := domain.Transaction{
		ID:             s.genID.Generate(),
		CompanyID:      companyID,
		CustomerID:     customerID,
		OrderID:        orderID,
		ServiceOrderID: serviceOrderID,
		Kind:           req.Kind,
		Status:         domain.StatusPending,
		Description:    description,
		Category:       strings.TrimSpace(req.Category),
		Amount:         req.Amount,
		DueDate:        req.DueDate,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &transaction); err != nil {
		return domain.Transaction{}, err
	}

	return transaction, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTransactionRequest) (domain.Transaction, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Transaction{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Transaction{}, err
	}

	transaction, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	if transaction == nil {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if transaction.Status != domain.StatusPending {
		return domain.Transaction{}, domain.ErrNotPending
	}

	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return domain.Transaction{}, domain.ErrInvalidDescription
		}
		transaction.Description = description
	}
	if req.Category != nil {
		transaction.Category = strings.TrimSpace(*req.Category)
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return domain.Transaction{}, domain.ErrInvalidAmount
		}
		transaction.Amount = *req.Amount
	}
	if req.DueDate != nil {
		if req.DueDate.IsZero() {
			return domain.Transaction{}, domain.ErrInvalidDueDate
		}
		transaction.DueDate = *req.DueDate
	}
	if req.Notes != nil {
		transaction.Notes = strings.TrimSpace(*req.Notes)
	}
	transaction.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, transaction); err != nil {
		return domain.Transaction{}, err
	}
	return *transaction, nil
}

func (s *Service) Pay(ctx context.Context, req domain.PayTransactionRequest) (domain.Transaction, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Transaction{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Transaction{}, err
	}

	transaction, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	if transaction == nil {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if transaction.Status != domain.StatusPending {
		return domain.Transaction{}, domain.ErrNotPending
	}

	now := time.Now().UTC()
	paidAt := now
	if req.PaidAt != nil && !req.PaidAt.IsZero() {
		paidAt = req.PaidAt.UTC()
	}

	transaction.Status = domain.StatusPaid
	transaction.PaidAt = &paidAt
	transaction.PaymentMethod = strings.TrimSpace(req.Method)
	transaction.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, transaction); err != nil {
		return domain.Transaction{}, err
	}

	s.log.Info("transaction paid",
		zap.String("transaction_id", transaction.ID.String()),
		zap.String("kind", string(transaction.Kind)),
	)
	return *transaction, nil
}

func (s *Service) Cancel(ctx context.Context, req domain.CancelTransactionRequest) (domain.Transaction, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Transaction{}, domain.ErrInvalidCompany
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Transaction{}, err
	}

	transaction, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	if transaction == nil {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if transaction.Status != domain.StatusPending {
		return domain.Transaction{}, domain.ErrNotPending
	}

	transaction.Status = domain.StatusCancelled
	transaction.CancelReason = strings.TrimSpace(req.Reason)
	transaction.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, transaction); err != nil {
		return domain.Transaction{}, err
	}
	return *transaction, nil
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

	transaction, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if transaction == nil {
		return domain.ErrNotFound
	}
	if transaction.Status == domain.StatusPaid {
		return domain.ErrNotPending
	}

	return s.repo.Delete(ctx, s.db, companyID, id)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Transaction, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.Transaction{}, domain.ErrInvalidCompany
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.Transaction{}, err
	}

	transaction, err := s.repo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	if transaction == nil {
		return domain.Transaction{}, domain.ErrNotFound
	}
	return *transaction, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTransactionRequest) (domain.ListTransactionResponse, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ListTransactionResponse{}, domain.ErrInvalidCompany
	}

	filter := domain.ListTransactionFilter{
		Category: strings.TrimSpace(req.Category),
		DueFrom:  req.DueFrom,
		DueTo:    req.DueTo,
		Overdue:  req.Overdue,
	}
	if kind := strings.TrimSpace(req.Kind); kind != "" {
		parsed := domain.Kind(kind)
		if !parsed.Valid() {
			return domain.ListTransactionResponse{}, domain.ErrInvalidKind
		}
		filter.Kind = parsed
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.Status(status)
	}

	transactions, total, err := s.repo.List(ctx, s.db, companyID, filter, req.Params)
	if err != nil {
		return domain.ListTransactionResponse{}, err
	}

	return domain.ListTransactionResponse{
		Transactions: transactions,
		Meta:         pagination.NewMeta(req.Params, total),
	}, nil
}

// Receivables lists pending income, the amounts customers still owe,
// with the open total per due date alongside the page.
func (s *Service) Receivables(ctx context.Context, req domain.ListTransactionRequest) (domain.ListTransactionResponse, error) {
	return s.openByKind(ctx, req, domain.KindIncome)
}

// Payables lists pending expenses, the amounts the company still owes.
func (s *Service) Payables(ctx context.Context, req domain.ListTransactionRequest) (domain.ListTransactionResponse, error) {
	return s.openByKind(ctx, req, domain.KindExpense)
}

func (s *Service) openByKind(ctx context.Context, req domain.ListTransactionRequest, kind domain.Kind) (domain.ListTransactionResponse, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.ListTransactionResponse{}, domain.ErrInvalidCompany
	}

	req.Kind = string(kind)
	req.Status = string(domain.StatusPending)
	resp, err := s.List(ctx, req)
	if err != nil {
		return domain.ListTransactionResponse{}, err
	}

	filter := domain.ListTransactionFilter{
		Category: strings.TrimSpace(req.Category),
		DueFrom:  req.DueFrom,
		DueTo:    req.DueTo,
		Overdue:  req.Overdue,
	}
	totals, err := s.repo.TotalsByDueDate(ctx, s.db, companyID, kind, filter)
	if err != nil {
		return domain.ListTransactionResponse{}, err
	}
	resp.Totals = totals
	return resp, nil
}

func (s *Service) Cashflow(ctx context.Context, req domain.CashflowRequest) (domain.CashflowReport, error) {
	companyID, ok := requestctx.CompanyID(ctx)
	if !ok {
		return domain.CashflowReport{}, domain.ErrInvalidCompany
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Second)
	if req.From != nil {
		from = req.From.UTC()
	}
	if req.To != nil {
		to = req.To.UTC()
	}

	report := domain.CashflowReport{From: from, To: to}

	sums := []struct {
		kind   domain.Kind
		status domain.Status
		target *decimal.Decimal
	}{
		{domain.KindIncome, domain.StatusPaid, &report.Income},
		{domain.KindExpense, domain.StatusPaid, &report.Expense},
		{domain.KindIncome, domain.StatusPending, &report.PendingIncome},
		{domain.KindExpense, domain.StatusPending, &report.PendingExpense},
	}
	for _, sum := range sums {
		raw, err := s.repo.SumByKind(ctx, s.db, companyID, sum.kind, sum.status, from, to)
		if err != nil {
			return domain.CashflowReport{}, err
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.CashflowReport{}, err
		}
		*sum.target = value
	}

	report.Net = report.Income.Sub(report.Expense)
	return report, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseOptionalID(value string) (*snowflake.ID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := parseID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
