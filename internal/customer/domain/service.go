package domain

import (
	"context"
	"errors"

	"github.com/gestorhub/gestor/pkg/db/pagination"
)

type CreateCustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	Kind     string `json:"kind"`
	Document string `json:"document"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Notes    string `json:"notes"`
}

type UpdateCustomerRequest struct {
	ID       string  `json:"-"`
	Name     *string `json:"name"`
	Kind     *string `json:"kind"`
	Document *string `json:"document"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	ZipCode  *string `json:"zip_code"`
	Notes    *string `json:"notes"`
	Active   *bool   `json:"active"`
}

type ListCustomerRequest struct {
	pagination.Params
	Search string `form:"search"`
	Kind   string `form:"kind"`
	Active *bool  `form:"active"`
}

type ListCustomerFilter struct {
	Search string
	Kind   string
	Active *bool
}

type ListCustomerResponse struct {
	Customers []Customer      `json:"data"`
	Meta      pagination.Meta `json:"meta"`
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidKind    = errors.New("invalid_kind")
	ErrInvalidID      = errors.New("invalid_id")
	ErrDocumentTaken  = errors.New("document_taken")
	ErrNotFound       = errors.New("not_found")
	ErrHasOpenOrders  = errors.New("customer_has_open_orders")
)
