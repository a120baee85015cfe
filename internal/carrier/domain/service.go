package domain

import (
	"context"
	"errors"

	"github.com/gestorhub/gestor/pkg/db/pagination"
)

type CreateCarrierRequest struct {
	Name     string `json:"name" binding:"required"`
	Document string `json:"document"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
}

type UpdateCarrierRequest struct {
	ID       string  `json:"-"`
	Name     *string `json:"name"`
	Document *string `json:"document"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	ZipCode  *string `json:"zip_code"`
	Active   *bool   `json:"active"`
}

type ListCarrierRequest struct {
	pagination.Params
	Search string `form:"search"`
	Active *bool  `form:"active"`
}

type ListCarrierFilter struct {
	Search string
	Active *bool
}

type ListCarrierResponse struct {
	Carriers []Carrier       `json:"data"`
	Meta     pagination.Meta `json:"meta"`
}

type Service interface {
	Create(context.Context, CreateCarrierRequest) (Carrier, error)
	Update(context.Context, UpdateCarrierRequest) (Carrier, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Carrier, error)
	List(context.Context, ListCarrierRequest) (ListCarrierResponse, error)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidID      = errors.New("invalid_id")
	ErrDocumentTaken  = errors.New("document_taken")
	ErrNotFound       = errors.New("not_found")
)
