package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	KindIndividual = "individual"
	KindCompany    = "company"
)

type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID `gorm:"not null;index" json:"company_id"`
	Name      string       `gorm:"not null" json:"name"`
	Kind      string       `gorm:"not null;default:individual" json:"kind"`
	Document  string       `json:"document,omitempty"`
	Email     string       `json:"email,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	City      string       `json:"city,omitempty"`
	State     string       `json:"state,omitempty"`
	ZipCode   string       `json:"zip_code,omitempty"`
	Notes     string       `json:"notes,omitempty"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
