package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID    `gorm:"not null;index" json:"company_id"`
	RoleID    *snowflake.ID   `json:"role_id,omitempty"`
	Name      string          `gorm:"not null" json:"name"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Document  string          `json:"document,omitempty"`
	Position  string          `json:"position,omitempty"`
	Salary    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"salary"`
	HiredAt   *time.Time      `gorm:"type:date" json:"hired_at,omitempty"`
	Active    bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	RoleName string `gorm:"-" json:"role_name,omitempty"`
}
