package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Role struct {
	ID          snowflake.ID                `gorm:"primaryKey" json:"id"`
	CompanyID   snowflake.ID                `gorm:"not null;index" json:"company_id"`
	Name        string                      `gorm:"not null" json:"name"`
	Description string                      `json:"description,omitempty"`
	Permissions datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"permissions"`
	CreatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
