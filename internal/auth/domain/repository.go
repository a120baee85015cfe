package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertCompany(ctx context.Context, db *gorm.DB, company *Company) error
	InsertUser(ctx context.Context, db *gorm.DB, user *User) error
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindCompanyByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	UpdatePassword(ctx context.Context, db *gorm.DB, id snowflake.ID, passwordHash string) error
}
