package domain

import (
	"context"
	"errors"
)

type RegisterRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Document    string `json:"document"`
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	TokenPair
	User    User    `json:"user"`
	Company Company `json:"company"`
}

type Service interface {
	Register(context.Context, RegisterRequest) (AuthResponse, error)
	Login(context.Context, LoginRequest) (AuthResponse, error)
	Refresh(context.Context, RefreshRequest) (TokenPair, error)
	ForgotPassword(context.Context, ForgotPasswordRequest) (string, error)
	ResetPassword(context.Context, ResetPasswordRequest) error
	Profile(context.Context) (User, error)
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrWeakPassword       = errors.New("weak_password")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserDisabled       = errors.New("user_disabled")
	ErrNotFound           = errors.New("not_found")
)
