package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/gestorhub/gestor/internal/auth/domain"
	"github.com/gestorhub/gestor/internal/auth/repository"
	"github.com/gestorhub/gestor/internal/auth/token"
	"github.com/gestorhub/gestor/internal/requestctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&domain.Company{}, &domain.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	tokens, err := token.NewManager("test-secret", "test-refresh-secret")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}

	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Tokens: tokens,
	})
	return svc, db
}

func register(t *testing.T, svc domain.Service, email string) domain.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), domain.RegisterRequest{
		CompanyName: "Oficina do Zé",
		Name:        "José Lima",
		Email:       email,
		Password:    "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return resp
}

func TestRegisterIssuesTokens(t *testing.T) {
	svc, _ := setup(t)

	resp := register(t, svc, "ze@example.com")

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User.Role != "admin" {
		t.Fatalf("expected admin role, got %s", resp.User.Role)
	}
	if resp.User.CompanyID != resp.Company.ID {
		t.Fatal("user not linked to the registered company")
	}
	if resp.User.Email != "ze@example.com" {
		t.Fatalf("unexpected email %s", resp.User.Email)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _ := setup(t)

	resp := register(t, svc, "  ZE@Example.COM ")
	if resp.User.Email != "ze@example.com" {
		t.Fatalf("expected lowercased email, got %s", resp.User.Email)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := setup(t)

	register(t, svc, "ze@example.com")

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		CompanyName: "Another Shop",
		Name:        "Maria",
		Email:       "ze@example.com",
		Password:    "hunter22",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		CompanyName: "Shop",
		Name:        "Maria",
		Email:       "maria@example.com",
		Password:    "12345",
	})
	if !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := setup(t)
	register(t, svc, "ze@example.com")

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "ZE@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.Company.Name != "Oficina do Zé" {
		t.Fatalf("unexpected company %s", resp.Company.Name)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := setup(t)
	register(t, svc, "ze@example.com")

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "ze@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter22",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginDisabledUser(t *testing.T) {
	svc, db := setup(t)
	resp := register(t, svc, "ze@example.com")

	if err := db.Exec(`UPDATE users SET active = 0 WHERE id = ?`, resp.User.ID).Error; err != nil {
		t.Fatalf("disable user: %v", err)
	}

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "ze@example.com",
		Password: "hunter22",
	})
	if !errors.Is(err, domain.ErrUserDisabled) {
		t.Fatalf("expected user disabled, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	svc, _ := setup(t)
	resp := register(t, svc, "ze@example.com")

	pair, err := svc.Refresh(context.Background(), domain.RefreshRequest{
		RefreshToken: resp.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a fresh token pair")
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := setup(t)
	resp := register(t, svc, "ze@example.com")

	_, err := svc.Refresh(context.Background(), domain.RefreshRequest{
		RefreshToken: resp.AccessToken,
	})
	if err == nil {
		t.Fatal("expected access token to be rejected for refresh")
	}
}

func TestRefreshDisabledUser(t *testing.T) {
	svc, db := setup(t)
	resp := register(t, svc, "ze@example.com")

	if err := db.Exec(`UPDATE users SET active = 0 WHERE id = ?`, resp.User.ID).Error; err != nil {
		t.Fatalf("disable user: %v", err)
	}

	_, err := svc.Refresh(context.Background(), domain.RefreshRequest{
		RefreshToken: resp.RefreshToken,
	})
	if !errors.Is(err, domain.ErrUserDisabled) {
		t.Fatalf("expected user disabled, got %v", err)
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, _ := setup(t)
	register(t, svc, "ze@example.com")

	reset, err := svc.ForgotPassword(context.Background(), domain.ForgotPasswordRequest{
		Email: "ze@example.com",
	})
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if reset == "" {
		t.Fatal("expected a reset token")
	}

	if err := svc.ResetPassword(context.Background(), domain.ResetPasswordRequest{
		Token:    reset,
		Password: "new-password",
	}); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "ze@example.com",
		Password: "hunter22",
	}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected old password to stop working, got %v", err)
	}
	if _, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "ze@example.com",
		Password: "new-password",
	}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestForgotPasswordHidesUnknownEmail(t *testing.T) {
	svc, _ := setup(t)

	reset, err := svc.ForgotPassword(context.Background(), domain.ForgotPasswordRequest{
		Email: "nobody@example.com",
	})
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if reset != "" {
		t.Fatal("expected no token for unknown email")
	}
}

func TestResetPasswordRejectsAccessToken(t *testing.T) {
	svc, _ := setup(t)
	resp := register(t, svc, "ze@example.com")

	err := svc.ResetPassword(context.Background(), domain.ResetPasswordRequest{
		Token:    resp.AccessToken,
		Password: "new-password",
	})
	if err == nil {
		t.Fatal("expected access token to be rejected for reset")
	}
}

func TestProfile(t *testing.T) {
	svc, _ := setup(t)
	resp := register(t, svc, "ze@example.com")

	ctx := requestctx.WithActor(context.Background(), requestctx.Actor{
		UserID:    resp.User.ID,
		CompanyID: resp.User.CompanyID,
		Role:      resp.User.Role,
	})

	user, err := svc.Profile(ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if user.Email != "ze@example.com" {
		t.Fatalf("unexpected email %s", user.Email)
	}
}
