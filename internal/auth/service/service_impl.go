package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/auth/domain"
	"github.com/gestorhub/gestor/internal/auth/token"
	"github.com/gestorhub/gestor/internal/requestctx"
	"github.com/gestorhub/gestor/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Tokens *token.Manager
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	tokens *token.Manager
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		tokens: p.Tokens,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	companyName := strings.TrimSpace(req.CompanyName)
	if companyName == "" {
		return domain.AuthResponse{}, domain.ErrInvalidName
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.AuthResponse{}, domain.ErrInvalidName
	}
	email := normalizeEmail(req.Email)
	if email == "" {
		return domain.AuthResponse{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return domain.AuthResponse{}, domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	now := time.Now().UTC()
	company := domain.Company{
		ID:        s.genID.Generate(),
		Name:      companyName,
		Document:  strings.TrimSpace(req.Document),
		Email:     email,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := domain.User{
		ID:           s.genID.Generate(),
		CompanyID:    company.ID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "admin",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertCompany(ctx, tx, &company); err != nil {
			return err
		}
		return s.repo.InsertUser(ctx, tx, &user)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.AuthResponse{}, domain.ErrEmailTaken
		}
		return domain.AuthResponse{}, err
	}

	s.log.Info("company registered",
		zap.String("company_id", company.ID.String()),
		zap.String("user_id", user.ID.String()),
	)

	pair, err := s.issuePair(user)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	return domain.AuthResponse{TokenPair: pair, User: user, Company: company}, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if user == nil {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return domain.AuthResponse{}, domain.ErrUserDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}

	company, err := s.repo.FindCompanyByID(ctx, s.db, user.CompanyID)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if company == nil {
		return domain.AuthResponse{}, domain.ErrNotFound
	}

	pair, err := s.issuePair(*user)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	return domain.AuthResponse{TokenPair: pair, User: *user, Company: *company}, nil
}

func (s *Service) Refresh(ctx context.Context, req domain.RefreshRequest) (domain.TokenPair, error) {
	identity, err := s.tokens.Verify(req.RefreshToken, token.KindRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}

	// Re-read the user so a disabled account cannot keep refreshing.
	user, err := s.repo.FindUserByID(ctx, s.db, identity.UserID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if user == nil {
		return domain.TokenPair{}, domain.ErrNotFound
	}
	if !user.Active {
		return domain.TokenPair{}, domain.ErrUserDisabled
	}

	return s.issuePair(*user)
}

func (s *Service) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) (string, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return "", domain.ErrInvalidEmail
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		// Do not reveal whether the address is registered.
		return "", nil
	}

	reset, err := s.tokens.Issue(identityOf(*user), token.KindReset)
	if err != nil {
		return "", err
	}

	s.log.Info("password reset requested", zap.String("user_id", user.ID.String()))
	return reset, nil
}

func (s *Service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	identity, err := s.tokens.Verify(req.Token, token.KindReset)
	if err != nil {
		return err
	}
	if len(req.Password) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	user, err := s.repo.FindUserByID(ctx, s.db, identity.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(ctx, s.db, user.ID, string(hash))
}

func (s *Service) Profile(ctx context.Context) (domain.User, error) {
	actor, ok := requestctx.ActorFromContext(ctx)
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}

	user, err := s.repo.FindUserByID(ctx, s.db, actor.UserID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) issuePair(user domain.User) (domain.TokenPair, error) {
	identity := identityOf(user)
	access, err := s.tokens.Issue(identity, token.KindAccess)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.tokens.Issue(identity, token.KindRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func identityOf(user domain.User) token.Identity {
	return token.Identity{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	}
}

func normalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return ""
	}
	return email
}
