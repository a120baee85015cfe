package auth

import (
	"github.com/gestorhub/gestor/internal/auth/repository"
	"github.com/gestorhub/gestor/internal/auth/service"
	"github.com/gestorhub/gestor/internal/auth/token"
	"github.com/gestorhub/gestor/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(func(cfg config.Config) (*token.Manager, error) {
		return token.NewManager(cfg.JWTSecret, cfg.JWTRefreshSecret)
	}),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
