package financial

import (
	"github.com/gestorhub/gestor/internal/financial/repository"
	"github.com/gestorhub/gestor/internal/financial/service"
	"go.uber.org/fx"
)

var Module = fx.Module("financial.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
