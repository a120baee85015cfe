package role

import (
	"github.com/gestorhub/gestor/internal/role/repository"
	"github.com/gestorhub/gestor/internal/role/service"
	"go.uber.org/fx"
)

var Module = fx.Module("role.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
