package carrier

import (
	"github.com/gestorhub/gestor/internal/carrier/repository"
	"github.com/gestorhub/gestor/internal/carrier/service"
	"go.uber.org/fx"
)

var Module = fx.Module("carrier.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
