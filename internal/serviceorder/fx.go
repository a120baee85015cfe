package serviceorder

import (
	"github.com/gestorhub/gestor/internal/serviceorder/repository"
	"github.com/gestorhub/gestor/internal/serviceorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("serviceorder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
