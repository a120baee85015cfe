package order

import (
	"github.com/gestorhub/gestor/internal/order/repository"
	"github.com/gestorhub/gestor/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
