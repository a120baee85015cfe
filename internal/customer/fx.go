package customer

import (
	"github.com/gestorhub/gestor/internal/customer/repository"
	"github.com/gestorhub/gestor/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
