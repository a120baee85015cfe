package product

import (
	"github.com/gestorhub/gestor/internal/product/repository"
	"github.com/gestorhub/gestor/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
