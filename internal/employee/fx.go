package employee

import (
	"github.com/gestorhub/gestor/internal/employee/repository"
	"github.com/gestorhub/gestor/internal/employee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("employee.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
