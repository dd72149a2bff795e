package tour

import (
	"github.com/gowander/waypost/internal/tour/repository"
	"github.com/gowander/waypost/internal/tour/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tour.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
