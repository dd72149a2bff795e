package booking

import (
	"github.com/gowander/waypost/internal/booking/repository"
	"github.com/gowander/waypost/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
