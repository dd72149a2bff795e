package notification

import (
	"github.com/gowander/waypost/internal/notification/repository"
	"github.com/gowander/waypost/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
