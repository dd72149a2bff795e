package invoice

import (
	"github.com/gowander/waypost/internal/invoice/render"
	"github.com/gowander/waypost/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(render.NewRenderer),
	fx.Provide(service.New),
)
