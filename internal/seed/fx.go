package seed

import (
	"github.com/gowander/waypost/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(run),
)

func run(cfg config.Config, db *gorm.DB, log *zap.Logger) error {
	if cfg.IsProduction() {
		return nil
	}
	if err := EnsureDemoCatalog(db); err != nil {
		log.Warn("demo catalog seed failed", zap.Error(err))
		return nil
	}
	return nil
}
