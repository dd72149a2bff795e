package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertSupplier(ctx context.Context, db *gorm.DB, supplier *Supplier) error
	FindSupplierByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Supplier, error)

	InsertTour(ctx context.Context, db *gorm.DB, tour *Tour) error
	FindTourByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tour, error)
	FindTourBySlug(ctx context.Context, db *gorm.DB, slug string) (*Tour, error)
	ListTours(ctx context.Context, db *gorm.DB, afterID snowflake.ID, limit int) ([]Tour, error)

	InsertOption(ctx context.Context, db *gorm.DB, option *TourOption, tiers []OptionPriceTier) error
	FindOptionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TourOption, error)
	FindDefaultOptionByTour(ctx context.Context, db *gorm.DB, tourID snowflake.ID) (*TourOption, error)
	ListOptionsByTour(ctx context.Context, db *gorm.DB, tourID snowflake.ID) ([]TourOption, error)
	ListTiersByOption(ctx context.Context, db *gorm.DB, optionID snowflake.ID) ([]OptionPriceTier, error)
}
