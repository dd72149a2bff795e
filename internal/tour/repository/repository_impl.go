package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	tourdomain "github.com/gowander/waypost/internal/tour/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() tourdomain.Repository {
	return &repo{}
}

func (r *repo) InsertSupplier(ctx context.Context, db *gorm.DB, supplier *tourdomain.Supplier) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO suppliers (id, name, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		supplier.ID,
		supplier.Name,
		supplier.Email,
		supplier.CreatedAt,
		supplier.UpdatedAt,
	).Error
}

func (r *repo) FindSupplierByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*tourdomain.Supplier, error) {
	var supplier tourdomain.Supplier
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, created_at, updated_at FROM suppliers WHERE id = ?`,
		id,
	).Scan(&supplier).Error
	if err != nil {
		return nil, err
	}
	if supplier.ID == 0 {
		return nil, nil
	}
	return &supplier, nil
}

func (r *repo) InsertTour(ctx context.Context, db *gorm.DB, tour *tourdomain.Tour) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tours (
			id, supplier_id, slug, title, description, location, max_group_size,
			is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tour.ID,
		tour.SupplierID,
		tour.Slug,
		tour.Title,
		tour.Description,
		tour.Location,
		tour.MaxGroupSize,
		tour.IsActive,
		tour.CreatedAt,
		tour.UpdatedAt,
	).Error
}

func (r *repo) FindTourByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*tourdomain.Tour, error) {
	var tour tourdomain.Tour
	err := db.WithContext(ctx).Raw(
		`SELECT id, supplier_id, slug, title, description, location, max_group_size,
		 is_active, created_at, updated_at
		 FROM tours WHERE id = ?`,
		id,
	).Scan(&tour).Error
	if err != nil {
		return nil, err
	}
	if tour.ID == 0 {
		return nil, nil
	}
	return &tour, nil
}

func (r *repo) FindTourBySlug(ctx context.Context, db *gorm.DB, slug string) (*tourdomain.Tour, error) {
	var tour tourdomain.Tour
	err := db.WithContext(ctx).Raw(
		`SELECT id, supplier_id, slug, title, description, location, max_group_size,
		 is_active, created_at, updated_at
		 FROM tours WHERE slug = ?`,
		slug,
	).Scan(&tour).Error
	if err != nil {
		return nil, err
	}
	if tour.ID == 0 {
		return nil, nil
	}
	return &tour, nil
}

func (r *repo) ListTours(ctx context.Context, db *gorm.DB, afterID snowflake.ID, limit int) ([]tourdomain.Tour, error) {
	var tours []tourdomain.Tour
	err := db.WithContext(ctx).Raw(
		`SELECT id, supplier_id, slug, title, description, location, max_group_size,
		 is_active, created_at, updated_at
		 FROM tours WHERE is_active AND id > ? ORDER BY id ASC LIMIT ?`,
		afterID,
		limit,
	).Scan(&tours).Error
	if err != nil {
		return nil, err
	}
	return tours, nil
}

func (r *repo) InsertOption(ctx context.Context, db *gorm.DB, option *tourdomain.TourOption, tiers []tourdomain.OptionPriceTier) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`INSERT INTO tour_options (
				id, tour_id, name, currency, base_price, is_default, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			option.ID,
			option.TourID,
			option.Name,
			option.Currency,
			option.BasePrice,
			option.IsDefault,
			option.CreatedAt,
			option.UpdatedAt,
		).Error; err != nil {
			return err
		}

		for i := range tiers {
			tier := &tiers[i]
			if err := tx.Exec(
				`INSERT INTO option_price_tiers (
					id, option_id, position, min_people, max_people, price, created_at
				) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				tier.ID,
				tier.OptionID,
				tier.Position,
				tier.MinPeople,
				tier.MaxPeople,
				tier.Price,
				tier.CreatedAt,
			).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *repo) FindOptionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*tourdomain.TourOption, error) {
	var option tourdomain.TourOption
	err := db.WithContext(ctx).Raw(
		`SELECT id, tour_id, name, currency, base_price, is_default, created_at, updated_at
		 FROM tour_options WHERE id = ?`,
		id,
	).Scan(&option).Error
	if err != nil {
		return nil, err
	}
	if option.ID == 0 {
		return nil, nil
	}
	return &option, nil
}

func (r *repo) FindDefaultOptionByTour(ctx context.Context, db *gorm.DB, tourID snowflake.ID) (*tourdomain.TourOption, error) {
	var option tourdomain.TourOption
	err := db.WithContext(ctx).Raw(
		`SELECT id, tour_id, name, currency, base_price, is_default, created_at, updated_at
		 FROM tour_options WHERE tour_id = ? AND is_default ORDER BY id ASC LIMIT 1`,
		tourID,
	).Scan(&option).Error
	if err != nil {
		return nil, err
	}
	if option.ID == 0 {
		return nil, nil
	}
	return &option, nil
}

func (r *repo) ListOptionsByTour(ctx context.Context, db *gorm.DB, tourID snowflake.ID) ([]tourdomain.TourOption, error) {
	var options []tourdomain.TourOption
	err := db.WithContext(ctx).Raw(
		`SELECT id, tour_id, name, currency, base_price, is_default, created_at, updated_at
		 FROM tour_options WHERE tour_id = ? ORDER BY created_at ASC`,
		tourID,
	).Scan(&options).Error
	if err != nil {
		return nil, err
	}
	return options, nil
}

func (r *repo) ListTiersByOption(ctx context.Context, db *gorm.DB, optionID snowflake.ID) ([]tourdomain.OptionPriceTier, error) {
	var tiers []tourdomain.OptionPriceTier
	err := db.WithContext(ctx).Raw(
		`SELECT id, option_id, position, min_people, max_people, price, created_at
		 FROM option_price_tiers WHERE option_id = ? ORDER BY position ASC`,
		optionID,
	).Scan(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}
