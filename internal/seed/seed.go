package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	tourdomain "github.com/gowander/waypost/internal/tour/domain"
	"gorm.io/gorm"
)

const (
	demoSupplierName  = "Andes Trails"
	demoSupplierEmail = "ops@andestrails.example"
	demoTourSlug      = "machu-picchu-day-trip"
	demoTourTitle     = "Machu Picchu Day Trip"
)

// EnsureDemoCatalog seeds one supplier with a tiered-priced tour so a
// fresh development database has something bookable. Production
// deployments never call this.
func EnsureDemoCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing tourdomain.Tour
		err := tx.Where("slug = ?", demoTourSlug).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()

		supplier := tourdomain.Supplier{
			ID:        node.Generate(),
			Name:      demoSupplierName,
			Email:     demoSupplierEmail,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&supplier).Error; err != nil {
			return err
		}

		tour := tourdomain.Tour{
			ID:           node.Generate(),
			SupplierID:   supplier.ID,
			Slug:         demoTourSlug,
			Title:        demoTourTitle,
			Description:  "Full-day guided visit with train transfer and site entry.",
			Location:     "Cusco, Peru",
			MaxGroupSize: 12,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&tour).Error; err != nil {
			return err
		}

		option := tourdomain.TourOption{
			ID:        node.Generate(),
			TourID:    tour.ID,
			Name:      "Standard",
			Currency:  "USD",
			BasePrice: 1200,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&option).Error; err != nil {
			return err
		}

		tiers := []tourdomain.OptionPriceTier{
			{ID: node.Generate(), OptionID: option.ID, Position: 0, MinPeople: 1, MaxPeople: 4, Price: 1000, CreatedAt: now},
			{ID: node.Generate(), OptionID: option.ID, Position: 1, MinPeople: 5, MaxPeople: 10, Price: 800, CreatedAt: now},
		}
		for i := range tiers {
			if err := tx.Create(&tiers[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
