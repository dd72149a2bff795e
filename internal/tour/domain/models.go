package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Supplier struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Email     string       `json:"email" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Supplier) TableName() string { return "suppliers" }

type Tour struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	SupplierID   snowflake.ID `json:"supplier_id" gorm:"column:supplier_id;not null;index"`
	Slug         string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Title        string       `json:"title" gorm:"type:text;not null"`
	Description  string       `json:"description" gorm:"type:text;not null"`
	Location     string       `json:"location" gorm:"type:text;not null"`
	MaxGroupSize int          `json:"max_group_size" gorm:"not null;default:0"`
	IsActive     bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Tour) TableName() string { return "tours" }

type TourOption struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	TourID    snowflake.ID `json:"tour_id" gorm:"column:tour_id;not null;index"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Currency  string       `json:"currency" gorm:"type:text;not null;default:USD"`
	BasePrice int64        `json:"base_price" gorm:"not null"`
	IsDefault bool         `json:"is_default" gorm:"not null;default:false"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TourOption) TableName() string { return "tour_options" }

// OptionPriceTier is one row of an option's group pricing table. Position
// preserves the order tiers were configured in; resolution walks tiers in
// that order.
type OptionPriceTier struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	OptionID  snowflake.ID `json:"option_id" gorm:"column:option_id;not null;index"`
	Position  int          `json:"position" gorm:"not null"`
	MinPeople int          `json:"min_people" gorm:"not null"`
	MaxPeople int          `json:"max_people" gorm:"not null"`
	Price     int64        `json:"price" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (OptionPriceTier) TableName() string { return "option_price_tiers" }
