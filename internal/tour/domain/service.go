package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error)
	CreateTour(ctx context.Context, req CreateTourRequest) (*TourResponse, error)
	CreateOption(ctx context.Context, tourID string, req CreateOptionRequest) (*OptionResponse, error)
	GetTour(ctx context.Context, id string) (*TourResponse, error)
	ListTours(ctx context.Context, pageToken string, pageSize int) (*TourListResponse, error)
}

type CreateSupplierRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SupplierResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateTourRequest struct {
	SupplierID   string `json:"supplier_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	MaxGroupSize int    `json:"max_group_size"`
}

type TourResponse struct {
	ID           string           `json:"id"`
	SupplierID   string           `json:"supplier_id"`
	Slug         string           `json:"slug"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Location     string           `json:"location"`
	MaxGroupSize int              `json:"max_group_size"`
	IsActive     bool             `json:"is_active"`
	Options      []OptionResponse `json:"options,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type TourListResponse struct {
	Tours         []TourResponse `json:"tours"`
	NextPageToken string         `json:"next_page_token"`
	HasMore       bool           `json:"has_more"`
}

type CreateOptionRequest struct {
	Name      string             `json:"name"`
	Currency  string             `json:"currency"`
	BasePrice int64              `json:"base_price"`
	IsDefault bool               `json:"is_default"`
	Tiers     []PriceTierRequest `json:"tiers"`
}

type PriceTierRequest struct {
	MinPeople int   `json:"min_people"`
	MaxPeople int   `json:"max_people"`
	Price     int64 `json:"price"`
}

type OptionResponse struct {
	ID        string              `json:"id"`
	TourID    string              `json:"tour_id"`
	Name      string              `json:"name"`
	Currency  string              `json:"currency"`
	BasePrice int64               `json:"base_price"`
	IsDefault bool                `json:"is_default"`
	Tiers     []PriceTierResponse `json:"tiers"`
	CreatedAt time.Time           `json:"created_at"`
}

type PriceTierResponse struct {
	MinPeople int   `json:"min_people"`
	MaxPeople int   `json:"max_people"`
	Price     int64 `json:"price"`
}

var (
	ErrInvalidSupplier  = errors.New("invalid_supplier")
	ErrInvalidTitle     = errors.New("invalid_title")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidBasePrice = errors.New("invalid_base_price")
	ErrInvalidID        = errors.New("invalid_id")
	ErrSlugTaken        = errors.New("slug_taken")
	ErrTourNotFound     = errors.New("tour_not_found")
	ErrOptionNotFound   = errors.New("option_not_found")
	ErrSupplierNotFound = errors.New("supplier_not_found")
)
