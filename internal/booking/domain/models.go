package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Booking lifecycle status.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Payment status, tracked independently of booking status.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Booking captures a reservation and the price snapshot taken at
// creation time. UnitAmount and TotalAmount never change after insert,
// regardless of later catalog edits.
type Booking struct {
	ID               snowflake.ID `json:"id" gorm:"primaryKey"`
	Reference        string       `json:"reference" gorm:"type:text;not null;uniqueIndex"`
	TourID           snowflake.ID `json:"tour_id" gorm:"column:tour_id;not null"`
	OptionID         snowflake.ID `json:"option_id" gorm:"column:option_id;not null;index"`
	CustomerName     string       `json:"customer_name" gorm:"type:text;not null"`
	CustomerEmail    string       `json:"customer_email" gorm:"type:text;not null"`
	CustomerPhone    string       `json:"customer_phone" gorm:"type:text;not null;default:''"`
	SpecialRequests  string       `json:"special_requests" gorm:"type:text;not null;default:''"`
	TravelDate       time.Time    `json:"travel_date" gorm:"not null"`
	PartySize        int          `json:"party_size" gorm:"not null"`
	Currency         string       `json:"currency" gorm:"type:text;not null"`
	UnitAmount       int64        `json:"unit_amount" gorm:"not null"`
	TotalAmount      int64        `json:"total_amount" gorm:"not null"`
	Status           string       `json:"status" gorm:"type:text;not null;default:pending"`
	PaymentStatus    string       `json:"payment_status" gorm:"type:text;not null;default:pending"`
	GatewayOrderID   string       `json:"gateway_order_id" gorm:"type:text;not null;index"`
	GatewayPaymentID string       `json:"gateway_payment_id" gorm:"type:text;not null"`
	PaidAt           *time.Time   `json:"paid_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Booking) TableName() string { return "bookings" }
