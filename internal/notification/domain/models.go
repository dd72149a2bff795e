package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Notification channels fired when a booking settles.
const (
	ChannelCustomer = "customer"
	ChannelSupplier = "supplier"
	ChannelAdmin    = "admin"
)

// Delivery status of a notification record.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Channels lists every channel in dispatch order.
var Channels = []string{ChannelCustomer, ChannelSupplier, ChannelAdmin}

// NotificationRecord tracks one channel's delivery state for a booking.
// The (booking_id, channel) pair is unique so redelivery updates the
// existing row instead of duplicating it.
type NotificationRecord struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	BookingID snowflake.ID `json:"booking_id" gorm:"column:booking_id;not null;uniqueIndex:uq_notification_booking_channel"`
	Channel   string       `json:"channel" gorm:"type:text;not null;uniqueIndex:uq_notification_booking_channel"`
	Status    string       `json:"status" gorm:"type:text;not null;default:pending"`
	Attempts  int          `json:"attempts" gorm:"not null;default:0"`
	LastError string       `json:"last_error" gorm:"type:text;not null;default:''"`
	// Payload keeps the template data the channel was rendered with, so a
	// redelivery sends exactly what the original attempt would have.
	Payload datatypes.JSON `json:"payload,omitempty" gorm:"type:jsonb"`
	SentAt  *time.Time     `json:"sent_at,omitempty"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (NotificationRecord) TableName() string { return "notification_records" }
