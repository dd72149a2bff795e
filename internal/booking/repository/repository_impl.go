package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/gowander/waypost/internal/booking/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() bookingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, booking *bookingdomain.Booking) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bookings (
			id, reference, tour_id, option_id, customer_name, customer_email,
			customer_phone, special_requests,
			travel_date, party_size, currency, unit_amount, total_amount,
			status, payment_status, gateway_order_id, gateway_payment_id,
			paid_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.Reference,
		booking.TourID,
		booking.OptionID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.SpecialRequests,
		booking.TravelDate,
		booking.PartySize,
		booking.Currency,
		booking.UnitAmount,
		booking.TotalAmount,
		booking.Status,
		booking.PaymentStatus,
		booking.GatewayOrderID,
		booking.GatewayPaymentID,
		booking.PaidAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*bookingdomain.Booking, error) {
	var booking bookingdomain.Booking
	err := db.WithContext(ctx).Raw(
		`SELECT id, reference, tour_id, option_id, customer_name, customer_email,
		 customer_phone, special_requests,
		 travel_date, party_size, currency, unit_amount, total_amount,
		 status, payment_status, gateway_order_id, gateway_payment_id,
		 paid_at, created_at, updated_at
		 FROM bookings WHERE id = ?`,
		id,
	).Scan(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) FindByGatewayOrderID(ctx context.Context, db *gorm.DB, gatewayOrderID string) (*bookingdomain.Booking, error) {
	var booking bookingdomain.Booking
	err := db.WithContext(ctx).Raw(
		`SELECT id, reference, tour_id, option_id, customer_name, customer_email,
		 customer_phone, special_requests,
		 travel_date, party_size, currency, unit_amount, total_amount,
		 status, payment_status, gateway_order_id, gateway_payment_id,
		 paid_at, created_at, updated_at
		 FROM bookings WHERE gateway_order_id = ?`,
		gatewayOrderID,
	).Scan(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

// SettleIfPending relies on the WHERE clause for atomicity so concurrent
// callbacks race on the database row, not on process memory.
func (r *repo) SettleIfPending(ctx context.Context, db *gorm.DB, id snowflake.ID, gatewayPaymentID string, paidAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET payment_status = ?, status = ?, gateway_payment_id = ?, paid_at = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		bookingdomain.PaymentPaid,
		bookingdomain.StatusConfirmed,
		gatewayPaymentID,
		paidAt,
		paidAt,
		id,
		bookingdomain.PaymentPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) MarkFailedIfPending(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bookings SET payment_status = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		bookingdomain.PaymentFailed,
		now,
		id,
		bookingdomain.PaymentPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status, paymentStatus string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bookings SET status = ?, payment_status = ?, updated_at = ? WHERE id = ?`,
		status,
		paymentStatus,
		now,
		id,
	).Error
}
