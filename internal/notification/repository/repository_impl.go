package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/gowander/waypost/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() notificationdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *notificationdomain.NotificationRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notification_records (
			id, booking_id, channel, status, attempts, last_error, payload, sent_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.BookingID,
		record.Channel,
		record.Status,
		record.Attempts,
		record.LastError,
		record.Payload,
		record.SentAt,
		record.CreatedAt,
		record.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, record *notificationdomain.NotificationRecord) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notification_records
		 SET status = ?, attempts = ?, last_error = ?, payload = ?, sent_at = ?, updated_at = ?
		 WHERE id = ?`,
		record.Status,
		record.Attempts,
		record.LastError,
		record.Payload,
		record.SentAt,
		record.UpdatedAt,
		record.ID,
	).Error
}

func (r *repo) FindByBookingAndChannel(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, channel string) (*notificationdomain.NotificationRecord, error) {
	var record notificationdomain.NotificationRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, booking_id, channel, status, attempts, last_error, payload, sent_at, created_at, updated_at
		 FROM notification_records WHERE booking_id = ? AND channel = ?`,
		bookingID,
		channel,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]notificationdomain.NotificationRecord, error) {
	var records []notificationdomain.NotificationRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, booking_id, channel, status, attempts, last_error, payload, sent_at, created_at, updated_at
		 FROM notification_records WHERE booking_id = ? ORDER BY channel ASC`,
		bookingID,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) ListFailedBookingIDs(ctx context.Context, db *gorm.DB, maxAttempts, limit int) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT booking_id FROM notification_records
		 WHERE status = ? AND attempts < ?
		 ORDER BY booking_id ASC LIMIT ?`,
		notificationdomain.StatusFailed,
		maxAttempts,
		limit,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
