package scheduler_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gowander/waypost/internal/clock"
	notificationdomain "github.com/gowander/waypost/internal/notification/domain"
	notificationrepo "github.com/gowander/waypost/internal/notification/repository"
	"github.com/gowander/waypost/internal/scheduler"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingDispatcher struct {
	retried []string
}

func (d *recordingDispatcher) DispatchBookingPaid(ctx context.Context, bookingID string) ([]notificationdomain.Result, error) {
	return nil, nil
}

func (d *recordingDispatcher) RetryFailed(ctx context.Context, bookingID string) ([]notificationdomain.Result, error) {
	d.retried = append(d.retried, bookingID)
	return []notificationdomain.Result{{Channel: notificationdomain.ChannelSupplier, Status: notificationdomain.StatusSent}}, nil
}

func (d *recordingDispatcher) List(ctx context.Context, bookingID string) ([]notificationdomain.RecordResponse, error) {
	return nil, nil
}

func TestRunOnceRetriesOnlyFailedBookings(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(70)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	failedBooking := node.Generate()
	sentBooking := node.Generate()
	exhaustedBooking := node.Generate()

	seedRecord(t, db, node, failedBooking, notificationdomain.StatusFailed, 1)
	seedRecord(t, db, node, sentBooking, notificationdomain.StatusSent, 1)
	seedRecord(t, db, node, exhaustedBooking, notificationdomain.StatusFailed, 9)

	dispatcher := &recordingDispatcher{}
	s, err := scheduler.New(scheduler.Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      clock.NewSystemClock(),
		Repo:       notificationrepo.Provide(),
		Dispatcher: dispatcher,
		Config:     scheduler.Config{MaxAttempts: 5, BatchSize: 10},
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	if err := s.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if len(dispatcher.retried) != 1 {
		t.Fatalf("retried %d bookings, want 1", len(dispatcher.retried))
	}
	if dispatcher.retried[0] != failedBooking.String() {
		t.Fatalf("retried booking %s, want %s", dispatcher.retried[0], failedBooking)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := scheduler.New(scheduler.Params{})
	if err != scheduler.ErrInvalidConfig {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func seedRecord(t *testing.T, db *gorm.DB, node *snowflake.Node, bookingID snowflake.ID, status string, attempts int) {
	t.Helper()

	now := time.Now().UTC()
	err := db.Exec(
		`INSERT INTO notification_records (id, booking_id, channel, status, attempts, last_error, sent_at, created_at, updated_at)
		 VALUES (?, ?, 'supplier', ?, ?, '', NULL, ?, ?)`,
		node.Generate(), bookingID, status, attempts, now, now,
	).Error
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	err = db.Exec(`CREATE TABLE notification_records (
		id BIGINT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		channel TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INT NOT NULL DEFAULT 0,
		last_error TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL DEFAULT '{}',
		sent_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (booking_id, channel)
	)`).Error
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}

	return db
}
