package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/gowander/waypost/internal/booking/domain"
	bookingrepo "github.com/gowander/waypost/internal/booking/repository"
	"github.com/gowander/waypost/internal/clock"
	"github.com/gowander/waypost/internal/config"
	notificationrepo "github.com/gowander/waypost/internal/notification/repository"
	notificationservice "github.com/gowander/waypost/internal/notification/service"
	settlementdomain "github.com/gowander/waypost/internal/settlement/domain"
	settlementservice "github.com/gowander/waypost/internal/settlement/service"
	"github.com/gowander/waypost/internal/settlement/signature"
	tourrepo "github.com/gowander/waypost/internal/tour/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "cb_secret_test"

type countingProvider struct {
	sent int
}

func (p *countingProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}

func (p *countingProvider) SendTemplate(ctx context.Context, to []string, templateName string, data map[string]any) error {
	p.sent++
	return nil
}

func TestVerifyAndSettleConfirmsBooking(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 50)

	bookingID, orderID := env.seedPendingBooking(t)

	result, err := env.svc.VerifyAndSettle(ctx, callback(orderID, "pay_1", settlementdomain.CallbackCompleted))
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	if result.AlreadySettled {
		t.Fatal("first settlement reported as replay")
	}
	if result.PaymentStatus != bookingdomain.PaymentPaid || result.Status != bookingdomain.StatusConfirmed {
		t.Fatalf("result = %s/%s, want confirmed/paid", result.Status, result.PaymentStatus)
	}
	if len(result.Notifications) != 3 {
		t.Fatalf("notifications = %d, want 3", len(result.Notifications))
	}
	if env.provider.sent != 3 {
		t.Fatalf("emails sent = %d, want 3", env.provider.sent)
	}

	booking := env.loadBooking(t, bookingID)
	if booking.PaymentStatus != bookingdomain.PaymentPaid || booking.GatewayPaymentID != "pay_1" {
		t.Fatalf("booking = %s/%s", booking.PaymentStatus, booking.GatewayPaymentID)
	}
	if booking.PaidAt == nil {
		t.Fatal("paid_at not set")
	}
}

func TestVerifyAndSettleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 51)

	_, orderID := env.seedPendingBooking(t)
	req := callback(orderID, "pay_1", settlementdomain.CallbackCompleted)

	if _, err := env.svc.VerifyAndSettle(ctx, req); err != nil {
		t.Fatalf("first callback: %v", err)
	}

	result, err := env.svc.VerifyAndSettle(ctx, req)
	if err != nil {
		t.Fatalf("replayed callback: %v", err)
	}
	if !result.AlreadySettled {
		t.Fatal("replay not flagged as already settled")
	}
	if len(result.Notifications) != 0 {
		t.Fatal("replay dispatched notifications")
	}
	if env.provider.sent != 3 {
		t.Fatalf("emails sent = %d after replay, want 3", env.provider.sent)
	}
}

func TestVerifyAndSettleRejectsTamperedSignature(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 52)

	bookingID, orderID := env.seedPendingBooking(t)

	req := callback(orderID, "pay_1", settlementdomain.CallbackCompleted)
	req.Signature = signature.Compute("wrong_secret", orderID, "pay_1")

	if _, err := env.svc.VerifyAndSettle(ctx, req); !errors.Is(err, settlementdomain.ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}

	booking := env.loadBooking(t, bookingID)
	if booking.PaymentStatus != bookingdomain.PaymentPending {
		t.Fatalf("payment status = %s after rejected callback, want pending", booking.PaymentStatus)
	}
	if env.provider.sent != 0 {
		t.Fatalf("emails sent = %d after rejected callback, want 0", env.provider.sent)
	}
}

func TestVerifyAndSettleDetectsPaymentConflict(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 53)

	bookingID, orderID := env.seedPendingBooking(t)

	if _, err := env.svc.VerifyAndSettle(ctx, callback(orderID, "pay_1", settlementdomain.CallbackCompleted)); err != nil {
		t.Fatalf("first callback: %v", err)
	}

	_, err := env.svc.VerifyAndSettle(ctx, callback(orderID, "pay_2", settlementdomain.CallbackCompleted))
	if !errors.Is(err, settlementdomain.ErrPaymentConflict) {
		t.Fatalf("err = %v, want ErrPaymentConflict", err)
	}

	booking := env.loadBooking(t, bookingID)
	if booking.GatewayPaymentID != "pay_1" {
		t.Fatalf("payment id = %s, want pay_1 preserved", booking.GatewayPaymentID)
	}
}

func TestVerifyAndSettleRecordsFailure(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 54)

	bookingID, orderID := env.seedPendingBooking(t)

	result, err := env.svc.VerifyAndSettle(ctx, callback(orderID, "pay_1", settlementdomain.CallbackFailed))
	if err != nil {
		t.Fatalf("failed callback: %v", err)
	}
	if result.PaymentStatus != bookingdomain.PaymentFailed {
		t.Fatalf("payment status = %s, want failed", result.PaymentStatus)
	}
	if env.provider.sent != 0 {
		t.Fatal("failure callback sent notifications")
	}

	booking := env.loadBooking(t, bookingID)
	if booking.PaymentStatus != bookingdomain.PaymentFailed || booking.Status != bookingdomain.StatusPending {
		t.Fatalf("booking = %s/%s, want pending/failed", booking.Status, booking.PaymentStatus)
	}
}

func TestVerifyAndSettleIgnoresFailureAfterSettlement(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 55)

	bookingID, orderID := env.seedPendingBooking(t)

	if _, err := env.svc.VerifyAndSettle(ctx, callback(orderID, "pay_1", settlementdomain.CallbackCompleted)); err != nil {
		t.Fatalf("settle: %v", err)
	}

	result, err := env.svc.VerifyAndSettle(ctx, callback(orderID, "pay_1", settlementdomain.CallbackFailed))
	if err != nil {
		t.Fatalf("late failure callback: %v", err)
	}
	if !result.AlreadySettled || result.PaymentStatus != bookingdomain.PaymentPaid {
		t.Fatalf("result = %+v, want already settled and paid", result)
	}

	booking := env.loadBooking(t, bookingID)
	if booking.PaymentStatus != bookingdomain.PaymentPaid {
		t.Fatalf("payment status = %s, want paid preserved", booking.PaymentStatus)
	}
}

func TestVerifyAndSettleRejectsCancelledBooking(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 56)

	_, orderID := env.seedPendingBooking(t)
	if err := env.db.Exec(`UPDATE bookings SET status = 'cancelled'`).Error; err != nil {
		t.Fatalf("cancel booking: %v", err)
	}

	_, err := env.svc.VerifyAndSettle(ctx, callback(orderID, "pay_1", settlementdomain.CallbackCompleted))
	if !errors.Is(err, settlementdomain.ErrBookingNotPayable) {
		t.Fatalf("err = %v, want ErrBookingNotPayable", err)
	}
}

func TestVerifyAndSettleChecksEchoedBookingID(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 59)

	bookingID, orderID := env.seedPendingBooking(t)

	mismatched := callback(orderID, "pay_1", settlementdomain.CallbackCompleted)
	mismatched.BookingID = "12345"
	if _, err := env.svc.VerifyAndSettle(ctx, mismatched); !errors.Is(err, settlementdomain.ErrInvalidCallback) {
		t.Fatalf("err = %v, want ErrInvalidCallback", err)
	}

	booking := env.loadBooking(t, bookingID)
	if booking.PaymentStatus != bookingdomain.PaymentPending {
		t.Fatalf("payment status = %s after rejected callback, want pending", booking.PaymentStatus)
	}

	matched := callback(orderID, "pay_1", settlementdomain.CallbackCompleted)
	matched.BookingID = bookingID.String()
	result, err := env.svc.VerifyAndSettle(ctx, matched)
	if err != nil {
		t.Fatalf("settle with matching booking id: %v", err)
	}
	if result.PaymentStatus != bookingdomain.PaymentPaid {
		t.Fatalf("payment status = %s, want paid", result.PaymentStatus)
	}
}

func TestVerifyAndSettleUnknownOrder(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 57)

	_, err := env.svc.VerifyAndSettle(ctx, callback("ord_missing", "pay_1", settlementdomain.CallbackCompleted))
	if !errors.Is(err, settlementdomain.ErrBookingNotFound) {
		t.Fatalf("err = %v, want ErrBookingNotFound", err)
	}
}

func TestVerifyAndSettleValidatesPayload(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 58)

	cases := []settlementdomain.CallbackRequest{
		{GatewayOrderID: "", GatewayPaymentID: "pay_1", Status: "completed"},
		{GatewayOrderID: "ord_1", GatewayPaymentID: "", Status: "completed"},
		{GatewayOrderID: "ord_1", GatewayPaymentID: "pay_1", Status: "sideways"},
	}
	for i, req := range cases {
		req.Signature = signature.Compute(testSecret, req.GatewayOrderID, req.GatewayPaymentID)
		if _, err := env.svc.VerifyAndSettle(ctx, req); !errors.Is(err, settlementdomain.ErrInvalidCallback) {
			t.Fatalf("case %d err = %v, want ErrInvalidCallback", i, err)
		}
	}
}

func callback(orderID, paymentID, status string) settlementdomain.CallbackRequest {
	return settlementdomain.CallbackRequest{
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
		Status:           status,
		Signature:        signature.Compute(testSecret, orderID, paymentID),
	}
}

type testEnv struct {
	db       *gorm.DB
	node     *snowflake.Node
	provider *countingProvider
	svc      settlementdomain.Verifier
}

func setupEnv(t *testing.T, nodeID int64) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	cfg := config.Config{
		Gateway: config.GatewayConfig{SignatureSecret: testSecret},
		Email:   config.EmailConfig{AdminAddress: "admin@waypost.example"},
	}

	provider := &countingProvider{}
	dispatcher := notificationservice.New(notificationservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewSystemClock(),
		Cfg:         cfg,
		Repo:        notificationrepo.Provide(),
		BookingRepo: bookingrepo.Provide(),
		TourRepo:    tourrepo.Provide(),
		Email:       provider,
	})

	svc := settlementservice.New(settlementservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		Clock:       clock.NewSystemClock(),
		Cfg:         cfg,
		BookingRepo: bookingrepo.Provide(),
		Dispatcher:  dispatcher,
	})

	return &testEnv{db: db, node: node, provider: provider, svc: svc}
}

func (e *testEnv) seedPendingBooking(t *testing.T) (snowflake.ID, string) {
	t.Helper()

	now := time.Now().UTC()
	supplierID := e.node.Generate()
	tourID := e.node.Generate()
	optionID := e.node.Generate()
	bookingID := e.node.Generate()
	orderID := fmt.Sprintf("ord_%d", bookingID)

	stmts := []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO suppliers (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{supplierID, "Andes Trails", "ops@andestrails.example", now, now}},
		{`INSERT INTO tours (id, supplier_id, slug, title, description, location, max_group_size, is_active, created_at, updated_at)
		 VALUES (?, ?, 'machu-picchu-day-trip', 'Machu Picchu Day Trip', '', '', 12, TRUE, ?, ?)`,
			[]any{tourID, supplierID, now, now}},
		{`INSERT INTO tour_options (id, tour_id, name, currency, base_price, is_default, created_at, updated_at)
		 VALUES (?, ?, 'Standard', 'USD', 1200, TRUE, ?, ?)`,
			[]any{optionID, tourID, now, now}},
		{`INSERT INTO bookings (id, reference, tour_id, option_id, customer_name, customer_email,
		 travel_date, party_size, currency, unit_amount, total_amount, status, payment_status,
		 gateway_order_id, gateway_payment_id, paid_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'Ada Reyes', 'ada@example.com', ?, 6, 'USD', 800, 4800,
		 'pending', 'pending', ?, '', NULL, ?, ?)`,
			[]any{bookingID, fmt.Sprintf("WP-%d-%d", now.Year(), bookingID), tourID, optionID, now, orderID, now, now}},
	}
	for _, stmt := range stmts {
		if err := e.db.Exec(stmt.sql, stmt.args...).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	return bookingID, orderID
}

func (e *testEnv) loadBooking(t *testing.T, id snowflake.ID) *bookingdomain.Booking {
	t.Helper()

	booking, err := bookingrepo.Provide().FindByID(context.Background(), e.db, id)
	if err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if booking == nil {
		t.Fatal("booking not found")
	}
	return booking
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE suppliers (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE tours (
			id BIGINT PRIMARY KEY,
			supplier_id BIGINT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			max_group_size INT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE tour_options (
			id BIGINT PRIMARY KEY,
			tour_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'USD',
			base_price BIGINT NOT NULL,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE bookings (
			id BIGINT PRIMARY KEY,
			reference TEXT NOT NULL UNIQUE,
			tour_id BIGINT NOT NULL,
			option_id BIGINT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_phone TEXT NOT NULL DEFAULT '',
			special_requests TEXT NOT NULL DEFAULT '',
			travel_date TIMESTAMP NOT NULL,
			party_size INT NOT NULL,
			currency TEXT NOT NULL,
			unit_amount BIGINT NOT NULL,
			total_amount BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			payment_status TEXT NOT NULL DEFAULT 'pending',
			gateway_order_id TEXT NOT NULL DEFAULT '',
			gateway_payment_id TEXT NOT NULL DEFAULT '',
			paid_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE notification_records (
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
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}
