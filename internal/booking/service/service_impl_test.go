package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/gowander/waypost/internal/booking/domain"
	bookingrepo "github.com/gowander/waypost/internal/booking/repository"
	bookingservice "github.com/gowander/waypost/internal/booking/service"
	"github.com/gowander/waypost/internal/clock"
	"github.com/gowander/waypost/internal/pricing"
	tourdomain "github.com/gowander/waypost/internal/tour/domain"
	tourrepo "github.com/gowander/waypost/internal/tour/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCreateBookingResolvesTieredPrice(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 30)

	optionID := env.seedOption(t, 1200, []tourdomain.OptionPriceTier{
		{Position: 0, MinPeople: 1, MaxPeople: 4, Price: 1000},
		{Position: 1, MinPeople: 5, MaxPeople: 10, Price: 800},
	})

	resp, err := env.svc.Create(ctx, bookingdomain.CreateRequest{
		OptionID:      optionID.String(),
		CustomerName:  "Ada Reyes",
		CustomerEmail: "ada@example.com",
		TravelDate:    "2026-09-12",
		PartySize:     6,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if resp.UnitAmount != 800 {
		t.Fatalf("unit amount = %d, want 800", resp.UnitAmount)
	}
	if resp.TotalAmount != 4800 {
		t.Fatalf("total amount = %d, want 4800", resp.TotalAmount)
	}
	if resp.Status != bookingdomain.StatusPending || resp.PaymentStatus != bookingdomain.PaymentPending {
		t.Fatalf("new booking status = %s/%s, want pending/pending", resp.Status, resp.PaymentStatus)
	}
	if !strings.HasPrefix(resp.Reference, "WP-") {
		t.Fatalf("reference = %q, want WP- prefix", resp.Reference)
	}
	if !strings.HasPrefix(resp.GatewayOrderID, "ord_") {
		t.Fatalf("gateway order id = %q, want ord_ prefix", resp.GatewayOrderID)
	}
}

func TestCreateBookingFallsBackToBasePrice(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 31)

	optionID := env.seedOption(t, 1200, []tourdomain.OptionPriceTier{
		{Position: 0, MinPeople: 1, MaxPeople: 4, Price: 1000},
	})

	resp, err := env.svc.Create(ctx, bookingdomain.CreateRequest{
		OptionID:      optionID.String(),
		CustomerName:  "Ada Reyes",
		CustomerEmail: "ada@example.com",
		TravelDate:    "2026-09-12",
		PartySize:     7,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if resp.UnitAmount != 1200 || resp.TotalAmount != 8400 {
		t.Fatalf("amounts = %d/%d, want 1200/8400", resp.UnitAmount, resp.TotalAmount)
	}
}

func TestCreateBookingUsesDefaultOptionWhenOmitted(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 37)

	optionID := env.seedOption(t, 1200, nil)
	tourID := env.tourOf(t, optionID)

	resp, err := env.svc.Create(ctx, bookingdomain.CreateRequest{
		TourID:        tourID.String(),
		CustomerName:  "Ada Reyes",
		CustomerEmail: "ada@example.com",
		TravelDate:    "2026-09-12",
		PartySize:     2,
	})
	if err != nil {
		t.Fatalf("create booking without option id: %v", err)
	}

	if resp.OptionID != optionID.String() {
		t.Fatalf("option id = %s, want default option %s", resp.OptionID, optionID)
	}
	if resp.TourID != tourID.String() {
		t.Fatalf("tour id = %s, want %s", resp.TourID, tourID)
	}
}

func TestCreateBookingWithoutDefaultOptionFails(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 38)

	optionID := env.seedOption(t, 1200, nil)
	tourID := env.tourOf(t, optionID)

	if err := env.db.Exec(`UPDATE tour_options SET is_default = FALSE`).Error; err != nil {
		t.Fatalf("clear default flag: %v", err)
	}

	_, err := env.svc.Create(ctx, bookingdomain.CreateRequest{
		TourID:        tourID.String(),
		CustomerName:  "Ada Reyes",
		CustomerEmail: "ada@example.com",
		TravelDate:    "2026-09-12",
		PartySize:     2,
	})
	if !errors.Is(err, bookingdomain.ErrOptionNotFound) {
		t.Fatalf("err = %v, want ErrOptionNotFound", err)
	}
}

func TestCreateBookingWithoutTourOrOptionFails(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 39)

	env.seedOption(t, 1200, nil)

	_, err := env.svc.Create(ctx, bookingdomain.CreateRequest{
		CustomerName:  "Ada Reyes",
		CustomerEmail: "ada@example.com",
		TravelDate:    "2026-09-12",
		PartySize:     2,
	})
	if !errors.Is(err, bookingdomain.ErrInvalidOption) {
		t.Fatalf("err = %v, want ErrInvalidOption", err)
	}
}

func TestCreateBookingStoresContactDetails(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 41)

	optionID := env.seedOption(t, 1200, nil)

	resp, err := env.svc.Create(ctx, bookingdomain.CreateRequest{
		OptionID:        optionID.String(),
		CustomerName:    "Ada Reyes",
		CustomerEmail:   "ada@example.com",
		CustomerPhone:   "+51 984 000 111",
		SpecialRequests: "Vegetarian lunch, window seats",
		TravelDate:      "2026-09-12",
		PartySize:       2,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	got, err := env.svc.Get(ctx, resp.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.CustomerPhone != "+51 984 000 111" {
		t.Fatalf("customer phone = %q, want +51 984 000 111", got.CustomerPhone)
	}
	if got.SpecialRequests != "Vegetarian lunch, window seats" {
		t.Fatalf("special requests = %q", got.SpecialRequests)
	}
}

func TestCreateBookingRejectsInvalidPartySize(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 32)

	optionID := env.seedOption(t, 1200, nil)

	for _, size := range []int{0, -3} {
		_, err := env.svc.Create(ctx, bookingdomain.CreateRequest{
			OptionID:      optionID.String(),
			CustomerName:  "Ada Reyes",
			CustomerEmail: "ada@example.com",
			TravelDate:    "2026-09-12",
			PartySize:     size,
		})
		if !errors.Is(err, pricing.ErrInvalidPartySize) {
			t.Fatalf("party size %d err = %v, want ErrInvalidPartySize", size, err)
		}
	}
}

func TestCreateBookingRejectsOversizedParty(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 33)

	optionID := env.seedOption(t, 1200, nil)

	_, err := env.svc.Create(ctx, bookingdomain.CreateRequest{
		OptionID:      optionID.String(),
		CustomerName:  "Ada Reyes",
		CustomerEmail: "ada@example.com",
		TravelDate:    "2026-09-12",
		PartySize:     13,
	})
	if !errors.Is(err, bookingdomain.ErrPartyTooLarge) {
		t.Fatalf("err = %v, want ErrPartyTooLarge", err)
	}
}

func TestBookingAmountsSurviveCatalogEdits(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 34)

	optionID := env.seedOption(t, 1200, []tourdomain.OptionPriceTier{
		{Position: 0, MinPeople: 1, MaxPeople: 10, Price: 1000},
	})

	resp, err := env.svc.Create(ctx, bookingdomain.CreateRequest{
		OptionID:      optionID.String(),
		CustomerName:  "Ada Reyes",
		CustomerEmail: "ada@example.com",
		TravelDate:    "2026-09-12",
		PartySize:     3,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	// Reprice the catalog after the booking exists.
	if err := env.db.Exec(`UPDATE option_price_tiers SET price = 9999`).Error; err != nil {
		t.Fatalf("reprice tiers: %v", err)
	}
	if err := env.db.Exec(`UPDATE tour_options SET base_price = 9999`).Error; err != nil {
		t.Fatalf("reprice option: %v", err)
	}

	got, err := env.svc.Get(ctx, resp.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.UnitAmount != 1000 || got.TotalAmount != 3000 {
		t.Fatalf("amounts after reprice = %d/%d, want 1000/3000", got.UnitAmount, got.TotalAmount)
	}
}

func TestCancelPendingBooking(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 35)

	optionID := env.seedOption(t, 1200, nil)

	resp, err := env.svc.Create(ctx, bookingdomain.CreateRequest{
		OptionID:      optionID.String(),
		CustomerName:  "Ada Reyes",
		CustomerEmail: "ada@example.com",
		TravelDate:    "2026-09-12",
		PartySize:     2,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	cancelled, err := env.svc.Cancel(ctx, resp.ID)
	if err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	if cancelled.Status != bookingdomain.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}

	// Cancelling twice is a no-op.
	again, err := env.svc.Cancel(ctx, resp.ID)
	if err != nil {
		t.Fatalf("cancel again: %v", err)
	}
	if again.Status != bookingdomain.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", again.Status)
	}
}

func TestCancelPaidBookingFails(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, 36)

	optionID := env.seedOption(t, 1200, nil)

	resp, err := env.svc.Create(ctx, bookingdomain.CreateRequest{
		OptionID:      optionID.String(),
		CustomerName:  "Ada Reyes",
		CustomerEmail: "ada@example.com",
		TravelDate:    "2026-09-12",
		PartySize:     2,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if err := env.db.Exec(`UPDATE bookings SET payment_status = 'paid', status = 'confirmed'`).Error; err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	if _, err := env.svc.Cancel(ctx, resp.ID); !errors.Is(err, bookingdomain.ErrNotCancellable) {
		t.Fatalf("err = %v, want ErrNotCancellable", err)
	}

	refunded, err := env.svc.MarkRefunded(ctx, resp.ID)
	if err != nil {
		t.Fatalf("mark refunded: %v", err)
	}
	if refunded.PaymentStatus != bookingdomain.PaymentRefunded || refunded.Status != bookingdomain.StatusCancelled {
		t.Fatalf("refunded = %s/%s, want cancelled/refunded", refunded.Status, refunded.PaymentStatus)
	}
}

type testEnv struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  bookingdomain.Service
}

func setupEnv(t *testing.T, nodeID int64) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	svc := bookingservice.New(bookingservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewSystemClock(),
		Repo:     bookingrepo.Provide(),
		TourRepo: tourrepo.Provide(),
	})

	return &testEnv{db: db, node: node, svc: svc}
}

// seedOption inserts a supplier, a tour with max group size 12, and one
// option with the given base price and tiers. Returns the option id.
func (e *testEnv) seedOption(t *testing.T, basePrice int64, tiers []tourdomain.OptionPriceTier) snowflake.ID {
	t.Helper()

	now := time.Now().UTC()
	supplierID := e.node.Generate()
	tourID := e.node.Generate()
	optionID := e.node.Generate()

	if err := e.db.Exec(
		`INSERT INTO suppliers (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		supplierID, "Andes Trails", "ops@andestrails.example", now, now,
	).Error; err != nil {
		t.Fatalf("seed supplier: %v", err)
	}

	if err := e.db.Exec(
		`INSERT INTO tours (id, supplier_id, slug, title, description, location, max_group_size, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, '', '', 12, TRUE, ?, ?)`,
		tourID, supplierID, fmt.Sprintf("tour-%d", tourID), "Machu Picchu Day Trip", now, now,
	).Error; err != nil {
		t.Fatalf("seed tour: %v", err)
	}

	if err := e.db.Exec(
		`INSERT INTO tour_options (id, tour_id, name, currency, base_price, is_default, created_at, updated_at)
		 VALUES (?, ?, 'Standard', 'USD', ?, TRUE, ?, ?)`,
		optionID, tourID, basePrice, now, now,
	).Error; err != nil {
		t.Fatalf("seed option: %v", err)
	}

	for _, tier := range tiers {
		if err := e.db.Exec(
			`INSERT INTO option_price_tiers (id, option_id, position, min_people, max_people, price, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.node.Generate(), optionID, tier.Position, tier.MinPeople, tier.MaxPeople, tier.Price, now,
		).Error; err != nil {
			t.Fatalf("seed tier: %v", err)
		}
	}

	return optionID
}

// tourOf resolves the tour an option belongs to.
func (e *testEnv) tourOf(t *testing.T, optionID snowflake.ID) snowflake.ID {
	t.Helper()

	var tourID int64
	if err := e.db.Raw(`SELECT tour_id FROM tour_options WHERE id = ?`, optionID).Scan(&tourID).Error; err != nil {
		t.Fatalf("look up tour: %v", err)
	}
	return snowflake.ID(tourID)
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
		`CREATE TABLE option_price_tiers (
			id BIGINT PRIMARY KEY,
			option_id BIGINT NOT NULL,
			position INT NOT NULL,
			min_people INT NOT NULL,
			max_people INT NOT NULL,
			price BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
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
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}
