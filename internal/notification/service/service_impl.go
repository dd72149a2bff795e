package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/gowander/waypost/internal/booking/domain"
	"github.com/gowander/waypost/internal/clock"
	"github.com/gowander/waypost/internal/config"
	invoiceformat "github.com/gowander/waypost/internal/invoice/format"
	notificationdomain "github.com/gowander/waypost/internal/notification/domain"
	"github.com/gowander/waypost/internal/observability/metrics"
	"github.com/gowander/waypost/internal/providers/email"
	tourdomain "github.com/gowander/waypost/internal/tour/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Cfg         config.Config
	Repo        notificationdomain.Repository
	BookingRepo bookingdomain.Repository
	TourRepo    tourdomain.Repository
	Email       email.Provider
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	cfg         config.Config
	repo        notificationdomain.Repository
	bookingRepo bookingdomain.Repository
	tourRepo    tourdomain.Repository
	email       email.Provider
	metrics     *metrics.Metrics
}

func New(p Params) notificationdomain.Dispatcher {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("notification.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		cfg:         p.Cfg,
		repo:        p.Repo,
		bookingRepo: p.BookingRepo,
		tourRepo:    p.TourRepo,
		email:       p.Email,
		metrics:     p.Metrics,
	}
}

// DispatchBookingPaid sends every channel for a settled booking.
// Channels that already have a sent record are skipped, so redelivery
// after a partial failure only touches the channels that need it.
func (s *Service) DispatchBookingPaid(ctx context.Context, bookingID string) ([]notificationdomain.Result, error) {
	return s.dispatch(ctx, bookingID, false)
}

// RetryFailed re-attempts only the channels whose last delivery failed.
func (s *Service) RetryFailed(ctx context.Context, bookingID string) ([]notificationdomain.Result, error) {
	return s.dispatch(ctx, bookingID, true)
}

func (s *Service) dispatch(ctx context.Context, bookingID string, retryOnly bool) ([]notificationdomain.Result, error) {
	id, err := parseID(bookingID)
	if err != nil {
		return nil, notificationdomain.ErrInvalidID
	}

	booking, err := s.bookingRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, notificationdomain.ErrBookingNotFound
	}
	if booking.PaymentStatus != bookingdomain.PaymentPaid {
		return nil, notificationdomain.ErrBookingNotPaid
	}

	tour, supplier, err := s.loadTourAndSupplier(ctx, booking)
	if err != nil {
		return nil, err
	}

	data := s.templateData(booking, tour)
	results := make([]notificationdomain.Result, 0, len(notificationdomain.Channels))

	for _, channel := range notificationdomain.Channels {
		record, err := s.repo.FindByBookingAndChannel(ctx, s.db, booking.ID, channel)
		if err != nil {
			return nil, err
		}

		if record != nil && record.Status == notificationdomain.StatusSent {
			results = append(results, notificationdomain.Result{Channel: channel, Status: notificationdomain.StatusSent})
			continue
		}
		if retryOnly && record == nil {
			continue
		}

		results = append(results, s.deliver(ctx, channel, record, booking, supplier, data))
	}

	return results, nil
}

// deliver attempts one channel and records the outcome. A send failure
// is captured on the record and returned as a result, never as an error.
func (s *Service) deliver(
	ctx context.Context,
	channel string,
	record *notificationdomain.NotificationRecord,
	booking *bookingdomain.Booking,
	supplier *tourdomain.Supplier,
	data map[string]any,
) notificationdomain.Result {
	now := s.clock.Now().UTC()

	if record == nil {
		record = &notificationdomain.NotificationRecord{
			ID:        s.genID.Generate(),
			BookingID: booking.ID,
			Channel:   channel,
			Status:    notificationdomain.StatusPending,
			Payload:   marshalPayload(data),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Insert(ctx, s.db, record); err != nil {
			s.log.Error("insert notification record failed",
				zap.String("booking_id", booking.ID.String()),
				zap.String("channel", channel),
				zap.Error(err),
			)
			return notificationdomain.Result{Channel: channel, Status: notificationdomain.StatusFailed, Error: err.Error()}
		}
	}

	record.Attempts++
	sendErr := s.send(ctx, channel, booking, supplier, data)
	if sendErr != nil {
		record.Status = notificationdomain.StatusFailed
		record.LastError = sendErr.Error()
	} else {
		record.Status = notificationdomain.StatusSent
		record.LastError = ""
		record.SentAt = &now
	}
	record.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, record); err != nil {
		s.log.Error("update notification record failed",
			zap.String("booking_id", booking.ID.String()),
			zap.String("channel", channel),
			zap.Error(err),
		)
	}

	s.metrics.RecordNotification(ctx, channel, record.Status)

	if sendErr != nil {
		s.log.Warn("notification delivery failed",
			zap.String("booking_id", booking.ID.String()),
			zap.String("channel", channel),
			zap.Error(sendErr),
		)
		return notificationdomain.Result{Channel: channel, Status: notificationdomain.StatusFailed, Error: sendErr.Error()}
	}

	return notificationdomain.Result{Channel: channel, Status: notificationdomain.StatusSent}
}

func (s *Service) send(
	ctx context.Context,
	channel string,
	booking *bookingdomain.Booking,
	supplier *tourdomain.Supplier,
	data map[string]any,
) error {
	switch channel {
	case notificationdomain.ChannelCustomer:
		return s.email.SendTemplate(ctx, []string{booking.CustomerEmail}, "booking_confirmed_customer",
			withSubject(data, "Your booking "+booking.Reference+" is confirmed"))
	case notificationdomain.ChannelSupplier:
		return s.email.SendTemplate(ctx, []string{supplier.Email}, "booking_alert_supplier",
			withSubject(data, "New paid booking "+booking.Reference))
	case notificationdomain.ChannelAdmin:
		to := strings.TrimSpace(s.cfg.Email.AdminAddress)
		if to == "" {
			return nil
		}
		return s.email.SendTemplate(ctx, []string{to}, "payment_completed_admin",
			withSubject(data, "Payment received for booking "+booking.Reference))
	default:
		return nil
	}
}

// withSubject copies the template data with the mail subject set, so
// the shared map stays channel-neutral.
func withSubject(data map[string]any, subject string) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["subject"] = subject
	return out
}

func (s *Service) List(ctx context.Context, bookingID string) ([]notificationdomain.RecordResponse, error) {
	id, err := parseID(bookingID)
	if err != nil {
		return nil, notificationdomain.ErrInvalidID
	}

	booking, err := s.bookingRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, notificationdomain.ErrBookingNotFound
	}

	records, err := s.repo.ListByBooking(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	resp := make([]notificationdomain.RecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, notificationdomain.RecordResponse{
			ID:        r.ID.String(),
			BookingID: r.BookingID.String(),
			Channel:   r.Channel,
			Status:    r.Status,
			Attempts:  r.Attempts,
			LastError: r.LastError,
			SentAt:    r.SentAt,
			CreatedAt: r.CreatedAt,
		})
	}

	return resp, nil
}

func (s *Service) loadTourAndSupplier(ctx context.Context, booking *bookingdomain.Booking) (*tourdomain.Tour, *tourdomain.Supplier, error) {
	tour, err := s.tourRepo.FindTourByID(ctx, s.db, booking.TourID)
	if err != nil {
		return nil, nil, err
	}
	if tour == nil {
		return nil, nil, notificationdomain.ErrBookingNotFound
	}

	supplier, err := s.tourRepo.FindSupplierByID(ctx, s.db, tour.SupplierID)
	if err != nil {
		return nil, nil, err
	}
	if supplier == nil {
		return nil, nil, notificationdomain.ErrBookingNotFound
	}

	return tour, supplier, nil
}

func (s *Service) templateData(booking *bookingdomain.Booking, tour *tourdomain.Tour) map[string]any {
	return map[string]any{
		"reference":          booking.Reference,
		"customer_name":      booking.CustomerName,
		"customer_email":     booking.CustomerEmail,
		"customer_phone":     booking.CustomerPhone,
		"special_requests":   booking.SpecialRequests,
		"tour_title":         tour.Title,
		"travel_date":        booking.TravelDate.Format("2006-01-02"),
		"party_size":         booking.PartySize,
		"total_amount":       invoiceformat.FormatAmount(booking.TotalAmount, booking.Currency),
		"currency":           strings.ToUpper(booking.Currency),
		"gateway_payment_id": booking.GatewayPaymentID,
	}
}

func marshalPayload(data map[string]any) datatypes.JSON {
	raw, err := json.Marshal(data)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
