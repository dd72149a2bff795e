package service

import (
	"context"
	"strings"

	bookingdomain "github.com/gowander/waypost/internal/booking/domain"
	"github.com/gowander/waypost/internal/clock"
	"github.com/gowander/waypost/internal/config"
	notificationdomain "github.com/gowander/waypost/internal/notification/domain"
	"github.com/gowander/waypost/internal/observability/metrics"
	settlementdomain "github.com/gowander/waypost/internal/settlement/domain"
	"github.com/gowander/waypost/internal/settlement/signature"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Cfg         config.Config
	BookingRepo bookingdomain.Repository
	Dispatcher  notificationdomain.Dispatcher
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	secret      string
	bookingRepo bookingdomain.Repository
	dispatcher  notificationdomain.Dispatcher
	metrics     *metrics.Metrics
}

func New(p Params) settlementdomain.Verifier {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("settlement.service"),
		clock:       p.Clock,
		secret:      p.Cfg.Gateway.SignatureSecret,
		bookingRepo: p.BookingRepo,
		dispatcher:  p.Dispatcher,
		metrics:     p.Metrics,
	}
}

// VerifyAndSettle authenticates a gateway callback and, for a completed
// payment, flips the booking from pending to paid exactly once. The
// flip happens through a conditional update keyed on the current
// payment status, so two callbacks racing each other settle on the
// database row and only the winner dispatches notifications.
func (s *Service) VerifyAndSettle(ctx context.Context, req settlementdomain.CallbackRequest) (*settlementdomain.Result, error) {
	orderID := strings.TrimSpace(req.GatewayOrderID)
	paymentID := strings.TrimSpace(req.GatewayPaymentID)
	status := strings.ToLower(strings.TrimSpace(req.Status))

	if orderID == "" || paymentID == "" {
		return nil, settlementdomain.ErrInvalidCallback
	}
	if status != settlementdomain.CallbackCompleted && status != settlementdomain.CallbackFailed {
		return nil, settlementdomain.ErrInvalidCallback
	}

	if !signature.Verify(s.secret, orderID, paymentID, strings.TrimSpace(req.Signature)) {
		s.metrics.RecordSignatureFailure(ctx)
		s.log.Warn("callback signature rejected",
			zap.String("gateway_order_id", orderID),
		)
		return nil, settlementdomain.ErrSignatureInvalid
	}

	booking, err := s.bookingRepo.FindByGatewayOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, settlementdomain.ErrBookingNotFound
	}

	if echoed := strings.TrimSpace(req.BookingID); echoed != "" && echoed != booking.ID.String() {
		s.log.Warn("callback booking id does not match order",
			zap.String("gateway_order_id", orderID),
			zap.String("callback_booking_id", echoed),
			zap.String("booking_id", booking.ID.String()),
		)
		return nil, settlementdomain.ErrInvalidCallback
	}

	if status == settlementdomain.CallbackFailed {
		return s.markFailed(ctx, booking)
	}

	return s.settle(ctx, booking, paymentID)
}

func (s *Service) settle(ctx context.Context, booking *bookingdomain.Booking, paymentID string) (*settlementdomain.Result, error) {
	if booking.PaymentStatus == bookingdomain.PaymentPaid {
		return s.replayOrConflict(ctx, booking, paymentID)
	}
	if booking.Status == bookingdomain.StatusCancelled ||
		booking.PaymentStatus == bookingdomain.PaymentRefunded ||
		booking.PaymentStatus == bookingdomain.PaymentFailed {
		return nil, settlementdomain.ErrBookingNotPayable
	}

	now := s.clock.Now().UTC()
	settled, err := s.bookingRepo.SettleIfPending(ctx, s.db, booking.ID, paymentID, now)
	if err != nil {
		return nil, err
	}

	if !settled {
		// Lost the race. Reload and decide between replay and conflict.
		fresh, err := s.bookingRepo.FindByID(ctx, s.db, booking.ID)
		if err != nil {
			return nil, err
		}
		if fresh == nil {
			return nil, settlementdomain.ErrBookingNotFound
		}
		if fresh.PaymentStatus == bookingdomain.PaymentPaid {
			return s.replayOrConflict(ctx, fresh, paymentID)
		}
		return nil, settlementdomain.ErrBookingNotPayable
	}

	s.metrics.RecordSettlement(ctx, "settled")
	s.log.Info("booking settled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("gateway_payment_id", paymentID),
	)

	// Notifications ride on the pending-to-paid edge only. A channel
	// failure is recorded by the dispatcher and never unwinds the
	// settlement.
	results, dispatchErr := s.dispatcher.DispatchBookingPaid(ctx, booking.ID.String())
	if dispatchErr != nil {
		s.log.Error("notification dispatch failed",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(dispatchErr),
		)
	}

	return &settlementdomain.Result{
		BookingID:     booking.ID.String(),
		Reference:     booking.Reference,
		Status:        bookingdomain.StatusConfirmed,
		PaymentStatus: bookingdomain.PaymentPaid,
		Notifications: results,
	}, nil
}

// replayOrConflict handles callbacks for a booking that is already
// paid: the same payment id is an idempotent replay, a different one is
// a conflict that needs operator attention.
func (s *Service) replayOrConflict(ctx context.Context, booking *bookingdomain.Booking, paymentID string) (*settlementdomain.Result, error) {
	if booking.GatewayPaymentID != paymentID {
		s.metrics.RecordSettlement(ctx, "conflict")
		s.log.Error("conflicting payment for settled booking",
			zap.String("booking_id", booking.ID.String()),
			zap.String("recorded_payment_id", booking.GatewayPaymentID),
			zap.String("callback_payment_id", paymentID),
		)
		return nil, settlementdomain.ErrPaymentConflict
	}

	s.metrics.RecordSettlement(ctx, "replay")
	return &settlementdomain.Result{
		BookingID:      booking.ID.String(),
		Reference:      booking.Reference,
		Status:         booking.Status,
		PaymentStatus:  booking.PaymentStatus,
		AlreadySettled: true,
	}, nil
}

func (s *Service) markFailed(ctx context.Context, booking *bookingdomain.Booking) (*settlementdomain.Result, error) {
	if booking.PaymentStatus == bookingdomain.PaymentPaid {
		// A failure callback after settlement is a gateway quirk, not
		// a reason to unwind a paid booking.
		return &settlementdomain.Result{
			BookingID:      booking.ID.String(),
			Reference:      booking.Reference,
			Status:         booking.Status,
			PaymentStatus:  booking.PaymentStatus,
			AlreadySettled: true,
		}, nil
	}

	now := s.clock.Now().UTC()
	if _, err := s.bookingRepo.MarkFailedIfPending(ctx, s.db, booking.ID, now); err != nil {
		return nil, err
	}

	s.metrics.RecordSettlement(ctx, "failed")
	s.log.Info("payment failed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
	)

	return &settlementdomain.Result{
		BookingID:     booking.ID.String(),
		Reference:     booking.Reference,
		Status:        booking.Status,
		PaymentStatus: bookingdomain.PaymentFailed,
	}, nil
}
