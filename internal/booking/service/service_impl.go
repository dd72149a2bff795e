package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	bookingdomain "github.com/gowander/waypost/internal/booking/domain"
	"github.com/gowander/waypost/internal/booking/format"
	"github.com/gowander/waypost/internal/clock"
	"github.com/gowander/waypost/internal/pricing"
	tourdomain "github.com/gowander/waypost/internal/tour/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     bookingdomain.Repository
	TourRepo tourdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     bookingdomain.Repository
	tourRepo tourdomain.Repository
}

func New(p Params) bookingdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("booking.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		tourRepo: p.TourRepo,
	}
}

func (s *Service) Create(ctx context.Context, req bookingdomain.CreateRequest) (*bookingdomain.Response, error) {
	option, err := s.resolveOption(ctx, req)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, bookingdomain.ErrInvalidName
	}
	email := strings.TrimSpace(req.CustomerEmail)
	if email == "" || !strings.Contains(email, "@") {
		return nil, bookingdomain.ErrInvalidEmail
	}
	if req.PartySize <= 0 {
		return nil, pricing.ErrInvalidPartySize
	}

	travelDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.TravelDate))
	if err != nil {
		return nil, bookingdomain.ErrInvalidTravelDate
	}

	tour, err := s.tourRepo.FindTourByID(ctx, s.db, option.TourID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, bookingdomain.ErrOptionNotFound
	}
	if !tour.IsActive {
		return nil, bookingdomain.ErrTourInactive
	}
	if tour.MaxGroupSize > 0 && req.PartySize > tour.MaxGroupSize {
		return nil, bookingdomain.ErrPartyTooLarge
	}

	tierRows, err := s.tourRepo.ListTiersByOption(ctx, s.db, option.ID)
	if err != nil {
		return nil, err
	}
	tiers := make([]pricing.Tier, 0, len(tierRows))
	for _, row := range tierRows {
		tiers = append(tiers, pricing.Tier{
			MinPeople: row.MinPeople,
			MaxPeople: row.MaxPeople,
			Price:     row.Price,
		})
	}

	unitAmount, err := pricing.ResolveUnitPrice(tiers, option.BasePrice, req.PartySize)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	id := s.genID.Generate()
	entity := &bookingdomain.Booking{
		ID:              id,
		Reference:       format.Reference(id, now),
		TourID:          tour.ID,
		OptionID:        option.ID,
		CustomerName:    name,
		CustomerEmail:   email,
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
		TravelDate:      travelDate,
		PartySize:       req.PartySize,
		Currency:        option.Currency,
		UnitAmount:      unitAmount,
		TotalAmount:     unitAmount * int64(req.PartySize),
		Status:          bookingdomain.StatusPending,
		PaymentStatus:   bookingdomain.PaymentPending,
		GatewayOrderID:  "ord_" + uuid.NewString(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", entity.ID.String()),
		zap.String("reference", entity.Reference),
		zap.Int("party_size", entity.PartySize),
		zap.Int64("total_amount", entity.TotalAmount),
	)

	return ToResponse(entity), nil
}

// resolveOption picks the option being booked: an explicit option id
// wins, otherwise the tour's default option is used.
func (s *Service) resolveOption(ctx context.Context, req bookingdomain.CreateRequest) (*tourdomain.TourOption, error) {
	if strings.TrimSpace(req.OptionID) != "" {
		optionID, err := parseID(req.OptionID)
		if err != nil {
			return nil, bookingdomain.ErrInvalidOption
		}
		option, err := s.tourRepo.FindOptionByID(ctx, s.db, optionID)
		if err != nil {
			return nil, err
		}
		if option == nil {
			return nil, bookingdomain.ErrOptionNotFound
		}
		return option, nil
	}

	tourID, err := parseID(req.TourID)
	if err != nil {
		return nil, bookingdomain.ErrInvalidOption
	}
	option, err := s.tourRepo.FindDefaultOptionByTour(ctx, s.db, tourID)
	if err != nil {
		return nil, err
	}
	if option == nil {
		return nil, bookingdomain.ErrOptionNotFound
	}
	return option, nil
}

func (s *Service) Get(ctx context.Context, id string) (*bookingdomain.Response, error) {
	bookingID, err := parseID(id)
	if err != nil {
		return nil, bookingdomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, bookingdomain.ErrBookingNotFound
	}

	return ToResponse(entity), nil
}

// Cancel voids a booking that has not been paid. Paid bookings go
// through the refund path instead.
func (s *Service) Cancel(ctx context.Context, id string) (*bookingdomain.Response, error) {
	bookingID, err := parseID(id)
	if err != nil {
		return nil, bookingdomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, bookingdomain.ErrBookingNotFound
	}
	if entity.Status == bookingdomain.StatusCancelled {
		return ToResponse(entity), nil
	}
	if entity.PaymentStatus == bookingdomain.PaymentPaid {
		return nil, bookingdomain.ErrNotCancellable
	}

	now := s.clock.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, s.db, bookingID, bookingdomain.StatusCancelled, entity.PaymentStatus, now); err != nil {
		return nil, err
	}

	entity.Status = bookingdomain.StatusCancelled
	entity.UpdatedAt = now

	s.log.Info("booking cancelled", zap.String("booking_id", entity.ID.String()))

	return ToResponse(entity), nil
}

// MarkRefunded records that the gateway refunded a paid booking. The
// money movement itself happens on the gateway side.
func (s *Service) MarkRefunded(ctx context.Context, id string) (*bookingdomain.Response, error) {
	bookingID, err := parseID(id)
	if err != nil {
		return nil, bookingdomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, bookingdomain.ErrBookingNotFound
	}
	if entity.PaymentStatus != bookingdomain.PaymentPaid {
		return nil, bookingdomain.ErrNotRefundable
	}

	now := s.clock.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, s.db, bookingID, bookingdomain.StatusCancelled, bookingdomain.PaymentRefunded, now); err != nil {
		return nil, err
	}

	entity.Status = bookingdomain.StatusCancelled
	entity.PaymentStatus = bookingdomain.PaymentRefunded
	entity.UpdatedAt = now

	s.log.Info("booking refunded", zap.String("booking_id", entity.ID.String()))

	return ToResponse(entity), nil
}

// ToResponse maps a booking row to its API shape.
func ToResponse(b *bookingdomain.Booking) *bookingdomain.Response {
	return &bookingdomain.Response{
		ID:               b.ID.String(),
		Reference:        b.Reference,
		TourID:           b.TourID.String(),
		OptionID:         b.OptionID.String(),
		CustomerName:     b.CustomerName,
		CustomerEmail:    b.CustomerEmail,
		CustomerPhone:    b.CustomerPhone,
		SpecialRequests:  b.SpecialRequests,
		TravelDate:       b.TravelDate.Format("2006-01-02"),
		PartySize:        b.PartySize,
		Currency:         b.Currency,
		UnitAmount:       b.UnitAmount,
		TotalAmount:      b.TotalAmount,
		Status:           b.Status,
		PaymentStatus:    b.PaymentStatus,
		GatewayOrderID:   b.GatewayOrderID,
		GatewayPaymentID: b.GatewayPaymentID,
		PaidAt:           b.PaidAt,
		CreatedAt:        b.CreatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
