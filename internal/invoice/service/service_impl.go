package service

import (
	"context"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/gowander/waypost/internal/booking/domain"
	bookingformat "github.com/gowander/waypost/internal/booking/format"
	invoicedomain "github.com/gowander/waypost/internal/invoice/domain"
	"github.com/gowander/waypost/internal/invoice/format"
	"github.com/gowander/waypost/internal/invoice/render"
	"github.com/gowander/waypost/internal/observability/metrics"
	"github.com/gowander/waypost/internal/providers/pdf"
	tourdomain "github.com/gowander/waypost/internal/tour/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Renderer    render.Renderer
	PDF         pdf.Provider
	BookingRepo bookingdomain.Repository
	TourRepo    tourdomain.Repository
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	renderer    render.Renderer
	pdf         pdf.Provider
	bookingRepo bookingdomain.Repository
	tourRepo    tourdomain.Repository
	metrics     *metrics.Metrics
}

func New(p Params) invoicedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invoice.service"),
		renderer:    p.Renderer,
		pdf:         p.PDF,
		bookingRepo: p.BookingRepo,
		tourRepo:    p.TourRepo,
		metrics:     p.Metrics,
	}
}

// Snapshot resolves the invoice view for a paid booking. Everything in
// the snapshot is frozen booking data, so repeated calls return equal
// snapshots and renders stay byte-identical.
func (s *Service) Snapshot(ctx context.Context, bookingID string) (*invoicedomain.Snapshot, error) {
	id, err := parseID(bookingID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	booking, err := s.bookingRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, invoicedomain.ErrBookingNotFound
	}
	if booking.PaymentStatus != bookingdomain.PaymentPaid &&
		booking.PaymentStatus != bookingdomain.PaymentRefunded {
		return nil, invoicedomain.ErrBookingNotSettled
	}

	tour, err := s.tourRepo.FindTourByID(ctx, s.db, booking.TourID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, invoicedomain.ErrBookingNotFound
	}

	supplier, err := s.tourRepo.FindSupplierByID(ctx, s.db, tour.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, invoicedomain.ErrBookingNotFound
	}

	option, err := s.tourRepo.FindOptionByID(ctx, s.db, booking.OptionID)
	if err != nil {
		return nil, err
	}
	optionName := ""
	if option != nil {
		optionName = option.Name
	}

	issuedAt := booking.CreatedAt
	if booking.PaidAt != nil {
		issuedAt = *booking.PaidAt
	}

	return &invoicedomain.Snapshot{
		Number:           bookingformat.InvoiceNumber(booking.Reference),
		BookingReference: booking.Reference,
		IssuedAt:         issuedAt.UTC(),
		SupplierName:     supplier.Name,
		SupplierEmail:    supplier.Email,
		CustomerName:     booking.CustomerName,
		CustomerEmail:    booking.CustomerEmail,
		TourTitle:        tour.Title,
		OptionName:       optionName,
		TravelDate:       booking.TravelDate.Format("2006-01-02"),
		Currency:         strings.ToUpper(booking.Currency),
		PartySize:        booking.PartySize,
		UnitAmount:       booking.UnitAmount,
		TotalAmount:      booking.TotalAmount,
	}, nil
}

func (s *Service) RenderHTML(ctx context.Context, bookingID string) ([]byte, error) {
	snapshot, err := s.Snapshot(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	out, err := s.renderer.RenderHTML(snapshot)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordInvoiceRender(ctx, "html")
	return out, nil
}

func (s *Service) RenderPDF(ctx context.Context, bookingID string) (io.Reader, error) {
	snapshot, err := s.Snapshot(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	reader, err := s.pdf.GenerateInvoice(ctx, pdf.InvoiceData{
		InvoiceNumber:    snapshot.Number,
		BookingReference: snapshot.BookingReference,
		IssueDate:        snapshot.IssuedAt.Format("2006-01-02"),
		SupplierName:     snapshot.SupplierName,
		SupplierEmail:    snapshot.SupplierEmail,
		CustomerName:     snapshot.CustomerName,
		CustomerEmail:    snapshot.CustomerEmail,
		TourTitle:        snapshot.TourTitle,
		OptionName:       snapshot.OptionName,
		TravelDate:       snapshot.TravelDate,
		Items: []pdf.InvoiceItem{
			{
				Description: snapshot.TourTitle + " - " + snapshot.OptionName,
				Qty:         snapshot.PartySize,
				UnitPrice:   format.FormatAmount(snapshot.UnitAmount, snapshot.Currency),
				Amount:      format.FormatAmount(snapshot.TotalAmount, snapshot.Currency),
			},
		},
		Total: format.FormatMoney(snapshot.TotalAmount, snapshot.Currency),
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordInvoiceRender(ctx, "pdf")
	return reader, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
