package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	bookingsCreated   metric.Int64Counter
	settlements       metric.Int64Counter
	signatureFailures metric.Int64Counter
	notifications     metric.Int64Counter
	invoiceRenders    metric.Int64Counter
	rateLimitDenied   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "waypost"
	}
	meter := provider.Meter(name)

	bookingsCreated, err := meter.Int64Counter("waypost_bookings_created_total")
	if err != nil {
		return nil, err
	}
	settlements, err := meter.Int64Counter("waypost_settlements_total")
	if err != nil {
		return nil, err
	}
	signatureFailures, err := meter.Int64Counter("waypost_signature_failures_total")
	if err != nil {
		return nil, err
	}
	notifications, err := meter.Int64Counter("waypost_notifications_total")
	if err != nil {
		return nil, err
	}
	invoiceRenders, err := meter.Int64Counter("waypost_invoice_renders_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("waypost_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		bookingsCreated:   bookingsCreated,
		settlements:       settlements,
		signatureFailures: signatureFailures,
		notifications:     notifications,
		invoiceRenders:    invoiceRenders,
		rateLimitDenied:   rateLimitDenied,
	}, nil
}

// RecordBookingCreated increments booking creation counts.
func (m *Metrics) RecordBookingCreated(ctx context.Context, tourSlug string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("tour_slug", strings.TrimSpace(tourSlug)))
	m.bookingsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSettlement increments settlement counts by outcome.
func (m *Metrics) RecordSettlement(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.settlements.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSignatureFailure increments signature verification failure counts.
func (m *Metrics) RecordSignatureFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.signatureFailures.Add(ctx, 1)
}

// RecordNotification increments notification counts by channel and outcome.
func (m *Metrics) RecordNotification(ctx context.Context, channel, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("channel", strings.TrimSpace(channel)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.notifications.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInvoiceRender increments invoice render counts by format.
func (m *Metrics) RecordInvoiceRender(ctx context.Context, format string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("format", strings.TrimSpace(format)))
	m.invoiceRenders.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"tour_slug":   {},
	"endpoint":    {},
	"status_code": {},
	"outcome":     {},
	"channel":     {},
	"format":      {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
