package analytics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nulzo/zone-analytics-proxy/internal/httpclient"
	"github.com/nulzo/zone-analytics-proxy/internal/validator"
	"github.com/nulzo/zone-analytics-proxy/pkg/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/nulzo/zone-analytics-proxy/internal/analytics"

// Request carries the caller's credentials, zone and raw day count.
type Request struct {
	Email  string `json:"email" validate:"required"`
	APIKey string `json:"api_key" validate:"required"`
	ZoneID string `json:"zone_id" validate:"required"`
	Days   string `json:"days"`
}

// RequestFrom adapts the wire request.
func RequestFrom(in api.AnalyticsRequest) Request {
	return Request{
		Email:  in.Email,
		APIKey: in.APIKey,
		ZoneID: in.ZoneID,
		Days:   string(in.Days),
	}
}

// Service fetches normalized zone analytics.
type Service interface {
	Fetch(ctx context.Context, req Request) (*api.AnalyticsResult, error)
}

// Fetcher performs one provider call per Fetch. It holds no per-request state and is
// safe for concurrent use.
type Fetcher struct {
	client    httpclient.HTTPClient
	endpoint  string
	maxDays   int
	now       func() time.Time
	validator *validator.Validator
	tracer    trace.Tracer
	logger    *zap.Logger
}

type Option func(*Fetcher)

// WithHTTPClient replaces the default timeout-bounded client.
func WithHTTPClient(c httpclient.HTTPClient) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithClock sets the source of "now" used for the window.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// WithMaxDays clamps day counts above n. Zero disables the clamp.
func WithMaxDays(n int) Option {
	return func(f *Fetcher) {
		f.maxDays = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

func NewFetcher(endpoint string, timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    httpclient.New(timeout),
		endpoint:  endpoint,
		now:       time.Now,
		validator: validator.New(),
		tracer:    otel.Tracer(tracerName),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch validates req, queries the provider for the requested window and normalizes
// the result. Errors are *ValidationError or *UpstreamError.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*api.AnalyticsResult, error) {
	if err := f.validate(req); err != nil {
		return nil, err
	}

	days := NormalizeDays(req.Days, f.maxDays)
	window := NewWindow(f.now(), days)
	query := NewQuery(req.ZoneID, window)

	ctx, span := f.tracer.Start(ctx, "analytics.Fetch", trace.WithAttributes(
		attribute.String("analytics.zone_id", req.ZoneID),
		attribute.Int("analytics.days", days),
		attribute.String("analytics.date_geq", window.StartDate()),
		attribute.String("analytics.date_lt", window.EndDate()),
	))
	defer span.End()

	headers := map[string]string{
		"X-Auth-Email": req.Email,
		"X-Auth-Key":   req.APIKey,
	}

	var resp GraphQLResponse
	if err := httpclient.SendRequest(ctx, f.client, http.MethodPost, f.endpoint, headers, query, &resp); err != nil {
		upstreamErr := toUpstreamError(err)
		span.RecordError(upstreamErr)
		span.SetStatus(codes.Error, upstreamErr.Message)
		return nil, upstreamErr
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		f.logger.Warn("Analytics provider returned GraphQL errors",
			zap.String("zone_id", req.ZoneID),
			zap.Strings("errors", msgs),
		)
	}

	result := Normalize(&resp)
	span.SetAttributes(
		attribute.Int("analytics.rows", len(result.DailyBreakdown)),
		attribute.Int64("analytics.total_unique_visits", result.TotalUniqueVisits),
	)

	f.logger.Debug("Fetched zone analytics",
		zap.String("zone_id", req.ZoneID),
		zap.String("date_geq", window.StartDate()),
		zap.String("date_lt", window.EndDate()),
		zap.Int("rows", len(result.DailyBreakdown)),
	)

	return result, nil
}

func (f *Fetcher) validate(req Request) error {
	fields, err := f.validator.Struct(req)
	if err != nil {
		return fmt.Errorf("validate request: %w", err)
	}
	if len(fields) == 0 {
		return nil
	}

	verr := &ValidationError{
		Fields:  make([]string, 0, len(fields)),
		Reasons: make([]string, 0, len(fields)),
	}
	for _, fe := range fields {
		verr.Fields = append(verr.Fields, fe.Field)
		verr.Reasons = append(verr.Reasons, fe.Message)
	}
	return verr
}

func toUpstreamError(err error) *UpstreamError {
	var statusErr *httpclient.UpstreamError
	if errors.As(err, &statusErr) {
		return newStatusError(statusErr.StatusCode, err)
	}
	return newTransportError(err)
}
