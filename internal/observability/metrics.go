package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brightcart/storefront-backend/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "storefront-backend"

type AppMetrics struct {
	authzDecisionCounter     metric.Int64Counter
	authLoginCounter         metric.Int64Counter
	authFlowCounter          metric.Int64Counter
	tokenValidationCounter   metric.Int64Counter
	authReqDuration          metric.Float64Histogram
	repositoryOpCounter      metric.Int64Counter
	orderTransitionCounter   metric.Int64Counter
	webhookCounter           metric.Int64Counter
	reportCacheCounter       metric.Int64Counter
	navigationItemsHistogram metric.Float64Histogram
	roleMutationCounter      metric.Int64Counter
	rateLimitDecisionCounter metric.Int64Counter
	rateLimitRetryAfter      metric.Float64Histogram
	jobCounter               metric.Int64Counter
	healthCheckResultCounter metric.Int64Counter
	healthCheckDuration      metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "auth.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter(meterName)
	authzDecisions, err := meter.Int64Counter("authz.decision.events",
		metric.WithDescription("Authorization decisions by resource, action, role and outcome"))
	if err != nil {
		return nil, err
	}
	loginCounter, err := meter.Int64Counter("auth.login.attempts")
	if err != nil {
		return nil, err
	}
	authFlowCounter, err := meter.Int64Counter("auth.flow.events")
	if err != nil {
		return nil, err
	}
	tokenValidation, err := meter.Int64Counter("auth.token.validation.events")
	if err != nil {
		return nil, err
	}
	authReqDuration, err := meter.Float64Histogram("auth.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of auth endpoint requests in seconds"))
	if err != nil {
		return nil, err
	}
	repoOps, err := meter.Int64Counter("repository.operations",
		metric.WithDescription("Repository operations by entity, operation and outcome"))
	if err != nil {
		return nil, err
	}
	orderTransitions, err := meter.Int64Counter("order.status.transitions")
	if err != nil {
		return nil, err
	}
	webhookCounter, err := meter.Int64Counter("payment.webhook.events")
	if err != nil {
		return nil, err
	}
	reportCache, err := meter.Int64Counter("report.cache.events")
	if err != nil {
		return nil, err
	}
	navigationItems, err := meter.Float64Histogram("navigation.items.returned",
		metric.WithDescription("Number of navigation items returned per request"))
	if err != nil {
		return nil, err
	}
	roleMutations, err := meter.Int64Counter("admin.role.mutations")
	if err != nil {
		return nil, err
	}
	rateLimitDecisions, err := meter.Int64Counter("http.rate_limit.decisions")
	if err != nil {
		return nil, err
	}
	rateLimitRetryAfter, err := meter.Float64Histogram("http.rate_limit.retry_after",
		metric.WithUnit("s"),
		metric.WithDescription("Retry-after duration in seconds for throttled requests"))
	if err != nil {
		return nil, err
	}
	jobCounter, err := meter.Int64Counter("worker.job.events")
	if err != nil {
		return nil, err
	}
	healthResults, err := meter.Int64Counter("health.check.results")
	if err != nil {
		return nil, err
	}
	healthDuration, err := meter.Float64Histogram("health.check.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of health dependency checks in seconds"))
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		authzDecisionCounter:     authzDecisions,
		authLoginCounter:         loginCounter,
		authFlowCounter:          authFlowCounter,
		tokenValidationCounter:   tokenValidation,
		authReqDuration:          authReqDuration,
		repositoryOpCounter:      repoOps,
		orderTransitionCounter:   orderTransitions,
		webhookCounter:           webhookCounter,
		reportCacheCounter:       reportCache,
		navigationItemsHistogram: navigationItems,
		roleMutationCounter:      roleMutations,
		rateLimitDecisionCounter: rateLimitDecisions,
		rateLimitRetryAfter:      rateLimitRetryAfter,
		jobCounter:               jobCounter,
		healthCheckResultCounter: healthResults,
		healthCheckDuration:      healthDuration,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func current() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordAuthzDecision(ctx context.Context, resource, action, role, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.authzDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("action", action),
		attribute.String("role", role),
		attribute.String("outcome", outcome),
	))
}

func RecordAuthLogin(ctx context.Context, status string) {
	m := current()
	if m == nil {
		return
	}
	m.authLoginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordAuthFlow(ctx context.Context, flow, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.authFlowCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("outcome", outcome),
	))
}

// RecordTokenValidation tracks credential resolution by the request guard.
// Source is "session" or "bearer".
func RecordTokenValidation(ctx context.Context, outcome, source string) {
	m := current()
	if m == nil {
		return
	}
	m.tokenValidationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("source", source),
	))
}

func RecordAuthRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.authReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.repositoryOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordOrderTransition(ctx context.Context, from, to, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.orderTransitionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
		attribute.String("outcome", outcome),
	))
}

func RecordWebhookEvent(ctx context.Context, provider, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.webhookCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
}

func RecordReportCacheEvent(ctx context.Context, report, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.reportCacheCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("report", report),
		attribute.String("outcome", outcome),
	))
}

func RecordNavigationItems(ctx context.Context, role string, count int) {
	m := current()
	if m == nil {
		return
	}
	m.navigationItemsHistogram.Record(ctx, float64(count), metric.WithAttributes(
		attribute.String("role", role),
	))
}

func RecordRoleMutation(ctx context.Context, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.roleMutationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome, mode, keyType string) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
		attribute.String("mode", mode),
		attribute.String("key_type", keyType),
	))
}

func RecordRateLimitRetryAfter(ctx context.Context, scope, reason string, retryAfter time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitRetryAfter.Record(ctx, retryAfter.Seconds(), metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("reason", reason),
	))
}

func RecordJobEvent(ctx context.Context, task, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.jobCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task", task),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("check", check),
	))
}
