package main

import "errors"

// KnownMetrics is the set of metric names exported by concur-accruals plus
// recording rule names referenced in dashboards and alerts. Histogram
// series are listed by their base name.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"concur_accruals_http_request_duration_seconds": true,
	"concur_accruals_http_requests_total":           true,
	"concur_accruals_http_requests_in_flight":       true,
	"concur_accruals_http_panics_total":             true,

	// Health metrics.
	"concur_accruals_healthz_up": true,
	"concur_accruals_readyz_up":  true,

	// Token metrics.
	"concur_accruals_token_refreshes_total":          true,
	"concur_accruals_token_refresh_duration_seconds": true,
	"concur_accruals_token_expiry_timestamp":         true,
	"concur_accruals_refresh_token_rotations_total":  true,

	// Concur API metrics.
	"concur_accruals_concur_requests_total":           true,
	"concur_accruals_concur_request_duration_seconds": true,
	"concur_accruals_concur_daily_usage":              true,
	"concur_accruals_concur_daily_limit_hits_total":   true,
	"concur_accruals_concur_throttled_total":          true,
	"concur_accruals_attribute_fallbacks_total":       true,
	"concur_accruals_pages_fetched_total":             true,
	"concur_accruals_collection_stops_total":          true,

	// Aggregation metrics.
	"concur_accruals_aggregation_duration_seconds": true,
	"concur_accruals_org_search_users_total":       true,

	// Secret store metrics.
	"concur_accruals_secret_lookups_total": true,

	// Scheduler metrics.
	"concur_accruals_scheduler_next_refresh_timestamp": true,
	"concur_accruals_scheduler_job_runs_total":         true,

	// Notification metrics.
	"concur_accruals_alerts_fired_total":            true,
	"concur_accruals_notification_failures_total":   true,
	"concur_accruals_notification_duration_seconds": true,

	// Recording rules.
	"concur_accruals:http_requests:rate5m":         true,
	"concur_accruals:http_errors:rate5m":           true,
	"concur_accruals:concur_requests:rate5m":       true,
	"concur_accruals:concur_errors:rate5m":         true,
	"concur_accruals:token_failures:rate5m":        true,
	"concur_accruals:pages_fetched:rate5m":         true,
	"concur_accruals:notification_duration:p95_5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
