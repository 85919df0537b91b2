package rules

// RecordingRules returns the pre-computed rates the dashboard and alerts
// read.
func RecordingRules() PrometheusRule {
	return newPrometheusRule("concur-accruals-recording-rules", "concur-accruals-recording",
		record("concur_accruals:http_requests:rate5m",
			`sum(rate(concur_accruals_http_requests_total[5m]))`),
		record("concur_accruals:http_errors:rate5m",
			`sum(rate(concur_accruals_http_requests_total{status=~"5.."}[5m]))`),
		record("concur_accruals:concur_requests:rate5m",
			`sum by (outcome) (rate(concur_accruals_concur_requests_total[5m]))`),
		record("concur_accruals:concur_errors:rate5m",
			`sum(rate(concur_accruals_concur_requests_total{outcome!="ok"}[5m]))`),
		record("concur_accruals:token_failures:rate5m",
			`sum(rate(concur_accruals_token_refreshes_total{outcome!="success"}[5m]))`),
		record("concur_accruals:pages_fetched:rate5m",
			`sum by (style) (rate(concur_accruals_pages_fetched_total[5m]))`),
		record("concur_accruals:notification_duration:p95_5m",
			`histogram_quantile(0.95, sum(rate(concur_accruals_notification_duration_seconds_bucket[5m])) by (le))`),
	)
}
