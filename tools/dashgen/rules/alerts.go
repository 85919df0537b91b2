package rules

var alerts = []alertRule{
	{
		name:        "ConcurAccrualsDown",
		expr:        `absent(up{job="concur-accruals"})`,
		pending:     "2m",
		severity:    SeverityCritical,
		summary:     "Concur Accruals is down",
		description: "The concur-accruals job has been absent for more than 2 minutes.",
	},
	{
		name:        "ConcurAccrualsReadinessDown",
		expr:        `concur_accruals_readyz_up == 0`,
		pending:     "2m",
		severity:    SeverityCritical,
		summary:     "Concur Accruals readiness check is failing",
		description: "The readiness probe has been reporting not-ready for more than 2 minutes.",
	},
	{
		name:        "ConcurAccrualsHighErrorRate",
		expr:        `concur_accruals:http_errors:rate5m / concur_accruals:http_requests:rate5m > 0.05`,
		pending:     "5m",
		severity:    SeverityWarning,
		summary:     "High HTTP error rate on Concur Accruals",
		description: "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
	},
	{
		name:        "ConcurAccrualsHandlerPanics",
		expr:        `sum(increase(concur_accruals_http_panics_total[10m])) > 0`,
		pending:     "0m",
		severity:    SeverityWarning,
		summary:     "Concur Accruals handlers are panicking",
		description: "A request handler panicked in the last 10 minutes; search the logs for \"panic recovered\" and its request_id.",
	},
	{
		name:        "ConcurRefreshTokenRejected",
		expr:        `increase(concur_accruals_token_refreshes_total{outcome="AuthRejected"}[5m]) > 0`,
		pending:     "0m",
		severity:    SeverityCritical,
		summary:     "Concur rejected the refresh token",
		description: "The token endpoint answered invalid_grant. A new refresh token must be issued before any upstream call can succeed.",
	},
	{
		name:        "ConcurTokenExchangeFailing",
		expr:        `concur_accruals:token_failures:rate5m > 0`,
		pending:     "15m",
		severity:    SeverityWarning,
		summary:     "Concur token exchanges are failing",
		description: "Token endpoint exchanges have been failing for more than 15 minutes.",
	},
	{
		name:        "ConcurUpstreamErrors",
		expr:        `concur_accruals:concur_errors:rate5m > 0.1`,
		pending:     "10m",
		severity:    SeverityWarning,
		summary:     "Concur upstream error rate is elevated",
		description: "Upstream Concur requests have been failing at more than 0.1/s for 10 minutes.",
	},
	{
		name:        "ConcurThrottled",
		expr:        `increase(concur_accruals_concur_throttled_total[15m]) > 10`,
		pending:     "0m",
		severity:    SeverityWarning,
		summary:     "Concur is throttling requests",
		description: "More than 10 HTTP 429 responses were received from Concur in 15 minutes.",
	},
	{
		name:        "ConcurDailyLimitReached",
		expr:        `increase(concur_accruals_concur_daily_limit_hits_total[5m]) > 0`,
		pending:     "0m",
		severity:    SeverityCritical,
		summary:     "Configured daily Concur call limit has been reached",
		description: "Upstream calls are refused until the rolling 24h window frees capacity.",
	},
	{
		name:        "ConcurAccrualsNotificationFailures",
		expr:        `increase(concur_accruals_notification_failures_total[5m]) > 0`,
		pending:     "1m",
		severity:    SeverityWarning,
		summary:     "Notification delivery failures detected",
		description: "One or more credential alerts (Discord webhooks) have failed to send.",
	},
}

// AlertRules returns the operational alerts for concur-accruals.
func AlertRules() PrometheusRule {
	rules := make([]Rule, 0, len(alerts))
	for _, a := range alerts {
		rules = append(rules, a.rule())
	}
	return newPrometheusRule("concur-accruals-alerts", "concur-accruals-alerts", rules...)
}
