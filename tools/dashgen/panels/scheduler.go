package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// NextRefresh returns a stat panel counting down to the next proactive
// token refresh.
func NextRefresh() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Next Token Refresh").
		Description("Seconds until the scheduler's next proactive token refresh").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`concur_accruals_scheduler_next_refresh_timestamp{`+Job+`} - time()`,
			"", "A",
		)).
		Unit("s").
		Thresholds(ThresholdsRedGreen(0)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// JobRuns returns a timeseries panel showing scheduled job runs by job and
// final status.
func JobRuns() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Job Runs").
		Description("Scheduled job runs per hour by job and status").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum by (job, status) (increase(concur_accruals_scheduler_job_runs_total{`+Job+`}[1h]))`,
			"{{job}} {{status}}", "A",
		)).
		FillOpacity(30).
		LineWidth(1).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SecretLookups returns a timeseries panel showing secret lookups by source
// and result.
func SecretLookups() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Secret Lookups").
		Description("Secret store lookups per second by source and result").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum by (source, result) (rate(concur_accruals_secret_lookups_total{`+Job+`}[5m]))`,
			"{{source}} {{result}}", "A",
		)).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
