package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// TokenExchanges returns a timeseries panel showing token endpoint exchanges
// per second split by outcome.
func TokenExchanges() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Token Exchanges").
		Description("Refresh token exchanges per second by outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum by (outcome) (rate(concur_accruals_token_refreshes_total{`+Job+`}[5m]))`,
			"{{outcome}}", "A",
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

// TokenLatency returns a timeseries panel showing the p95 token endpoint
// latency.
func TokenLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Token Exchange Latency (p95)").
		Description("95th percentile duration of token endpoint exchanges").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			Quantile(0.95, "concur_accruals_token_refresh_duration_seconds", ""),
			"p95", "A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(2, 10)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// Rotations returns a stat panel counting refresh token rotations over the
// past 24 hours.
func Rotations() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Refresh Token Rotations (24h)").
		Description("Rotated refresh tokens persisted in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`increase(concur_accruals_refresh_token_rotations_total{`+Job+`}[24h])`,
			"", "A",
		)).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
