package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// PagesRate returns a timeseries panel showing collection pages fetched per
// second by pagination style.
func PagesRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Pages Fetched").
		Description("Collection pages fetched per second by pagination style").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`concur_accruals:pages_fetched:rate5m`, "{{style}}", "A")).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// CollectionStops returns a timeseries panel showing why collections ended.
// A rising max_pages or repeat_page series means results are being cut short.
func CollectionStops() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Collection Stop Reasons").
		Description("Finished collections by stop reason over 1h").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum by (reason) (increase(concur_accruals_collection_stops_total{`+Job+`}[1h]))`,
			"{{reason}}", "A",
		)).
		FillOpacity(30).
		LineWidth(1).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// AttributeFallbacks returns a stat panel counting attribute sets narrowed
// after a tenant rejected an attribute.
func AttributeFallbacks() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Attribute Fallbacks (24h)").
		Description("Attribute lists narrowed after a tenant rejection in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`increase(concur_accruals_attribute_fallbacks_total{`+Job+`}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 20)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}

// AggregationDuration returns a timeseries panel showing the p95 duration of
// each aggregated view.
func AggregationDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Aggregation Duration (p95)").
		Description("95th percentile duration of aggregated views by operation").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			Quantile(0.95, "concur_accruals_aggregation_duration_seconds", "operation"),
			"{{operation}}", "A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// OrgSearchUsers returns a timeseries panel showing users fetched by
// org-wide searches.
func OrgSearchUsers() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Org Search Users").
		Description("Users fetched by org-wide searches per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`increase(concur_accruals_org_search_users_total{`+Job+`}[1h])`, "users", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
