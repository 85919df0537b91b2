// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/concur-accruals/tools/dashgen/panels"
)

// UID is the stable Grafana identifier of the overview dashboard.
const UID = "concur-accruals-overview"

// BuildOverview constructs the Concur Accruals overview dashboard with all
// metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Concur Accruals Overview").
		Uid(UID).
		Tags([]string{"concur", "concur-accruals"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.TokenTTLStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Token.
	b.WithRow(dashboard.NewRowBuilder("Token").
		WithPanel(panels.TokenExchanges()).
		WithPanel(panels.TokenLatency()).
		WithPanel(panels.Rotations()))

	// Row 4: Concur API.
	b.WithRow(dashboard.NewRowBuilder("Concur API").
		WithPanel(panels.UpstreamRequests()).
		WithPanel(panels.UpstreamLatency()).
		WithPanel(panels.DailyUsage()).
		WithPanel(panels.Throttled()).
		WithPanel(panels.LimitHits()))

	// Row 5: Collection.
	b.WithRow(dashboard.NewRowBuilder("Collection").
		WithPanel(panels.PagesRate()).
		WithPanel(panels.CollectionStops()).
		WithPanel(panels.AttributeFallbacks()).
		WithPanel(panels.AggregationDuration()).
		WithPanel(panels.OrgSearchUsers()))

	// Row 6: Scheduler.
	b.WithRow(dashboard.NewRowBuilder("Scheduler").
		WithPanel(panels.NextRefresh()).
		WithPanel(panels.JobRuns()).
		WithPanel(panels.SecretLookups()))

	// Row 7: Alerts.
	b.WithRow(dashboard.NewRowBuilder("Alerts").
		WithPanel(panels.AlertsRate()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.NotificationFailures()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
