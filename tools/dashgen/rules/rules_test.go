package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheusRule(t *testing.T) {
	t.Parallel()

	cr := newPrometheusRule("concur-accruals-x", "x-group", record("a:b:rate5m", "sum(rate(c[5m]))"))
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "system-rules-prometheus", cr.Metadata.Labels["prometheus"])
	assert.Equal(t, "concur-accruals", cr.Metadata.Labels["app.kubernetes.io/part-of"])
	require.Len(t, cr.Spec.Groups, 1)
	assert.Equal(t, "x-group", cr.Spec.Groups[0].Name)
	assert.Equal(t, []Rule{{Record: "a:b:rate5m", Expr: "sum(rate(c[5m]))"}}, cr.Spec.Groups[0].Rules)
}

func TestAlertRules_LabelsAndAnnotations(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, r := range AlertRules().Spec.Groups[0].Rules {
		assert.False(t, seen[r.Alert], "duplicate alert %s", r.Alert)
		seen[r.Alert] = true

		assert.Empty(t, r.Record)
		assert.NotEmpty(t, r.For, r.Alert)
		assert.Contains(t, []string{SeverityCritical, SeverityWarning}, r.Labels["severity"], r.Alert)
		assert.Equal(t, "concur-accruals", r.Labels["service"], r.Alert)
		assert.NotEmpty(t, r.Annotations["summary"], r.Alert)
		assert.NotEmpty(t, r.Annotations["description"], r.Alert)
	}

	// Credential loss and an exhausted budget stop every upstream call.
	for _, name := range []string{"ConcurRefreshTokenRejected", "ConcurDailyLimitReached", "ConcurAccrualsDown"} {
		assert.True(t, seen[name], name)
	}
}
