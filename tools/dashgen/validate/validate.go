// Package validate checks generated dashboards and rules before they are
// written: every PromQL expression must parse and every selected metric must
// be one the service actually exports.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/concur-accruals/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail generation; warnings are
// reported but do not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// histogramSuffixes are the series a histogram exposes beyond its base name.
var histogramSuffixes = []string{"_bucket", "_sum", "_count"}

// Metrics parses expr and returns the metric names it selects.
func Metrics(expr string) ([]string, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, err
	}

	var names []string
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		if vs, ok := n.(*parser.VectorSelector); ok && vs.Name != "" {
			names = append(names, vs.Name)
		}
		return nil
	})
	return names, nil
}

// Known reports whether name, or its histogram base name, is in known.
func Known(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range histogramSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}

// Expr validates a single expression and records findings under where.
func Expr(r *Result, where, expr string, known map[string]bool) {
	if strings.TrimSpace(expr) == "" {
		r.errorf("%s: empty expression", where)
		return
	}
	names, err := Metrics(expr)
	if err != nil {
		r.errorf("%s: parsing %q: %v", where, expr, err)
		return
	}
	if len(names) == 0 {
		r.warnf("%s: %q selects no metrics", where, expr)
	}
	for _, name := range names {
		if !Known(name, known) {
			r.errorf("%s: unknown metric %q", where, name)
		}
	}
}

// panelJSON is the subset of the serialized dashboard the validator walks.
type panelJSON struct {
	Title   string      `json:"title"`
	Type    string      `json:"type"`
	Panels  []panelJSON `json:"panels"`
	Targets []struct {
		RefID string `json:"refId"`
		Expr  string `json:"expr"`
	} `json:"targets"`
}

// Dashboard validates every query target in dash.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var r Result

	data, err := json.Marshal(dash)
	if err != nil {
		r.errorf("marshaling dashboard: %v", err)
		return r
	}
	var root struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(data, &root); err != nil {
		r.errorf("decoding dashboard: %v", err)
		return r
	}

	titles := make(map[string]bool)
	var walk func(p panelJSON)
	walk = func(p panelJSON) {
		if p.Type == "row" || len(p.Panels) > 0 {
			for _, inner := range p.Panels {
				walk(inner)
			}
			return
		}
		if titles[p.Title] {
			r.errorf("duplicate panel title %q", p.Title)
		}
		titles[p.Title] = true
		if len(p.Targets) == 0 {
			r.warnf("panel %q has no targets", p.Title)
		}
		for _, t := range p.Targets {
			Expr(&r, fmt.Sprintf("panel %q target %s", p.Title, t.RefID), t.Expr, known)
		}
	}
	for _, p := range root.Panels {
		walk(p)
	}
	return r
}

// Rules validates every rule expression in cr. Alert rules must carry a
// severity label and summary and description annotations.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var r Result
	seen := make(map[string]bool)

	for _, g := range cr.Spec.Groups {
		for i, rule := range g.Rules {
			name := rule.Record
			if name == "" {
				name = rule.Alert
			}
			where := fmt.Sprintf("group %q rule %d (%s)", g.Name, i, name)

			switch {
			case rule.Record != "" && rule.Alert != "":
				r.errorf("%s: sets both record and alert", where)
			case name == "":
				r.errorf("%s: sets neither record nor alert", where)
			}
			if seen[name] {
				r.errorf("%s: duplicate rule name", where)
			}
			seen[name] = true

			if rule.Record != "" && !known[rule.Record] {
				r.warnf("%s: recorded series is not referenced as a known metric", where)
			}
			if rule.Alert != "" {
				if rule.Labels["severity"] == "" {
					r.errorf("%s: missing severity label", where)
				}
				for _, key := range []string{"summary", "description"} {
					if rule.Annotations[key] == "" {
						r.errorf("%s: missing %s annotation", where, key)
					}
				}
			}
			Expr(&r, where, rule.Expr, known)
		}
	}
	return r
}
