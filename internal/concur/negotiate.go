package concur

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/donaldgifford/concur-accruals/internal/metrics"
)

const defaultMaxFixes = 6

// DefaultRejectionMarkers precede the offending field list in a 400 body.
var DefaultRejectionMarkers = []string{
	"Unrecognized attributes:",
	"Unrecognized attribute:",
	"Invalid attributes:",
	"Invalid attribute:",
}

// FetchFunc performs one logical request with the given attribute set. It is
// called again with a narrower set after a rejection, with all other request
// state unchanged.
type FetchFunc func(ctx context.Context, attrs AttributeSet) (Payload, error)

// Negotiator narrows a requested attribute set until the tenant accepts it.
type Negotiator struct {
	markers  []string
	maxFixes int
	safe     AttributeSet
	logger   *slog.Logger
}

// NegotiatorOption configures the Negotiator.
type NegotiatorOption func(*Negotiator)

// WithRejectionMarkers replaces the marker strings searched for in 400 bodies.
func WithRejectionMarkers(markers ...string) NegotiatorOption {
	return func(n *Negotiator) {
		if len(markers) > 0 {
			n.markers = markers
		}
	}
}

// WithMaxFixes bounds the number of narrowed retries.
func WithMaxFixes(limit int) NegotiatorOption {
	return func(n *Negotiator) {
		if limit >= 0 {
			n.maxFixes = limit
		}
	}
}

// WithSafeAttributes sets a reduced attribute set tried once, as the first
// retry, before removing fields one at a time. It is skipped for requests it
// is not a subset of.
func WithSafeAttributes(safe AttributeSet) NegotiatorOption {
	return func(n *Negotiator) {
		n.safe = safe
	}
}

// WithNegotiatorLogger sets the logger.
func WithNegotiatorLogger(l *slog.Logger) NegotiatorOption {
	return func(n *Negotiator) {
		n.logger = l
	}
}

// NewNegotiator creates a Negotiator with the default markers and fix bound.
func NewNegotiator(opts ...NegotiatorOption) *Negotiator {
	n := &Negotiator{
		markers:  DefaultRejectionMarkers,
		maxFixes: defaultMaxFixes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// FetchWithFallback calls fetch with initial and, on an attribute rejection,
// retries with a narrower set. It returns the payload and the set that
// produced it. Only 400 UpstreamRejected errors are negotiated; everything
// else is returned unchanged.
func (n *Negotiator) FetchWithFallback(
	ctx context.Context,
	initial AttributeSet,
	fetch FetchFunc,
) (Payload, AttributeSet, error) {
	attrs := initial
	// The safe set only applies when it narrows the request.
	triedSafe := len(n.safe) == 0 || n.safe.Equal(initial) || !n.safe.SubsetOf(initial)
	fixes := 0

	for {
		payload, err := fetch(ctx, attrs)
		if err == nil {
			return payload, attrs, nil
		}

		ce, ok := AsError(err)
		if !ok || ce.Kind != KindUpstreamRejected || ce.Status != http.StatusBadRequest {
			return nil, attrs, err
		}

		field, ok := ParseRejectedAttribute(ce.Response, n.markers...)
		if !ok {
			return nil, attrs, terminal(ce, "rejection did not name an attribute")
		}
		if fixes >= n.maxFixes {
			n.logger.WarnContext(ctx, "attribute fallback exhausted",
				"where", ce.Where, "fixes", fixes, "rejected", field)
			return nil, attrs, terminal(ce, fmt.Sprintf("attribute fallback exhausted after %d fixes", fixes))
		}

		var next AttributeSet
		if !triedSafe {
			triedSafe = true
			next = n.safe
		} else {
			match, found := matchAttribute(attrs, field)
			if !found {
				return nil, attrs, terminal(ce, fmt.Sprintf("rejected attribute %q is not in the requested set", field))
			}
			next = attrs.Without(match)
		}

		fixes++
		metrics.AttributeFallbacksTotal.Inc()
		n.logger.InfoContext(ctx, "narrowing rejected attribute set",
			"where", ce.Where,
			"rejected", field,
			"fix", fixes,
			"attributes", next.String(),
		)
		attrs = next
	}
}

// ParseRejectedAttribute extracts the first field named after a rejection
// marker, looking in a JSON "detail" value before the raw text. Markers match
// case-insensitively; DefaultRejectionMarkers is used when none are given.
func ParseRejectedAttribute(text string, markers ...string) (string, bool) {
	if len(markers) == 0 {
		markers = DefaultRejectionMarkers
	}
	candidates := make([]string, 0, 2)
	if d := jsonDetail(text); d != "" {
		candidates = append(candidates, d)
	}
	candidates = append(candidates, text)

	for _, c := range candidates {
		if field, ok := afterMarker(c, markers); ok {
			return field, true
		}
	}
	return "", false
}

func jsonDetail(text string) string {
	var env map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &env); err != nil {
		return ""
	}
	for _, k := range []string{"detail", "Detail"} {
		if s, ok := env[k].(string); ok {
			return s
		}
	}
	return ""
}

func afterMarker(s string, markers []string) (string, bool) {
	for _, m := range markers {
		idx := indexFold(s, m)
		if idx < 0 {
			continue
		}
		rest := s[idx+len(m):]
		if cut := strings.IndexAny(rest, "\r\n\";}"); cut >= 0 {
			rest = rest[:cut]
		}
		first, _, _ := strings.Cut(rest, ",")
		first = strings.Trim(first, " \t'`[]()")
		first = strings.TrimSuffix(first, ".")
		if first != "" {
			return first, true
		}
	}
	return "", false
}

func indexFold(s, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}

// matchAttribute finds the requested attribute a rejected name refers to:
// exact, then case-insensitive, then a schema prefix in either direction.
func matchAttribute(attrs AttributeSet, rejected string) (string, bool) {
	for _, a := range attrs {
		if a == rejected {
			return a, true
		}
	}
	for _, a := range attrs {
		if strings.EqualFold(a, rejected) {
			return a, true
		}
	}
	lower := strings.ToLower(rejected)
	for _, a := range attrs {
		la := strings.ToLower(a)
		if strings.HasPrefix(lower, la+":") || strings.HasPrefix(lower, la+".") ||
			strings.HasPrefix(la, lower+":") || strings.HasPrefix(la, lower+".") {
			return a, true
		}
	}
	return "", false
}

func terminal(ce *Error, msg string) *Error {
	e := *ce
	e.Message = msg
	return &e
}
