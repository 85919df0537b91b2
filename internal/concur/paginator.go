package concur

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/concur-accruals/internal/metrics"
)

const (
	defaultPageSize = 200
	minPageSize     = 1
	maxPageSize     = 500
	maxCursorPages  = 200
	maxOffsetPages  = 100
)

// PaginationStyle selects how page position is sent upstream.
type PaginationStyle string

// Pagination styles.
const (
	// StyleCursor sends startIndex/count and reads totalResults/itemsPerPage.
	StyleCursor PaginationStyle = "cursor"
	// StyleOffset sends page/pageSize and reads a bare item array.
	StyleOffset PaginationStyle = "offset"
)

// Reasons a collection stopped.
const (
	StopEmptyPage    = "empty_page"
	StopRepeatedPage = "repeated_page"
	StopShortPage    = "short_page"
	StopExhausted    = "exhausted"
	StopMaxPages     = "max_pages"
)

// Item array keys probed in order; the first present key is authoritative.
var (
	DefaultCursorItemKeys = []string{"Resources"}
	DefaultOffsetItemKeys = []string{"Items", "items", "Transactions", "transactions"}
)

// ListRequest describes one paginated collection.
type ListRequest struct {
	Where          string
	URL            string
	Style          PaginationStyle // defaults to StyleCursor
	Params         url.Values      // filters sent with every page
	Attributes     AttributeSet    // omitted from the request when empty
	AttributeParam string          // defaults to "attributes"
	PageSize       int             // clamped to [1, 500]; 0 means 200
	MaxPages       int             // cursor: default and ceiling 200; offset: ceiling 100
	ItemKeys       []string
	IDKeys         []string
	Timeout        time.Duration
}

// PageCursor tracks position and loop-guard state for one collection.
type PageCursor struct {
	StartIndex          int
	Page                int
	PageSize            int
	PagesSeen           int
	FirstItemID         string
	PreviousFirstItemID string
}

// CollectResult holds the outcome of a collection.
type CollectResult struct {
	Items      []Item
	Pages      int
	StoppedAt  string
	Attributes AttributeSet // the negotiated set used for the final page
}

// Collector drives multi-page fetches through the Negotiator and a
// RequestExecutor. Pages are fetched sequentially.
type Collector struct {
	exec       RequestExecutor
	negotiator *Negotiator
	logger     *slog.Logger
}

// CollectorOption configures the Collector.
type CollectorOption func(*Collector)

// WithNegotiator overrides the default Negotiator.
func WithNegotiator(n *Negotiator) CollectorOption {
	return func(c *Collector) {
		c.negotiator = n
	}
}

// WithCollectorLogger sets the logger.
func WithCollectorLogger(l *slog.Logger) CollectorOption {
	return func(c *Collector) {
		c.logger = l
	}
}

// NewCollector creates a Collector.
func NewCollector(exec RequestExecutor, opts ...CollectorOption) *Collector {
	c := &Collector{
		exec:   exec,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.negotiator == nil {
		c.negotiator = NewNegotiator(WithNegotiatorLogger(c.logger))
	}
	return c
}

// Negotiator returns the negotiator used for each page.
func (c *Collector) Negotiator() *Negotiator {
	return c.negotiator
}

// ClampPageSize bounds a caller-supplied page size to [1, 500]; zero or less
// selects the default of 200.
func ClampPageSize(n int) int {
	if n < minPageSize {
		return defaultPageSize
	}
	return min(n, maxPageSize)
}

func pageCap(style PaginationStyle, requested int) int {
	ceiling := maxCursorPages
	if style == StyleOffset {
		ceiling = maxOffsetPages
	}
	if requested <= 0 || requested > ceiling {
		return ceiling
	}
	return requested
}

// CollectAll fetches every page of req. It stops on an empty, short, or
// repeated page, when the reported total is exhausted, or at the page cap.
// Hitting the cap returns the items gathered so far. A page whose item
// collection cannot be recognized fails the whole collection.
func (c *Collector) CollectAll(ctx context.Context, req ListRequest) (*CollectResult, error) {
	style := req.Style
	if style == "" {
		style = StyleCursor
	}
	itemKeys := req.ItemKeys
	if len(itemKeys) == 0 {
		itemKeys = DefaultCursorItemKeys
		if style == StyleOffset {
			itemKeys = DefaultOffsetItemKeys
		}
	}
	idKeys := req.IDKeys
	if len(idKeys) == 0 {
		idKeys = DefaultIDKeys
	}

	cur := &PageCursor{
		StartIndex: 1,
		Page:       1,
		PageSize:   ClampPageSize(req.PageSize),
	}
	maxPages := pageCap(style, req.MaxPages)
	attrs := req.Attributes
	result := &CollectResult{Attributes: attrs}

	finish := func(reason string) (*CollectResult, error) {
		result.StoppedAt = reason
		metrics.CollectionStopsTotal.WithLabelValues(reason).Inc()
		c.logger.DebugContext(ctx, "collection finished",
			"where", req.Where,
			"pages", result.Pages,
			"items", len(result.Items),
			"stopped_at", reason,
		)
		return result, nil
	}

	for cur.PagesSeen < maxPages {
		payload, used, err := c.negotiator.FetchWithFallback(ctx, attrs,
			func(ctx context.Context, a AttributeSet) (Payload, error) {
				return c.exec.Execute(ctx, Request{
					Where:   req.Where,
					URL:     req.URL,
					Params:  pageParams(req, style, cur, a),
					Timeout: req.Timeout,
				})
			})
		if err != nil {
			return nil, fmt.Errorf("collecting %s page %d: %w", req.Where, cur.PagesSeen+1, err)
		}

		attrs = used
		result.Attributes = used
		cur.PagesSeen++
		result.Pages = cur.PagesSeen
		metrics.PagesFetchedTotal.WithLabelValues(string(style)).Inc()

		items, err := extractItems(payload, itemKeys)
		if err != nil {
			return nil, &Error{
				Where:   req.Where,
				Kind:    KindUnexpectedShape,
				URL:     req.URL,
				Params:  pageParams(req, style, cur, attrs),
				Message: fmt.Sprintf("page %d: %v", cur.PagesSeen, err),
			}
		}

		if len(items) == 0 {
			return finish(StopEmptyPage)
		}

		firstID := items[0].ID(idKeys...)
		if cur.PagesSeen > 1 && firstID != "" &&
			(firstID == cur.FirstItemID || firstID == cur.PreviousFirstItemID) {
			c.logger.WarnContext(ctx, "upstream repeated a page; stopping",
				"where", req.Where, "page", cur.PagesSeen, "first_id", firstID)
			return finish(StopRepeatedPage)
		}
		if cur.PagesSeen == 1 {
			cur.FirstItemID = firstID
		}
		cur.PreviousFirstItemID = firstID

		result.Items = append(result.Items, items...)

		switch style {
		case StyleOffset:
			cur.Page++
		default:
			step := len(items)
			if ipp, ok := payload.ItemsPerPage(); ok && ipp > 0 {
				step = ipp
			}
			cur.StartIndex += max(step, 1)
			if total, ok := payload.TotalResults(); ok && total > 0 && cur.StartIndex > total {
				return finish(StopExhausted)
			}
		}

		if len(items) < cur.PageSize {
			return finish(StopShortPage)
		}
	}

	return finish(StopMaxPages)
}

func pageParams(req ListRequest, style PaginationStyle, cur *PageCursor, attrs AttributeSet) url.Values {
	params := cloneParams(req.Params)
	if len(attrs) > 0 {
		name := req.AttributeParam
		if name == "" {
			name = "attributes"
		}
		params.Set(name, attrs.String())
	}
	if style == StyleOffset {
		params.Set("page", strconv.Itoa(cur.Page))
		params.Set("pageSize", strconv.Itoa(cur.PageSize))
	} else {
		params.Set("startIndex", strconv.Itoa(cur.StartIndex))
		params.Set("count", strconv.Itoa(cur.PageSize))
	}
	return params
}

// extractItems reads the item array under the first present key.
func extractItems(p Payload, keys []string) ([]Item, error) {
	for _, k := range keys {
		raw, present := p[k]
		if !present {
			continue
		}
		if raw == nil {
			return nil, nil
		}
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%q is not a list", k)
		}
		items := make([]Item, 0, len(list))
		for i, e := range list {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d of %q is not an object", i, k)
			}
			items = append(items, Item(m))
		}
		return items, nil
	}

	if len(p) == 0 {
		return nil, nil
	}
	if total, ok := p.TotalResults(); ok && total == 0 {
		return nil, nil
	}
	return nil, fmt.Errorf("no item collection under %s", strings.Join(keys, ", "))
}
