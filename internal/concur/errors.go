package concur

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// maxResponseSnippet caps the upstream body captured on an Error.
const maxResponseSnippet = 2000

// Kind classifies a failure at the Concur boundary.
type Kind string

// Failure kinds.
const (
	KindAuthRejected      Kind = "AuthRejected"
	KindAuthUnavailable   Kind = "AuthUnavailable"
	KindAuthProtocolError Kind = "AuthProtocolError"
	KindUpstreamRejected  Kind = "UpstreamRejected"
	KindUnexpectedShape   Kind = "UnexpectedShape"
	KindRequestFailed     Kind = "RequestFailed"
)

// Sentinel errors for errors.Is matching against an *Error of the same kind.
var (
	ErrAuthRejected      = errors.New("concur: token endpoint rejected credentials")
	ErrAuthUnavailable   = errors.New("concur: token endpoint unavailable")
	ErrAuthProtocol      = errors.New("concur: malformed token response")
	ErrUpstreamRejected  = errors.New("concur: upstream rejected request")
	ErrUnexpectedShape   = errors.New("concur: unexpected response shape")
	ErrRequestFailed     = errors.New("concur: request failed")
	ErrInvalidCredential = errors.New("concur: incomplete credentials")
)

var kindSentinels = map[Kind]error{
	KindAuthRejected:      ErrAuthRejected,
	KindAuthUnavailable:   ErrAuthUnavailable,
	KindAuthProtocolError: ErrAuthProtocol,
	KindUpstreamRejected:  ErrUpstreamRejected,
	KindUnexpectedShape:   ErrUnexpectedShape,
	KindRequestFailed:     ErrRequestFailed,
}

// Error is the structured failure returned by every upstream call. It never
// carries a stack trace; Response is truncated to a bounded size.
type Error struct {
	Where    string
	Kind     Kind
	Status   int // upstream HTTP status, 0 when no response was received
	URL      string
	Params   url.Values
	Response string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Where)
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.URL != "" {
		b.WriteString(" ")
		b.WriteString(e.URL)
	}
	switch {
	case e.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// Timeout reports whether the failure was a deadline on our side.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// ErrorBody is the JSON shape exposed to callers of the core.
type ErrorBody struct {
	Where        string         `json:"where"                   doc:"Operation that failed"`
	Error        Kind           `json:"error"                   doc:"Failure kind"`
	ConcurStatus int            `json:"concur_status,omitempty" doc:"HTTP status returned by Concur"`
	URL          string         `json:"url"                     doc:"Target URL"`
	Params       map[string]any `json:"params"                  doc:"Request parameters"`
	Response     string         `json:"response,omitempty"      doc:"Truncated upstream response body"`
}

// Body returns the caller-facing representation of e.
func (e *Error) Body() ErrorBody {
	resp := e.Response
	if resp == "" && e.Status == 0 {
		resp = e.Message
		if resp == "" && e.Err != nil {
			resp = e.Err.Error()
		}
	}
	return ErrorBody{
		Where:        e.Where,
		Error:        e.Kind,
		ConcurStatus: e.Status,
		URL:          e.URL,
		Params:       flattenParams(e.Params),
		Response:     truncate(resp, maxResponseSnippet),
	}
}

// ToServiceError maps e onto the go-errors envelope used for HTTP status and
// text-code selection.
func (e *Error) ToServiceError() *goerrors.Error {
	category, code := goerrors.CategoryExternal, http.StatusBadGateway
	switch e.Kind {
	case KindAuthUnavailable:
		code = http.StatusServiceUnavailable
	case KindAuthRejected, KindAuthProtocolError, KindUnexpectedShape:
		code = http.StatusBadGateway
	case KindUpstreamRejected:
		switch e.Status {
		case http.StatusNotFound:
			category, code = goerrors.CategoryNotFound, http.StatusNotFound
		case http.StatusTooManyRequests:
			category, code = goerrors.CategoryRateLimit, http.StatusTooManyRequests
		}
	case KindRequestFailed:
		if e.Timeout() {
			code = http.StatusGatewayTimeout
		}
	}

	body := e.Body()
	metadata := map[string]any{
		"where":  body.Where,
		"url":    body.URL,
		"params": body.Params,
	}
	if body.ConcurStatus != 0 {
		metadata["concur_status"] = body.ConcurStatus
	}
	if body.Response != "" {
		metadata["response"] = body.Response
	}

	return goerrors.New(e.Error(), category).
		WithCode(code).
		WithTextCode("CONCUR_" + strings.ToUpper(string(e.Kind))).
		WithMetadata(metadata)
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	ce, ok := AsError(err)
	return ok && ce.Kind == KindUpstreamRejected && ce.Status == http.StatusNotFound
}

func flattenParams(params url.Values) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		switch len(v) {
		case 0:
			out[k] = ""
		case 1:
			out[k] = v[0]
		default:
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back off to a rune boundary so the snippet stays valid UTF-8.
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func cloneParams(params url.Values) url.Values {
	if params == nil {
		return url.Values{}
	}
	out := make(url.Values, len(params))
	for k, v := range params {
		out[k] = append([]string(nil), v...)
	}
	return out
}
