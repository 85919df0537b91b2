// Package concur provides a resilient SAP Concur access layer: refresh-token
// management, structured request execution, tenant-adaptive attribute
// negotiation, and defensive pagination. Resource bindings (identity, cards,
// reports) are built on top and abstracted behind interfaces for testability.
package concur

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// TokenProvider defines the interface for obtaining OAuth2 access tokens.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// RequestExecutor performs one upstream call and decodes its JSON body.
type RequestExecutor interface {
	Execute(ctx context.Context, req Request) (Payload, error)
}

// Credentials are the inputs to the refresh-token grant.
type Credentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Validate reports every empty field in one joined error.
func (c Credentials) Validate() error {
	var errs []error
	if strings.TrimSpace(c.TokenURL) == "" {
		errs = append(errs, errors.New("token URL is required"))
	}
	if strings.TrimSpace(c.ClientID) == "" {
		errs = append(errs, errors.New("client ID is required"))
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		errs = append(errs, errors.New("client secret is required"))
	}
	if strings.TrimSpace(c.RefreshToken) == "" {
		errs = append(errs, errors.New("refresh token is required"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidCredential}, errs...)...)
	}
	return nil
}

// Item is one upstream record, passed through without interpretation.
type Item map[string]any

// DefaultIDKeys are probed in order when identifying an item.
var DefaultIDKeys = []string{"id", "transactionId"}

// ID returns the first non-empty identifier found under keys, or under
// DefaultIDKeys when none are given.
func (i Item) ID(keys ...string) string {
	if len(keys) == 0 {
		keys = DefaultIDKeys
	}
	for _, k := range keys {
		if s := scalarString(i[k]); s != "" {
			return s
		}
	}
	return ""
}

// String returns the value at key rendered as a string, or "".
func (i Item) String(key string) string {
	return scalarString(i[key])
}

// Object returns the nested object at key, or nil.
func (i Item) Object(key string) Item {
	switch v := i[key].(type) {
	case map[string]any:
		return Item(v)
	case Item:
		return v
	}
	return nil
}

// List returns the nested objects at key, skipping non-object elements.
func (i Item) List(key string) []Item {
	raw, ok := i[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Item, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			out = append(out, Item(m))
		}
	}
	return out
}

// Number returns the numeric value at key.
func (i Item) Number(key string) (float64, bool) {
	return toFloat(i[key])
}

// Payload is a decoded JSON object response.
type Payload map[string]any

// TotalResults returns the cursor-style total count, when present.
func (p Payload) TotalResults() (int, bool) {
	return toInt(p["totalResults"])
}

// ItemsPerPage returns the cursor-style page size echo, when present.
func (p Payload) ItemsPerPage() (int, bool) {
	return toInt(p["itemsPerPage"])
}

// Item returns p viewed as a single record (detail endpoints).
func (p Payload) Item() Item {
	return Item(p)
}

// AttributeSet is an ordered, de-duplicated list of requested field names.
// Methods never modify the receiver.
type AttributeSet []string

// NewAttributeSet trims, drops blanks, and de-duplicates names preserving
// first occurrence.
func NewAttributeSet(names ...string) AttributeSet {
	seen := make(map[string]struct{}, len(names))
	out := make(AttributeSet, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ParseAttributeSet splits a comma-separated attribute parameter.
func ParseAttributeSet(s string) AttributeSet {
	return NewAttributeSet(strings.Split(s, ",")...)
}

// String renders the set as the upstream comma-separated parameter.
func (a AttributeSet) String() string {
	return strings.Join(a, ",")
}

// Contains reports whether name is in the set (exact match).
func (a AttributeSet) Contains(name string) bool {
	for _, n := range a {
		if n == name {
			return true
		}
	}
	return false
}

// Without returns a copy of the set with name removed.
func (a AttributeSet) Without(name string) AttributeSet {
	out := make(AttributeSet, 0, len(a))
	for _, n := range a {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// SubsetOf reports whether every name in a is also in b.
func (a AttributeSet) SubsetOf(b AttributeSet) bool {
	for _, n := range a {
		if !b.Contains(n) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same names in the same order.
func (a AttributeSet) Equal(b AttributeSet) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
