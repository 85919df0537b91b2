package concur

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const identityUsersPath = "/profile/identity/v4.1/Users"

// SCIM extension schemas carried on Identity v4.1 users.
const (
	EnterpriseUserSchema = "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User"
	ConcurUserSchema     = "urn:ietf:params:scim:schemas:extension:concur:2.0:User"
)

// Identity attribute sets. The safe set drops the extension schemas some
// tenants reject wholesale.
var (
	DefaultUserAttributes = NewAttributeSet(
		"id", "userName", "displayName", "active", "emails.value",
		EnterpriseUserSchema, ConcurUserSchema,
	)
	DefaultSafeUserAttributes = NewAttributeSet(
		"id", "userName", "displayName", "active", "emails.value",
	)
	LookupUserAttributes = NewAttributeSet("id", "userName", "emails.value", "active")
)

// UserListOptions tunes a user directory listing. Zero values use the
// client defaults.
type UserListOptions struct {
	Attributes AttributeSet
	PageSize   int
	MaxPages   int
}

// ListUsers pages through the Identity v4.1 directory without a SCIM
// filter, which some tenants reject.
func (c *Client) ListUsers(ctx context.Context, opts UserListOptions) (*CollectResult, error) {
	attrs := opts.Attributes
	if len(attrs) == 0 {
		attrs = c.userAttrs
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = c.usersPageSize
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = c.usersMaxPages
	}

	return c.collector.CollectAll(ctx, ListRequest{
		Where:      "identity.list_users",
		URL:        c.baseURL + identityUsersPath,
		Style:      StyleCursor,
		Attributes: attrs,
		PageSize:   pageSize,
		MaxPages:   maxPages,
	})
}

// GetUser fetches one SCIM user record by Concur user ID.
func (c *Client) GetUser(ctx context.Context, id string) (Item, AttributeSet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, fmt.Errorf("%w: user ID is required", ErrInvalidQuery)
	}

	target := c.baseURL + identityUsersPath + "/" + url.PathEscape(id)
	payload, used, err := c.collector.Negotiator().FetchWithFallback(ctx, c.detailAttrs,
		func(ctx context.Context, attrs AttributeSet) (Payload, error) {
			params := url.Values{}
			if len(attrs) > 0 {
				params.Set("attributes", attrs.String())
			}
			return c.collector.exec.Execute(ctx, Request{
				Where:  "identity.get_user",
				URL:    target,
				Params: params,
			})
		})
	if err != nil {
		return nil, used, err
	}
	return payload.Item(), used, nil
}

// PrimaryEmail returns the first non-empty emails[].value of a SCIM user.
func PrimaryEmail(user Item) string {
	for _, e := range user.List("emails") {
		if v := e.String("value"); v != "" {
			return v
		}
	}
	return ""
}
