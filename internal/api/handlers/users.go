package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/concur-accruals/internal/accruals"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// UserService defines the aggregator methods used by the users handler.
type UserService interface {
	ListUsers(ctx context.Context, take int) (*accruals.UserList, error)
	GetUser(ctx context.Context, id string) (*accruals.UserDetail, error)
	UserReports(ctx context.Context, userID string) ([]domain.Record, domain.CollectionMeta, error)
}

// UsersHandler serves the Concur user directory.
type UsersHandler struct {
	svc UserService
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(svc UserService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// ListUsersInput is the request for listing users.
type ListUsersInput struct {
	PrincipalInput
	Take int `query:"take" default:"500" minimum:"1" maximum:"5000" doc:"Maximum users to return"`
}

// ListUsersOutput is the response body for listing users.
type ListUsersOutput struct {
	Body struct {
		RequestedBy string                `json:"requested_by,omitempty" doc:"Caller principal"`
		Returned    int                   `json:"returned"               doc:"Users in this response"`
		Scanned     int                   `json:"scanned"                doc:"Users read from Concur"`
		Collection  domain.CollectionMeta `json:"collection"             doc:"How the directory listing ended"`
		Users       []domain.Record       `json:"users"                  doc:"Raw SCIM user records"`
	}
}

// UserIDInput selects a user by Concur ID.
type UserIDInput struct {
	ID string `path:"id" minLength:"1" doc:"Concur user ID"`
}

// GetUserOutput is the response body for a single user.
type GetUserOutput struct {
	Body struct {
		Attributes []string      `json:"attributes,omitempty" doc:"Attribute set accepted by the tenant"`
		User       domain.Record `json:"user"                 doc:"Raw SCIM user record"`
	}
}

// UserReportsOutput is the response body for a user's expense reports.
type UserReportsOutput struct {
	Body struct {
		UserID     string                `json:"user_id"`
		Collection domain.CollectionMeta `json:"collection"`
		Reports    []domain.Record       `json:"reports" doc:"Raw expense report records"`
	}
}

// ListUsers returns up to take directory users.
func (h *UsersHandler) ListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	list, err := h.svc.ListUsers(ctx, input.Take)
	if err != nil {
		return nil, problem(err)
	}

	out := &ListUsersOutput{}
	out.Body.RequestedBy = input.Principal
	out.Body.Returned = list.Returned
	out.Body.Scanned = list.Scanned
	out.Body.Collection = list.Meta
	out.Body.Users = list.Users
	return out, nil
}

// GetUser returns one directory record.
func (h *UsersHandler) GetUser(ctx context.Context, input *UserIDInput) (*GetUserOutput, error) {
	detail, err := h.svc.GetUser(ctx, input.ID)
	if err != nil {
		return nil, problem(err)
	}

	out := &GetUserOutput{}
	out.Body.Attributes = detail.Attributes
	out.Body.User = detail.User
	return out, nil
}

// GetUserReports returns a user's expense reports unfiltered.
func (h *UsersHandler) GetUserReports(ctx context.Context, input *UserIDInput) (*UserReportsOutput, error) {
	reports, meta, err := h.svc.UserReports(ctx, input.ID)
	if err != nil {
		return nil, problem(err)
	}

	out := &UserReportsOutput{}
	out.Body.UserID = input.ID
	out.Body.Collection = meta
	out.Body.Reports = reports
	return out, nil
}

// RegisterUserRoutes registers user directory endpoints with the Huma API.
func RegisterUserRoutes(api huma.API, h *UsersHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List Concur users",
		Description: "Pages through the Identity v4.1 directory without a SCIM filter and returns up to `take` records.",
		Tags:        []string{"users"},
		Errors:      upstreamErrors,
	}, h.ListUsers)

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get a Concur user",
		Description: "Returns the SCIM record for a user, narrowing the attribute set if the tenant rejects fields.",
		Tags:        []string{"users"},
		Errors:      upstreamErrors,
	}, h.GetUser)

	huma.Register(api, huma.Operation{
		OperationID: "get-user-reports",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/reports",
		Summary:     "List a user's expense reports",
		Tags:        []string{"users"},
		Errors:      upstreamErrors,
	}, h.GetUserReports)
}
