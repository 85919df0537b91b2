package handlers_test

import (
	"context"

	"github.com/donaldgifford/concur-accruals/internal/accruals"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// fakeAccruals is a test double for the aggregator-facing handler
// interfaces. It records the last arguments it was called with.
type fakeAccruals struct {
	users   *accruals.UserList
	detail  *accruals.UserDetail
	reports []domain.Record
	cards   *accruals.CardSearchResult
	totals  *domain.CardTotals
	org     *accruals.OrgSearchResult
	auth    *accruals.AuthTestResult
	meta    domain.CollectionMeta
	err     error

	gotTake      int
	gotID        string
	gotPrincipal string
	gotSearch    accruals.CardSearch
	gotTotals    accruals.TotalsRequest
	gotFilter    domain.OrgFilter
}

func (f *fakeAccruals) ListUsers(_ context.Context, take int) (*accruals.UserList, error) {
	f.gotTake = take
	return f.users, f.err
}

func (f *fakeAccruals) GetUser(_ context.Context, id string) (*accruals.UserDetail, error) {
	f.gotID = id
	return f.detail, f.err
}

func (f *fakeAccruals) UserReports(_ context.Context, id string) ([]domain.Record, domain.CollectionMeta, error) {
	f.gotID = id
	return f.reports, f.meta, f.err
}

func (f *fakeAccruals) SearchCards(
	_ context.Context,
	principal string,
	q accruals.CardSearch,
) (*accruals.CardSearchResult, error) {
	f.gotPrincipal = principal
	f.gotSearch = q
	return f.cards, f.err
}

func (f *fakeAccruals) CardTotals(
	_ context.Context,
	principal string,
	req accruals.TotalsRequest,
) (*domain.CardTotals, error) {
	f.gotPrincipal = principal
	f.gotTotals = req
	return f.totals, f.err
}

func (f *fakeAccruals) SearchOrg(_ context.Context, filter domain.OrgFilter) (*accruals.OrgSearchResult, error) {
	f.gotFilter = filter
	return f.org, f.err
}

func (f *fakeAccruals) AuthTest(_ context.Context) (*accruals.AuthTestResult, error) {
	return f.auth, f.err
}
