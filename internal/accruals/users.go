package accruals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/donaldgifford/concur-accruals/internal/concur"
	"github.com/donaldgifford/concur-accruals/internal/metrics"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// UserList is a capped directory listing.
type UserList struct {
	Users    []domain.Record
	Returned int
	Scanned  int
	Meta     domain.CollectionMeta
}

// UserDetail is one directory record and the attribute set that fetched it.
type UserDetail struct {
	User       domain.Record
	Attributes []string
}

// ListUsers returns up to take users from the directory. take of zero means
// 500; values outside 1..5000 are rejected.
func (s *Service) ListUsers(ctx context.Context, take int) (*UserList, error) {
	if take == 0 {
		take = defaultTake
	}
	if take < 1 || take > maxTake {
		return nil, fmt.Errorf("%w: take must be between 1 and %d", concur.ErrInvalidQuery, maxTake)
	}

	start := time.Now()
	defer func() {
		metrics.AggregationDuration.WithLabelValues("list_users").Observe(time.Since(start).Seconds())
	}()

	res, err := s.concur.ListUsers(ctx, concur.UserListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	users := res.Items
	if len(users) > take {
		users = users[:take]
	}
	return &UserList{
		Users:    records(users),
		Returned: len(users),
		Scanned:  len(res.Items),
		Meta:     collectionMeta(res),
	}, nil
}

// GetUser returns the directory record for a Concur user ID.
func (s *Service) GetUser(ctx context.Context, id string) (*UserDetail, error) {
	user, attrs, err := s.concur.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", id, err)
	}
	return &UserDetail{User: domain.Record(user), Attributes: []string(attrs)}, nil
}

// ResolveUserID maps a UPN or email to a Concur user ID by scanning the
// directory: userName matches win over email matches, both compared
// case-insensitively.
func (s *Service) ResolveUserID(ctx context.Context, upnOrEmail string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(upnOrEmail))
	if needle == "" {
		return "", fmt.Errorf("%w: missing user identity (UPN or email)", concur.ErrInvalidQuery)
	}

	res, err := s.concur.ListUsers(ctx, concur.UserListOptions{Attributes: concur.LookupUserAttributes})
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", upnOrEmail, err)
	}

	if id := findUser(res.Items, needle, func(u concur.Item) string { return u.String("userName") }); id != "" {
		return id, nil
	}
	if id := findUser(res.Items, needle, concur.PrimaryEmail); id != "" {
		return id, nil
	}

	s.log.Info("no concur user for principal", "principal", upnOrEmail, "scanned", len(res.Items))
	return "", fmt.Errorf("%w: %s", ErrUserNotFound, upnOrEmail)
}

func findUser(users []concur.Item, needle string, field func(concur.Item) string) string {
	for _, u := range users {
		if strings.ToLower(strings.TrimSpace(field(u))) != needle {
			continue
		}
		if id := u.ID("id"); id != "" {
			return id
		}
	}
	return ""
}
