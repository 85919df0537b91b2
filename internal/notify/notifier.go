// Package notify defines the notification interface and implementations
// for credential alert delivery.
package notify

import (
	"context"

	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// Alert kinds.
const (
	// KindAuthRejected means the token endpoint refused the stored refresh
	// token or client credentials. Someone has to re-provision them.
	KindAuthRejected = "auth_rejected"
	// KindRefreshFailed means a refresh failed for a transient reason.
	KindRefreshFailed = "refresh_failed"
	// KindRecovered means a refresh succeeded after an earlier alert.
	KindRecovered = "recovered"
)

// Notifier delivers credential alerts.
type Notifier interface {
	SendCredentialAlert(ctx context.Context, alert *domain.CredentialAlert) error
}
