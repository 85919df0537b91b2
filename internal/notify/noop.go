package notify

import (
	"context"
	"log/slog"

	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// NoOpNotifier implements Notifier by logging discarded alerts. It is used
// when no webhook is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards alerts with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendCredentialAlert logs and discards alert. Rejections are logged at
// warn level since nobody else will hear about them.
func (n *NoOpNotifier) SendCredentialAlert(ctx context.Context, alert *domain.CredentialAlert) error {
	if alert == nil {
		return nil
	}
	level := slog.LevelDebug
	if alert.Kind == KindAuthRejected {
		level = slog.LevelWarn
	}
	n.log.Log(ctx, level, "credential alert not delivered (no notifier configured)",
		"kind", alert.Kind,
		"message", alert.Message,
	)
	return nil
}
