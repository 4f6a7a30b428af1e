package notify

import (
	"context"

	"academy-payments/internal/domain/ports/adapter"
)

var _ adapter.OpsNotifier = (*NoopNotifier)(nil)

type NoopNotifier struct{}

func (NoopNotifier) NotifyPayment(ctx context.Context, kind, text string) error { return nil }
