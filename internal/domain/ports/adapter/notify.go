package adapter

import "context"

// OpsNotifier delivers operational payment alerts (failed verifications,
// reconciler outcomes) to whoever is on call.
type OpsNotifier interface {
	NotifyPayment(ctx context.Context, kind, text string) error
}
