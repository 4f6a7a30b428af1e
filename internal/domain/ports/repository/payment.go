package repository

import (
	"context"
	"time"

	"academy-payments/internal/domain/model"
)

// -----------------------------
// Payment intents
// -----------------------------

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PaymentIntent) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PaymentIntent, error)
	FindByReference(ctx context.Context, tx Tx, referenceID string) (*model.PaymentIntent, error)
	// UpdateStatusIfPending atomically moves a pending intent to status and
	// reports whether a row changed. Terminal intents are never overwritten.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.PaymentStatus, paidAt *time.Time) (bool, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.PaymentIntent, error)
	SumByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
