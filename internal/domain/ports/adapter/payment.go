package adapter

import "context"

// GatewayStatus is the provider-side state of a payment session.
type GatewayStatus string

const (
	GatewayStatusPending  GatewayStatus = "PENDING"
	GatewayStatusApproved GatewayStatus = "APPROVED"
	GatewayStatusDeclined GatewayStatus = "DECLINED"
	GatewayStatusExpired  GatewayStatus = "EXPIRED"
)

// PaymentRequest carries everything the provider needs to open a session.
type PaymentRequest struct {
	Amount      int64 // minor units
	Currency    string
	Phone       string // canonical E.164-like number
	Description string
	HostedPage  bool // card payments go through the provider's hosted page
}

// PaymentGateway is the hex port for payment providers.
type PaymentGateway interface {
	Name() string

	// RequestPayment opens a payment session and returns the provider
	// reference id plus a redirect URL when the provider hosts the entry
	// page (empty for wallet push payments).
	RequestPayment(ctx context.Context, req PaymentRequest) (referenceID string, redirectURL string, err error)

	// QueryPayment reports the provider-side status for a reference id.
	QueryPayment(ctx context.Context, referenceID string) (GatewayStatus, error)
}
