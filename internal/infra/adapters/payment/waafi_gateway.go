package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"academy-payments/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*WaafiGateway)(nil)

// WaafiGateway implements adapter.PaymentGateway against the WaafiPay REST
// API: one call to open a purchase session (optionally returning a hosted
// payment page URL), one call to read its state. Card and PIN entry happen
// on the provider side, never here.
type WaafiGateway struct {
	merchantUID string
	apiKey      string
	callback    string
	sandbox     bool
	client      *http.Client
}

func NewWaafiGateway(merchantUID, apiKey, callbackURL string, sandbox bool) (*WaafiGateway, error) {
	if merchantUID == "" || apiKey == "" {
		return nil, errors.New("merchant uid and api key required")
	}
	if _, err := url.Parse(callbackURL); err != nil {
		return nil, fmt.Errorf("invalid callback url: %w", err)
	}
	return &WaafiGateway{
		merchantUID: merchantUID,
		apiKey:      apiKey,
		callback:    callbackURL,
		sandbox:     sandbox,
		// Per-call transport timeout; the verification poll budget is a
		// separate layer on top of this.
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (g *WaafiGateway) Name() string { return "waafipay" }

func (g *WaafiGateway) endpoint(path string) string {
	base := "https://api.waafipay.net/asm/v1"
	if g.sandbox {
		base = "https://sandbox.waafipay.net/asm/v1"
	}
	return base + path
}

func (g *WaafiGateway) RequestPayment(ctx context.Context, req adapter.PaymentRequest) (string, string, error) {
	service := "API_PURCHASE"
	if req.HostedPage {
		service = "HPP_PURCHASE"
	}
	payload := map[string]any{
		"merchantUid": g.merchantUID,
		"apiKey":      g.apiKey,
		"serviceName": service,
		"callbackUrl": g.callback,
		"payerInfo": map[string]any{
			"accountNo": req.Phone,
		},
		"transactionInfo": map[string]any{
			"amount":      req.Amount,
			"currency":    req.Currency,
			"description": req.Description,
		},
	}
	b, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint("/purchases"), bytes.NewReader(b))
	if err != nil {
		return "", "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	var out struct {
		ResponseCode string `json:"responseCode"`
		ResponseMsg  string `json:"responseMsg"`
		Params       struct {
			ReferenceID string `json:"referenceId"`
			HppURL      string `json:"hppUrl"`
		} `json:"params"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	// 2001 is the provider's accepted/created code.
	if out.ResponseCode != "2001" || out.Params.ReferenceID == "" {
		return "", "", fmt.Errorf("waafipay request rejected: %s %s", out.ResponseCode, out.ResponseMsg)
	}
	return out.Params.ReferenceID, out.Params.HppURL, nil
}

func (g *WaafiGateway) QueryPayment(ctx context.Context, referenceID string) (adapter.GatewayStatus, error) {
	payload := map[string]any{
		"merchantUid": g.merchantUID,
		"apiKey":      g.apiKey,
		"serviceName": "API_GETTRANSACTION",
		"transactionInfo": map[string]any{
			"referenceId": referenceID,
		},
	}
	b, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint("/transactions"), bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out struct {
		ResponseCode string `json:"responseCode"`
		Params       struct {
			State string `json:"state"`
		} `json:"params"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ResponseCode != "2001" {
		return "", fmt.Errorf("waafipay query rejected: %s", out.ResponseCode)
	}
	switch out.Params.State {
	case "APPROVED", "SETTLED":
		return adapter.GatewayStatusApproved, nil
	case "DECLINED", "CANCELLED":
		return adapter.GatewayStatusDeclined, nil
	case "EXPIRED":
		return adapter.GatewayStatusExpired, nil
	default:
		return adapter.GatewayStatusPending, nil
	}
}
