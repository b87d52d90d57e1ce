// Package paypal implements the payment provider adapter against the
// PayPal REST API: client-credential tokens, order creation and capture,
// and webhook signature verification through PayPal's own verification
// endpoint (signatures are never checked locally).
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pixglobal/registry/internal/domain"
	"github.com/pixglobal/registry/internal/payment"
	"github.com/shopspring/decimal"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"

	requestTimeout = 15 * time.Second
	// tokenSlack renews the cached bearer token slightly before expiry.
	tokenSlack = 60 * time.Second
)

type Config struct {
	ClientID     string
	ClientSecret string
	WebhookID    string
	Environment  string // sandbox | live
	// BaseURL overrides the environment-derived API host (tests).
	BaseURL string
}

type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	logger  *log.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func New(cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Environment == "live" {
			baseURL = liveBaseURL
		} else {
			baseURL = sandboxBaseURL
		}
	}
	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSlack)) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w: %w", domain.ErrPaymentProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request status %d: %w", resp.StatusCode, domain.ErrPaymentProvider)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w: %w", domain.ErrPaymentProvider, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("empty access token: %w", domain.ErrPaymentProvider)
	}

	c.token = body.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return c.token, nil
}

func (c *Client) CreateOrder(ctx context.Context, in payment.CreateOrderInput) (payment.ProviderOrder, error) {
	reqBody := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			CustomID:    in.InternalRef,
			Description: in.Description,
			Amount: amount{
				CurrencyCode: in.Currency,
				Value:        in.Amount.StringFixed(2),
			},
		}},
		ApplicationContext: &applicationContext{
			ReturnURL:          in.ReturnURL,
			CancelURL:          in.CancelURL,
			UserAction:         "PAY_NOW",
			ShippingPreference: "NO_SHIPPING",
		},
	}

	var body orderResponse
	if err := c.post(ctx, "/v2/checkout/orders", reqBody, &body); err != nil {
		return payment.ProviderOrder{}, err
	}
	if body.ID == "" {
		return payment.ProviderOrder{}, fmt.Errorf("order response missing id: %w", domain.ErrPaymentProvider)
	}
	return payment.ProviderOrder{
		Ref:         body.ID,
		Status:      body.Status,
		ApprovalURL: body.approvalURL(),
		InternalRef: in.InternalRef,
	}, nil
}

func (c *Client) GetOrder(ctx context.Context, ref string) (payment.ProviderOrder, error) {
	var body orderResponse
	if err := c.get(ctx, "/v2/checkout/orders/"+url.PathEscape(ref), &body); err != nil {
		return payment.ProviderOrder{}, err
	}
	return payment.ProviderOrder{
		Ref:         body.ID,
		Status:      body.Status,
		ApprovalURL: body.approvalURL(),
		InternalRef: body.customID(),
	}, nil
}

func (c *Client) CaptureOrder(ctx context.Context, ref string) (payment.Capture, error) {
	var body orderResponse
	if err := c.post(ctx, "/v2/checkout/orders/"+url.PathEscape(ref)+"/capture", struct{}{}, &body); err != nil {
		return payment.Capture{}, err
	}

	capture, ok := body.firstCapture()
	if !ok {
		return payment.Capture{}, fmt.Errorf("capture response has no captures: %w", domain.ErrPaymentProvider)
	}
	amt, err := decimal.NewFromString(capture.Amount.Value)
	if err != nil {
		return payment.Capture{}, fmt.Errorf("capture amount %q: %w", capture.Amount.Value, domain.ErrPaymentProvider)
	}
	return payment.Capture{
		ID:          capture.ID,
		Status:      capture.Status,
		Amount:      amt,
		Currency:    capture.Amount.CurrencyCode,
		InternalRef: body.customID(),
	}, nil
}

// transmissionHeaders are required on every inbound webhook; a missing one
// fails verification closed.
var transmissionHeaders = []string{
	"Paypal-Auth-Algo",
	"Paypal-Cert-Url",
	"Paypal-Transmission-Id",
	"Paypal-Transmission-Sig",
	"Paypal-Transmission-Time",
}

func (c *Client) VerifyWebhook(ctx context.Context, headers http.Header, rawBody []byte) (payment.Event, error) {
	values := make(map[string]string, len(transmissionHeaders))
	for _, name := range transmissionHeaders {
		v := headers.Get(name)
		if v == "" {
			return payment.Event{}, fmt.Errorf("missing header %s: %w", name, domain.ErrWebhookSignature)
		}
		values[name] = v
	}

	verifyReq := verifySignatureRequest{
		AuthAlgo:         values["Paypal-Auth-Algo"],
		CertURL:          values["Paypal-Cert-Url"],
		TransmissionID:   values["Paypal-Transmission-Id"],
		TransmissionSig:  values["Paypal-Transmission-Sig"],
		TransmissionTime: values["Paypal-Transmission-Time"],
		WebhookID:        c.cfg.WebhookID,
		WebhookEvent:     json.RawMessage(rawBody),
	}

	var verifyResp verifySignatureResponse
	if err := c.post(ctx, "/v1/notifications/verify-webhook-signature", verifyReq, &verifyResp); err != nil {
		return payment.Event{}, fmt.Errorf("%w: %w", domain.ErrWebhookSignature, err)
	}
	if verifyResp.VerificationStatus != "SUCCESS" {
		return payment.Event{}, fmt.Errorf("verification status %q: %w", verifyResp.VerificationStatus, domain.ErrWebhookSignature)
	}

	return parseEvent(rawBody)
}

func parseEvent(rawBody []byte) (payment.Event, error) {
	var raw webhookEvent
	if err := json.Unmarshal(rawBody, &raw); err != nil {
		return payment.Event{}, fmt.Errorf("decode event: %w: %w", domain.ErrMalformedEvent, err)
	}
	if raw.ID == "" || raw.EventType == "" {
		return payment.Event{}, fmt.Errorf("event missing id or type: %w", domain.ErrMalformedEvent)
	}

	ev := payment.Event{
		ID:               raw.ID,
		Type:             raw.EventType,
		CaptureID:        raw.Resource.ID,
		CaptureState:     raw.Resource.Status,
		Currency:         raw.Resource.Amount.CurrencyCode,
		InternalRef:      raw.Resource.CustomID,
		ProviderOrderRef: raw.Resource.SupplementaryData.RelatedIDs.OrderID,
	}
	if raw.Resource.Amount.Value != "" {
		amt, err := decimal.NewFromString(raw.Resource.Amount.Value)
		if err != nil {
			return payment.Event{}, fmt.Errorf("event amount %q: %w", raw.Resource.Amount.Value, domain.ErrMalformedEvent)
		}
		ev.Amount = amt
	}
	return ev, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, out any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrPaymentProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Printf("paypal %s %s failed status=%d body=%s", method, path, resp.StatusCode, snippet)
		return fmt.Errorf("%s %s status %d: %w", method, path, resp.StatusCode, domain.ErrPaymentProvider)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", domain.ErrPaymentProvider, err)
	}
	return nil
}
