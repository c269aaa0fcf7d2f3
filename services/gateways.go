package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/requester"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

//go:generate mockgen -source=gateways.go -destination=mocks/gateways_mock.go -package=mocks

// PaymentGateway charges a card payment described by a provider payload.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, payload json.RawMessage) (providerID string, status string, err error)
}

// MessageSender delivers a text message and returns the provider message id.
type MessageSender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

type idempotencyKeyCtx struct{}

// WithIdempotencyKey attaches the key the payment provider uses to collapse
// repeated charge requests.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

func IdempotencyKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKeyCtx{}).(string)
	return key, ok && key != ""
}

// idempotentRequester replaces the per-request random idempotency key the
// SDK sets with the one carried by the request context.
type idempotentRequester struct {
	client *http.Client
}

var _ requester.Requester = idempotentRequester{}

func (r idempotentRequester) Do(req *http.Request) (*http.Response, error) {
	if key, ok := IdempotencyKey(req.Context()); ok {
		req.Header.Set("X-Idempotency-Key", key)
	}
	return r.client.Do(req)
}

type MercadoPagoGateway struct {
	client   payment.Client
	mockMode bool
	logger   *zap.Logger
}

func NewMercadoPagoGateway(accessToken string, mock bool, logger *zap.Logger) (*MercadoPagoGateway, error) {
	if mock {
		logger.Info("payment gateway mock mode enabled")
		return &MercadoPagoGateway{mockMode: true, logger: logger}, nil
	}
	if accessToken == "" {
		return nil, errors.New("missing mercadopago access token")
	}
	cfg, err := config.New(accessToken, config.WithHTTPClient(idempotentRequester{
		client: &http.Client{Timeout: 10 * time.Second},
	}))
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPagoGateway{client: payment.NewClient(cfg), logger: logger}, nil
}

func (g *MercadoPagoGateway) CreatePayment(ctx context.Context, payload json.RawMessage) (string, string, error) {
	if g == nil {
		return "", "", ErrGatewayNotConfigured
	}
	if g.mockMode {
		id := strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
		key, _ := IdempotencyKey(ctx)
		g.logger.Info("mock payment approved",
			zap.String("provider_id", id),
			zap.String("idempotency_key", key),
			zap.Int("payload_len", len(payload)))
		return id, "approved", nil
	}
	if g.client == nil {
		return "", "", ErrGatewayNotConfigured
	}

	var req payment.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return "", "", fmt.Errorf("payment payload: %w", err)
	}
	resp, err := g.client.Create(ctx, req)
	if err != nil {
		g.logger.Error("payment create failed", zap.Error(err))
		return "", "", err
	}
	id := fmt.Sprintf("%d", resp.ID)
	g.logger.Info("payment created", zap.String("provider_id", id), zap.String("status", resp.Status))
	return id, resp.Status, nil
}

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (s *TwilioSender) Send(_ context.Context, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
