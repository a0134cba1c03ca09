package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"print-order-service/internal/config"
	"print-order-service/internal/logging"
	"print-order-service/internal/metrics"
)

const (
	DefaultEndpoint = "https://apitest.authorize.net/xml/v1/request.api"
	DefaultTimeout  = 30 * time.Second

	reasonTimedOut = "timed out"
	reasonFailed   = "Payment failed"
)

var tracer = otel.Tracer("print-order-service/payment")

// AuthorizeNetGateway performs single-step authorize-and-capture
// transactions against the Authorize.Net JSON API.
type AuthorizeNetGateway struct {
	cfg     config.GatewayConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[Outcome]
	metrics *metrics.Metrics
}

func NewAuthorizeNetGateway(cfg config.GatewayConfig, client *http.Client, m *metrics.Metrics) *AuthorizeNetGateway {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{}
	}

	breaker := gobreaker.NewCircuitBreaker[Outcome](gobreaker.Settings{
		Name:        "authorize-net",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &AuthorizeNetGateway{cfg: cfg, client: client, breaker: breaker, metrics: m}
}

func (g *AuthorizeNetGateway) Configured() bool {
	return g.cfg.Configured()
}

// AuthorizeAndCapture validates the card locally and then charges it. Local
// validation failures return a *ValidationError without any network call.
// The gateway call is bounded by the configured timeout and is not cancelled
// when ctx is; a call that cannot be completed yields an indeterminate
// Outcome and an error wrapping ErrGatewayIndeterminate.
func (g *AuthorizeNetGateway) AuthorizeAndCapture(ctx context.Context, card CardInfo, amount float64) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "Gateway.AuthorizeAndCapture")
	defer span.End()

	number, err := ValidateCard(card)
	if err != nil {
		span.SetStatus(codes.Error, "card validation failed")
		return Outcome{Reason: err.Error()}, err
	}
	if !g.Configured() {
		span.SetStatus(codes.Error, ErrGatewayConfig.Error())
		return Outcome{}, ErrGatewayConfig
	}

	logger := logging.FromContext(ctx).With(
		zap.String("card", MaskCard(number)),
		zap.String("amount", decimal.NewFromFloat(amount).StringFixed(2)),
	)
	span.SetAttributes(attribute.String("payment.card", MaskCard(number)))

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.cfg.Timeout)
	defer cancel()

	started := time.Now()
	outcome, err := g.breaker.Execute(func() (Outcome, error) {
		return g.send(callCtx, number, card, amount)
	})
	elapsed := time.Since(started)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		g.metrics.GatewayCall("unavailable", elapsed)
		span.SetStatus(codes.Error, "circuit open")
		logger.Warn("payment gateway circuit open")
		return Outcome{Reason: "payment service temporarily unavailable"}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	case err != nil:
		g.metrics.GatewayCall("indeterminate", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "indeterminate")
		reason := "gateway error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = reasonTimedOut
		}
		logger.Warn("payment gateway result unknown", zap.Error(err), zap.Duration("elapsed", elapsed))
		return Outcome{Indeterminate: true, Reason: reason}, fmt.Errorf("%w: %v", ErrGatewayIndeterminate, err)
	case !outcome.Success:
		g.metrics.GatewayCall("declined", elapsed)
		span.SetStatus(codes.Error, "declined")
		logger.Info("payment declined", zap.String("reason", outcome.Reason))
		return outcome, nil
	}

	g.metrics.GatewayCall("approved", elapsed)
	span.SetAttributes(attribute.String("payment.transaction_id", outcome.TransactionID))
	logger.Info("payment captured", zap.String("transaction_id", outcome.TransactionID))
	return outcome, nil
}

// send returns an error only when the result of the call is unknown.
func (g *AuthorizeNetGateway) send(ctx context.Context, number string, card CardInfo, amount float64) (Outcome, error) {
	body, err := json.Marshal(newTransactionRequest(g.cfg, number, card, amount))
	if err != nil {
		return Outcome{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Outcome{}, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	// Authorize.Net prefixes its JSON with a UTF-8 byte order mark.
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	var parsed transactionResponseEnvelope
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Outcome{}, fmt.Errorf("decode response: %w", err)
	}
	return parsed.outcome(), nil
}

type transactionRequestEnvelope struct {
	CreateTransactionRequest createTransactionRequest `json:"createTransactionRequest"`
}

type createTransactionRequest struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	TransactionRequest     transactionRequest     `json:"transactionRequest"`
}

type merchantAuthentication struct {
	Name           string `json:"name"`
	TransactionKey string `json:"transactionKey"`
}

type transactionRequest struct {
	TransactionType string         `json:"transactionType"`
	Amount          string         `json:"amount"`
	Payment         paymentSection `json:"payment"`
}

type paymentSection struct {
	CreditCard creditCard `json:"creditCard"`
}

type creditCard struct {
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"`
	CardCode       string `json:"cardCode"`
}

func newTransactionRequest(cfg config.GatewayConfig, number string, card CardInfo, amount float64) transactionRequestEnvelope {
	return transactionRequestEnvelope{
		CreateTransactionRequest: createTransactionRequest{
			MerchantAuthentication: merchantAuthentication{
				Name:           cfg.LoginID,
				TransactionKey: cfg.TransactionKey,
			},
			TransactionRequest: transactionRequest{
				TransactionType: "authCaptureTransaction",
				Amount:          decimal.NewFromFloat(amount).StringFixed(2),
				Payment: paymentSection{CreditCard: creditCard{
					CardNumber:     number,
					ExpirationDate: card.ExpirationDate,
					CardCode:       card.CVV,
				}},
			},
		},
	}
}

type transactionResponseEnvelope struct {
	TransactionResponse *struct {
		ResponseCode string `json:"responseCode"`
		AuthCode     string `json:"authCode"`
		TransID      string `json:"transId"`
		Errors       []struct {
			ErrorCode string `json:"errorCode"`
			ErrorText string `json:"errorText"`
		} `json:"errors"`
	} `json:"transactionResponse"`
	Messages struct {
		ResultCode string `json:"resultCode"`
		Message    []struct {
			Code string `json:"code"`
			Text string `json:"text"`
		} `json:"message"`
	} `json:"messages"`
}

func (r transactionResponseEnvelope) outcome() Outcome {
	tr := r.TransactionResponse
	if r.Messages.ResultCode == "Ok" && tr != nil && tr.ResponseCode == "1" {
		return Outcome{Success: true, TransactionID: tr.TransID, AuthCode: tr.AuthCode}
	}

	reason := reasonFailed
	switch {
	case tr != nil && len(tr.Errors) > 0 && tr.Errors[0].ErrorText != "":
		reason = tr.Errors[0].ErrorText
	case len(r.Messages.Message) > 0 && r.Messages.Message[0].Text != "":
		reason = r.Messages.Message[0].Text
	}
	out := Outcome{Reason: reason}
	if tr != nil {
		out.TransactionID = tr.TransID
	}
	return out
}
