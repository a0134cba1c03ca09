package payment

import (
	"context"
	"errors"
)

var (
	// ErrGatewayIndeterminate means the charge may or may not have happened.
	ErrGatewayIndeterminate = errors.New("payment gateway result unknown")
	// ErrGatewayUnavailable means the call was not attempted.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayConfig      = errors.New("payment gateway not configured")
)

// Outcome is the gateway's answer. A decline is an Outcome with Success
// false, not an error.
type Outcome struct {
	Success       bool
	TransactionID string
	AuthCode      string
	Reason        string
	Indeterminate bool
}

type Gateway interface {
	AuthorizeAndCapture(ctx context.Context, card CardInfo, amount float64) (Outcome, error)
	Configured() bool
}
