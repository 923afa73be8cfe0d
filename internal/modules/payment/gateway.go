package payment

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway is the processor-agnostic interface card and mobile adapters
// implement. Authorization is asynchronous: the adapter returns a
// provider reference and the final verdict arrives later through the
// confirmation webhook.
type Gateway interface {
	Authorize(ctx context.Context, req *AuthorizationRequest) (*AuthorizationResult, error)
}

// GatewayRegistry maps payment methods to their Gateway implementations.
type GatewayRegistry map[Method]Gateway

// AuthorizationRequest is what an adapter needs to start a charge.
type AuthorizationRequest struct {
	PaymentID   string
	Amount      decimal.Decimal
	Reference   string
	PhoneNumber string
}

// AuthorizationResult is the provider's immediate response.
type AuthorizationResult struct {
	ProviderRef    string `json:"provider_ref"`
	ProviderStatus string `json:"provider_status"`
	Message        string `json:"message,omitempty"`
}

// ── Card terminal adapter ─────────────────────────────────────────────────────
// Sandbox stub; a production build replaces Authorize with the acquirer's
// pre-auth call and keeps the same reference/webhook contract.

type cardGateway struct {
	terminalID string
	env        string // sandbox | production
}

func NewCardGateway(terminalID, env string) Gateway {
	return &cardGateway{terminalID: terminalID, env: env}
}

func (g *cardGateway) Authorize(ctx context.Context, req *AuthorizationRequest) (*AuthorizationResult, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than 0")
	}
	ref := fmt.Sprintf("CRD-%s-%04d", time.Now().Format("20060102150405"), rand.Intn(10000))
	return &AuthorizationResult{
		ProviderRef:    ref,
		ProviderStatus: "PENDING",
		Message:        "Charge sent to terminal. Awaiting acquirer confirmation.",
	}, nil
}

// ── Mobile money adapter ──────────────────────────────────────────────────────

type mobileMoneyGateway struct {
	apiKey string
	env    string // sandbox | production
}

func NewMobileMoneyGateway(apiKey, env string) Gateway {
	return &mobileMoneyGateway{apiKey: apiKey, env: env}
}

func (g *mobileMoneyGateway) Authorize(ctx context.Context, req *AuthorizationRequest) (*AuthorizationResult, error) {
	if req.PhoneNumber == "" {
		return nil, fmt.Errorf("phone_number is required for mobile money")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than 0")
	}
	ref := fmt.Sprintf("MOB-%s-%04d", time.Now().Format("20060102150405"), rand.Intn(10000))
	return &AuthorizationResult{
		ProviderRef:    ref,
		ProviderStatus: "PENDING",
		Message:        fmt.Sprintf("Payment request sent to %s. Awaiting customer approval.", req.PhoneNumber),
	}, nil
}

// NormalizeStatus maps provider status strings to the internal Status.
func NormalizeStatus(providerStatus string) Status {
	switch strings.ToUpper(providerStatus) {
	case "APPROVED", "SUCCESSFUL", "COMPLETED":
		return StatusCompleted
	case "DECLINED", "FAILED":
		return StatusFailed
	default:
		return StatusProcessing
	}
}
