package payments

import (
	"context"
	"time"
)

// IntentStatus enumerates the normalised payment-intent states shared across providers.
type IntentStatus string

const (
	// IntentStatusPending indicates the intent awaits customer action or PSP confirmation.
	IntentStatusPending IntentStatus = "pending"
	// IntentStatusSucceeded indicates the PSP reports the payment as captured.
	IntentStatusSucceeded IntentStatus = "succeeded"
	// IntentStatusCanceled indicates the intent was cancelled before capture.
	IntentStatusCanceled IntentStatus = "canceled"
)

// IntentRequest captures the payload required to open a payment intent.
type IntentRequest struct {
	Amount         int64
	Currency       string
	CustomerRef    string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

// Intent is the opened intent returned to the client for confirmation.
type Intent struct {
	ID           string
	Provider     string
	ClientSecret string
	Status       IntentStatus
	Amount       int64
	Currency     string
	CreatedAt    time.Time
}

// Provider defines the contract for PSP adapters to implement.
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	LookupIntent(ctx context.Context, intentID string) (Intent, error)
	CancelIntent(ctx context.Context, intentID string) error
}
