package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v78"
)

type fakeIntentAPI struct {
	created   *stripe.PaymentIntentParams
	canceled  string
	newErr    error
	newResult *stripe.PaymentIntent
}

func (f *fakeIntentAPI) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.created = params
	if f.newErr != nil {
		return nil, f.newErr
	}
	if f.newResult != nil {
		return f.newResult, nil
	}
	return &stripe.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret",
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
		Amount:       *params.Amount,
		Currency:     stripe.Currency(*params.Currency),
		Created:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Unix(),
	}, nil
}

func (f *fakeIntentAPI) Get(id string, _ *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return &stripe.PaymentIntent{ID: id, Status: stripe.PaymentIntentStatusSucceeded}, nil
}

func (f *fakeIntentAPI) Cancel(id string, _ *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error) {
	f.canceled = id
	return &stripe.PaymentIntent{ID: id, Status: stripe.PaymentIntentStatusCanceled}, nil
}

func newTestProvider(t *testing.T, api *fakeIntentAPI) *StripeProvider {
	t.Helper()
	provider, err := NewStripeProvider(StripeProviderConfig{
		Clients: &stripeClients{intents: api},
		Clock:   func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewStripeProvider error: %v", err)
	}
	return provider
}

func TestStripeProvider_CreateIntent(t *testing.T) {
	api := &fakeIntentAPI{}
	provider := newTestProvider(t, api)

	intent, err := provider.CreateIntent(context.Background(), IntentRequest{
		Amount:         1250,
		Currency:       "GBP",
		CustomerRef:    "cus_1",
		IdempotencyKey: "key_1",
		Metadata:       map[string]string{"order": "ord_1"},
	})
	if err != nil {
		t.Fatalf("CreateIntent error: %v", err)
	}
	if intent.ID != "pi_123" || intent.ClientSecret != "pi_123_secret" {
		t.Fatalf("intent = %+v", intent)
	}
	if intent.Status != IntentStatusPending {
		t.Fatalf("Status = %q, want pending", intent.Status)
	}
	if intent.Currency != "GBP" {
		t.Fatalf("Currency = %q, want GBP", intent.Currency)
	}
	if api.created == nil || *api.created.Currency != "gbp" {
		t.Fatal("currency not lowered for the API call")
	}
	if api.created.Customer == nil || *api.created.Customer != "cus_1" {
		t.Fatal("customer not forwarded")
	}
}

func TestStripeProvider_CreateIntentValidation(t *testing.T) {
	provider := newTestProvider(t, &fakeIntentAPI{})

	if _, err := provider.CreateIntent(context.Background(), IntentRequest{Currency: "GBP"}); err == nil {
		t.Fatal("expected error for zero amount")
	}
	if _, err := provider.CreateIntent(context.Background(), IntentRequest{Amount: 100}); err == nil {
		t.Fatal("expected error for missing currency")
	}
}

func TestStripeProvider_CreateIntentFailure(t *testing.T) {
	provider := newTestProvider(t, &fakeIntentAPI{newErr: errors.New("stripe down")})

	if _, err := provider.CreateIntent(context.Background(), IntentRequest{Amount: 100, Currency: "GBP"}); err == nil {
		t.Fatal("expected error from the API")
	}
}

func TestStripeProvider_CancelIntent(t *testing.T) {
	api := &fakeIntentAPI{}
	provider := newTestProvider(t, api)

	if err := provider.CancelIntent(context.Background(), "pi_9"); err != nil {
		t.Fatalf("CancelIntent error: %v", err)
	}
	if api.canceled != "pi_9" {
		t.Fatalf("canceled = %q, want pi_9", api.canceled)
	}
}
