package billing

import (
	"context"
	"errors"
)

// MockProvider implements Provider for testing.
type MockProvider struct {
	Intent       *PaymentIntent
	CreateErr    error
	GetErr       error
	VerifyErr    error
	CreateCalled bool
	LastCreate   *CreatePaymentIntentParams
}

func (m *MockProvider) CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error) {
	m.CreateCalled = true
	m.LastCreate = &params
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Intent != nil {
		return m.Intent, nil
	}
	return &PaymentIntent{
		ID:           "pi_mock",
		ClientSecret: "pi_mock_secret",
		AmountCents:  params.AmountCents,
		Currency:     params.Currency,
		Status:       "requires_payment_method",
		Metadata:     params.Metadata,
	}, nil
}

func (m *MockProvider) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.Intent == nil {
		return nil, errors.New("no intent configured in mock")
	}
	return m.Intent, nil
}

func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	return m.VerifyErr
}
