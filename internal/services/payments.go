package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// IntentCreator obtains a client secret for a card payment of amount cents.
type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, amount int64) (string, error)
}

type StripeIntents struct {
	api *client.API
}

func NewStripeIntents(secretKey string) *StripeIntents {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeIntents{api: sc}
}

func (s *StripeIntents) CreatePaymentIntent(ctx context.Context, amount int64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", errors.Wrap(err, "create payment intent")
	}
	return pi.ClientSecret, nil
}

// AmountInCents converts a price to the smallest currency unit, truncating
// fractions of a cent.
func AmountInCents(price float64) int64 {
	return int64(price * 100)
}
