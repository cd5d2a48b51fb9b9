package payments

import (
	"context"
	"fmt"
	"log/slog"

	stripe "github.com/stripe/stripe-go/v81"
	stripeclient "github.com/stripe/stripe-go/v81/client"
)

// stripeMethods are the catalog methods collected through Stripe. Everything
// else (upi, netbanking, cod) settles outside the platform and no-ops here.
var stripeMethods = map[string]bool{
	"card": true,
	"emi":  true,
}

// StripeProcessor collects card-style charges via Stripe PaymentIntents.
type StripeProcessor struct {
	api    *stripeclient.API
	logger *slog.Logger
}

// NewStripeProcessor creates a processor authenticated with the given API key.
func NewStripeProcessor(apiKey string, logger *slog.Logger) *StripeProcessor {
	api := &stripeclient.API{}
	api.Init(apiKey, nil)
	return &StripeProcessor{api: api, logger: logger}
}

func (p *StripeProcessor) Process(ctx context.Context, charge Charge) error {
	if !stripeMethods[charge.MethodID] {
		return nil
	}

	currency := charge.Currency
	if currency == "" {
		currency = string(stripe.CurrencyINR)
	}

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(charge.AmountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", charge.OrderID)
	params.AddMetadata("user_hash", charge.UserHash)
	params.AddMetadata("method", charge.MethodID)

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return fmt.Errorf("create payment intent: %w", err)
	}

	p.logger.Info("payment intent created",
		"order", charge.OrderID, "intent", intent.ID, "amount", charge.AmountMinor)
	return nil
}
