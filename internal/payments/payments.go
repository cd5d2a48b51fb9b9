// Package payments defines the payment-method catalog and the eligibility
// rules that gate methods on a fraud-risk assessment.
package payments

import (
	"context"
	"errors"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/risk"
)

var ErrMethodNotFound = errors.New("payments: unknown payment method")

// codScoreCeiling is the highest risk score at which pay-on-delivery is
// still offered. A score of exactly 80 keeps it; 81 removes it.
const codScoreCeiling = 80

// Method is one entry in the static payment-method catalog.
type Method struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// requiresLowRisk marks cash-style methods that are withdrawn for
	// high-risk shoppers.
	requiresLowRisk bool
}

// EligibleFor evaluates the method's eligibility rule against an assessment.
// A missing assessment offers everything: gating only tightens once a
// verdict exists.
func (m Method) EligibleFor(a *risk.Assessment) bool {
	if !m.requiresLowRisk || a == nil {
		return true
	}
	return a.Score <= codScoreCeiling
}

var methods = []Method{
	{ID: "upi", Name: "UPI / PhonePe / GPay", Description: "Instant payment"},
	{ID: "card", Name: "Credit / Debit Card", Description: "Visa, Mastercard, RuPay"},
	{ID: "netbanking", Name: "Net Banking", Description: "All major Indian banks"},
	{ID: "emi", Name: "EMI (No Cost)", Description: "3, 6, 12 months available"},
	{ID: "cod", Name: "Cash on Delivery", Description: "Pay when delivered", requiresLowRisk: true},
}

// Methods returns the full catalog in display order.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// ByID looks up a method in the catalog.
func ByID(id string) (Method, bool) {
	for _, m := range methods {
		if m.ID == id {
			return m, true
		}
	}
	return Method{}, false
}

// Eligible returns the methods whose rules pass against the assessment, in
// catalog order. The first entry is the default selection.
func Eligible(a *risk.Assessment) []Method {
	var out []Method
	for _, m := range methods {
		if m.EligibleFor(a) {
			out = append(out, m)
		}
	}
	return out
}

// Charge is a request to collect payment for a placed order.
type Charge struct {
	OrderID     string
	UserHash    string
	MethodID    string
	AmountMinor int64 // total in minor currency units
	Currency    string
}

// Processor collects payment for an order. Implementations must be safe to
// call once per placement; the checkout flow does not retry charges.
type Processor interface {
	Process(ctx context.Context, charge Charge) error
}

// NoopProcessor accepts every charge without side effects. Used in demo
// mode and for methods collected outside the platform (cod, upi).
type NoopProcessor struct{}

func (NoopProcessor) Process(ctx context.Context, charge Charge) error {
	return nil
}
