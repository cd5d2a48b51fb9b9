// Package checkout owns the risk-aware checkout lifecycle.
//
// Flow:
//  1. Shopper enters checkout with a non-empty cart → session: assessing
//  2. Risk assessment completes (real or local fallback) → ready
//  3. Eligible payment methods derived from the assessment; shopper selects
//     one → payment_selected
//  4. Order placed → placing → placed; cart cleared, session terminal
//
// Error is not a distinct terminal state: the assessment client guarantees
// ready is always reached, via a real verdict or the fallback. Only the most
// recently initiated assessment may commit to the session; stale results
// arriving after a re-entry or identity switch are discarded.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/cart"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/payments"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/risk"
)

var (
	ErrEmptyCart         = errors.New("checkout: cart is empty")
	ErrNoSession         = errors.New("checkout: no active session")
	ErrInvalidState      = errors.New("checkout: operation not allowed in current state")
	ErrNoPaymentSelected = errors.New("checkout: no payment method selected")
	ErrMethodNotEligible = errors.New("checkout: payment method not eligible for this assessment")
)

// State is a checkout session lifecycle state.
type State string

const (
	StateAssessing       State = "assessing"
	StateReady           State = "ready"
	StatePaymentSelected State = "payment_selected"
	StatePlacing         State = "placing"
	StatePlaced          State = "placed"
)

// Session tracks one checkout attempt for one shopper. Idle is represented
// by the absence of a session; entering checkout creates one.
type Session struct {
	ID         string            `json:"id"`
	UserHash   string            `json:"userHash"`
	ProfileID  string            `json:"profileId,omitempty"`
	Cart       *cart.Cart        `json:"cart"`
	Totals     cart.Totals       `json:"totals"`
	Assessment *risk.Assessment  `json:"assessment,omitempty"`
	Eligible   []payments.Method `json:"eligibleMethods,omitempty"`
	Selected   string            `json:"selectedMethod,omitempty"`
	State      State             `json:"state"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`

	// assessSeq guards against stale assessment results: only the result
	// belonging to the latest sequence number may commit.
	assessSeq uint64
}

// clone returns a copy safe to hand outside the service lock. The
// assessment pointer is shared deliberately: assessments are immutable.
func (s *Session) clone() *Session {
	cp := *s
	cp.Cart = s.Cart.Clone()
	cp.Eligible = append([]payments.Method(nil), s.Eligible...)
	return &cp
}

// isEligible reports whether the given method id passes the session's
// current assessment.
func (s *Session) isEligible(methodID string) bool {
	for _, m := range s.Eligible {
		if m.ID == methodID {
			return true
		}
	}
	return false
}

// Order is the durable record of a placed order.
type Order struct {
	ID          string          `json:"id"`
	UserHash    string          `json:"userHash"`
	MethodID    string          `json:"methodId"`
	Lines       []cart.LineItem `json:"lines"`
	Totals      cart.Totals     `json:"totals"`
	RiskScore   int             `json:"riskScore"`
	RiskLevel   risk.Level      `json:"riskLevel"`
	ModelSource string          `json:"modelSource"`
	PlacedAt    time.Time       `json:"placedAt"`
}

// OrderStore archives placed orders.
type OrderStore interface {
	Create(ctx context.Context, order *Order) error
	ListByUser(ctx context.Context, userHash string, limit int) ([]*Order, error)
}

// Assessor obtains a risk assessment for a shopper+cart pair. Implemented
// by the risk client; never fails.
type Assessor interface {
	Assess(ctx context.Context, userHash, profileID string, snapshot *cart.Cart) *risk.Assessment
}

// Emitter receives session lifecycle notifications (realtime fanout).
// Implementations must not block.
type Emitter interface {
	AssessmentCompleted(userHash string, a *risk.Assessment)
	OrderPlaced(userHash string, order *Order)
}
