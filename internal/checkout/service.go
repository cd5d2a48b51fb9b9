package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/cart"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/catalog"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/events"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/idgen"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/logging"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/payments"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/traces"
)

// Service is the checkout state machine. It owns all live sessions, one per
// shopper; every transition happens under the service lock, with the two
// network calls (assessment, charge) performed outside it.
type Service struct {
	carts     *cart.Service
	assessor  Assessor
	orders    OrderStore
	processor payments.Processor
	events    *events.Logger
	emitter   Emitter
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session // userHash → live session
}

// NewService creates a checkout service. The emitter and event logger may
// be nil.
func NewService(carts *cart.Service, assessor Assessor, orders OrderStore, processor payments.Processor, eventLogger *events.Logger, emitter Emitter, logger *slog.Logger) *Service {
	return &Service{
		carts:     carts,
		assessor:  assessor,
		orders:    orders,
		processor: processor,
		events:    eventLogger,
		emitter:   emitter,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Enter starts (or restarts) a checkout attempt: snapshots the cart, moves
// the session to assessing, and requests a risk assessment. The returned
// session is ready (or later) unless a newer entry superseded this one
// mid-flight, in which case the newer session state is returned.
func (s *Service) Enter(ctx context.Context, userHash, profileID string) (*Session, error) {
	snapshot, err := s.carts.Snapshot(ctx, userHash)
	if err != nil {
		return nil, fmt.Errorf("snapshot cart: %w", err)
	}
	if snapshot.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if profileID == "" {
		if p, ok := catalog.ProfileByHash(userHash); ok {
			profileID = p.ID
		}
	}

	s.mu.Lock()
	sess, ok := s.sessions[userHash]
	if !ok {
		sess = &Session{
			ID:        idgen.WithPrefix("sess_"),
			UserHash:  userHash,
			CreatedAt: time.Now(),
		}
		s.sessions[userHash] = sess
	}
	sess.ProfileID = profileID
	sess.Cart = snapshot
	sess.Totals = cart.ComputeTotals(snapshot)
	// The prior payment choice survives re-entry; applyEligibility resets
	// it only if the fresh assessment no longer allows it.
	sess.Assessment = nil
	sess.Eligible = nil
	sess.State = StateAssessing
	sess.UpdatedAt = time.Now()
	sess.assessSeq++
	seq := sess.assessSeq
	s.mu.Unlock()

	sessionsEnteredTotal.Inc()

	// Network call outside the lock; the seq guard below discards this
	// result if the shopper re-entered or switched identity meanwhile.
	assessment := s.assessor.Assess(ctx, userHash, profileID, snapshot)

	s.mu.Lock()
	current, live := s.sessions[userHash]
	if !live || current != sess || sess.assessSeq != seq {
		s.mu.Unlock()
		staleResultsDiscarded.Inc()
		s.logger.Debug("stale assessment discarded", "user", logging.ShortHash(userHash), "seq", seq)
		return s.Current(userHash)
	}

	sess.Assessment = assessment
	sess.State = StateReady
	s.applyEligibility(sess)
	sess.UpdatedAt = time.Now()
	out := sess.clone()
	s.mu.Unlock()

	if s.emitter != nil {
		s.emitter.AssessmentCompleted(userHash, assessment)
	}
	return out, nil
}

// applyEligibility recomputes eligible methods from the session assessment.
// Caller holds the lock. An ineligible selection is never kept: it resets
// to the first eligible method.
func (s *Service) applyEligibility(sess *Session) {
	sess.Eligible = payments.Eligible(sess.Assessment)
	if len(sess.Eligible) == 0 {
		sess.Selected = ""
		return
	}
	if sess.Selected == "" || !sess.isEligible(sess.Selected) {
		if sess.Selected != "" {
			selectionResetsTotal.Inc()
			s.logger.Info("payment selection reset",
				"user", logging.ShortHash(sess.UserHash), "was", sess.Selected, "now", sess.Eligible[0].ID)
		}
		sess.Selected = sess.Eligible[0].ID
	}
}

// Current returns a copy of the shopper's live session.
func (s *Service) Current(userHash string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userHash]
	if !ok {
		return nil, ErrNoSession
	}
	return sess.clone(), nil
}

// SelectPayment records the shopper's payment choice. Only eligible methods
// may be selected; reselecting is idempotent.
func (s *Service) SelectPayment(userHash, methodID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userHash]
	if !ok {
		return nil, ErrNoSession
	}
	if sess.State != StateReady && sess.State != StatePaymentSelected {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, sess.State)
	}
	if _, ok := payments.ByID(methodID); !ok {
		return nil, payments.ErrMethodNotFound
	}
	if !sess.isEligible(methodID) {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotEligible, methodID)
	}

	sess.Selected = methodID
	sess.State = StatePaymentSelected
	sess.UpdatedAt = time.Now()
	return sess.clone(), nil
}

// Place finalizes the order. Permitted only from payment_selected with an
// eligible method and a non-empty cart; all violations are rejected before
// any transition. Reaching placed clears the cart and ends the session.
func (s *Service) Place(ctx context.Context, userHash string) (*Order, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userHash]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	if sess.State != StatePaymentSelected {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, sess.State)
	}
	if sess.Selected == "" {
		s.mu.Unlock()
		return nil, ErrNoPaymentSelected
	}
	if !sess.isEligible(sess.Selected) {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrMethodNotEligible, sess.Selected)
	}
	if sess.Cart.IsEmpty() {
		s.mu.Unlock()
		return nil, ErrEmptyCart
	}

	ctx, span := traces.StartSpan(ctx, "checkout.place",
		traces.SessionID(sess.ID), traces.UserHash(userHash))
	defer span.End()

	sess.State = StatePlacing
	sess.UpdatedAt = time.Now()
	order := &Order{
		ID:       idgen.WithPrefix("ord_"),
		UserHash: userHash,
		MethodID: sess.Selected,
		Lines:    append([]cart.LineItem(nil), sess.Cart.Lines...),
		Totals:   sess.Totals,
		PlacedAt: time.Now(),
	}
	if sess.Assessment != nil {
		order.RiskScore = sess.Assessment.Score
		order.RiskLevel = sess.Assessment.Level
		order.ModelSource = sess.Assessment.ModelSource
	}
	seq := sess.assessSeq
	s.mu.Unlock()

	if err := s.processor.Process(ctx, payments.Charge{
		OrderID:     order.ID,
		UserHash:    userHash,
		MethodID:    order.MethodID,
		AmountMinor: order.Totals.Total,
	}); err != nil {
		// Charge failed: back to payment_selected so the shopper can retry.
		s.mu.Lock()
		if cur, live := s.sessions[userHash]; live && cur == sess && sess.assessSeq == seq {
			sess.State = StatePaymentSelected
			sess.UpdatedAt = time.Now()
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("process payment: %w", err)
	}

	// Archive is best-effort: a placed order is placed even if the write fails.
	if s.orders != nil {
		if err := s.orders.Create(ctx, order); err != nil {
			s.logger.Warn("order archive write failed", "order", order.ID, "error", err)
		}
	}

	if err := s.carts.Clear(ctx, userHash); err != nil {
		s.logger.Warn("cart clear failed after placement", "user", logging.ShortHash(userHash), "error", err)
	}

	for _, line := range order.Lines {
		value := line.UnitValue
		var size *string
		if line.Size != "" {
			sz := line.Size
			size = &sz
		}
		s.events.Log(events.Event{
			UserHash:    userHash,
			ActionType:  events.ActionPurchase,
			ProductID:   line.ProductID,
			Category:    line.Category,
			OrderValue:  &value,
			SizeVariant: size,
		})
	}

	s.mu.Lock()
	sess.State = StatePlaced
	sess.UpdatedAt = time.Now()
	delete(s.sessions, userHash) // terminal; next entry re-assesses
	s.mu.Unlock()

	ordersPlacedTotal.WithLabelValues(order.MethodID).Inc()
	if s.emitter != nil {
		s.emitter.OrderPlaced(userHash, order)
	}
	s.logger.Info("order placed",
		"order", order.ID, "user", logging.ShortHash(userHash), "method", order.MethodID, "total", order.Totals.Total)
	return order, nil
}

// Leave discards the shopper's session without ordering. The cart itself is
// preserved; re-entering checkout always re-assesses.
func (s *Service) Leave(userHash string) {
	s.Invalidate(userHash)
}

// Invalidate drops any live session for the shopper. Used when the shopper
// leaves checkout, switches identity, or mutates the cart mid-checkout; any
// in-flight assessment for the dropped session is discarded on arrival.
func (s *Service) Invalidate(userHash string) {
	s.mu.Lock()
	delete(s.sessions, userHash)
	s.mu.Unlock()
}

// Orders lists the shopper's placed orders, most recent first.
func (s *Service) Orders(ctx context.Context, userHash string, limit int) ([]*Order, error) {
	if s.orders == nil {
		return nil, nil
	}
	return s.orders.ListByUser(ctx, userHash, limit)
}
