// Package events reports shopper behavior to the assessment backend.
//
// Delivery is fire-and-forget: Log never blocks the caller's action and
// failures are swallowed. A dropped or failed event costs nothing but a
// slightly staler behavioral signal upstream.
package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ActionType identifies a behavioral event.
type ActionType string

const (
	ActionView          ActionType = "View"
	ActionAddToCart     ActionType = "AddToCart"
	ActionPurchase      ActionType = "Purchase"
	ActionReturnRequest ActionType = "ReturnRequest"
)

// Event is one behavioral fingerprint record.
type Event struct {
	UserHash    string     `json:"user_hash"`
	ActionType  ActionType `json:"action_type"`
	ProductID   string     `json:"product_id,omitempty"`
	Category    string     `json:"product_category,omitempty"`
	OrderValue  *int64     `json:"order_value,omitempty"`
	SizeVariant *string    `json:"size_variant,omitempty"`
}

var (
	eventsEnqueuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "returnguard",
		Subsystem: "events",
		Name:      "enqueued_total",
		Help:      "Behavioral events accepted for delivery by action type.",
	}, []string{"action_type"})

	eventsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "returnguard",
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Behavioral events dropped because the queue was full.",
	}, []string{"action_type"})

	eventsDeliveryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "returnguard",
		Subsystem: "events",
		Name:      "delivery_errors_total",
		Help:      "Behavioral event delivery failures by action type.",
	}, []string{"action_type"})
)

func init() {
	prometheus.MustRegister(eventsEnqueuedTotal, eventsDroppedTotal, eventsDeliveryErrors)
}

const defaultQueueSize = 256

// Logger delivers events to POST {base}/v1/log-action from a background
// worker. All methods are safe on a nil receiver.
type Logger struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger

	queue     chan Event
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewLogger creates a logger and starts its delivery worker.
func NewLogger(baseURL string, timeout time.Duration, logger *slog.Logger) *Logger {
	l := &Logger{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		queue:   make(chan Event, defaultQueueSize),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

// Log enqueues an event for delivery. Never blocks: if the queue is full the
// event is dropped and counted.
func (l *Logger) Log(e Event) {
	if l == nil {
		return
	}
	select {
	case l.queue <- e:
		eventsEnqueuedTotal.WithLabelValues(string(e.ActionType)).Inc()
	default:
		eventsDroppedTotal.WithLabelValues(string(e.ActionType)).Inc()
	}
}

// Close stops the worker after draining queued events.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() {
		close(l.queue)
	})
	l.wg.Wait()
}

func (l *Logger) run() {
	defer l.wg.Done()
	for e := range l.queue {
		if err := l.deliver(e); err != nil {
			eventsDeliveryErrors.WithLabelValues(string(e.ActionType)).Inc()
			l.logger.Warn("behavioral event delivery failed",
				"action", e.ActionType, "product", e.ProductID, "error", err)
		}
	}
}

func (l *Logger) deliver(e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/v1/log-action", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("log-action returned status %d", resp.StatusCode)
	}
	return nil
}
