package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/logging"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

func TestLogger_DeliversEvents(t *testing.T) {
	var mu sync.Mutex
	var received []Event

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/log-action", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var e Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	l := NewLogger(upstream.URL, time.Second, logging.New("error", "text"))
	l.Log(Event{
		UserHash:    "hash-1",
		ActionType:  ActionAddToCart,
		ProductID:   "PROD_T01",
		Category:    "Clothing",
		OrderValue:  int64Ptr(1299),
		SizeVariant: strPtr("M"),
	})
	l.Log(Event{UserHash: "hash-1", ActionType: ActionView, ProductID: "PROD_E01"})
	l.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, ActionAddToCart, received[0].ActionType)
	assert.Equal(t, int64(1299), *received[0].OrderValue)
	assert.Equal(t, "M", *received[0].SizeVariant)
	assert.Equal(t, ActionView, received[1].ActionType)
}

func TestLogger_SwallowsUpstreamFailures(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	l := NewLogger(upstream.URL, time.Second, logging.New("error", "text"))

	// Must not panic, block, or surface the failure.
	l.Log(Event{UserHash: "hash-1", ActionType: ActionPurchase, ProductID: "PROD_B01"})
	l.Close()
}

func TestLogger_SwallowsUnreachableBackend(t *testing.T) {
	l := NewLogger("http://127.0.0.1:1", 200*time.Millisecond, logging.New("error", "text"))
	l.Log(Event{UserHash: "hash-1", ActionType: ActionReturnRequest, ProductID: "PROD_T01"})
	l.Close()
}

func TestLogger_NilReceiverIsSafe(t *testing.T) {
	var l *Logger
	l.Log(Event{ActionType: ActionView})
	l.Close()
}

func TestLogger_CloseIsIdempotent(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	l := NewLogger(upstream.URL, time.Second, logging.New("error", "text"))
	l.Close()
	l.Close()
}
