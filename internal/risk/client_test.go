package risk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/cart"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/logging"
)

func testSnapshot() *cart.Cart {
	return &cart.Cart{
		UserHash: "hash-1",
		Lines: []cart.LineItem{
			{ID: "line_1", ProductID: "PROD_T01", Category: "Clothing", Size: "M", UnitValue: 1299, Quantity: 3},
			{ID: "line_2", ProductID: "PROD_E01", Category: "Electronics", UnitValue: 12999, Quantity: 1},
		},
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, time.Second, logging.New("error", "text"))
}

func TestAssess_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/get-risk-score", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"risk_score":   67,
			"risk_level":   "MEDIUM",
			"reason_codes": []string{"high_return_ratio"},
			"model_used":   "xgboost_v2",
		})
	}))
	defer upstream.Close()

	a := newTestClient(upstream.URL).Assess(context.Background(), "hash-1", "low_risk", testSnapshot())
	require.NotNil(t, a)
	assert.Equal(t, 67, a.Score)
	assert.Equal(t, LevelMedium, a.Level)
	assert.Equal(t, "xgboost_v2", a.ModelSource)
	assert.False(t, a.IsFallback())
}

func TestAssess_PayloadOmitsQuantity(t *testing.T) {
	var got scoreRequest

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))

		// The wire contract sends distinct SKUs, never quantities.
		items, ok := raw["cart"].([]any)
		require.True(t, ok)
		for _, it := range items {
			m := it.(map[string]any)
			_, hasQty := m["quantity"]
			assert.False(t, hasQty, "cart item leaked quantity: %v", m)
			assert.Contains(t, m, "product_id")
			assert.Contains(t, m, "category")
			assert.Contains(t, m, "size")
			assert.Contains(t, m, "value")
		}

		b, _ := json.Marshal(raw)
		_ = json.Unmarshal(b, &got)

		_ = json.NewEncoder(w).Encode(map[string]any{"risk_score": 10, "risk_level": "LOW", "model_used": "m"})
	}))
	defer upstream.Close()

	newTestClient(upstream.URL).Assess(context.Background(), "hash-1", "low_risk", testSnapshot())

	require.Len(t, got.Cart, 2)
	assert.Equal(t, "hash-1", got.UserHash)
	assert.Equal(t, "PROD_T01", got.Cart[0].ProductID)
	require.NotNil(t, got.Cart[0].Size)
	assert.Equal(t, "M", *got.Cart[0].Size)
	assert.Nil(t, got.Cart[1].Size) // sizeless product sends null
	assert.Equal(t, int64(12999), got.Cart[1].Value)
}

func TestAssess_DerivesLevelWhenMissing(t *testing.T) {
	scores := map[int]Level{39: LevelLow, 40: LevelMedium, 80: LevelMedium, 81: LevelHigh}

	for score, want := range scores {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"risk_score": score, "model_used": "m"})
		}))

		a := newTestClient(upstream.URL).Assess(context.Background(), "hash-1", "low_risk", testSnapshot())
		assert.Equal(t, want, a.Level, "score %d", score)
		assert.False(t, a.IsFallback())
		upstream.Close()
	}
}

func TestAssess_FallbackOnServerError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	a := newTestClient(upstream.URL).Assess(context.Background(), "hash-1", "high_risk", testSnapshot())
	require.NotNil(t, a)
	assert.True(t, a.IsFallback())
	assert.Equal(t, 91, a.Score)
	assert.Equal(t, LevelHigh, a.Level)
}

func TestAssess_FallbackOnUnreachableBackend(t *testing.T) {
	a := newTestClient("http://127.0.0.1:1").Assess(context.Background(), "hash-1", "medium_risk", testSnapshot())
	require.NotNil(t, a)
	assert.True(t, a.IsFallback())
	assert.Equal(t, 58, a.Score)
}

func TestAssess_FallbackOnTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]any{"risk_score": 5})
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, 50*time.Millisecond, logging.New("error", "text"))
	a := c.Assess(context.Background(), "hash-1", "low_risk", testSnapshot())
	require.NotNil(t, a)
	assert.True(t, a.IsFallback())
}

func TestAssess_FallbackOnMalformedResponse(t *testing.T) {
	bodies := []string{
		`{"risk_level": "LOW"}`,          // missing score
		`{"risk_score": 250}`,            // out of range
		`{"risk_score": -3}`,             // out of range
		`not json at all`,                // undecodable
		`{"risk_score": "ninety-one"}`,   // wrong type
	}

	for _, body := range bodies {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		a := newTestClient(upstream.URL).Assess(context.Background(), "hash-1", "low_risk", testSnapshot())
		require.NotNil(t, a, "body %q", body)
		assert.True(t, a.IsFallback(), "body %q", body)
		upstream.Close()
	}
}

func TestAssess_UnknownUpstreamLevelDerivedFromScore(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"risk_score": 95, "risk_level": "CRITICAL", "model_used": "m"})
	}))
	defer upstream.Close()

	a := newTestClient(upstream.URL).Assess(context.Background(), "hash-1", "low_risk", testSnapshot())
	assert.Equal(t, LevelHigh, a.Level)
	assert.False(t, a.IsFallback())
}

func TestAssess_RecordsAuditTrail(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"risk_score": 42, "risk_level": "MEDIUM", "model_used": "m"})
	}))
	defer upstream.Close()

	audit := NewMemoryStore()
	c := newTestClient(upstream.URL).WithAudit(audit)
	c.Assess(context.Background(), "hash-1", "low_risk", testSnapshot())

	// Audit write is asynchronous and best-effort.
	require.Eventually(t, func() bool {
		recs, _ := audit.ListByUser(context.Background(), "hash-1", 10)
		return len(recs) == 1
	}, time.Second, 10*time.Millisecond)

	recs, _ := audit.ListByUser(context.Background(), "hash-1", 10)
	assert.Equal(t, 42, recs[0].Score)
	assert.Equal(t, LevelMedium, recs[0].Level)
}

func TestScoreHistory_Passthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/score-history/hash-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"user_hash":"hash-1","scores":[]}`))
	}))
	defer upstream.Close()

	raw, err := newTestClient(upstream.URL).ScoreHistory(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_hash":"hash-1","scores":[]}`, string(raw))
}

func TestHistory_UpstreamErrorSurfaces(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	_, err := newTestClient(upstream.URL).History(context.Background(), "hash-1")
	assert.Error(t, err)
}
