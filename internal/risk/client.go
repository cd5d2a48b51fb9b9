package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/cart"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/idgen"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/traces"
)

// errMalformed marks upstream responses missing required fields; treated
// identically to transport failures.
var errMalformed = errors.New("risk: malformed upstream response")

// Client calls the risk scoring backend. Assess never fails: every upstream
// problem collapses into a local fallback assessment at this boundary.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	audit      AuditStore
}

// NewClient creates a risk client. The timeout applies per request.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithAudit attaches a best-effort assessment audit trail.
func (c *Client) WithAudit(store AuditStore) *Client {
	c.audit = store
	return c
}

// scoreRequest is the wire payload for POST /v1/get-risk-score. Quantity is
// deliberately not sent: the scoring engine operates on the distinct SKUs
// touched, not on how many of each.
type scoreRequest struct {
	UserHash string          `json:"user_hash"`
	Cart     []scoreCartItem `json:"cart"`
}

type scoreCartItem struct {
	ProductID string  `json:"product_id"`
	Category  string  `json:"category"`
	Size      *string `json:"size"`
	Value     int64   `json:"value"`
}

// scoreResponse uses pointers so missing fields are detectable.
type scoreResponse struct {
	Score       *int     `json:"risk_score"`
	Level       string   `json:"risk_level"`
	ReasonCodes []string `json:"reason_codes"`
	ModelUsed   string   `json:"model_used"`
}

// Assess obtains an assessment for the shopper and cart snapshot. It never
// returns an error: upstream failure, timeout, or a malformed body yields
// the deterministic fallback for the declared profile. No automatic
// retries; callers re-enter checkout to get a fresh assessment.
func (c *Client) Assess(ctx context.Context, userHash, profileID string, snapshot *cart.Cart) *Assessment {
	lines := 0
	if snapshot != nil {
		lines = len(snapshot.Lines)
	}
	ctx, span := traces.StartSpan(ctx, "risk.assess",
		traces.UserHash(userHash), traces.CartLines(lines))
	defer span.End()

	assessment, err := c.fetch(ctx, userHash, snapshot)
	if err != nil {
		reason := classifyFailure(err)
		fallbacksTotal.WithLabelValues(reason).Inc()
		c.logger.Warn("risk backend unavailable, using local fallback",
			"profile", profileID, "reason", reason, "error", err)
		assessment = Fallback(profileID)
	}

	span.SetAttributes(traces.RiskScore(assessment.Score), traces.RiskSource(assessment.ModelSource))
	assessmentsTotal.WithLabelValues(assessment.ModelSource, string(assessment.Level)).Inc()

	c.record(userHash, assessment)
	return assessment
}

// fetch returns the upstream assessment or an error. Kept separate from
// Assess so the fallback policy stays auditable on its own.
func (c *Client) fetch(ctx context.Context, userHash string, snapshot *cart.Cart) (*Assessment, error) {
	payload := scoreRequest{UserHash: userHash, Cart: []scoreCartItem{}}
	if snapshot != nil {
		for _, line := range snapshot.Lines {
			item := scoreCartItem{
				ProductID: line.ProductID,
				Category:  line.Category,
				Value:     line.UnitValue,
			}
			if line.Size != "" {
				size := line.Size
				item.Size = &size
			}
			payload.Cart = append(payload.Cart, item)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/get-risk-score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	upstreamLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("get-risk-score: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("get-risk-score returned status %d", resp.StatusCode)
	}

	var wire scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if wire.Score == nil || *wire.Score < 0 || *wire.Score > 100 {
		return nil, fmt.Errorf("%w: risk_score missing or out of range", errMalformed)
	}

	level := Level(wire.Level)
	switch level {
	case LevelLow, LevelMedium, LevelHigh:
		// upstream band accepted as-is
	default:
		level = LevelFromScore(*wire.Score)
	}

	source := wire.ModelUsed
	if source == "" {
		source = "unknown"
	}

	return &Assessment{
		Score:       *wire.Score,
		Level:       level,
		ReasonCodes: wire.ReasonCodes,
		ModelSource: source,
	}, nil
}

// record persists the assessment to the audit trail asynchronously;
// best-effort, the checkout flow never waits on it.
func (c *Client) record(userHash string, a *Assessment) {
	if c.audit == nil {
		return
	}
	rec := &Record{
		ID:          idgen.WithPrefix("risk_"),
		UserHash:    userHash,
		Score:       a.Score,
		Level:       a.Level,
		ReasonCodes: append([]string(nil), a.ReasonCodes...),
		ModelSource: a.ModelSource,
		CreatedAt:   time.Now(),
	}
	go func() {
		if err := c.audit.Record(context.Background(), rec); err != nil {
			c.logger.Warn("assessment audit write failed", "error", err)
		}
	}()
}

// History fetches the upstream transaction history for a shopper. Read-only
// observability passthrough; not used by the checkout core itself.
func (c *Client) History(ctx context.Context, userHash string) (json.RawMessage, error) {
	return c.get(ctx, "/v1/history/"+userHash)
}

// ScoreHistory fetches the upstream score history for a shopper.
func (c *Client) ScoreHistory(ctx context.Context, userHash string) (json.RawMessage, error) {
	return c.get(ctx, "/v1/score-history/"+userHash)
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("get %s returned status %d", path, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return json.RawMessage(raw), nil
}

func classifyFailure(err error) string {
	if errors.Is(err, errMalformed) {
		return "malformed"
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return "timeout"
	}
	return "transport"
}
