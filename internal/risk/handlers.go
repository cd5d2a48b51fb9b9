package risk

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler exposes read-only observability endpoints over the assessment
// audit trail and the upstream history API. The checkout core itself never
// calls these.
type Handler struct {
	client *Client
	audit  AuditStore
}

// NewHandler creates a new risk observability handler.
func NewHandler(client *Client, audit AuditStore) *Handler {
	return &Handler{client: client, audit: audit}
}

// RegisterRoutes sets up observability routes on a group that validates :hash.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/score-history/:hash", h.ScoreHistory)
	r.GET("/history/:hash", h.History)
}

// ScoreHistory handles GET /v1/score-history/:hash from the local audit trail.
func (h *Handler) ScoreHistory(c *gin.Context) {
	userHash := c.Param("hash")

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	records, err := h.audit.ListByUser(c.Request.Context(), userHash, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "audit_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_hash": userHash,
		"count":     len(records),
		"scores":    records,
	})
}

// History handles GET /v1/history/:hash as a passthrough to the upstream
// transaction history.
func (h *Handler) History(c *gin.Context) {
	raw, err := h.client.History(c.Request.Context(), c.Param("hash"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "upstream_unavailable",
			"message": err.Error(),
		})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
