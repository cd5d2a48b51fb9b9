package checkout

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/payments"
)

// Handler provides HTTP endpoints for the checkout lifecycle.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up checkout routes on a group that validates :hash.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/checkout/:hash/enter", h.Enter)
	r.GET("/checkout/:hash", h.Current)
	r.POST("/checkout/:hash/payment", h.SelectPayment)
	r.POST("/checkout/:hash/place", h.Place)
	r.POST("/checkout/:hash/leave", h.Leave)
	r.GET("/orders/:hash", h.Orders)
}

// EnterRequest optionally pins a demo profile for the assessment call.
type EnterRequest struct {
	ProfileID string `json:"profile_id"`
}

// Enter handles POST /v1/checkout/:hash/enter. The response carries the
// completed session: assessment, eligible methods, and default selection.
func (h *Handler) Enter(c *gin.Context) {
	var req EnterRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	sess, err := h.service.Enter(c.Request.Context(), c.Param("hash"), req.ProfileID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// Current handles GET /v1/checkout/:hash
func (h *Handler) Current(c *gin.Context) {
	sess, err := h.service.Current(c.Param("hash"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// SelectPaymentRequest names the payment method to select.
type SelectPaymentRequest struct {
	MethodID string `json:"method_id" binding:"required"`
}

// SelectPayment handles POST /v1/checkout/:hash/payment
func (h *Handler) SelectPayment(c *gin.Context) {
	var req SelectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "method_id is required",
		})
		return
	}

	sess, err := h.service.SelectPayment(c.Param("hash"), req.MethodID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// Place handles POST /v1/checkout/:hash/place
func (h *Handler) Place(c *gin.Context) {
	order, err := h.service.Place(c.Request.Context(), c.Param("hash"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Leave handles POST /v1/checkout/:hash/leave
func (h *Handler) Leave(c *gin.Context) {
	h.service.Leave(c.Param("hash"))
	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

// Orders handles GET /v1/orders/:hash
func (h *Handler) Orders(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	orders, err := h.service.Orders(c.Request.Context(), c.Param("hash"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "orders_failed",
			"message": err.Error(),
		})
		return
	}
	if orders == nil {
		orders = []*Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// renderError maps checkout errors onto HTTP statuses. State violations are
// conflicts, not server faults.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": "empty_cart", "message": err.Error()})
	case errors.Is(err, ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": "no_session", "message": err.Error()})
	case errors.Is(err, ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_state", "message": err.Error()})
	case errors.Is(err, ErrNoPaymentSelected):
		c.JSON(http.StatusConflict, gin.H{"error": "no_payment_selected", "message": err.Error()})
	case errors.Is(err, ErrMethodNotEligible):
		c.JSON(http.StatusConflict, gin.H{"error": "method_not_eligible", "message": err.Error()})
	case errors.Is(err, payments.ErrMethodNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown_method", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout_failed", "message": err.Error()})
	}
}
