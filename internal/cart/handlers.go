package cart

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/events"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/validation"
)

// Handler provides HTTP endpoints for cart operations.
type Handler struct {
	service  *Service
	events   *events.Logger
	onMutate func(userHash string)
}

// NewHandler creates a new cart handler. The event logger may be nil.
func NewHandler(service *Service, eventLogger *events.Logger) *Handler {
	return &Handler{service: service, events: eventLogger}
}

// OnMutate registers a callback invoked after any cart mutation. The
// checkout service uses it to discard sessions whose snapshot went stale.
func (h *Handler) OnMutate(fn func(userHash string)) {
	h.onMutate = fn
}

func (h *Handler) mutated(userHash string) {
	if h.onMutate != nil {
		h.onMutate(userHash)
	}
}

// RegisterRoutes sets up cart routes on a group that validates :hash.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/carts/:hash", h.GetCart)
	r.POST("/carts/:hash/items", h.AddItem)
	r.DELETE("/carts/:hash/items/:lineID", h.RemoveItem)
	r.POST("/carts/:hash/clear", h.ClearCart)
}

// GetCart handles GET /v1/carts/:hash
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.service.Snapshot(c.Request.Context(), c.Param("hash"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "cart_failed",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart, "totals": ComputeTotals(cart)})
}

// AddItemRequest is the payload for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Size      string `json:"size"`
}

// AddItem handles POST /v1/carts/:hash/items
func (h *Handler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	if errs := validation.Validate(
		validation.Required("product_id", req.ProductID),
		validation.MaxLength("size", req.Size, 8),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	userHash := c.Param("hash")
	cart, err := h.service.Add(c.Request.Context(), userHash, req.ProductID, req.Size)
	if err != nil {
		status := http.StatusInternalServerError
		code := "cart_failed"
		if errors.Is(err, ErrUnknownProduct) {
			status = http.StatusNotFound
			code = "unknown_product"
		}
		c.JSON(status, gin.H{"error": code, "message": err.Error()})
		return
	}
	h.mutated(userHash)

	// Behavioral signal; the add itself succeeded regardless of delivery.
	if line := cart.findLine(req.ProductID, req.Size); line != nil {
		value := line.UnitValue
		var size *string
		if line.Size != "" {
			size = &line.Size
		}
		h.events.Log(events.Event{
			UserHash:    userHash,
			ActionType:  events.ActionAddToCart,
			ProductID:   line.ProductID,
			Category:    line.Category,
			OrderValue:  &value,
			SizeVariant: size,
		})
	}

	c.JSON(http.StatusOK, gin.H{"cart": cart, "totals": ComputeTotals(cart)})
}

// RemoveItem handles DELETE /v1/carts/:hash/items/:lineID
func (h *Handler) RemoveItem(c *gin.Context) {
	userHash := c.Param("hash")
	cart, err := h.service.Remove(c.Request.Context(), userHash, c.Param("lineID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "cart_failed",
			"message": err.Error(),
		})
		return
	}
	h.mutated(userHash)
	c.JSON(http.StatusOK, gin.H{"cart": cart, "totals": ComputeTotals(cart)})
}

// ClearCart handles POST /v1/carts/:hash/clear
func (h *Handler) ClearCart(c *gin.Context) {
	userHash := c.Param("hash")
	if err := h.service.Clear(c.Request.Context(), userHash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "cart_failed",
			"message": err.Error(),
		})
		return
	}
	h.mutated(userHash)
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
