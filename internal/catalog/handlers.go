package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/events"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/validation"
)

// Handler provides read-only HTTP endpoints for the catalog.
type Handler struct {
	events *events.Logger
}

// NewHandler creates a catalog handler. The event logger may be nil.
func NewHandler(eventLogger *events.Logger) *Handler {
	return &Handler{events: eventLogger}
}

// RegisterRoutes sets up catalog routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/catalog/products", h.ListProducts)
	r.GET("/catalog/products/:id", h.GetProduct)
	r.GET("/catalog/categories", h.ListCategories)
	r.GET("/catalog/profiles", h.ListProfiles)
}

// ListProducts handles GET /v1/catalog/products?category=Clothing
func (h *Handler) ListProducts(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusOK, gin.H{"products": Products()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": ByCategory(category)})
}

// GetProduct handles GET /v1/catalog/products/:id. A valid shopper query
// parameter turns the fetch into a View behavioral signal.
func (h *Handler) GetProduct(c *gin.Context) {
	product, ok := ProductByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "unknown_product",
			"message": "No such product",
		})
		return
	}

	if shopper := c.Query("shopper"); validation.IsValidUserHash(shopper) {
		value := product.Price
		h.events.Log(events.Event{
			UserHash:   shopper,
			ActionType: events.ActionView,
			ProductID:  product.ID,
			Category:   product.Category,
			OrderValue: &value,
		})
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ListCategories handles GET /v1/catalog/categories
func (h *Handler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": Categories()})
}

// ListProfiles handles GET /v1/catalog/profiles
func (h *Handler) ListProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profiles": Profiles()})
}
