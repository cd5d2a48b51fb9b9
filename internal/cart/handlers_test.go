package cart

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter() (*gin.Engine, *Service) {
	svc := NewService(NewMemoryStore())
	h := NewHandler(svc, nil) // event logging not under test

	r := gin.New()
	v1 := r.Group("/v1")
	v1.Use(validation.HashParamMiddleware())
	h.RegisterRoutes(v1)
	return r, svc
}

type cartResponse struct {
	Cart   Cart   `json:"cart"`
	Totals Totals `json:"totals"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddItem_EndToEnd(t *testing.T) {
	r, _ := setupRouter()

	w := doJSON(t, r, http.MethodPost, "/v1/carts/"+testHash+"/items",
		AddItemRequest{ProductID: "PROD_T01", Size: "M"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp cartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Cart.Lines, 1)
	assert.Equal(t, 1, resp.Cart.Lines[0].Quantity)
	assert.Equal(t, int64(1299), resp.Totals.Subtotal)
	assert.Equal(t, FlatShippingFee, resp.Totals.Shipping)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	r, _ := setupRouter()

	w := doJSON(t, r, http.MethodPost, "/v1/carts/"+testHash+"/items",
		AddItemRequest{ProductID: "PROD_X99"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "unknown_product")
}

func TestAddItem_MissingProductID(t *testing.T) {
	r, _ := setupRouter()

	w := doJSON(t, r, http.MethodPost, "/v1/carts/"+testHash+"/items", map[string]string{"size": "M"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddItem_MalformedHashRejected(t *testing.T) {
	r, _ := setupRouter()

	w := doJSON(t, r, http.MethodPost, "/v1/carts/not-a-hash/items",
		AddItemRequest{ProductID: "PROD_T01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_user_hash")
}

func TestRemoveItem_EndToEnd(t *testing.T) {
	r, _ := setupRouter()

	w := doJSON(t, r, http.MethodPost, "/v1/carts/"+testHash+"/items",
		AddItemRequest{ProductID: "PROD_B01"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp cartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	lineID := resp.Cart.Lines[0].ID

	w = doJSON(t, r, http.MethodDelete, "/v1/carts/"+testHash+"/items/"+lineID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Cart.Lines)
	assert.Equal(t, int64(0), resp.Totals.Total)
}

func TestGetCart_EmptyByDefault(t *testing.T) {
	r, _ := setupRouter()

	w := doJSON(t, r, http.MethodGet, "/v1/carts/"+testHash, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp cartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Cart.Lines)
	assert.Equal(t, int64(0), resp.Totals.Subtotal)
}

func TestClearCart(t *testing.T) {
	r, _ := setupRouter()

	doJSON(t, r, http.MethodPost, "/v1/carts/"+testHash+"/items", AddItemRequest{ProductID: "PROD_A01"})
	w := doJSON(t, r, http.MethodPost, "/v1/carts/"+testHash+"/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/v1/carts/"+testHash, nil)
	var resp cartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Cart.Lines)
}
