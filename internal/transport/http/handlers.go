package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/service/store"
	"github.com/vladislavdragonenkov/storeguard/internal/validation"
)

// Handlers — HTTP-ручки поверх сервисов магазина.
type Handlers struct {
	orders   *store.OrderService
	carts    *store.CartService
	products *store.ProductService
	engine   *validation.Engine
	logger   *log.Entry
}

// NewHandlers создаёт ручки.
func NewHandlers(orders *store.OrderService, carts *store.CartService, products *store.ProductService, engine *validation.Engine, logger *log.Entry) *Handlers {
	if logger == nil {
		logger = log.WithField("component", "http-handlers")
	}
	return &Handlers{orders: orders, carts: carts, products: products, engine: engine, logger: logger}
}

// Register навешивает маршруты API на router.
func (h *Handlers) Register(router gin.IRouter) {
	api := router.Group("/api/v1")

	api.POST("/products", h.createProduct)
	api.PUT("/products/:id", h.updateProduct)
	api.GET("/products/:id", h.getProduct)

	api.GET("/carts/:id", h.getCart)
	api.POST("/carts/:id/items", h.addCartItem)
	api.PUT("/carts/:id/items/:productId", h.updateCartItem)
	api.DELETE("/carts/:id/items/:productId", h.removeCartItem)

	api.POST("/orders", h.createOrder)
	api.GET("/orders/:id", h.getOrder)
	api.PUT("/orders/:id/status", h.updateOrderStatus)
	api.GET("/orders/:id/timeline", h.orderTimeline)

	api.POST("/stock/check", h.checkStock)
}

func (h *Handlers) createProduct(c *gin.Context) {
	var in validation.CreateProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	outcome, err := h.products.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "create product")
		return
	}
	respond(c, http.StatusCreated, outcome)
}

func (h *Handlers) updateProduct(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	var in validation.UpdateProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	in.ID = id
	outcome, err := h.products.Update(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "update product")
		return
	}
	respond(c, http.StatusOK, outcome)
}

func (h *Handlers) getProduct(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	outcome, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get product")
		return
	}
	respond(c, http.StatusOK, outcome)
}

func (h *Handlers) getCart(c *gin.Context) {
	outcome, err := h.carts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "get cart")
		return
	}
	respond(c, http.StatusOK, outcome)
}

type cartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *Handlers) addCartItem(c *gin.Context) {
	var in cartItemRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	outcome, err := h.carts.AddItem(c.Request.Context(), c.Param("id"), in.ProductID, in.Quantity)
	if err != nil {
		h.fail(c, err, "add cart item")
		return
	}
	respond(c, http.StatusOK, outcome)
}

func (h *Handlers) updateCartItem(c *gin.Context) {
	productID, ok := pathInt64(c, "productId")
	if !ok {
		return
	}
	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	outcome, err := h.carts.UpdateItem(c.Request.Context(), c.Param("id"), productID, in.Quantity)
	if err != nil {
		h.fail(c, err, "update cart item")
		return
	}
	respond(c, http.StatusOK, outcome)
}

func (h *Handlers) removeCartItem(c *gin.Context) {
	productID, ok := pathInt64(c, "productId")
	if !ok {
		return
	}
	outcome, err := h.carts.RemoveItem(c.Request.Context(), c.Param("id"), productID)
	if err != nil {
		h.fail(c, err, "remove cart item")
		return
	}
	respond(c, http.StatusOK, outcome)
}

func (h *Handlers) createOrder(c *gin.Context) {
	var in validation.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	outcome, err := h.orders.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "create order")
		return
	}
	respond(c, http.StatusCreated, outcome)
}

func (h *Handlers) getOrder(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	outcome, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get order")
		return
	}
	respond(c, http.StatusOK, outcome)
}

func (h *Handlers) updateOrderStatus(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	outcome, err := h.orders.UpdateStatus(c.Request.Context(), id, in.Status)
	if err != nil {
		h.fail(c, err, "update order status")
		return
	}
	respond(c, http.StatusOK, outcome)
}

func (h *Handlers) orderTimeline(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	outcome, err := h.orders.Timeline(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "order timeline")
		return
	}
	respond(c, http.StatusOK, outcome)
}

type stockCheckRequest struct {
	Items []struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	} `json:"items"`
}

type stockCheckLine struct {
	ProductID int64               `json:"productId"`
	Available bool                `json:"available"`
	Error     string              `json:"error,omitempty"`
	ErrorCode string              `json:"errorCode,omitempty"`
	Details   []domain.FieldError `json:"details,omitempty"`
}

func (h *Handlers) checkStock(c *gin.Context) {
	var in stockCheckRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if len(in.Items) == 0 {
		respondBadRequest(c, "at least one item is required")
		return
	}

	requests := make([]validation.StockRequest, 0, len(in.Items))
	for _, item := range in.Items {
		requests = append(requests, validation.StockRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	results, err := h.engine.CheckStockBatch(c.Request.Context(), requests)
	if err != nil {
		h.fail(c, err, "stock check")
		return
	}

	lines := make([]stockCheckLine, 0, len(results))
	for _, res := range results {
		line := stockCheckLine{ProductID: res.ProductID, Available: res.Result.IsSuccess()}
		if res.Result.IsFailure() {
			line.Error = res.Result.Message()
			line.ErrorCode = res.Result.Code()
			line.Details = res.Result.Details()
		}
		lines = append(lines, line)
	}
	c.JSON(http.StatusOK, gin.H{"results": lines})
}

// fail логирует инфраструктурный сбой и отвечает 500 без деталей.
func (h *Handlers) fail(c *gin.Context, err error, operation string) {
	h.logger.WithError(err).WithField("operation", operation).Error("request failed")
	respondInternal(c)
}

// pathInt64 разбирает числовой path-параметр; при ошибке сам пишет ответ.
func pathInt64(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || value <= 0 {
		respondBadRequest(c, "invalid "+name+" path parameter")
		return 0, false
	}
	return value, true
}
