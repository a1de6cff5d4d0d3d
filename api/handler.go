package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bizcontrol/internal/retail"
)

// retailHandler holds the engine and implements the HTTP handlers for the
// retail operations.
type retailHandler struct {
	engine *retail.Engine
	logger *zap.Logger
}

// NewRetailHandler creates a new retail handler.
func NewRetailHandler(engine *retail.Engine, logger *zap.Logger) *retailHandler {
	return &retailHandler{
		engine: engine,
		logger: logger,
	}
}

// actor resolves the acting user from the X-Actor header against the
// seeded user set. Login and session handling live outside this service.
func (h *retailHandler) actor(ctx *gin.Context) (retail.Actor, bool) {
	name := ctx.GetHeader("X-Actor")
	if name == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-Actor header"})
		return retail.Actor{}, false
	}
	actor, ok := h.engine.FindUser(name)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unknown actor"})
		return retail.Actor{}, false
	}
	return actor, true
}

// fail maps engine sentinels onto HTTP status codes.
func (h *retailHandler) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, retail.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, retail.ErrValidation),
		errors.Is(err, retail.ErrEmptyCart),
		errors.Is(err, retail.ErrNothingToClose):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, retail.ErrPermissionDenied):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, retail.ErrAlreadyResolved):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func idParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// handleCreateSale handles POST /sales.
func (h *retailHandler) handleCreateSale(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req struct {
		BusinessID int64              `json:"business_id"`
		Items      []retail.ItemInput `json:"items"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.engine.CreateSale(actor, req.BusinessID, req.Items)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, sale)
}

// handleEditSale handles PUT /sales/:id.
func (h *retailHandler) handleEditSale(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	var req struct {
		Items []retail.ItemInput `json:"items"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.engine.EditSale(actor, id, req.Items)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

// handleDeleteSale handles DELETE /sales/:id. When the actor cannot delete
// directly the response is 202 with the delete_request notification.
func (h *retailHandler) handleDeleteSale(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}

	notif, err := h.engine.DeleteSale(actor, id, false)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	if notif != nil {
		ctx.JSON(http.StatusAccepted, gin.H{"notification": notif})
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *retailHandler) handleListSales(ctx *gin.Context) {
	businessID, _ := strconv.ParseInt(ctx.Query("business_id"), 10, 64)
	ctx.JSON(http.StatusOK, gin.H{"results": h.engine.Sales(businessID)})
}

func (h *retailHandler) handleGetSale(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	sale, err := h.engine.Sale(id)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

// handleCloseDay handles POST /closures.
func (h *retailHandler) handleCloseDay(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req struct {
		BusinessID     int64           `json:"business_id"`
		Seller         string          `json:"seller"`
		Cash           decimal.Decimal `json:"cash"`
		Transfer       decimal.Decimal `json:"transfer"`
		OpenTime       string          `json:"open_time"`
		AdditionalInfo string          `json:"additional_info"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	closure, notif, err := h.engine.CloseDay(actor, req.BusinessID, req.Seller, retail.DeclaredTotals{
		Cash:           req.Cash,
		Transfer:       req.Transfer,
		OpenTime:       req.OpenTime,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		h.fail(ctx, err)
		return
	}
	resp := gin.H{"closure": closure}
	if notif != nil {
		resp["notification"] = notif
	}
	ctx.JSON(http.StatusCreated, resp)
}

func (h *retailHandler) handleListNotifications(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"results": h.engine.Notifications()})
}

// handleResolveNotification handles POST /notifications/:id/resolve.
func (h *retailHandler) handleResolveNotification(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req struct {
		Decision string `json:"decision"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	err := h.engine.ResolveNotification(actor, ctx.Param("id"), retail.Decision(req.Decision))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// handleRecordWaste handles POST /waste.
func (h *retailHandler) handleRecordWaste(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req struct {
		BusinessID int64 `json:"business_id"`
		ProductID  int64 `json:"product_id"`
		Quantity   int64 `json:"quantity"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	rec, err := h.engine.RecordWaste(actor, req.BusinessID, req.ProductID, req.Quantity)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, rec)
}

func (h *retailHandler) handleListWaste(ctx *gin.Context) {
	businessID, _ := strconv.ParseInt(ctx.Query("business_id"), 10, 64)
	ctx.JSON(http.StatusOK, gin.H{"results": h.engine.Waste(businessID)})
}

func (h *retailHandler) handleListProducts(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"results": h.engine.Products()})
}

// handleAddProduct handles POST /products.
func (h *retailHandler) handleAddProduct(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req retail.Product
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	p, err := h.engine.AddProduct(actor, req)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, p)
}

// handleUpdateProduct handles PUT /products/:id.
func (h *retailHandler) handleUpdateProduct(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	var req retail.Product
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	p, err := h.engine.UpdateProduct(actor, id, req)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, p)
}

// handleStock handles GET /stock/:id (business id).
func (h *retailHandler) handleStock(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"results": h.engine.StockByBusiness(id)})
}

// handleSetStock handles PUT /stock.
func (h *retailHandler) handleSetStock(ctx *gin.Context) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req struct {
		BusinessID int64 `json:"business_id"`
		ProductID  int64 `json:"product_id"`
		Quantity   int64 `json:"quantity"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	if err := h.engine.SetStockLevel(actor, req.BusinessID, req.ProductID, req.Quantity); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *retailHandler) handleListLogs(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"results": h.engine.Logs()})
}
