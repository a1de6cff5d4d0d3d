package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bizcontrol/internal/retail"
)

// InitRoutes registers every retail endpoint on the given Gin engine. The
// engine instance is built by the caller so tests can wire their own
// snapshot store and policy flags.
func InitRoutes(e *gin.Engine, engine *retail.Engine, logger *zap.Logger, metrics bool) {
	h := NewRetailHandler(engine, logger)

	e.POST("/sales", h.handleCreateSale)
	e.GET("/sales", h.handleListSales)
	e.GET("/sales/:id", h.handleGetSale)
	e.PUT("/sales/:id", h.handleEditSale)
	e.DELETE("/sales/:id", h.handleDeleteSale)

	e.POST("/closures", h.handleCloseDay)

	e.GET("/notifications", h.handleListNotifications)
	e.POST("/notifications/:id/resolve", h.handleResolveNotification)

	e.POST("/waste", h.handleRecordWaste)
	e.GET("/waste", h.handleListWaste)

	e.GET("/products", h.handleListProducts)
	e.POST("/products", h.handleAddProduct)
	e.PUT("/products/:id", h.handleUpdateProduct)

	e.GET("/stock/:id", h.handleStock)
	e.PUT("/stock", h.handleSetStock)

	e.GET("/logs", h.handleListLogs)

	if metrics {
		e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
