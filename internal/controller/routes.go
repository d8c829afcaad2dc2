package controller

import (
	"delivered-status-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Register monta las rutas. auth valida el token y deja el usuario en el contexto.
func (ctl *OrderController) Register(r *gin.Engine, auth gin.HandlerFunc) {
	// Rutas públicas
	r.POST("/status/init", ctl.InitStatus)

	// Rutas protegidas (requieren token)
	authed := r.Group("/")
	authed.Use(auth)
	authed.GET("/orders/mine", ctl.GetMyOrders)
	authed.GET("/orders/:orderId", ctl.GetOrder)

	// Rutas admin
	admin := authed.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/orders", ctl.GetOrders)
	admin.GET("/orders/:orderId/actions", ctl.GetOrderActions)
	admin.POST("/orders/:orderId/mark", ctl.MarkStatus)
	admin.GET("/bulk-actions", ctl.GetBulkActions)
	admin.POST("/bulk-actions", ctl.RunBulkAction)
	admin.GET("/statuses", ctl.GetStatuses)
	admin.GET("/reports/orders", ctl.GetReport)
	admin.GET("/emails", ctl.GetEmails)
}
