package server

import (
	"shop/internal/config"
	"shop/internal/handler"

	"github.com/labstack/echo/v4"
)

// Handlers は起動時に配線するHTTPハンドラ群。
type Handlers struct {
	Auth       *handler.AuthHandler
	Cart       *handler.CartHandler
	Order      *handler.OrderHandler
	AdminOrder *handler.AdminOrderHandler
	Invoice    *handler.InvoiceHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)
	h.Invoice.RegisterRoutes(e, cfg)
}
