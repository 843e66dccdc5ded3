package handler

import (
	"net/http"
	"strconv"

	"shop/internal/config"
	"shop/internal/middleware"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// 請求書と決済ゲートウェイ連携のHTTP
type InvoiceHandler struct {
	uc     *usecase.InvoiceUsecase
	logger *zap.Logger
}

func NewInvoiceHandler(uc *usecase.InvoiceUsecase, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, logger: logger}
}

type PayURLResponse struct {
	PayURL string `json:"pay_url"`
}

// 認証必須の/invoices配下と、ゲートウェイが叩く公開コールバックを登録
func (h *InvoiceHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/invoices")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/:orderId", h.createInvoice)
	g.GET("/pay/:invoiceId", h.buildPayURL)
	g.GET("/payment-status", h.paymentStatus)

	// リダイレクト元はゲートウェイなのでJWTを要求できない
	e.GET("/vnpay-return", h.gatewayReturn)
}

func (h *InvoiceHandler) createInvoice(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.CreateInvoice(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *InvoiceHandler) buildPayURL(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	invoiceID, err := strconv.ParseInt(c.Param("invoiceId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	url, err := h.uc.BuildPayURL(c.Request().Context(), userID, invoiceID, c.RealIP())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, PayURLResponse{PayURL: url})
}

func (h *InvoiceHandler) paymentStatus(c echo.Context) error {
	if _, ok := getUserIDFromContext(c); !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	invoiceNumber := c.QueryParam("invoice_number")
	if invoiceNumber == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invoice_number required"})
	}

	out, err := h.uc.GetPaymentStatus(c.Request().Context(), invoiceNumber)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *InvoiceHandler) gatewayReturn(c echo.Context) error {
	query := c.QueryParams()

	redirectURL, err := h.uc.HandleGatewayReturn(c.Request().Context(), query)
	if err != nil {
		h.logger.Error("gateway return failed",
			zap.String("txn_ref", query.Get("vnp_TxnRef")),
			zap.String("response_code", query.Get("vnp_ResponseCode")),
			zap.Error(err),
		)
		return writeError(c, err)
	}

	h.logger.Info("gateway return processed",
		zap.String("txn_ref", query.Get("vnp_TxnRef")),
		zap.String("response_code", query.Get("vnp_ResponseCode")),
	)

	// 消し込み結果はフロント側の確認画面で表示する
	return c.Redirect(http.StatusFound, redirectURL)
}
