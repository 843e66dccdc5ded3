package usecase

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shop/internal/domain/model"
	"shop/internal/paygate"
	repo "shop/internal/repository"

	"github.com/google/uuid"
)

// InvoiceUsecase は請求書の発行とゲートウェイ決済の消し込みを行う。
type InvoiceUsecase struct {
	tx        repo.TransactionManager
	gateway   *paygate.Client
	clientURL string
}

func NewInvoiceUsecase(tx repo.TransactionManager, gateway *paygate.Client, clientURL string) *InvoiceUsecase {
	return &InvoiceUsecase{
		tx:        tx,
		gateway:   gateway,
		clientURL: clientURL,
	}
}

type InvoiceOutput struct {
	ID            int64      `json:"id"`
	OrderID       int64      `json:"order_id"`
	InvoiceNumber string     `json:"invoice_number"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	PaymentDate   *time.Time `json:"payment_date"`
	CreatedAt     time.Time  `json:"created_at"`
}

type PaymentStatusOutput struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CreateInvoice は注文に対する請求書を発行する。1注文1枚まで。
func (u *InvoiceUsecase) CreateInvoice(ctx context.Context, userID int64, orderID int64) (InvoiceOutput, error) {
	if userID <= 0 {
		return InvoiceOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return InvoiceOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out InvoiceOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		//既に請求書があれば409（DB側のuniqueIndexが最後の砦）
		_, exists, err := r.Invoices().FindByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if exists {
			return NewHTTPError(http.StatusConflict, "invoice already exists")
		}

		now := time.Now()
		inv := model.Invoice{
			OrderID:       o.ID,
			InvoiceNumber: uuid.NewString(),
			Amount:        o.TotalAmount,
			Status:        model.InvoiceStatusUnpaid,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		id, err := r.Invoices().Create(ctx, inv)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		inv.ID = id
		out = toInvoiceOutput(inv)
		return nil
	})

	if err != nil {
		return InvoiceOutput{}, err
	}
	return out, nil
}

// BuildPayURL は署名付きのゲートウェイリダイレクトURLを返す。状態変更なし。
func (u *InvoiceUsecase) BuildPayURL(ctx context.Context, userID int64, invoiceID int64, clientIP string) (string, error) {
	if userID <= 0 {
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if invoiceID <= 0 {
		return "", NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var payURL string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, err := r.Invoices().FindByID(ctx, invoiceID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//所有チェックは注文経由
		o, err := r.Orders().FindByID(ctx, inv.OrderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		orderInfo := "Thanh toan hoa don " + inv.InvoiceNumber
		payURL = u.gateway.BuildPayURL(inv.InvoiceNumber, inv.Amount, orderInfo, clientIP, time.Now())
		return nil
	})

	if err != nil {
		return "", err
	}
	return payURL, nil
}

// HandleGatewayReturn はゲートウェイからのブラウザ戻りを消し込む。
// 署名検証に失敗するか請求書が見つからない場合は何も変更せずエラーページへ。
// 戻り値は常にリダイレクト先URL。
func (u *InvoiceUsecase) HandleGatewayReturn(ctx context.Context, query url.Values) (string, error) {
	//署名を再計算してから vnp_ResponseCode を信用する
	if !u.gateway.Verify(query) {
		return u.errorRedirect("invalid signature"), nil
	}

	txnRef := strings.TrimSpace(query.Get("vnp_TxnRef"))
	if txnRef == "" {
		return u.errorRedirect("missing transaction reference"), nil
	}

	var redirect string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, err := r.Invoices().FindByInvoiceNumber(ctx, txnRef)
		if err == repo.ErrNotFound {
			redirect = u.errorRedirect("invoice not found")
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if query.Get("vnp_ResponseCode") == paygate.ResponseCodeSuccess {
			now := time.Now()
			if err := r.Invoices().UpdateStatus(ctx, inv.ID, model.InvoiceStatusPaid, &now); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := r.Orders().UpdateFields(ctx, inv.OrderID, map[string]any{
				"payment_status": model.PaymentStatusPaid,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else {
			if err := r.Invoices().UpdateStatus(ctx, inv.ID, model.InvoiceStatusFailed, nil); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := r.Orders().UpdateFields(ctx, inv.OrderID, map[string]any{
				"payment_status": model.PaymentStatusFailed,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		redirect = u.clientURL + "/check-payment-status?invoice_number=" + url.QueryEscape(inv.InvoiceNumber)
		return nil
	})

	if err != nil {
		return "", err
	}
	return redirect, nil
}

// GetPaymentStatus は保存済みの請求書ステータスを3値で返す。副作用なし。
func (u *InvoiceUsecase) GetPaymentStatus(ctx context.Context, invoiceNumber string) (PaymentStatusOutput, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return PaymentStatusOutput{}, NewHTTPError(http.StatusBadRequest, "invoice_number is required")
	}

	var out PaymentStatusOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, err := r.Invoices().FindByInvoiceNumber(ctx, invoiceNumber)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "invoice not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		switch inv.Status {
		case model.InvoiceStatusPaid:
			out = PaymentStatusOutput{Status: "success", Message: "payment successful"}
		case model.InvoiceStatusFailed:
			out = PaymentStatusOutput{Status: "failed", Message: "payment failed"}
		default:
			out = PaymentStatusOutput{Status: "pending", Message: "not paid yet"}
		}
		return nil
	})

	if err != nil {
		return PaymentStatusOutput{}, err
	}
	return out, nil
}

func (u *InvoiceUsecase) errorRedirect(message string) string {
	return u.clientURL + "/check-payment-status?status=error&message=" + url.QueryEscape(message)
}

func toInvoiceOutput(inv model.Invoice) InvoiceOutput {
	return InvoiceOutput{
		ID:            inv.ID,
		OrderID:       inv.OrderID,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Amount,
		Status:        string(inv.Status),
		PaymentDate:   inv.PaymentDate,
		CreatedAt:     inv.CreatedAt,
	}
}
