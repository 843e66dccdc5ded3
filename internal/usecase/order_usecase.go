package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/google/uuid"
)

// 固定の送料。注文作成時に合計へ加算される。
const shippingFee int64 = 35000

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type PlaceOrderInput struct {
	CartItemIDs     []int64
	ShippingAddress string
	ShippingPhone   string
	ShippingName    string
	PaymentMethod   string
	Notes           string
}

type CancelOrderInput struct {
	Reason string
}

type OrderItemOutput struct {
	ProductID          int64  `json:"product_id"`
	ProductVariationID int64  `json:"product_variation_id"`
	Quantity           int64  `json:"quantity"`
	Price              int64  `json:"price"`
	DiscountPrice      *int64 `json:"discount_price"`
	AttributesSnapshot string `json:"attributes_snapshot"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	OrderNumber     string            `json:"order_number"`
	UserID          int64             `json:"user_id"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	TotalAmount     int64             `json:"total_amount"`
	ShippingFee     int64             `json:"shipping_fee"`
	ShippingAddress string            `json:"shipping_address"`
	ShippingPhone   string            `json:"shipping_phone"`
	ShippingName    string            `json:"shipping_name"`
	PaymentMethod   string            `json:"payment_method"`
	Notes           string            `json:"notes"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

// PlaceOrder はカート明細から注文を作成する。
// 合計確定・明細スナップショット・在庫減算・カート削除を1トランザクションで行う。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.CartItemIDs) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart_items is required")
	}

	//重複IDは不正扱い
	seen := make(map[int64]struct{}, len(in.CartItemIDs))
	for _, id := range in.CartItemIDs {
		if id <= 0 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid cart_items")
		}
		if _, ok := seen[id]; ok {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid cart_items")
		}
		seen[id] = struct{}{}
	}

	address := strings.TrimSpace(in.ShippingAddress)
	phone := strings.TrimSpace(in.ShippingPhone)
	name := strings.TrimSpace(in.ShippingName)
	method := strings.TrimSpace(in.PaymentMethod)

	if address == "" || len(address) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_address")
	}
	if phone == "" || len(phone) > 20 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_phone")
	}
	if name == "" || len(name) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_name")
	}
	if method == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//本人所有の明細だけ取れる。1件でも欠けたら全体を404で拒否。
		lines, err := r.CartItems().ListByIDsForUser(ctx, userID, in.CartItemIDs)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(lines) != len(in.CartItemIDs) {
			return NewHTTPError(http.StatusNotFound, "cart item not found")
		}

		orderItems := make([]model.OrderItem, 0, len(lines))
		var total int64 = 0

		for _, line := range lines {
			v, err := r.Variations().FindByID(ctx, line.ProductVariationID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid cart_items")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//購入時点の属性をJSONで保存
			attrs, err := r.Variations().ListAttributes(ctx, v.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			snapshot, err := json.Marshal(attrs)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "internal error")
			}

			//在庫減算（足りないなら false）
			ok, err := r.Variations().DecreaseStockIfEnough(ctx, v.ID, line.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "insufficient stock")
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:          v.ProductID,
				ProductVariationID: v.ID,
				Quantity:           line.Quantity,
				Price:              v.Price,
				DiscountPrice:      v.DiscountPrice,
				AttributesSnapshot: string(snapshot),
			})

			total += v.UnitPrice() * line.Quantity
		}

		total += shippingFee

		now := time.Now()
		order := model.Order{
			UserID:          userID,
			OrderNumber:     uuid.NewString(),
			Status:          model.OrderStatusPending,
			PaymentStatus:   model.PaymentStatusPending,
			TotalAmount:     total,
			ShippingFee:     shippingFee,
			ShippingAddress: address,
			ShippingPhone:   phone,
			ShippingName:    name,
			PaymentMethod:   method,
			Notes:           strings.TrimSpace(in.Notes),
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//消費したカート明細を削除
		if err := r.CartItems().DeleteByIDs(ctx, in.CartItemIDs); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// CancelMyOrder は本人によるキャンセル。発送済み・配達済みは不可。
func (u *OrderUsecase) CancelMyOrder(ctx context.Context, userID int64, orderID int64, in CancelOrderInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" || len(reason) > 255 {
		return NewHTTPError(http.StatusBadRequest, "invalid cancellation_reason")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
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

		//発送以降はキャンセル不可
		if o.Status == model.OrderStatusShipped || o.Status == model.OrderStatusDelivered {
			return NewHTTPError(http.StatusBadRequest, "cannot cancel shipped order")
		}

		paymentStatus := model.PaymentStatusPending
		if o.PaymentStatus == model.PaymentStatusPaid {
			paymentStatus = model.PaymentStatusRefunded
		}

		if err := r.Orders().UpdateFields(ctx, orderID, map[string]any{
			"status":         model.OrderStatusCancelled,
			"payment_status": paymentStatus,
			"notes":          reason,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫戻し
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		for _, it := range items {
			if err := r.Variations().IncreaseStock(ctx, it.ProductVariationID, it.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		return nil
	})
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//他人の注文は「存在しない扱い」にする
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:          it.ProductID,
			ProductVariationID: it.ProductVariationID,
			Quantity:           it.Quantity,
			Price:              it.Price,
			DiscountPrice:      it.DiscountPrice,
			AttributesSnapshot: it.AttributesSnapshot,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		TotalAmount:     o.TotalAmount,
		ShippingFee:     o.ShippingFee,
		ShippingAddress: o.ShippingAddress,
		ShippingPhone:   o.ShippingPhone,
		ShippingName:    o.ShippingName,
		PaymentMethod:   o.PaymentMethod,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
